package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/keshon/slashbot/pkg/cmd"
)

const maxHistory = 20

var historySpec = cmd.MustCompile(cmd.Default("count", "5"))

// HistoryCommand lists the most recent commands routed for the caller's team.
type HistoryCommand struct {
	Store HistoryReader
}

func (c *HistoryCommand) Name() string        { return "history" }
func (c *HistoryCommand) Description() string { return "Show recently used commands" }
func (c *HistoryCommand) Spec() cmd.Spec      { return historySpec }

func (c *HistoryCommand) Run(_ context.Context, inv *cmd.Invocation) {
	raw, _ := inv.Args().String("count")
	count, err := strconv.Atoi(raw)
	if err != nil || count < 1 {
		inv.Done(nil, inv.Reply.Ephemeral(fmt.Sprintf("Count must be a positive number, got %q.", raw)))
		return
	}
	count = min(count, maxHistory)

	records, err := c.Store.History(inv.Event.MetaString(cmd.MetaTeamID), count)
	if err != nil {
		inv.Done(fmt.Errorf("read history: %w", err), nil)
		return
	}
	if len(records) == 0 {
		inv.Done(nil, inv.Reply.Ephemeral("No commands recorded yet."))
		return
	}

	lines := make([]string, 0, len(records))
	for _, r := range records {
		who := r.Username
		if who == "" {
			who = r.UserID
		}
		line := fmt.Sprintf("%s %s: %s", r.Datetime.UTC().Format("2006-01-02 15:04"), who, r.Text)
		if r.Failed {
			line += " (failed)"
		}
		lines = append(lines, line)
	}
	inv.Done(nil, inv.Reply.Ephemeral("Recent commands:", strings.Join(lines, "\n")))
}
