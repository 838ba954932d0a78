package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/keshon/slashbot/pkg/cmd"
)

var (
	routeTimeout time.Duration
	routeUser    string
)

// routeCmd routes one command line locally and prints the reply envelope.
// History is not recorded.
var routeCmd = &cobra.Command{
	Use:   "route [text...]",
	Short: "Route a command locally and print the reply as JSON",
	Example: `  slashbot route echo Sir User how are you
  slashbot route help`,
	RunE: func(c *cobra.Command, args []string) error {
		router, err := buildRouter(cfg, nil, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.Context(), routeTimeout)
		defer cancel()

		res, err := router.Wait(ctx, &cmd.Event{
			Body: cmd.Body{Token: cfg.SlackToken, Text: strings.Join(args, " ")},
			Meta: map[string]any{
				cmd.MetaUserID:    routeUser,
				cmd.MetaUserName:  routeUser,
				cmd.MetaTransport: "cli",
			},
		})
		if err != nil {
			return fmt.Errorf("command did not answer: %w", err)
		}
		if res.Failed() {
			return errors.New(res.Failure)
		}
		if res.Err != nil {
			return res.Err
		}
		if res.Envelope == nil {
			return nil
		}

		enc := json.NewEncoder(c.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res.Envelope)
	},
}

func init() {
	routeCmd.Flags().DurationVar(&routeTimeout, "timeout", 10*time.Second, "How long to wait for the command")
	routeCmd.Flags().StringVar(&routeUser, "user", "cli", "User id reported to the command")
}
