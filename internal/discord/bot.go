// Package discord routes prefixed Discord messages (e.g. "!echo hi") through
// the same command router that serves Slack.
package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/keshon/slashbot/pkg/cmd"
)

const embedColor = 0xb01e66

// sender is the part of *discordgo.Session the bot writes through.
type sender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Bot is a Discord transport for a cmd.Router.
type Bot struct {
	dg          *discordgo.Session
	router      *cmd.Router
	routerToken string
	prefix      string
	log         *zap.Logger
	ctx         context.Context
}

// New creates a bot. routerToken is presented as the event token so the
// router's shared-secret check passes for Discord traffic.
func New(discordToken string, router *cmd.Router, routerToken, prefix string, log *zap.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + discordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	return &Bot{
		dg:          dg,
		router:      router,
		routerToken: routerToken,
		prefix:      prefix,
		log:         log,
		ctx:         context.Background(),
	}, nil
}

// Run opens the gateway connection and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info("discord bot shutting down")
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("discord bot is running", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	selfID := ""
	if s.State != nil && s.State.User != nil {
		selfID = s.State.User.ID
	}
	b.handle(b.ctx, s, selfID, m)
}

func (b *Bot) handle(ctx context.Context, s sender, selfID string, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == selfID || m.Author.Bot {
		return
	}
	text, ok := commandText(b.prefix, m.Content)
	if !ok {
		return
	}

	ev := eventFromMessage(m, b.routerToken, text)
	b.router.Route(ctx, ev, func(res cmd.Result) {
		if err := b.reply(s, m, res); err != nil {
			b.log.Warn("failed to send reply", zap.String("channel", m.ChannelID), zap.Error(err))
		}
	})
}

func (b *Bot) reply(s sender, m *discordgo.MessageCreate, res cmd.Result) error {
	switch {
	case res.Failed():
		b.log.Warn("discord command rejected", zap.String("reason", res.Failure))
		return nil
	case res.Err != nil:
		b.log.Error("discord command failed", zap.Error(res.Err))
		_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
			Content:   "Error running command.",
			Reference: m.Reference(),
		})
		return err
	case res.Envelope == nil:
		return nil
	}

	channelID := m.ChannelID
	msg := messageSend(res.Envelope)
	if res.Envelope.ResponseType == cmd.Ephemeral && m.GuildID != "" {
		dm, err := s.UserChannelCreate(m.Author.ID)
		if err != nil {
			return fmt.Errorf("open DM channel: %w", err)
		}
		channelID = dm.ID
	} else {
		msg.Reference = m.Reference()
	}
	_, err := s.ChannelMessageSendComplex(channelID, msg)
	return err
}

// commandText strips prefix from content; ok is false for ordinary chat.
func commandText(prefix, content string) (string, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" {
		return content, content != ""
	}
	return strings.CutPrefix(content, prefix)
}

func eventFromMessage(m *discordgo.MessageCreate, token, text string) *cmd.Event {
	return &cmd.Event{
		Body: cmd.Body{Token: token, Text: text},
		Meta: map[string]any{
			cmd.MetaTransport: "discord",
			cmd.MetaUserID:    m.Author.ID,
			cmd.MetaUserName:  m.Author.Username,
			cmd.MetaChannelID: m.ChannelID,
			cmd.MetaTeamID:    m.GuildID,
		},
	}
}

// messageSend renders an envelope: text as content, attachments as embeds.
func messageSend(env *cmd.Envelope) *discordgo.MessageSend {
	msg := &discordgo.MessageSend{Content: env.Text}
	for _, a := range env.Attachments {
		msg.Embeds = append(msg.Embeds, &discordgo.MessageEmbed{
			Description: a.Text,
			Color:       embedColor,
		})
	}
	return msg
}
