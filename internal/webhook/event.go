package webhook

import (
	"github.com/slack-go/slack"

	"github.com/keshon/slashbot/pkg/cmd"
)

// EventFromSlash turns a parsed slash command payload into a router event.
// Everything besides token and text is carried in Meta.
func EventFromSlash(sc slack.SlashCommand) *cmd.Event {
	return &cmd.Event{
		Body: cmd.Body{Token: sc.Token, Text: sc.Text},
		Meta: map[string]any{
			cmd.MetaTransport:   "slack",
			cmd.MetaUserID:      sc.UserID,
			cmd.MetaUserName:    sc.UserName,
			cmd.MetaChannelID:   sc.ChannelID,
			cmd.MetaChannelName: sc.ChannelName,
			cmd.MetaTeamID:      sc.TeamID,
			cmd.MetaTeamDomain:  sc.TeamDomain,
			cmd.MetaCommand:     sc.Command,
			cmd.MetaResponseURL: sc.ResponseURL,
			cmd.MetaTriggerID:   sc.TriggerID,
		},
	}
}

// webhookMessage converts an envelope to the payload posted to a response_url.
func webhookMessage(env *cmd.Envelope) *slack.WebhookMessage {
	msg := &slack.WebhookMessage{
		Text:         env.Text,
		ResponseType: string(env.ResponseType),
	}
	for _, a := range env.Attachments {
		msg.Attachments = append(msg.Attachments, slack.Attachment{Text: a.Text})
	}
	return msg
}
