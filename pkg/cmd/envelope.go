package cmd

// ResponseType controls who sees a reply.
type ResponseType string

const (
	Ephemeral ResponseType = "ephemeral"
	InChannel ResponseType = "in_channel"
)

// Attachment is a secondary block of text under the main reply.
type Attachment struct {
	Text string `json:"text"`
}

// Envelope is the reply a command hands back to the transport. Its JSON form
// is the wire contract with Slack.
type Envelope struct {
	Text         string       `json:"text"`
	Attachments  []Attachment `json:"attachments,omitempty"`
	ResponseType ResponseType `json:"response_type"`
}

// Responder builds envelopes. Every command receives the same value through
// its Invocation.
type Responder struct{}

// Ephemeral returns a reply only the invoking user sees.
func (Responder) Ephemeral(text string, attachments ...string) *Envelope {
	return newEnvelope(Ephemeral, text, attachments)
}

// InChannel returns a reply visible to the whole channel.
func (Responder) InChannel(text string, attachments ...string) *Envelope {
	return newEnvelope(InChannel, text, attachments)
}

func newEnvelope(rt ResponseType, text string, attachments []string) *Envelope {
	env := &Envelope{Text: text, ResponseType: rt}
	for _, a := range attachments {
		env.Attachments = append(env.Attachments, Attachment{Text: a})
	}
	return env
}
