package cmd

// Body is the part of the inbound payload the router reads.
type Body struct {
	Token string
	Text  string
}

// Event is one inbound command request. The router sets Args on the same
// value it is given; Meta belongs to the transport and is never touched.
type Event struct {
	Body Body
	Args Args
	Meta map[string]any
}

// MetaString returns a string field from Meta, or "" when missing.
func (e *Event) MetaString(key string) string {
	s, _ := e.Meta[key].(string)
	return s
}

// Result is the terminal outcome of routing an event. Failure is set when the
// router rejected the request before dispatch; otherwise Err and Envelope are
// exactly what the command passed to Done.
type Result struct {
	Failure  string
	Err      error
	Envelope *Envelope
}

// Failed reports whether the request was rejected by the router.
func (r Result) Failed() bool {
	return r.Failure != ""
}

// Meta keys set by the bundled transports.
const (
	MetaUserID      = "user_id"
	MetaUserName    = "user_name"
	MetaChannelID   = "channel_id"
	MetaChannelName = "channel_name"
	MetaTeamID      = "team_id"
	MetaTeamDomain  = "team_domain"
	MetaCommand     = "command"
	MetaResponseURL = "response_url"
	MetaTriggerID   = "trigger_id"
	MetaTransport   = "transport"
)
