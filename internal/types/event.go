package types

// EventKind identifies a decoded, transport-agnostic server notification.
type EventKind string

const (
	EventAccepted      EventKind = "accepted"
	EventGroupStarted  EventKind = "group_started"
	EventGroupFinished EventKind = "group_finished"
	EventAgentWorking  EventKind = "agent_working"
	EventFinal         EventKind = "final"
	EventServerError   EventKind = "server_error"
)

// Event is one decoded domain event. Only the fields relevant to Kind are
// populated: Agent and Content for EventAgentWorking, Content for EventFinal,
// Message for EventServerError.
type Event struct {
	Kind    EventKind
	Agent   string
	Content string
	Message string
}
