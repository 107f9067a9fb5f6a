package types

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationMessage is one entry in the append-only message log. Messages
// are immutable once created.
type ConversationMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AgentStatus reports which backend agent is active and what it is doing.
// It only exists while a turn is streaming and is replaced wholesale on each
// status-bearing event.
type AgentStatus struct {
	Agent string `json:"agent"`
	Note  string `json:"note"`
}

type TurnPhase string

const (
	TurnIdle       TurnPhase = "idle"
	TurnConnecting TurnPhase = "connecting"
	TurnStreaming  TurnPhase = "streaming"
	TurnCompleted  TurnPhase = "completed"
	TurnFailed     TurnPhase = "failed"
)

// Terminal reports whether the phase ends a turn.
func (p TurnPhase) Terminal() bool {
	return p == TurnCompleted || p == TurnFailed
}

// Active reports whether a turn is in flight. A new turn may not start while
// the current one is active.
func (p TurnPhase) Active() bool {
	return p == TurnConnecting || p == TurnStreaming
}

// ConnectionState tracks the long-lived socket connection. It is independent
// of TurnPhase: the connection can be connected while no turn is active. The
// push-stream variant does not manage a persistent connection and keeps the
// zero value.
type ConnectionState string

const (
	ConnectionNone         ConnectionState = ""
	ConnectionDisconnected ConnectionState = "disconnected"
	ConnectionConnecting   ConnectionState = "connecting"
	ConnectionConnected    ConnectionState = "connected"
	ConnectionErroring     ConnectionState = "erroring"
)
