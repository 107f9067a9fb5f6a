// Package transport owns the network connections to the joke backend. Two
// variants exist: a unidirectional push stream opened once per turn, and a
// persistent bidirectional socket shared across turns. Both are exposed
// through the same Session contract so the orchestrator never touches a
// concrete transport.
package transport

import "errors"

// ErrSendUnsupported is returned by Send on receive-only sessions.
var ErrSendUnsupported = errors.New("transport: session is receive-only")

// CloseInfo describes why a session ended. Initiated is true only when the
// close was requested by this client.
type CloseInfo struct {
	Initiated bool
	Reason    string
}

// Handler receives session lifecycle callbacks. Events arrive in transport
// delivery order from a single reader goroutine; OnClose fires at most once.
// A client-initiated Close may deliver OnClose concurrently with the reader,
// so handlers must do their own locking.
type Handler struct {
	OnOpen  func()
	OnEvent func(name string, payload []byte)
	OnError func(err error)
	OnClose func(info CloseInfo)
}

func (h Handler) emitOpen() {
	if h.OnOpen != nil {
		h.OnOpen()
	}
}

func (h Handler) emitEvent(name string, payload []byte) {
	if h.OnEvent != nil {
		h.OnEvent(name, payload)
	}
}

func (h Handler) emitError(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

func (h Handler) emitClose(info CloseInfo) {
	if h.OnClose != nil {
		h.OnClose(info)
	}
}

// Session is one live connection to the backend. Close releases the
// underlying handle and is safe to call repeatedly or on an already-closed
// session.
type Session interface {
	Send(payload any) error
	Close()
}
