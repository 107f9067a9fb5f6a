// Package chat owns the turn state machine and the message log. The
// Orchestrator is the single source of truth for what the user sees; it is
// written against the transport abstraction only and never touches a
// concrete connection type.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rakesh-kumar-k/jokegen/internal/logging"
	"github.com/rakesh-kumar-k/jokegen/internal/transport"
	"github.com/rakesh-kumar-k/jokegen/internal/types"
	"github.com/rakesh-kumar-k/jokegen/internal/wire"
)

// Validation failures surfaced synchronously by Submit. No turn is created
// when one of these is returned.
var (
	ErrEmptyTopic   = errors.New("chat: topic is empty")
	ErrTurnInFlight = errors.New("chat: a turn is already in flight")
	ErrNotConnected = errors.New("chat: not connected")
	ErrClosed       = errors.New("chat: orchestrator is closed")
)

const DefaultReconnectDelay = 3 * time.Second

// Reason strings surfaced when a turn fails without a server-reported
// message.
const (
	reasonConnectionLost = "connection lost"
	reasonStreamEnded    = "stream ended before the final payload"
)

// Fixed status labels for lifecycle milestones.
var (
	statusAccepted      = types.AgentStatus{Agent: "backend", Note: "topic accepted"}
	statusGroupStarted  = types.AgentStatus{Agent: "group", Note: "group chat started"}
	statusGroupFinished = types.AgentStatus{Agent: "group", Note: "group chat finished"}
)

type Variant string

const (
	VariantStream Variant = "sse"
	VariantSocket Variant = "socket"
)

// OpenStreamFunc opens a per-turn push stream for the given topic.
type OpenStreamFunc func(ctx context.Context, topic string, handler transport.Handler) (transport.Session, error)

// DialFunc opens the long-lived socket connection.
type DialFunc func(ctx context.Context, handler transport.Handler) (transport.Session, error)

type Config struct {
	Variant        Variant
	OpenStream     OpenStreamFunc // required for VariantStream
	Dial           DialFunc       // required for VariantSocket
	ReconnectDelay time.Duration  // socket variant; DefaultReconnectDelay when zero
	Logger         logging.Logger
}

// Snapshot is an immutable view of the orchestrator state handed to
// observers. Connection is meaningful only for the socket variant.
type Snapshot struct {
	Messages   []types.ConversationMessage
	Phase      types.TurnPhase
	Agent      *types.AgentStatus
	Connection types.ConnectionState
	Failure    string
}

// CanSubmit reports whether a new turn may start, disregarding connection
// state.
func (s Snapshot) CanSubmit() bool {
	return !s.Phase.Active()
}

// LastJoke returns the content of the most recent assistant message.
func (s Snapshot) LastJoke() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == types.RoleAssistant {
			return s.Messages[i].Content, true
		}
	}
	return "", false
}

type Orchestrator struct {
	variant    Variant
	openStream OpenStreamFunc
	dial       DialFunc
	decoder    *wire.Decoder
	logger     logging.Logger
	recon      *transport.Reconnector

	mu       sync.Mutex
	ctx      context.Context
	messages []types.ConversationMessage
	phase    types.TurnPhase
	agent    *types.AgentStatus
	conn     types.ConnectionState
	failure  string
	session  transport.Session
	turnSeq  int
	closed   bool
	onChange func(Snapshot)
}

func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	o := &Orchestrator{
		variant:    cfg.Variant,
		openStream: cfg.OpenStream,
		dial:       cfg.Dial,
		decoder:    wire.NewDecoder(logger),
		logger:     logger,
		ctx:        context.Background(),
		phase:      types.TurnIdle,
		conn:       types.ConnectionNone,
	}
	if cfg.Variant == VariantSocket {
		o.conn = types.ConnectionDisconnected
		delay := cfg.ReconnectDelay
		if delay <= 0 {
			delay = DefaultReconnectDelay
		}
		o.recon = transport.NewReconnector(delay, o.connect)
	}
	return o
}

// SetOnChange registers the observer invoked with a fresh snapshot after
// every state transition. The callback must not call back into the
// Orchestrator.
func (o *Orchestrator) SetOnChange(fn func(Snapshot)) {
	o.mu.Lock()
	o.onChange = fn
	o.mu.Unlock()
}

// Start records the lifetime context and, for the socket variant, dials the
// initial connection. A failed initial dial is not fatal: the client
// degrades to disconnected and the reconnector keeps trying.
func (o *Orchestrator) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	o.mu.Lock()
	o.ctx = ctx
	o.mu.Unlock()
	if o.variant == VariantSocket {
		o.connect()
	}
}

// Submit starts a new turn for the given topic. It appends the user message
// and transitions to Connecting before any network I/O; the terminal outcome
// arrives asynchronously through the transport callbacks.
func (o *Orchestrator) Submit(topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ErrEmptyTopic
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	if o.phase.Active() {
		o.mu.Unlock()
		return ErrTurnInFlight
	}
	if o.variant == VariantSocket && (o.conn != types.ConnectionConnected || o.session == nil) {
		o.mu.Unlock()
		return ErrNotConnected
	}
	o.turnSeq++
	seq := o.turnSeq
	o.messages = append(o.messages, newMessage(types.RoleUser, topic))
	o.phase = types.TurnConnecting
	o.agent = nil
	o.failure = ""
	session := o.session
	o.mu.Unlock()
	o.notify()

	if o.variant == VariantSocket {
		if err := session.Send(wire.NewGenerateJokeRequest(topic)); err != nil {
			o.logger.Warn("request send failed", logging.F("err", err))
			o.mu.Lock()
			o.failTurnLocked(seq, "send failed: "+err.Error())
			o.mu.Unlock()
			o.notify()
		}
		return nil
	}
	o.openTurnStream(seq, topic)
	return nil
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Close tears the client down: the session is closed, any pending reconnect
// is cancelled, and no further state updates or notifications occur.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	session := o.session
	o.session = nil
	o.mu.Unlock()

	if o.recon != nil {
		o.recon.Stop()
	}
	if session != nil {
		session.Close()
	}
}

// connect dials the socket. Runs on the caller goroutine for the initial
// attempt and on the reconnector's timer goroutine afterwards.
func (o *Orchestrator) connect() {
	o.mu.Lock()
	if o.closed || o.conn == types.ConnectionConnecting || o.conn == types.ConnectionConnected {
		o.mu.Unlock()
		return
	}
	o.conn = types.ConnectionConnecting
	ctx := o.ctx
	o.mu.Unlock()
	o.notify()

	handler := transport.Handler{
		OnOpen:  o.handleSocketOpen,
		OnEvent: func(name string, payload []byte) { o.handleRaw(-1, name, payload) },
		OnError: o.handleSocketError,
		OnClose: o.handleSocketClose,
	}
	session, err := o.dial(ctx, handler)
	if err != nil {
		o.logger.Warn("socket dial failed", logging.F("err", err))
		o.mu.Lock()
		closed := o.closed
		if !closed {
			o.conn = types.ConnectionDisconnected
		}
		o.mu.Unlock()
		o.notify()
		if !closed {
			o.recon.Schedule()
		}
		return
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		session.Close()
		return
	}
	o.session = session
	o.mu.Unlock()
}

// openTurnStream opens the per-turn push stream. seq pins every callback to
// the turn that created the connection.
func (o *Orchestrator) openTurnStream(seq int, topic string) {
	o.mu.Lock()
	ctx := o.ctx
	o.mu.Unlock()

	handler := transport.Handler{
		OnEvent: func(name string, payload []byte) { o.handleRaw(seq, name, payload) },
		OnError: func(err error) { o.handleStreamError(seq, err) },
		OnClose: func(info transport.CloseInfo) { o.handleStreamClose(seq, info) },
	}
	session, err := o.openStream(ctx, topic, handler)
	if err != nil {
		o.logger.Warn("stream open failed", logging.F("err", err))
		o.mu.Lock()
		o.failTurnLocked(seq, "connect failed: "+err.Error())
		o.mu.Unlock()
		o.notify()
		return
	}

	o.mu.Lock()
	stale := o.closed || seq != o.turnSeq || o.phase.Terminal()
	if !stale {
		o.session = session
	}
	o.mu.Unlock()
	if stale {
		session.Close()
	}
}

// handleRaw decodes one raw transport message and applies the resulting
// domain event. seq < 0 means "the current turn" (socket variant, where the
// connection outlives turns).
func (o *Orchestrator) handleRaw(seq int, name string, payload []byte) {
	event, ok := o.decoder.Decode(name, payload)
	if !ok {
		return
	}

	o.mu.Lock()
	if o.closed || !o.turnActiveLocked(seq) {
		// Stale or out-of-turn event; a turn reaches at most one terminal
		// state, everything after it is dropped.
		o.mu.Unlock()
		return
	}

	var release transport.Session
	switch event.Kind {
	case types.EventAccepted:
		o.phase = types.TurnStreaming
		status := statusAccepted
		o.agent = &status
	case types.EventGroupStarted:
		o.phase = types.TurnStreaming
		status := statusGroupStarted
		o.agent = &status
	case types.EventGroupFinished:
		o.phase = types.TurnStreaming
		status := statusGroupFinished
		o.agent = &status
	case types.EventAgentWorking:
		o.phase = types.TurnStreaming
		o.agent = &types.AgentStatus{Agent: event.Agent, Note: event.Agent + " is working"}
	case types.EventFinal:
		o.messages = append(o.messages, newMessage(types.RoleAssistant, event.Content))
		o.phase = types.TurnCompleted
		o.agent = nil
		o.failure = ""
		release = o.releaseTurnSessionLocked()
	case types.EventServerError:
		o.failure = event.Message
		o.phase = types.TurnFailed
		o.agent = nil
		release = o.releaseTurnSessionLocked()
	}
	o.mu.Unlock()

	if release != nil {
		release.Close()
	}
	o.notify()
}

func (o *Orchestrator) handleStreamError(seq int, err error) {
	o.mu.Lock()
	changed := o.failTurnLocked(seq, err.Error())
	o.mu.Unlock()
	if changed {
		o.notify()
	}
}

// handleStreamClose resolves a push stream that ended without a terminal
// event. A clean remote close before the final payload fails the turn
// rather than leaving it stuck in Streaming.
func (o *Orchestrator) handleStreamClose(seq int, info transport.CloseInfo) {
	if info.Initiated {
		return
	}
	reason := info.Reason
	if reason == "" {
		reason = reasonStreamEnded
	}
	o.mu.Lock()
	changed := o.failTurnLocked(seq, reason)
	o.mu.Unlock()
	if changed {
		o.notify()
	}
}

func (o *Orchestrator) handleSocketOpen() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.conn = types.ConnectionConnected
	o.mu.Unlock()
	o.logger.Info("socket connected")
	o.notify()
}

func (o *Orchestrator) handleSocketError(err error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.conn = types.ConnectionErroring
	o.mu.Unlock()
	o.logger.Warn("socket error", logging.F("err", err))
	o.notify()
}

// handleSocketClose reacts to the connection going away. Reconnection never
// resumes an in-flight turn: an active turn fails immediately and the user
// resubmits once reconnected.
func (o *Orchestrator) handleSocketClose(info transport.CloseInfo) {
	o.mu.Lock()
	if o.closed || info.Initiated {
		o.mu.Unlock()
		return
	}
	o.session = nil
	o.conn = types.ConnectionDisconnected
	o.failTurnLocked(-1, reasonConnectionLost)
	o.mu.Unlock()

	o.logger.Info("socket disconnected", logging.F("reason", info.Reason))
	o.notify()
	o.recon.Schedule()
}

// turnActiveLocked reports whether events pinned to seq may still mutate
// turn state. seq < 0 matches whatever turn is current.
func (o *Orchestrator) turnActiveLocked(seq int) bool {
	if seq >= 0 && seq != o.turnSeq {
		return false
	}
	return o.phase.Active()
}

// failTurnLocked moves an active turn to Failed. Returns false when no turn
// was active, keeping the at-most-one-terminal-transition invariant.
func (o *Orchestrator) failTurnLocked(seq int, reason string) bool {
	if o.closed || !o.turnActiveLocked(seq) {
		return false
	}
	o.phase = types.TurnFailed
	o.failure = reason
	o.agent = nil
	if release := o.releaseTurnSessionLocked(); release != nil {
		// Often called from the session's own callback; close on a fresh
		// goroutine so the read loop can unwind.
		go release.Close()
	}
	return true
}

// releaseTurnSessionLocked detaches the per-turn stream session once the
// turn resolves. The socket session is shared across turns and stays put.
func (o *Orchestrator) releaseTurnSessionLocked() transport.Session {
	if o.variant != VariantStream || o.session == nil {
		return nil
	}
	session := o.session
	o.session = nil
	return session
}

func (o *Orchestrator) notify() {
	o.mu.Lock()
	if o.closed || o.onChange == nil {
		o.mu.Unlock()
		return
	}
	fn := o.onChange
	snap := o.snapshotLocked()
	o.mu.Unlock()
	fn(snap)
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	messages := make([]types.ConversationMessage, len(o.messages))
	copy(messages, o.messages)
	var agent *types.AgentStatus
	if o.agent != nil {
		status := *o.agent
		agent = &status
	}
	return Snapshot{
		Messages:   messages,
		Phase:      o.phase,
		Agent:      agent,
		Connection: o.conn,
		Failure:    o.failure,
	}
}

func newMessage(role types.Role, content string) types.ConversationMessage {
	return types.ConversationMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
