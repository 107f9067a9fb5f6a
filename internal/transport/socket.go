package transport

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rakesh-kumar-k/jokegen/internal/logging"
)

const socketHandshakeTimeout = 10 * time.Second

// socketSession wraps one live websocket connection. Unlike the push stream,
// a socket is long-lived and shared across turns; it only closes when the
// remote peer goes away, a read fails, or the client tears down.
type socketSession struct {
	conn      *websocket.Conn
	handler   Handler
	logger    logging.Logger
	writeMu   sync.Mutex
	initiated atomic.Bool
	closeOnce sync.Once
}

// DialSocket opens a websocket connection and starts delivering inbound
// frames to the handler. Frames are passed with an empty event name; the
// kind tag lives inside the JSON envelope.
func DialSocket(ctx context.Context, url string, handler Handler, logger logging.Logger) (Session, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	dialer := &websocket.Dialer{HandshakeTimeout: socketHandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	s := &socketSession{
		conn:    conn,
		handler: handler,
		logger:  logger,
	}
	handler.emitOpen()
	go s.readLoop()
	return s, nil
}

func (s *socketSession) Send(payload any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(payload)
}

func (s *socketSession) Close() {
	s.initiated.Store(true)
	s.shutdown(nil)
}

func (s *socketSession) readLoop() {
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.shutdown(err)
			return
		}
		s.handler.emitEvent("", payload)
	}
}

func (s *socketSession) shutdown(err error) {
	initiated := s.initiated.Load()
	if err != nil && !initiated && !isExpectedClose(err) {
		s.logger.Warn("socket read failed", logging.F("err", err))
		s.handler.emitError(err)
	}
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
		reason := ""
		if err != nil {
			reason = err.Error()
		}
		s.handler.emitClose(CloseInfo{Initiated: initiated, Reason: reason})
	})
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
