package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rakesh-kumar-k/jokegen/internal/logging"
)

const defaultEventName = "message"

// streamSession reads a server-sent event stream. One session serves exactly
// one turn; the caller closes it after the terminal event.
type streamSession struct {
	cancel    context.CancelFunc
	body      io.ReadCloser
	handler   Handler
	logger    logging.Logger
	initiated atomic.Bool
	closeOnce sync.Once
}

// OpenStream connects to an SSE endpoint and starts delivering events to the
// handler. The returned session cannot Send. A non-2xx response is an open
// error and produces no session.
func OpenStream(ctx context.Context, url string, handler Handler, logger logging.Logger) (Session, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	s := &streamSession{
		cancel:  cancel,
		body:    resp.Body,
		handler: handler,
		logger:  logger,
	}
	handler.emitOpen()
	go s.readLoop()
	return s, nil
}

func (s *streamSession) Send(payload any) error {
	return ErrSendUnsupported
}

func (s *streamSession) Close() {
	s.initiated.Store(true)
	s.cancel()
	_ = s.body.Close()
}

func (s *streamSession) readLoop() {
	defer s.body.Close()

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	eventName := defaultEventName
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if len(dataLines) > 0 {
				payload := strings.Join(dataLines, "\n")
				dataLines = dataLines[:0]
				s.handler.emitEvent(eventName, []byte(payload))
			}
			eventName = defaultEventName
			continue
		}
		switch {
		case strings.HasPrefix(line, ":"):
			// keep-alive comment
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimSpace(line[len("data:"):]))
		}
	}
	s.finish(scanner.Err())
}

func (s *streamSession) finish(err error) {
	initiated := s.initiated.Load()
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	if err != nil && !initiated {
		s.logger.Warn("stream read failed", logging.F("err", err))
		s.handler.emitError(err)
	}
	s.closeOnce.Do(func() {
		s.handler.emitClose(CloseInfo{Initiated: initiated, Reason: reason})
	})
}
