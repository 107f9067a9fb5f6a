// Package wire decodes raw transport payloads into domain events. Both
// transports carry the same payload shapes; they differ only in where the
// kind tag lives. The push stream names the kind at the transport level
// (the SSE event name), while the socket wraps every frame in a JSON
// envelope with a "type" field.
package wire

import (
	"encoding/json"
	"strings"

	"github.com/rakesh-kumar-k/jokegen/internal/logging"
	"github.com/rakesh-kumar-k/jokegen/internal/types"
)

// Kind tags shared by both transports.
const (
	KindStatus       = "status"
	KindAgentMessage = "agent_message"
	KindData         = "data"
	KindError        = "error"
)

// Lifecycle steps carried by status payloads.
const (
	StepAccepted   = "accepted"
	StepGroupStart = "group:start"
	StepGroupDone  = "group:done"
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decoder maps raw transport messages to typed domain events. Anything it
// cannot classify is discarded: malformed JSON is logged at debug, unknown
// kinds and shapes are dropped silently so newer servers do not break older
// clients. Decode never panics past its boundary.
type Decoder struct {
	logger logging.Logger
}

func NewDecoder(logger logging.Logger) *Decoder {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Decoder{logger: logger}
}

// Decode turns one raw message into at most one domain event. name is the
// transport-level event name when the transport carries one; socket frames
// pass name == "" and are unwrapped from their envelope first.
func (d *Decoder) Decode(name string, payload []byte) (types.Event, bool) {
	if name == "" {
		var env envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			d.logger.Debug("discarding malformed frame", logging.F("err", err))
			return types.Event{}, false
		}
		return d.decodeKind(env.Type, env.Data)
	}
	return d.decodeKind(name, payload)
}

func (d *Decoder) decodeKind(kind string, payload []byte) (types.Event, bool) {
	switch kind {
	case KindStatus:
		var body struct {
			Step string `json:"step"`
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			d.logger.Debug("discarding malformed status payload", logging.F("err", err))
			return types.Event{}, false
		}
		switch body.Step {
		case StepAccepted:
			return types.Event{Kind: types.EventAccepted}, true
		case StepGroupStart:
			return types.Event{Kind: types.EventGroupStarted}, true
		case StepGroupDone:
			return types.Event{Kind: types.EventGroupFinished}, true
		}
		return types.Event{}, false
	case KindAgentMessage:
		var body struct {
			Agent   *string `json:"agent"`
			Content *string `json:"content"`
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			d.logger.Debug("discarding malformed agent_message payload", logging.F("err", err))
			return types.Event{}, false
		}
		if body.Agent == nil || body.Content == nil || strings.TrimSpace(*body.Agent) == "" {
			return types.Event{}, false
		}
		return types.Event{Kind: types.EventAgentWorking, Agent: *body.Agent, Content: *body.Content}, true
	case KindData:
		var body struct {
			Final *string `json:"final"`
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			d.logger.Debug("discarding malformed data payload", logging.F("err", err))
			return types.Event{}, false
		}
		if body.Final == nil {
			return types.Event{}, false
		}
		return types.Event{Kind: types.EventFinal, Content: *body.Final}, true
	case KindError:
		var body struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload, &body); err != nil {
			d.logger.Debug("discarding malformed error payload", logging.F("err", err))
			return types.Event{}, false
		}
		if strings.TrimSpace(body.Message) == "" {
			body.Message = "server error"
		}
		return types.Event{Kind: types.EventServerError, Message: body.Message}, true
	}
	return types.Event{}, false
}
