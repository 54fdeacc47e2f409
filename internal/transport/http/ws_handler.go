package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"quiz-royale/internal/app"
	"quiz-royale/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

func NewWSHandler(service *app.QuizService, log logrus.FieldLogger) *WSHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// answerPayload carries the chosen option; null or absent means no selection.
type answerPayload struct {
	Option *int `json:"option"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(message string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: message}}
}

// ServeWS upgrades the request and binds the connection to a fresh play
// session for the wallet in ?address= on network ?chainId=.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	chainID := r.URL.Query().Get("chainId")

	session, err := h.service.Open(r.Context(), address, chainID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidAddress) {
			status = http.StatusBadRequest
		}
		Error(w, status, err.Error())
		return
	}
	sessionID := session.ID()
	log := h.log.WithField("session_id", sessionID)
	defer h.service.Close(context.Background(), sessionID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	// Single writer: gorilla connections allow one concurrent writer.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write error")
				// unblocks ReadJSON so the read loop exits
				_ = conn.Close()
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage{Type: string(ev.Type), Payload: ev.Payload}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if msg, ok := h.handle(r.Context(), sessionID, inbound); !ok {
			if !enqueue(send, msg, writerDone) {
				break
			}
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

// enqueue hands msg to the writer. It reports false once the writer has
// stopped, so callers never block on a dead connection.
func enqueue(send chan<- outboundMessage, msg outboundMessage, writerDone <-chan struct{}) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

// handle applies one inbound message. It returns an error message and false
// when the client should be told about a failure.
func (h *WSHandler) handle(ctx context.Context, sessionID string, inbound inboundMessage) (outboundMessage, bool) {
	switch inbound.Type {
	case "start":
		err := h.service.Start(ctx, sessionID)
		if err != nil && !errors.Is(err, domain.ErrAlreadyClaimed) {
			return errorMessage(err.Error()), false
		}
	case "answer":
		var payload answerPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return errorMessage("invalid answer payload"), false
			}
		}
		sel, err := domain.NewSelection(payload.Option)
		if err != nil {
			return errorMessage(err.Error()), false
		}
		if _, err := h.service.SubmitAnswer(ctx, sessionID, sel); err != nil {
			return errorMessage(err.Error()), false
		}
	default:
		return errorMessage("unsupported message type"), false
	}
	return outboundMessage{}, true
}
