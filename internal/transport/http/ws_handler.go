package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"quizzy-service/internal/app"
	"quizzy-service/internal/domain"
)

// WSHandler drives the interactive quiz flow over a websocket: the client
// starts a session, stages selections, advances, and finishes, while
// leaderboard snapshots are pushed whenever any user completes an attempt.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
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

type selectPayload struct {
	Option int `json:"option"`
}

// questionView strips the correct index before anything reaches a client.
type questionView struct {
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
	Position int      `json:"position"`
	Total    int      `json:"total"`
}

type resultView struct {
	Score     int    `json:"score"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
	Persisted bool   `json:"persisted"`
	Warning   string `json:"warning,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and wires the connection into the quiz use
// cases. Identity arrives as the userId query parameter; credential
// checking happens upstream of this service.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("userId")
	if ownerID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.service.Subscribe(r.Context(), 0)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer h.service.Abandon(r.Context(), ownerID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
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
		h.dispatch(r, ownerID, inbound, send)
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, ownerID string, inbound inboundMessage, send chan<- outboundMessage[any]) {
	ctx := r.Context()
	switch inbound.Type {
	case "start":
		if _, err := h.service.Start(ctx, ownerID); err != nil {
			send <- errorMessage(err)
			return
		}
		h.sendQuestion(ctx, ownerID, send)
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid select payload"}}
			return
		}
		progress, err := h.service.Select(ctx, ownerID, payload.Option)
		if err != nil {
			send <- errorMessage(err)
			return
		}
		send <- outboundMessage[any]{Type: "selected", Payload: progress}
	case "advance":
		progress, err := h.service.Advance(ctx, ownerID)
		if err != nil {
			send <- errorMessage(err)
			return
		}
		if progress.Completed {
			send <- outboundMessage[any]{Type: "completed", Payload: progress}
			return
		}
		h.sendQuestion(ctx, ownerID, send)
	case "finish":
		outcome, err := h.service.Finish(ctx, ownerID)
		if err != nil {
			send <- errorMessage(err)
			return
		}
		view := resultView{
			Score:     outcome.Record.Score,
			Total:     outcome.Record.Total,
			Percent:   outcome.Record.Percent(),
			Persisted: outcome.Warning == nil,
		}
		if outcome.Warning != nil {
			view.Warning = "your score could not be saved"
		}
		send <- outboundMessage[any]{Type: "result", Payload: view}
	case "abandon":
		h.service.Abandon(ctx, ownerID)
		send <- outboundMessage[any]{Type: "abandoned", Payload: struct{}{}}
	default:
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
	}
}

func (h *WSHandler) sendQuestion(ctx context.Context, ownerID string, send chan<- outboundMessage[any]) {
	question, progress, err := h.service.CurrentQuestion(ctx, ownerID)
	if err != nil {
		send <- errorMessage(err)
		return
	}
	send <- outboundMessage[any]{Type: "question", Payload: questionView{
		Prompt:   question.Prompt,
		Options:  question.Options,
		Position: progress.Position,
		Total:    progress.Total,
	}}
}

func errorMessage(err error) outboundMessage[any] {
	msg := err.Error()
	if errors.Is(err, domain.ErrSourceUnavailable) {
		msg = "questions unavailable, try again"
	}
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
