package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"quizzy-service/internal/app"
	"quizzy-service/internal/domain"
	"quizzy-service/internal/infra/memory"
)

func TestWebSocketQuizFlow(t *testing.T) {
	service := newWSTestService()
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial leaderboard snapshot arrives on connect.
	typ, _ := readNext(conn, t, "leaderboard")
	if typ != "leaderboard" {
		t.Fatalf("expected leaderboard, got %s", typ)
	}

	writeMsg(conn, t, "start", nil)
	_, question := readNext(conn, t, "question")
	if question["prompt"] == "" {
		t.Fatalf("expected a question prompt, got %+v", question)
	}
	if _, leaked := question["correctIndex"]; leaked {
		t.Fatalf("correct index must not reach clients")
	}

	total := int(question["total"].(float64))
	for i := 0; i < total; i++ {
		writeMsg(conn, t, "select", map[string]any{"option": 0})
		readNext(conn, t, "selected")
		writeMsg(conn, t, "advance", nil)
		if i < total-1 {
			readNext(conn, t, "question")
		} else {
			readNext(conn, t, "completed")
		}
	}

	writeMsg(conn, t, "finish", nil)

	// Expect the result plus the pushed leaderboard update, in either order.
	resultSeen := false
	leaderboardSeen := false
	for i := 0; i < 3 && !(resultSeen && leaderboardSeen); i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "result":
			resultSeen = true
			if int(payload["total"].(float64)) != total {
				t.Fatalf("unexpected result payload: %+v", payload)
			}
			if payload["persisted"] != true {
				t.Fatalf("expected persisted result, got %+v", payload)
			}
		case "leaderboard":
			leaderboardSeen = true
		}
	}
	if !resultSeen || !leaderboardSeen {
		t.Fatalf("expected result and leaderboard, got result=%v leaderboard=%v", resultSeen, leaderboardSeen)
	}
}

func TestWebSocketAdvanceWithoutSelection(t *testing.T) {
	service := newWSTestService()
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readNext(conn, t, "leaderboard")
	writeMsg(conn, t, "start", nil)
	readNext(conn, t, "question")

	writeMsg(conn, t, "advance", nil)
	typ, payload := readNext(conn, t, "error")
	if typ != "error" || payload["message"] == "" {
		t.Fatalf("expected error for advance without selection, got %s %+v", typ, payload)
	}
}

func TestWebSocketRequiresUserID(t *testing.T) {
	service := newWSTestService()
	wsHandler := NewWSHandler(service)

	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without userId, got %d", resp.StatusCode)
	}
}

func writeMsg(conn *websocket.Conn, t *testing.T, typ string, payload map[string]any) {
	t.Helper()
	msg := map[string]any{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s (%+v)", expect, msg.Type, msg.Payload)
	}
	return msg.Type, msg.Payload
}

func newWSTestService() *app.QuizService {
	source := memory.NewStaticQuestionSource([]domain.Question{
		{ID: "q1", Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1},
		{ID: "q2", Prompt: "How many bits in a byte?", Options: []string{"8", "16"}, CorrectIndex: 0},
	})
	questions := memory.NewQuestionRepository(source, time.Minute)
	return app.NewQuizService(questions, memory.NewResultStore(), nil, 2)
}
