package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

func newTestServer(t *testing.T) (*httptest.Server, *Game) {
	t.Helper()

	cfg := testConfig()
	game := newGame(cfg, testCatalog())
	go game.run()

	mux := httprouter.New()
	mux.GET("/healthz", serveHealthCheck(cfg, make(chan error, 1)))
	registerQuizGame(cfg, game, mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, game
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil skips frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %q: %v", want, err)
		}
		if msg["type"] == want {
			return msg
		}
	}
}

func TestWebSocketGameFlow(t *testing.T) {
	server, _ := newTestServer(t)

	host := dialWS(t, server)
	if err := host.WriteJSON(map[string]any{"type": "host_join"}); err != nil {
		t.Fatalf("host join: %v", err)
	}
	readUntil(t, host, "lobby_update")

	player := dialWS(t, server)
	if err := player.WriteJSON(map[string]any{"type": "player_join", "nickname": "Alice"}); err != nil {
		t.Fatalf("player join: %v", err)
	}

	joined := readUntil(t, player, "joined")
	if joined["playerId"] != "p1" {
		t.Errorf("playerId = %v, want p1", joined["playerId"])
	}

	if err := host.WriteJSON(map[string]any{"type": "start_game"}); err != nil {
		t.Fatalf("start: %v", err)
	}

	question := readUntil(t, player, "question")
	if question["question"] != "first" {
		t.Errorf("question = %v", question["question"])
	}
	if _, leaked := question["correctIndex"]; leaked {
		t.Error("question frame leaked the correct index")
	}
	readUntil(t, host, "question")

	if err := player.WriteJSON(map[string]any{"type": "submit_answer", "answerIndex": 1}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	count := readUntil(t, host, "answer_count")
	if count["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1", count["count"])
	}

	if err := host.WriteJSON(map[string]any{"type": "next"}); err != nil {
		t.Fatalf("next: %v", err)
	}

	hostReveal := readUntil(t, host, "answer_reveal")
	if _, present := hostReveal["playerResult"]; present {
		t.Error("host reveal carried a personal result")
	}

	playerReveal := readUntil(t, player, "answer_reveal")
	result, ok := playerReveal["playerResult"].(map[string]any)
	if !ok {
		t.Fatal("player reveal missing personal result")
	}
	if result["correct"] != true {
		t.Errorf("correct = %v, want true", result["correct"])
	}
	if result["points"].(float64) < basePoints {
		t.Errorf("points = %v, want at least %d", result["points"], basePoints)
	}
}

func TestWebSocketDropsMalformedFrames(t *testing.T) {
	server, _ := newTestServer(t)

	conn := dialWS(t, server)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The connection must survive: a valid join afterwards still works.
	if err := conn.WriteJSON(map[string]any{"type": "player_join", "nickname": "Bob"}); err != nil {
		t.Fatalf("join after garbage: %v", err)
	}
	readUntil(t, conn, "joined")
}

func TestQRHandler(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/qr")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}
}

func TestHealthCheck(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "Ok\n" {
		t.Errorf("body = %q", body)
	}
}
