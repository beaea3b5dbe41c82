package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestHubPublishReachesClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/ws/leaderboard", HandleWS(hub, ""))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/leaderboard"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("клиент не зарегистрирован")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Publish("leader_change", map[string]string{"user_id": "U1"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(msg, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Type != "leader_change" || ev.Data["user_id"] != "U1" {
		t.Fatalf("неожиданное событие: %s", msg)
	}
}

func TestHubUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := &Client{Send: make(chan []byte, 1), hub: hub}
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)
	if hub.Count() != 0 {
		t.Fatalf("Count = %d", hub.Count())
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	c := &Client{Send: make(chan []byte), hub: hub}
	hub.Register(c)
	hub.Publish("tick", nil)
	if hub.Count() != 0 {
		t.Fatalf("медленный клиент должен быть отключён")
	}
}
