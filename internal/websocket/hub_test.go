package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/pawlog/internal/auth"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, sendBufferSize),
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return got
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
	return Message{}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c1, c2 := mockClient(hub), mockClient(hub)

	hub.Register(c1)
	hub.Register(c2)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)
	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())
	c1, c2 := mockClient(hub), mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)
	defer hub.Unregister(c1)
	defer hub.Unregister(c2)

	hub.Broadcast(NewMessage("practice_logs", ActionCreated, 42))

	for _, c := range []*Client{c1, c2} {
		got := receive(t, c)
		if got.Type != "practice_logs_created" {
			t.Errorf("type = %s, want practice_logs_created", got.Type)
		}
		if got.ID != 42 || got.Entity != "practice_logs" || got.Action != ActionCreated {
			t.Errorf("message = %+v", got)
		}
	}
}

func TestNotifyCarriesUser(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub)
	hub.Register(c)
	defer hub.Unregister(c)

	ctx := auth.WithUser(context.Background(), "Sam")
	hub.Notify(ctx, "milestones", ActionCompleted, 3)

	got := receive(t, c)
	if got.Type != "milestones_completed" || got.By != "Sam" {
		t.Errorf("message = %+v", got)
	}
	if got.At.IsZero() {
		t.Error("message should be timestamped")
	}
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	hub.Broadcast(NewMessage("commands", ActionDeleted, 1))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub)
	hub.Register(c)
	defer hub.Unregister(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(NewMessage("potty_logs", ActionCreated, int64(i)))
	}
	// dropped, must not block
	hub.Broadcast(NewMessage("potty_logs", ActionCreated, 999))

	if got := len(c.send); got != sendBufferSize {
		t.Errorf("buffered %d messages, want %d", got, sendBufferSize)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Broadcast(NewMessage("nap_logs", ActionUpdated, 0))
			hub.Unregister(c)
		}()
	}
	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func TestHandleWebSocket(t *testing.T) {
	hub := NewHub(slog.Default())
	srv := httptest.NewServer(HandleWebSocket(hub))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(ws.StatusNormalClosure, "")

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Broadcast(NewMessage("appointments", ActionCreated, 7))

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "appointments_created" || got.ID != 7 {
		t.Errorf("message = %+v", got)
	}
}

func TestEntityFilter(t *testing.T) {
	hub := NewHub(slog.Default())
	potty := &Client{hub: hub, send: make(chan []byte, sendBufferSize)}
	potty.entities = map[string]bool{"potty_logs": true}
	hub.Register(potty)
	defer hub.Unregister(potty)

	hub.Broadcast(NewMessage("commands", ActionUpdated, 1))
	hub.Broadcast(NewMessage("potty_logs", ActionCreated, 2))
	hub.Broadcast(NewMessage(EntityAll, ActionRestored, 0))

	if got := receive(t, potty); got.Entity != "potty_logs" {
		t.Errorf("first message = %+v, want potty_logs", got)
	}
	if got := receive(t, potty); got.Entity != EntityAll {
		t.Errorf("second message = %+v, want all", got)
	}
	if n := len(potty.send); n != 0 {
		t.Errorf("%d unexpected messages queued", n)
	}
}

func TestNewClientEntities(t *testing.T) {
	hub := NewHub(slog.Default())
	tests := []struct {
		in     []string
		entity string
		want   bool
	}{
		{nil, "commands", true},
		{[]string{""}, "commands", true},
		{[]string{" commands ", "fear_logs"}, "commands", true},
		{[]string{"commands"}, "fear_logs", false},
		{[]string{"commands"}, EntityBackup, true},
	}
	for _, tt := range tests {
		if got := NewClient(hub, nil, tt.in).wants(tt.entity); got != tt.want {
			t.Errorf("NewClient(%q).wants(%q) = %v, want %v", tt.in, tt.entity, got, tt.want)
		}
	}
}
