package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		id:     "test",
		remote: "127.0.0.1:0",
		hub:    hub,
		send:   make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := testHub()

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}
	if _, ok := <-c1.send; ok {
		t.Error("expected send channel closed after unregister")
	}

	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := testHub()
	c := mockClient(hub)
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c) // must not close twice

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := testHub()

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	hub.Broadcast(NewMessage("shopping", "add_item", "list-1", map[string]any{"items": float64(1)}))

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "shopping_add_item" {
				t.Errorf("expected type shopping_add_item, got %s", got.Type)
			}
			if got.ID != "list-1" {
				t.Errorf("expected id list-1, got %s", got.ID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}
}

func TestBroadcastEmptyHub(t *testing.T) {
	testHub().Broadcast(NewMessage("shopping", "clear_history", "", nil))
}

func TestBroadcastEvictsSlowClient(t *testing.T) {
	hub := testHub()

	slow := mockClient(hub)
	fast := mockClient(hub)
	hub.Register(slow)
	hub.Register(fast)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(NewMessage("test", "fill", "", nil))
		<-fast.send
	}
	hub.Broadcast(NewMessage("test", "overflow", "", nil))

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected slow client evicted, got %d clients", got)
	}

	// Buffered messages are still delivered before the close.
	count := 0
	for range slow.send {
		count++
	}
	if count != sendBufferSize {
		t.Errorf("expected %d buffered messages, got %d", sendBufferSize, count)
	}

	select {
	case data := <-fast.send:
		var got Message
		json.Unmarshal(data, &got)
		if got.Action != "overflow" {
			t.Errorf("fast client got %q, want overflow", got.Action)
		}
	default:
		t.Error("fast client did not receive overflow message")
	}
}

func TestCloseAll(t *testing.T) {
	hub := testHub()
	clients := []*Client{mockClient(hub), mockClient(hub), mockClient(hub)}
	for _, c := range clients {
		hub.Register(c)
	}

	hub.CloseAll()

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
	for i, c := range clients {
		if _, ok := <-c.send; ok {
			t.Errorf("client %d: send channel still open", i)
		}
	}
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("backup", "running", "", nil)
	if msg.Type != "backup_running" {
		t.Errorf("expected type backup_running, got %s", msg.Type)
	}
	if msg.Entity != "backup" || msg.Action != "running" {
		t.Errorf("unexpected entity/action %s/%s", msg.Entity, msg.Action)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := testHub()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Broadcast(NewMessage("test", "concurrent", "", nil))
			for {
				select {
				case _, ok := <-c.send:
					if !ok {
						return // evicted
					}
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
