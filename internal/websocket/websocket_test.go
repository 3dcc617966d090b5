package websocket

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHubBroadcastToGame(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	host := &Client{GameID: "g1", Role: "host", Send: make(chan OutgoingMessage, 1), Hub: hub}
	guest := &Client{GameID: "g1", Role: "guest", Send: make(chan OutgoingMessage, 1), Hub: hub}

	hub.register <- host
	hub.register <- guest

	msg := OutgoingMessage{
		Event: "game_state",
		Data:  map[string]interface{}{"state": "playing"},
	}

	hub.BroadcastToGame("g1", msg)

	time.Sleep(20 * time.Millisecond)

	m1 := <-host.Send
	m2 := <-guest.Send

	assert.Equal(t, "game_state", m1.Event)
	assert.Equal(t, "game_state", m2.Event)
}

func TestHubRoomsAreIsolated(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c1 := &Client{GameID: "g1", Role: "host", Send: make(chan OutgoingMessage, 1), Hub: hub}
	c2 := &Client{GameID: "g2", Role: "host", Send: make(chan OutgoingMessage, 1), Hub: hub}

	hub.register <- c1
	hub.register <- c2

	hub.BroadcastToGame("g1", OutgoingMessage{Event: "game_state"})

	time.Sleep(20 * time.Millisecond)

	recv := <-c1.Send
	assert.Equal(t, "game_state", recv.Event)

	// 另一局不该收到任何东西
	select {
	case <-c2.Send:
		assert.Fail(t, "g2 should NOT receive g1 broadcast")
	default:
		// success
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &Client{
		GameID: "g1",
		Role:   "host",
		Send:   make(chan OutgoingMessage, 1),
		Hub:    hub,
	}

	hub.register <- c
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, 1, hub.ViewerCount("g1"))

	hub.unregister <- c
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, 0, hub.ViewerCount("g1"))
}

func TestHubViewerCallbacks(t *testing.T) {
	hub := NewHub()

	var first, last atomic.Int32
	hub.OnFirstViewer = func(gameID string) {
		assert.Equal(t, "g1", gameID)
		first.Add(1)
	}
	hub.OnLastViewer = func(gameID string) {
		assert.Equal(t, "g1", gameID)
		last.Add(1)
	}
	go hub.Run()

	host := &Client{GameID: "g1", Role: "host", Send: make(chan OutgoingMessage, 1), Hub: hub}
	guest := &Client{GameID: "g1", Role: "guest", Send: make(chan OutgoingMessage, 1), Hub: hub}

	hub.register <- host
	hub.register <- guest
	time.Sleep(10 * time.Millisecond)

	// 只有第一个进房的触发回调
	assert.Equal(t, int32(1), first.Load())
	assert.Equal(t, int32(0), last.Load())

	hub.unregister <- host
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), last.Load())

	hub.unregister <- guest
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), last.Load())
}

func TestHubIncomingForwarded(t *testing.T) {
	hub := NewHub()

	got := make(chan IncomingMessage, 1)
	hub.OnIncoming = func(msg IncomingMessage) {
		got <- msg
	}
	go hub.Run()

	hub.incoming <- IncomingMessage{
		GameID: "g1",
		Role:   "guest",
		Event:  "player_action",
		Action: "hit",
	}

	select {
	case msg := <-got:
		assert.Equal(t, "g1", msg.GameID)
		assert.Equal(t, "guest", msg.Role)
		assert.Equal(t, "hit", msg.Action)
	case <-time.After(time.Second):
		t.Fatalf("incoming message was not forwarded")
	}
}

func TestHubSlowClientDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// 塞满缓冲，后面的广播应被丢弃而不是卡死 Hub
	c := &Client{GameID: "g1", Role: "host", Send: make(chan OutgoingMessage, 1), Hub: hub}
	hub.register <- c
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastToGame("g1", OutgoingMessage{Event: "one"})
	hub.BroadcastToGame("g1", OutgoingMessage{Event: "two"})
	hub.BroadcastToGame("g1", OutgoingMessage{Event: "three"})

	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, "one", (<-c.Send).Event)
	select {
	case <-c.Send:
		assert.Fail(t, "overflow messages should be dropped")
	default:
	}
}

func BenchmarkHubBroadcastToGame(b *testing.B) {
	hub := NewHub()
	go hub.Run()

	// 所有 Send 都必须有人接收，否则消息全走 default 丢弃分支
	c1 := &Client{GameID: "g1", Role: "host", Send: make(chan OutgoingMessage, 1024), Hub: hub}
	c2 := &Client{GameID: "g1", Role: "guest", Send: make(chan OutgoingMessage, 1024), Hub: hub}

	go func() {
		for range c1.Send {
		}
	}()
	go func() {
		for range c2.Send {
		}
	}()

	hub.register <- c1
	hub.register <- c2

	b.ResetTimer()
	msg := OutgoingMessage{Event: "game_state", Data: nil}

	for i := 0; i < b.N; i++ {
		hub.BroadcastToGame("g1", msg)
	}

	time.Sleep(50 * time.Millisecond)
}
