package chat

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{
		Send: make(chan []byte, 10),
		Room: "trip1",
	}

	hub.register <- client

	msg := outboundPayload{Action: "chat", Content: "hello test"}
	data, _ := json.Marshal(msg)
	hub.broadcast <- broadcastMsg{Room: "trip1", Data: data}

	select {
	case got := <-client.Send:
		if string(got) != string(data) {
			t.Fatalf("expected %s, got %s", data, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	hub.unregister <- client
}

func TestHubBroadcastIsRoomScoped(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := &Client{Send: make(chan []byte, 1), Room: "tripA"}
	b := &Client{Send: make(chan []byte, 1), Room: "tripB"}
	hub.register <- a
	hub.register <- b

	hub.broadcast <- broadcastMsg{Room: "tripA", Data: []byte("only-a")}

	select {
	case got := <-a.Send:
		if string(got) != "only-a" {
			t.Fatalf("got %s", got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for room A message")
	}

	select {
	case got := <-b.Send:
		t.Fatalf("room B received %s", got)
	case <-time.After(50 * time.Millisecond):
	}

	hub.unregister <- a
	hub.unregister <- b
}
