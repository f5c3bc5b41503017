package chat

import (
	"strings"
	"testing"
	"time"
)

func TestSendQueuesPayload(t *testing.T) {
	client := &Client{Send: make(chan []byte, 4), Room: "trip1"}

	send(client, outboundPayload{Action: "trip", Room: "trip1", Content: "rendered"})

	select {
	case got := <-client.Send:
		if !strings.Contains(string(got), `"action":"trip"`) {
			t.Fatalf("queued payload = %s", got)
		}
	default:
		t.Fatal("nothing queued")
	}
}

func TestSendDoesNotBlockWhenQueueFull(t *testing.T) {
	// A slow or already-departed client must not stall the join path; the
	// excess payload is dropped, like the hub does on broadcast.
	client := &Client{Send: make(chan []byte, 1), Room: "trip1"}
	client.Send <- []byte("occupied")

	done := make(chan struct{})
	go func() {
		send(client, outboundPayload{Action: "chat", Content: "dropped"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("send blocked on a full queue")
	}

	if got := <-client.Send; string(got) != "occupied" {
		t.Fatalf("queue head = %s, want the original payload", got)
	}
}
