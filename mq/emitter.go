package mq

import (
	"context"
	"encoding/json"
	"log"

	"tripchat/rdx"
)

// Event names emitted by the workflow.
const (
	EventTripRendered            = "trip_rendered"
	EventRecommendationPresented = "recommendation_presented"
	EventMutationApplied         = "mutation_applied"
	EventMutationFailed          = "mutation_failed"
)

const channel = "trip-events"

// Event is one named workflow event scoped to a trip room.
type Event struct {
	Name   string `json:"name"`
	TripID string `json:"trip_id"`
	UserID string `json:"user_id,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Emit publishes a workflow event to the Redis trip-events channel.
// Failures are logged and swallowed; eventing never blocks a mutation.
func Emit(ctx context.Context, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event: %v", err)
		return
	}
	if err := rdx.Conn.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish event to Redis: %v", err)
	}
}

// StartEventLogger subscribes to the trip-events channel and logs every
// event. Other processes (analytics, push relays) subscribe the same way.
func StartEventLogger() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, channel)
	ch := sub.Channel()

	log.Println("[EventLogger] Listening for trip events...")

	for msg := range ch {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("[EventLogger] Failed to parse event: %v", err)
			continue
		}
		log.Printf("[EventLogger] %s trip=%s user=%s %s", ev.Name, ev.TripID, ev.UserID, ev.Detail)
	}
}
