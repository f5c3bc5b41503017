package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"tripchat/db"
	"tripchat/middleware"
	"tripchat/models"
	"tripchat/mq"
	"tripchat/rdx"
	"tripchat/utils"
	"tripchat/workflow"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	historyLimit  = 30
	assistantID   = "系統"
	engineTimeout = 60 * time.Second
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// inboundPayload is what clients send over the socket.
type inboundPayload struct {
	Action  string `json:"action"` // "chat"
	Content string `json:"content,omitempty"`
}

// outboundPayload is what the room receives.
type outboundPayload struct {
	Action    string `json:"action"` // "chat", "ai_response", "trip"
	ID        string `json:"id,omitempty"`
	Room      string `json:"room,omitempty"`
	SenderID  string `json:"senderId,omitempty"`
	Content   string `json:"content,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// WebSocketHandler upgrades the connection, replays recent history, renders
// the current itinerary to the newcomer, and feeds inbound messages through
// the workflow engine.
func WebSocketHandler(hub *Hub, engine *workflow.Engine) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room := ps.ByName("room")

		token := r.URL.Query().Get("token")
		if token == "" {
			token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		}
		claims, err := middleware.ValidateJWT("Bearer " + token)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}

		client := &Client{
			Send:   make(chan []byte, 256),
			Room:   room,
			UserID: claims.UserID,
		}

		// Replay fills the buffered send queue before the client is
		// registered, so the hub cannot close the channel underneath it.
		replayOnJoin(client, engine)

		hub.register <- client
		go writePump(conn, client)
		go readPump(conn, client, hub, engine)
	}
}

// replayOnJoin sends the last messages oldest first, then the rendered trip.
func replayOnJoin(client *Client, engine *workflow.Engine) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(historyLimit)

	cur, err := db.MessagesCollection.Find(ctx, bson.M{"room": client.Room}, opts)
	if err != nil {
		log.Println("history find:", err)
	} else {
		defer cur.Close(ctx)
		var history []models.Message
		if err := cur.All(ctx, &history); err != nil {
			log.Println("history decode:", err)
		} else {
			for i := len(history) - 1; i >= 0; i-- {
				m := history[i]
				action := "chat"
				if m.Role == "assistant" {
					action = "ai_response"
				}
				send(client, outboundPayload{
					Action:    action,
					ID:        m.MessageID,
					Room:      m.Room,
					SenderID:  m.SenderID,
					Content:   m.Content,
					Timestamp: m.Timestamp,
				})
			}
		}
	}

	rendered, err := engine.Store.Render(ctx, client.Room)
	if err != nil {
		return
	}
	mq.Emit(ctx, mq.Event{Name: mq.EventTripRendered, TripID: client.Room, UserID: client.UserID})
	send(client, outboundPayload{
		Action:    "trip",
		Room:      client.Room,
		SenderID:  assistantID,
		Content:   rendered,
		Timestamp: time.Now().Unix(),
	})
}

// send queues one payload without blocking; a full queue drops the message,
// the same policy the hub applies on broadcast.
func send(client *Client, out outboundPayload) {
	data, err := json.Marshal(out)
	if err != nil {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

func writePump(conn *websocket.Conn, c *Client) {
	defer conn.Close()
	for msg := range c.Send {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

func readPump(conn *websocket.Conn, c *Client, hub *Hub, engine *workflow.Engine) {
	defer func() {
		engine.EndSession(c.Room, c.UserID)
		hub.unregister <- c
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var in inboundPayload
		if err := json.Unmarshal(raw, &in); err != nil {
			log.Println("invalid payload:", err)
			continue
		}
		if in.Action != "chat" || strings.TrimSpace(in.Content) == "" {
			continue
		}

		msg := models.Message{
			MessageID: utils.NewID(),
			Room:      c.Room,
			SenderID:  c.UserID,
			Role:      "user",
			Content:   in.Content,
			Timestamp: time.Now().Unix(),
		}
		rdx.BufferMessage(msg)

		broadcastPayload(hub, c.Room, outboundPayload{
			Action:    "chat",
			ID:        msg.MessageID,
			Room:      msg.Room,
			SenderID:  msg.SenderID,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})

		// the workflow runs inline so one user's replies stay sequential
		ctx, cancel := context.WithTimeout(context.Background(), engineTimeout)
		replies := engine.HandleMessage(ctx, c.Room, c.UserID, in.Content)
		cancel()

		for _, reply := range replies {
			am := models.Message{
				MessageID: utils.NewID(),
				Room:      c.Room,
				SenderID:  assistantID,
				Role:      "assistant",
				Content:   reply,
				Timestamp: time.Now().Unix(),
			}
			rdx.BufferMessage(am)
			broadcastPayload(hub, c.Room, outboundPayload{
				Action:    "ai_response",
				ID:        am.MessageID,
				Room:      am.Room,
				SenderID:  am.SenderID,
				Content:   am.Content,
				Timestamp: am.Timestamp,
			})
		}
	}
}

func broadcastPayload(hub *Hub, room string, out outboundPayload) {
	if data, err := json.Marshal(out); err == nil {
		hub.Broadcast(room, data)
	}
}
