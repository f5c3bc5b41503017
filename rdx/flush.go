package rdx

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"tripchat/db"
	"tripchat/globals"
	"tripchat/models"
)

func ctx() context.Context { return globals.Ctx }

// BufferMessage appends a chat message to the room's Redis list. Messages
// are moved to MongoDB in bulk by FlushMessages.
func BufferMessage(m models.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return Conn.RPush(ctx(), "chat:"+m.Room+":messages", data).Err()
}

// FlushMessages moves buffered chat messages from Redis to MongoDB in bulk.
func FlushMessages() {
	ticker := time.NewTicker(30 * time.Second)
	for range ticker.C {
		keys, err := Conn.Keys(ctx(), "chat:*:messages").Result()
		if err != nil {
			log.Println("Redis scan error:", err)
			continue
		}
		for _, key := range keys {
			msgs, err := Conn.LRange(ctx(), key, 0, -1).Result()
			if err != nil {
				log.Println("Redis LRange error:", err)
				continue
			}
			if len(msgs) == 0 {
				continue
			}
			var bulk []interface{}
			for _, mStr := range msgs {
				var m models.Message
				if err := json.Unmarshal([]byte(mStr), &m); err != nil {
					log.Println("JSON unmarshal error:", err)
					continue
				}
				bulk = append(bulk, m)
			}
			if len(bulk) > 0 {
				if _, err := db.MessagesCollection.InsertMany(ctx(), bulk); err != nil {
					log.Println("MongoDB InsertMany error:", err)
					continue
				}
				Conn.Del(ctx(), key)
			}
		}
	}
}
