package models

// Message is one chat message in a trip's room.
type Message struct {
	MessageID string `json:"messageid,omitempty" bson:"messageid,omitempty"`
	Room      string `json:"room" bson:"room"`
	SenderID  string `json:"senderId" bson:"senderId"`
	Role      string `json:"role" bson:"role"` // "user" | "assistant" | "system"
	Content   string `json:"content,omitempty" bson:"content,omitempty"`
	Timestamp int64  `json:"timestamp" bson:"timestamp"`
}
