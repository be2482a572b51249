package messages

import (
	"encoding/json"

	"github.com/cbodonnell/wordfall/pkg/repositories/models"
)

const (
	// MessageBufferSize represents the maximum size of a decompressed message
	MessageBufferSize = 64 * 1024
)

type MessageType string

// Message types
const (
	MessageTypeClientPing        MessageType = "ping"
	MessageTypeServerPong        MessageType = "pong"
	MessageTypeServerLeaderboard MessageType = "lb"
	MessageTypeServerNewScore    MessageType = "ns"
)

// Message represents a generic message for serialization/deserialization
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerLeaderboard is the full leaderboard, sent on connect and after it changes
type ServerLeaderboard struct {
	Timestamp int64                     `json:"timestamp"`
	Entries   []models.LeaderboardEntry `json:"entries"`
}

// ServerNewScore announces a score accepted by the server
type ServerNewScore struct {
	Timestamp int64  `json:"timestamp"`
	Username  string `json:"username"`
	Score     int32  `json:"score"`
}

// NewMessage marshals payload into a message of the given type
func NewMessage(t MessageType, payload interface{}) (*Message, error) {
	msg := &Message{Type: t}
	if payload == nil {
		return msg, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	msg.Payload = b
	return msg, nil
}
