package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Delivery status lifecycle of a message. Order matters: a message never
// moves to an equal or lower status.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

var statusRank = map[string]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusRead:      2,
}

// StatusRank returns the position of a status in the sent < delivered < read
// order, or -1 for an unknown status.
func StatusRank(status string) int {
	rank, ok := statusRank[status]
	if !ok {
		return -1
	}
	return rank
}

// StatusesBelow returns every valid status strictly lower than the given one.
// Used as the guard predicate for conditional status updates.
func StatusesBelow(status string) []string {
	target := StatusRank(status)
	var below []string
	for s, rank := range statusRank {
		if rank < target {
			below = append(below, s)
		}
	}
	return below
}

// Message represents a direct message document in MongoDB. Sender and
// Receiver hold usernames; Status is one of the delivery status constants.
type Message struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Text      string             `json:"text" bson:"text"`
	Sender    string             `json:"sender" bson:"sender"`
	Receiver  string             `json:"receiver" bson:"receiver"`
	Status    string             `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}
