package event

import (
	"encoding/json"
	"time"
)

// Client -> server events
const (
	EventMessageSent      = "messageSent"
	EventMessageDelivered = "messageDelivered"
	EventMessageRead      = "messageRead"
)

// Server -> client events
const (
	EventMessageStatus   = "messageStatus"
	EventOnlineUsers     = "onlineUsers"
	EventForceLogout     = "forceLogout"
	EventMessageError    = "messageError"
	EventNewRegistration = "newRegistration"
)

// Envelope is the wire frame exchanged on the WebSocket. Payload shape
// depends on Event.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// SendMessage is the payload of a messageSent event.
type SendMessage struct {
	Text     string `json:"text"`
	Receiver string `json:"receiver"`
}

// DeliveredAck is the payload of a messageDelivered event. SenderName is
// supplied by the client so the ack path does not need a store round-trip.
type DeliveredAck struct {
	MessageID  string `json:"messageId"`
	SenderName string `json:"senderName"`
}

// ReadAck is the payload of a messageRead event.
type ReadAck struct {
	MessageID string `json:"messageId"`
}

// MessageStatus is the payload of a messageStatus notification. On message
// creation and redelivery the full message travels; later transitions carry
// only MessageID and Status. Redelivered marks sweep output so clients can
// tell replay from live traffic.
type MessageStatus struct {
	MessageID   string     `json:"messageId"`
	Text        string     `json:"text,omitempty"`
	Sender      string     `json:"sender,omitempty"`
	Receiver    string     `json:"receiver,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	Status      string     `json:"status"`
	Redelivered bool       `json:"redelivered,omitempty"`
}

// ForceLogout is the payload of a forceLogout notification.
type ForceLogout struct {
	Reason string `json:"reason"`
}

// ErrorPayload is the payload of a messageError notification.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
