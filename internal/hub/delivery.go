package hub

import (
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Daya1222/Real-time-chat-app/internal/event"
	"github.com/Daya1222/Real-time-chat-app/internal/model"
	"github.com/Daya1222/Real-time-chat-app/internal/repo"
)

// dispatch routes one inbound frame to its handler. Called from the owning
// connection's read goroutine.
func (h *Hub) dispatch(ev event.Envelope, c *Client) {
	switch ev.Event {
	case event.EventMessageSent:
		h.handleMessageSent(ev.Payload, c)
	case event.EventMessageDelivered:
		h.handleMessageDelivered(ev.Payload, c)
	case event.EventMessageRead:
		h.handleMessageRead(ev.Payload, c)
	default:
		h.logger.Warn("unknown event type",
			zap.String("event", ev.Event),
			zap.String("client_id", c.ID),
		)
	}
}

// handleMessageSent persists a new message with status sent and notifies
// both parties. The sender always gets exactly one echo; the receiver gets
// one only when reachable on a different connection.
func (h *Hub) handleMessageSent(payload json.RawMessage, c *Client) {
	var sm event.SendMessage
	if err := json.Unmarshal(payload, &sm); err != nil {
		h.logger.Warn("failed to unmarshal send payload",
			zap.String("client_id", c.ID),
			zap.Error(err),
		)
		return
	}

	if strings.TrimSpace(sm.Text) == "" || sm.Receiver == "" {
		h.logger.Debug("dropping invalid send",
			zap.String("client_id", c.ID),
			zap.String("receiver", sm.Receiver),
		)
		return
	}

	msg, err := h.messages.InsertMessage(h.ctx, sm.Text, c.userName, sm.Receiver)
	if err != nil {
		h.logger.Error("failed to save message",
			zap.String("sender", c.userName),
			zap.Error(err),
		)
		c.SafeSend(mustEnvelope(event.EventMessageError, event.ErrorPayload{
			Code:    "send_failed",
			Message: "Failed to send message",
		}), sendTimeout)
		return
	}

	ev := mustEnvelope(event.EventMessageStatus, fullStatus(msg, model.StatusSent, false))

	c.SafeSend(ev, sendTimeout)

	if receiver, ok := h.presence.LookupOther(msg.Receiver, c); ok {
		receiver.SafeSend(ev, sendTimeout)
	}
}

// handleMessageDelivered advances a message to delivered on behalf of the
// receiving client. Acks for messages already delivered or read are silent
// no-ops, so a duplicate ack never re-notifies the sender.
func (h *Hub) handleMessageDelivered(payload json.RawMessage, c *Client) {
	var ack event.DeliveredAck
	if err := json.Unmarshal(payload, &ack); err != nil {
		h.logger.Warn("failed to unmarshal delivered ack",
			zap.String("client_id", c.ID),
			zap.Error(err),
		)
		return
	}
	if ack.MessageID == "" {
		return
	}

	advanced, err := h.messages.AdvanceStatus(h.ctx, ack.MessageID, model.StatusDelivered)
	if err != nil {
		// non-fatal: the connection and other messages are unaffected
		h.logger.Error("failed to update delivered status",
			zap.String("message_id", ack.MessageID),
			zap.Error(err),
		)
		return
	}
	if !advanced {
		return
	}

	if sender, ok := h.presence.LookupOther(ack.SenderName, c); ok {
		sender.SafeSend(mustEnvelope(event.EventMessageStatus, transitionStatus(ack.MessageID, model.StatusDelivered)), sendTimeout)
	}
}

// handleMessageRead advances a message to read. A read ack on a message
// still in sent is valid and moves it straight to read. The message is
// re-read first so an already-read message costs no store write and no
// notification.
func (h *Hub) handleMessageRead(payload json.RawMessage, c *Client) {
	var ack event.ReadAck
	if err := json.Unmarshal(payload, &ack); err != nil {
		h.logger.Warn("failed to unmarshal read ack",
			zap.String("client_id", c.ID),
			zap.Error(err),
		)
		return
	}
	if ack.MessageID == "" {
		return
	}

	msg, err := h.messages.FindMessage(h.ctx, ack.MessageID)
	if err != nil {
		if errors.Is(err, repo.ErrMessageNotFound) || errors.Is(err, repo.ErrInvalidMessageID) {
			h.logger.Warn("read ack for unknown message", zap.String("message_id", ack.MessageID))
			return
		}
		h.logger.Error("failed to look up message for read ack",
			zap.String("message_id", ack.MessageID),
			zap.Error(err),
		)
		return
	}

	// Expected on repeated conversation opens; skip silently.
	if msg.Status == model.StatusRead {
		return
	}

	advanced, err := h.messages.AdvanceStatus(h.ctx, ack.MessageID, model.StatusRead)
	if err != nil {
		h.logger.Error("failed to update read status",
			zap.String("message_id", ack.MessageID),
			zap.Error(err),
		)
		return
	}
	if !advanced {
		return
	}

	if sender, ok := h.presence.LookupOther(msg.Sender, c); ok {
		sender.SafeSend(mustEnvelope(event.EventMessageStatus, transitionStatus(ack.MessageID, model.StatusRead)), sendTimeout)
	}
}

// fullStatus carries the whole message; used on create and redelivery.
func fullStatus(msg *model.Message, status string, redelivered bool) event.MessageStatus {
	createdAt := msg.CreatedAt
	return event.MessageStatus{
		MessageID:   msg.ID.Hex(),
		Text:        msg.Text,
		Sender:      msg.Sender,
		Receiver:    msg.Receiver,
		CreatedAt:   &createdAt,
		Status:      status,
		Redelivered: redelivered,
	}
}

// transitionStatus carries only the id and the new status; used for
// delivered/read notifications to the sender.
func transitionStatus(messageID, status string) event.MessageStatus {
	return event.MessageStatus{
		MessageID: messageID,
		Status:    status,
	}
}
