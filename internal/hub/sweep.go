package hub

import (
	"go.uber.org/zap"

	"github.com/Daya1222/Real-time-chat-app/internal/event"
	"github.com/Daya1222/Real-time-chat-app/internal/model"
)

// runRedeliverySweep replays every message still in sent addressed to the
// newly admitted user: the new connection gets each one as delivered and
// tagged redelivered, the store records the advance, and the original
// sender is told when reachable on another connection. Reconnects are
// idempotent because the query predicate excludes anything past sent.
func (h *Hub) runRedeliverySweep(c *Client) {
	msgs, err := h.messages.FindUndelivered(h.ctx, c.userName)
	if err != nil {
		h.logger.Error("redelivery sweep query failed",
			zap.String("user_name", c.userName),
			zap.Error(err),
		)
		return
	}
	if len(msgs) == 0 {
		return
	}

	h.logger.Info("redelivering undelivered messages",
		zap.String("user_name", c.userName),
		zap.Int("count", len(msgs)),
	)

	for i := range msgs {
		msg := &msgs[i]

		c.SafeSend(mustEnvelope(event.EventMessageStatus, fullStatus(msg, model.StatusDelivered, true)), sendTimeout)

		advanced, err := h.messages.AdvanceStatus(h.ctx, msg.ID.Hex(), model.StatusDelivered)
		if err != nil {
			h.logger.Error("failed to persist redelivery",
				zap.String("message_id", msg.ID.Hex()),
				zap.Error(err),
			)
			continue
		}
		if !advanced {
			continue
		}

		if sender, ok := h.presence.LookupOther(msg.Sender, c); ok {
			sender.SafeSend(mustEnvelope(event.EventMessageStatus, transitionStatus(msg.ID.Hex(), model.StatusDelivered)), sendTimeout)
		}
	}
}
