package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Daya1222/Real-time-chat-app/internal/db"
	"github.com/Daya1222/Real-time-chat-app/internal/model"
)

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrInvalidMessage   = errors.New("invalid message: text, sender and receiver are required")
	ErrInvalidMessageID = errors.New("invalid message id")
	ErrInvalidStatus    = errors.New("invalid delivery status")
)

const (
	// Timeouts
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 30 * time.Second

	// Retry configuration
	maxRetries     = 3
	baseRetryDelay = 100 * time.Millisecond
	maxRetryDelay  = 2 * time.Second
)

type messageRepository struct {
	mongoRepo *db.Repository[model.Message]
	logger    *zap.Logger
}

// MessageRepository is the durable store of messages and their delivery
// status.
type MessageRepository interface {
	// InsertMessage persists a new message with status sent and returns it
	// with its id and timestamps populated.
	InsertMessage(ctx context.Context, text, sender, receiver string) (*model.Message, error)

	// FindMessage looks up a message by id. Returns ErrMessageNotFound when
	// no such message exists.
	FindMessage(ctx context.Context, id string) (*model.Message, error)

	// AdvanceStatus moves a message to the given status only if its current
	// status is strictly lower. Reports whether the message actually moved;
	// a missing message or an equal-or-higher current status is a no-op.
	AdvanceStatus(ctx context.Context, id, status string) (bool, error)

	// FindUndelivered returns every message addressed to receiver that is
	// still in status sent.
	FindUndelivered(ctx context.Context, receiver string) ([]model.Message, error)

	// FindByParticipant returns a page of messages the user sent or
	// received, oldest first.
	FindByParticipant(ctx context.Context, userName string, page int64) (*db.PaginatedResult[model.Message], error)

	// FindBetween returns a page of messages exchanged between the two
	// users, oldest first.
	FindBetween(ctx context.Context, userA, userB string, page int64) (*db.PaginatedResult[model.Message], error)

	// DeleteByParticipant removes every message the user sent or received.
	DeleteByParticipant(ctx context.Context, userName string) (int64, error)
}

func NewMessageRepository(mongoRepo *db.Repository[model.Message], logger *zap.Logger) MessageRepository {
	return &messageRepository{
		mongoRepo: mongoRepo,
		logger:    logger,
	}
}

// -----------------------------------------------------------------------------
// InsertMessage
// -----------------------------------------------------------------------------

func (m *messageRepository) InsertMessage(ctx context.Context, text, sender, receiver string) (*model.Message, error) {
	if text == "" || sender == "" || receiver == "" {
		return nil, ErrInvalidMessage
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	msg := model.Message{
		Text:      text,
		Sender:    sender,
		Receiver:  receiver,
		Status:    model.StatusSent,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := m.waitForRetry(ctx, attempt); err != nil {
				return nil, err
			}
		}

		result, err := m.mongoRepo.Create(ctx, msg)
		if err == nil {
			if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
				msg.ID = oid
			}

			m.logger.Info("message inserted",
				zap.String("message_id", msg.ID.Hex()),
				zap.String("sender", sender),
				zap.String("receiver", receiver),
				zap.Int("attempt", attempt+1),
			)
			return &msg, nil
		}

		lastErr = err
		if !m.isRetryableError(err) {
			break
		}

		m.logger.Warn("insert attempt failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxRetries),
		)
	}

	m.logger.Error("failed to insert message after all retries",
		zap.Error(lastErr),
		zap.String("sender", sender),
		zap.String("receiver", receiver),
	)

	return nil, fmt.Errorf("insert message failed: %w", lastErr)
}

// -----------------------------------------------------------------------------
// FindMessage
// -----------------------------------------------------------------------------

func (m *messageRepository) FindMessage(ctx context.Context, id string) (*model.Message, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, ErrInvalidMessageID
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	msg, err := m.mongoRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrMessageNotFound
		}
		m.logger.Error("message lookup failed", zap.Error(err), zap.String("message_id", id))
		return nil, fmt.Errorf("find message failed: %w", err)
	}

	return msg, nil
}

// -----------------------------------------------------------------------------
// AdvanceStatus
// -----------------------------------------------------------------------------

// The monotonic guard lives in the filter: the update only matches while the
// stored status ranks below the target, so concurrent acknowledgments for
// the same message resolve to at most one effective transition.
func (m *messageRepository) AdvanceStatus(ctx context.Context, id, status string) (bool, error) {
	if model.StatusRank(status) < 0 {
		return false, ErrInvalidStatus
	}
	below := model.StatusesBelow(status)
	if len(below) == 0 {
		// sent is the floor; nothing ranks below it
		return false, nil
	}
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return false, ErrInvalidMessageID
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().
		ObjectID("_id", id).
		In("status", below).
		Build()

	modified, err := m.mongoRepo.UpdateWhere(ctx, filter, bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		m.logger.Error("status update failed",
			zap.Error(err),
			zap.String("message_id", id),
			zap.String("status", status),
		)
		return false, fmt.Errorf("advance status failed: %w", err)
	}

	if modified == 0 {
		m.logger.Debug("status unchanged",
			zap.String("message_id", id),
			zap.String("status", status),
		)
		return false, nil
	}

	m.logger.Debug("status advanced",
		zap.String("message_id", id),
		zap.String("status", status),
	)
	return true, nil
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

func (m *messageRepository) FindUndelivered(ctx context.Context, receiver string) ([]model.Message, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("receiver", receiver).
		Eq("status", model.StatusSent).
		Build()

	msgs, err := m.mongoRepo.FindAll(ctx, filter)
	if err != nil {
		m.logger.Error("undelivered query failed", zap.Error(err), zap.String("receiver", receiver))
		return nil, fmt.Errorf("find undelivered failed: %w", err)
	}

	m.logger.Debug("undelivered messages found",
		zap.String("receiver", receiver),
		zap.Int("count", len(msgs)),
	)
	return msgs, nil
}

func (m *messageRepository) FindByParticipant(ctx context.Context, userName string, page int64) (*db.PaginatedResult[model.Message], error) {
	filter := db.NewFilter().
		Or(bson.M{"sender": userName}, bson.M{"receiver": userName}).
		Build()

	return m.findPage(ctx, filter, page)
}

func (m *messageRepository) FindBetween(ctx context.Context, userA, userB string, page int64) (*db.PaginatedResult[model.Message], error) {
	filter := db.NewFilter().
		Or(
			bson.M{"sender": userA, "receiver": userB},
			bson.M{"sender": userB, "receiver": userA},
		).
		Build()

	return m.findPage(ctx, filter, page)
}

func (m *messageRepository) findPage(ctx context.Context, filter bson.M, page int64) (*db.PaginatedResult[model.Message], error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := m.waitForRetry(ctx, attempt); err != nil {
				return nil, err
			}
		}

		result, err := m.mongoRepo.FindWithPagination(ctx, filter, db.PaginationParams{
			Page:     page,
			PageSize: 50,
			SortBy:   "created_at",
			SortDesc: false,
		})
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !m.isRetryableError(err) {
			break
		}
	}

	m.logger.Error("message page query failed", zap.Error(lastErr))
	return nil, fmt.Errorf("find messages failed: %w", lastErr)
}

func (m *messageRepository) DeleteByParticipant(ctx context.Context, userName string) (int64, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().
		Or(bson.M{"sender": userName}, bson.M{"receiver": userName}).
		Build()

	result, err := m.mongoRepo.DeleteMany(ctx, filter)
	if err != nil {
		m.logger.Error("message cascade delete failed", zap.Error(err), zap.String("user_name", userName))
		return 0, fmt.Errorf("delete messages failed: %w", err)
	}

	m.logger.Info("messages deleted for user",
		zap.String("user_name", userName),
		zap.Int64("count", result.DeletedCount),
	)
	return result.DeletedCount, nil
}

// -----------------------------------------------------------------------------
// Private Helper Methods
// -----------------------------------------------------------------------------

func (m *messageRepository) ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hadDeadline := ctx.Deadline(); hadDeadline {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (m *messageRepository) waitForRetry(ctx context.Context, attempt int) error {
	delay := time.Duration(1<<uint(attempt)) * baseRetryDelay
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("retry wait cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (m *messageRepository) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
