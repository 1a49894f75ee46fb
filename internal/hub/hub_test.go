package hub

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Daya1222/Real-time-chat-app/internal/auth"
	"github.com/Daya1222/Real-time-chat-app/internal/db"
	"github.com/Daya1222/Real-time-chat-app/internal/event"
	"github.com/Daya1222/Real-time-chat-app/internal/model"
	"github.com/Daya1222/Real-time-chat-app/internal/repo"
)

// fakeMessages is an in-memory MessageRepository for exercising the delivery
// state machine without mongo.
type fakeMessages struct {
	mu           sync.Mutex
	byID         map[string]*model.Message
	insertErr    error
	advanceCalls int
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{byID: make(map[string]*model.Message)}
}

func (f *fakeMessages) InsertMessage(ctx context.Context, text, sender, receiver string) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return nil, f.insertErr
	}

	msg := &model.Message{
		ID:        primitive.NewObjectID(),
		Text:      text,
		Sender:    sender,
		Receiver:  receiver,
		Status:    model.StatusSent,
		CreatedAt: time.Now().UTC(),
	}
	f.byID[msg.ID.Hex()] = msg
	clone := *msg
	return &clone, nil
}

func (f *fakeMessages) FindMessage(ctx context.Context, id string) (*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrMessageNotFound
	}
	clone := *msg
	return &clone, nil
}

func (f *fakeMessages) AdvanceStatus(ctx context.Context, id, status string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.advanceCalls++
	msg, ok := f.byID[id]
	if !ok {
		return false, nil
	}
	if model.StatusRank(status) <= model.StatusRank(msg.Status) {
		return false, nil
	}
	msg.Status = status
	return true, nil
}

func (f *fakeMessages) FindUndelivered(ctx context.Context, receiver string) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.Message
	for _, msg := range f.byID {
		if msg.Receiver == receiver && msg.Status == model.StatusSent {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (f *fakeMessages) FindByParticipant(ctx context.Context, userName string, page int64) (*db.PaginatedResult[model.Message], error) {
	return &db.PaginatedResult[model.Message]{}, nil
}

func (f *fakeMessages) FindBetween(ctx context.Context, userA, userB string, page int64) (*db.PaginatedResult[model.Message], error) {
	return &db.PaginatedResult[model.Message]{}, nil
}

func (f *fakeMessages) DeleteByParticipant(ctx context.Context, userName string) (int64, error) {
	return 0, nil
}

func (f *fakeMessages) status(t *testing.T, id string) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, ok := f.byID[id]
	require.True(t, ok, "message %s not stored", id)
	return msg.Status
}

func (f *fakeMessages) advances() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.advanceCalls
}

func newTestHub(t *testing.T) (*Hub, *fakeMessages) {
	t.Helper()
	messages := newFakeMessages()
	h := NewHub(messages, nil, nil, zap.NewNop())
	t.Cleanup(h.Stop)
	return h, messages
}

// admitted registers a connectionless client directly on the hub, the way
// run() would.
func admitted(h *Hub, userName string) *Client {
	c := newClient(&auth.Identity{UserName: userName, Role: model.RoleUser}, nil, h)
	h.admit(c)
	return c
}

// drain empties the client's egress buffer.
func drain(c *Client) []event.Envelope {
	var out []event.Envelope
	for {
		select {
		case ev, ok := <-c.egress:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func statusEvents(t *testing.T, evs []event.Envelope) []event.MessageStatus {
	t.Helper()
	var out []event.MessageStatus
	for _, ev := range evs {
		if ev.Event != event.EventMessageStatus {
			continue
		}
		var st event.MessageStatus
		require.NoError(t, json.Unmarshal(ev.Payload, &st))
		out = append(out, st)
	}
	return out
}

func eventsOf(evs []event.Envelope, name string) []event.Envelope {
	var out []event.Envelope
	for _, ev := range evs {
		if ev.Event == name {
			out = append(out, ev)
		}
	}
	return out
}

func sendJSON(t *testing.T, payload any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return raw
}
