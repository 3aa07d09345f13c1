package message

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyanshsolanki/medilink-assignment3/internal/notification"
	"github.com/priyanshsolanki/medilink-assignment3/internal/user"
)

type memRepo struct {
	msgs []Message
}

func (m *memRepo) Create(ctx context.Context, msg *Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memRepo) ListConversation(ctx context.Context, a, b uuid.UUID) ([]Message, error) {
	var out []Message
	for _, msg := range m.msgs {
		if (msg.SenderID == a && msg.RecipientID == b) || (msg.SenderID == b && msg.RecipientID == a) {
			out = append(out, msg)
		}
	}
	return out, nil
}

type memUsers struct {
	users map[uuid.UUID]*user.User
}

func (m *memUsers) Create(ctx context.Context, u *user.User) error { return nil }

func (m *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, user.ErrUserNotFound
}

func (m *memUsers) ListDoctors(ctx context.Context) ([]user.User, error) { return nil, nil }

type capturedIntent struct {
	userID uuid.UUID
	typ    notification.Type
	msg    string
	at     time.Time
}

type captureNotifier struct {
	intents []capturedIntent
}

func (c *captureNotifier) Schedule(ctx context.Context, userID, relatedID uuid.UUID, typ notification.Type, message string, method notification.DeliveryMethod, at time.Time) (*notification.Notification, error) {
	c.intents = append(c.intents, capturedIntent{userID, typ, message, at})
	return &notification.Notification{ID: uuid.New()}, nil
}

func TestSendMessage(t *testing.T) {
	sender := &user.User{ID: uuid.New(), Name: "Ada Nowak", Role: user.RolePatient}
	recipient := &user.User{ID: uuid.New(), Name: "Dr. Okafor", Role: user.RoleDoctor}

	notifier := &captureNotifier{}
	svc := NewService(&memRepo{}, &memUsers{users: map[uuid.UUID]*user.User{
		sender.ID:    sender,
		recipient.ID: recipient,
	}}, notifier, zerolog.Nop())
	fixed := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	m, err := svc.Send(context.Background(), sender.ID, recipient.ID, "Y2lwaGVydGV4dA==", "aXYxMjM=")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, m.ID)

	// Recipient gets an immediate intent that names the sender but never
	// the content.
	require.Len(t, notifier.intents, 1)
	got := notifier.intents[0]
	assert.Equal(t, recipient.ID, got.userID)
	assert.Equal(t, notification.TypeMessage, got.typ)
	assert.Equal(t, "New message from Ada Nowak. Please check your inbox.", got.msg)
	assert.Equal(t, fixed, got.at)
}

func TestSendMessageValidation(t *testing.T) {
	sender := &user.User{ID: uuid.New(), Name: "Ada", Role: user.RolePatient}
	svc := NewService(&memRepo{}, &memUsers{users: map[uuid.UUID]*user.User{sender.ID: sender}}, &captureNotifier{}, zerolog.Nop())

	_, err := svc.Send(context.Background(), sender.ID, sender.ID, "ct", "iv")
	assert.ErrorIs(t, err, ErrSelfMessage)

	_, err = svc.Send(context.Background(), sender.ID, uuid.New(), "ct", "iv")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestConversationIsSymmetric(t *testing.T) {
	a := &user.User{ID: uuid.New(), Name: "Ada", Role: user.RolePatient}
	b := &user.User{ID: uuid.New(), Name: "Okafor", Role: user.RoleDoctor}
	c := &user.User{ID: uuid.New(), Name: "Chen", Role: user.RolePatient}

	repo := &memRepo{}
	svc := NewService(repo, &memUsers{users: map[uuid.UUID]*user.User{
		a.ID: a, b.ID: b, c.ID: c,
	}}, &captureNotifier{}, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Send(ctx, a.ID, b.ID, "ct1", "iv1")
	require.NoError(t, err)
	_, err = svc.Send(ctx, b.ID, a.ID, "ct2", "iv2")
	require.NoError(t, err)
	_, err = svc.Send(ctx, a.ID, c.ID, "ct3", "iv3")
	require.NoError(t, err)

	fromA, err := svc.Conversation(ctx, a.ID, b.ID)
	require.NoError(t, err)
	fromB, err := svc.Conversation(ctx, b.ID, a.ID)
	require.NoError(t, err)

	assert.Len(t, fromA, 2)
	assert.Equal(t, fromA, fromB)
}
