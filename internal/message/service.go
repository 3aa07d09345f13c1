package message

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/priyanshsolanki/medilink-assignment3/internal/notification"
	"github.com/priyanshsolanki/medilink-assignment3/internal/user"
)

var ErrSelfMessage = errors.New("cannot send message to yourself")

type Notifier interface {
	Schedule(ctx context.Context, userID, relatedID uuid.UUID, typ notification.Type, message string, method notification.DeliveryMethod, at time.Time) (*notification.Notification, error)
}

type Service struct {
	repo     Repository
	users    user.Repository
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, users user.Repository, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Send stores the ciphertext and queues an immediate notification intent
// for the recipient.
func (s *Service) Send(ctx context.Context, senderID, recipientID uuid.UUID, encryptedContent, iv string) (*Message, error) {
	if senderID == recipientID {
		return nil, ErrSelfMessage
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("load sender: %w", err)
	}
	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		return nil, fmt.Errorf("load recipient: %w", err)
	}

	m := &Message{
		SenderID:         senderID,
		RecipientID:      recipientID,
		EncryptedContent: encryptedContent,
		IV:               iv,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	if _, err := s.notifier.Schedule(ctx, recipientID, m.ID, notification.TypeMessage,
		fmt.Sprintf("New message from %s. Please check your inbox.", sender.Name),
		notification.MethodEmail, s.now(),
	); err != nil {
		return nil, fmt.Errorf("schedule message notification: %w", err)
	}

	return m, nil
}

// Conversation returns the message history between the caller and another
// user, oldest first.
func (s *Service) Conversation(ctx context.Context, callerID, otherID uuid.UUID) ([]Message, error) {
	msgs, err := s.repo.ListConversation(ctx, callerID, otherID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return msgs, nil
}
