package message

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrMessageNotFound = errors.New("message not found")

type Repository interface {
	Create(ctx context.Context, m *Message) error
	ListConversation(ctx context.Context, a, b uuid.UUID) ([]Message, error)
}
