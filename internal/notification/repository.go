package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Repository writes are split by owner: Insert is called from request
// handlers, the Mark* methods only from the dispatcher. Every Mark* is a
// conditional update on status = 'pending', which is what guarantees a
// notification settles exactly once.
type Repository interface {
	Insert(ctx context.Context, n *Notification) error

	// FindDue returns pending notifications with scheduled_time <= now.
	FindDue(ctx context.Context, now time.Time) ([]Notification, error)

	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID) error

	// MarkRetry pushes a pending notification to a later attempt. Unused
	// with the default single-attempt policy.
	MarkRetry(ctx context.Context, id uuid.UUID, nextAt time.Time) error

	ListByUser(ctx context.Context, userID uuid.UUID) ([]Notification, error)
}
