package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Scheduler persists notification intents. It never attempts delivery;
// that is the dispatcher's job.
type Scheduler struct {
	repo Repository
	log  zerolog.Logger
}

func NewScheduler(repo Repository, log zerolog.Logger) *Scheduler {
	return &Scheduler{repo: repo, log: log}
}

func (s *Scheduler) Schedule(ctx context.Context, userID, relatedID uuid.UUID, typ Type, message string, method DeliveryMethod, at time.Time) (*Notification, error) {
	n := &Notification{
		UserID:         userID,
		RelatedID:      relatedID,
		Type:           typ,
		Message:        message,
		DeliveryMethod: method,
		Status:         StatusPending,
		ScheduledTime:  at,
	}

	if err := s.repo.Insert(ctx, n); err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	s.log.Debug().
		Str("notification_id", n.ID.String()).
		Str("user_id", userID.String()).
		Str("type", string(typ)).
		Time("scheduled_time", at).
		Msg("notification scheduled")

	return n, nil
}
