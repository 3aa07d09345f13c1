package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const notificationColumns = `id, user_id, related_id, type, message, delivery_method, status, scheduled_time, sent_at, attempt_count, created_at, updated_at`

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification

	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.RelatedID,
		&n.Type,
		&n.Message,
		&n.DeliveryMethod,
		&n.Status,
		&n.ScheduledTime,
		&n.SentAt,
		&n.AttemptCount,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}

	return &n, nil
}

func (r *PgRepository) Insert(ctx context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, related_id, type, message, delivery_method, status, scheduled_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', $7, now(), now())
		RETURNING `+notificationColumns+`
	`, n.ID, n.UserID, n.RelatedID, n.Type, n.Message, n.DeliveryMethod, n.ScheduledTime)

	created, err := scanNotification(row)
	if err != nil {
		return err
	}

	*n = *created
	return nil
}

func (r *PgRepository) FindDue(ctx context.Context, now time.Time) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE status = 'pending'
		  AND scheduled_time <= $1
		ORDER BY scheduled_time
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'sent',
		    sent_at = $2,
		    attempt_count = attempt_count + 1,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'pending'
	`, id, sentAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PgRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET status = 'failed',
		    attempt_count = attempt_count + 1,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'pending'
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PgRepository) MarkRetry(ctx context.Context, id uuid.UUID, nextAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET scheduled_time = $2,
		    attempt_count = attempt_count + 1,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'pending'
	`, id, nextAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *PgRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1
		ORDER BY scheduled_time DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
