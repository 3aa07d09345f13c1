package message

import (
	"context"
	"errors"

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

const messageColumns = `id, sender_id, recipient_id, encrypted_content, iv, read, created_at`

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message

	err := row.Scan(
		&m.ID,
		&m.SenderID,
		&m.RecipientID,
		&m.EncryptedContent,
		&m.IV,
		&m.Read,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	return &m, nil
}

func (r *PgRepository) Create(ctx context.Context, m *Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, recipient_id, encrypted_content, iv, read, created_at)
		VALUES ($1, $2, $3, $4, $5, false, now())
		RETURNING `+messageColumns+`
	`, m.ID, m.SenderID, m.RecipientID, m.EncryptedContent, m.IV)

	created, err := scanMessage(row)
	if err != nil {
		return err
	}

	*m = *created
	return nil
}

func (r *PgRepository) ListConversation(ctx context.Context, a, b uuid.UUID) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at
	`, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
