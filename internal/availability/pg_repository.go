package availability

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

const windowColumns = `id, doctor_id, to_char(day, 'YYYY-MM-DD'), start_time, end_time, is_recurring, created_at, updated_at`

func scanWindow(row pgx.Row) (*Window, error) {
	var w Window

	err := row.Scan(
		&w.ID,
		&w.DoctorID,
		&w.Day,
		&w.StartTime,
		&w.EndTime,
		&w.IsRecurring,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWindowNotFound
		}
		return nil, err
	}

	return &w, nil
}

func (r *PgRepository) scanWindows(rows pgx.Rows) ([]Window, error) {
	defer rows.Close()

	var result []Window
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) Create(ctx context.Context, w *Window) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO availability_windows (id, doctor_id, day, start_time, end_time, is_recurring, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING `+windowColumns+`
	`, w.ID, w.DoctorID, w.Day, w.StartTime, w.EndTime, w.IsRecurring)

	created, err := scanWindow(row)
	if err != nil {
		return err
	}

	*w = *created
	return nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Window, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+windowColumns+`
		FROM availability_windows
		WHERE id = $1
	`, id)
	return scanWindow(row)
}

func (r *PgRepository) Update(ctx context.Context, w *Window) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE availability_windows
		SET day = $2,
		    start_time = $3,
		    end_time = $4,
		    is_recurring = $5,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+windowColumns+`
	`, w.ID, w.Day, w.StartTime, w.EndTime, w.IsRecurring)

	updated, err := scanWindow(row)
	if err != nil {
		return err
	}

	*w = *updated
	return nil
}

func (r *PgRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM availability_windows
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWindowNotFound
	}
	return nil
}

func (r *PgRepository) ListByDoctorDay(ctx context.Context, doctorID uuid.UUID, day string) ([]Window, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+windowColumns+`
		FROM availability_windows
		WHERE doctor_id = $1 AND day = $2
		ORDER BY start_time
	`, doctorID, day)
	if err != nil {
		return nil, err
	}
	return r.scanWindows(rows)
}

func (r *PgRepository) ListByDoctorRange(ctx context.Context, doctorID uuid.UUID, from, to string) ([]Window, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+windowColumns+`
		FROM availability_windows
		WHERE doctor_id = $1 AND day >= $2 AND day < $3
		ORDER BY day, start_time
	`, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	return r.scanWindows(rows)
}

func (r *PgRepository) ListRange(ctx context.Context, from, to string) ([]Window, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+windowColumns+`
		FROM availability_windows
		WHERE day >= $1 AND day < $2
		ORDER BY day, start_time
	`, from, to)
	if err != nil {
		return nil, err
	}
	return r.scanWindows(rows)
}
