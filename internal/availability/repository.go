package availability

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrWindowNotFound = errors.New("availability window not found")

type Repository interface {
	Create(ctx context.Context, w *Window) error
	GetByID(ctx context.Context, id uuid.UUID) (*Window, error)
	Update(ctx context.Context, w *Window) error
	Delete(ctx context.Context, id uuid.UUID) error

	// For the per-day overlap invariant
	ListByDoctorDay(ctx context.Context, doctorID uuid.UUID, day string) ([]Window, error)

	// For the rolling-horizon projections; from inclusive, to exclusive
	ListByDoctorRange(ctx context.Context, doctorID uuid.UUID, from, to string) ([]Window, error)
	ListRange(ctx context.Context, from, to string) ([]Window, error)
}
