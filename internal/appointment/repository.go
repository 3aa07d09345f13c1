package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken is returned when a write loses the race on the partial
	// unique index over non-cancelled (doctor, day, slot_time) rows.
	ErrSlotTaken = errors.New("time slot already booked by another patient")
)

type Repository interface {
	// Create persists a confirmed appointment; ErrSlotTaken if the slot is
	// already held.
	Create(ctx context.Context, a *Appointment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// FindActiveBySlot looks up the non-cancelled appointment occupying
	// (doctorID, day, slotTime), excluding excludeID (pass uuid.Nil to
	// exclude nothing). ErrAppointmentNotFound means the slot is free.
	FindActiveBySlot(ctx context.Context, doctorID uuid.UUID, day, slotTime string, excludeID uuid.UUID) (*Appointment, error)

	// UpdateSlot moves an appointment to a new day/time; ErrSlotTaken if
	// the target slot is held by another appointment.
	UpdateSlot(ctx context.Context, id uuid.UUID, day, slotTime string) (*Appointment, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Detail, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Detail, error)
}
