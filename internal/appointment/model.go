package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment occupies one slot of a doctor's availability. Slot
// exclusivity: at most one non-cancelled appointment may exist per
// (doctor, day, slot_time). Appointments are never hard-deleted; cancelling
// frees the slot because cancelled rows are excluded from the uniqueness
// check.
type Appointment struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Day       string // "YYYY-MM-DD"
	SlotTime  string // "HH:MM", always a slot boundary
	Status    Status
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Detail is an appointment hydrated with the counterpart names for list
// views and notification text.
type Detail struct {
	Appointment
	PatientName     string
	DoctorName      string
	DoctorSpecialty *string
}
