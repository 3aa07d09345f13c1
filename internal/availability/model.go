package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/priyanshsolanki/medilink-assignment3/internal/user"
)

// Window is a doctor-declared open interval on one calendar day. Bookable
// slots are derived from it, never stored.
type Window struct {
	ID          uuid.UUID
	DoctorID    uuid.UUID
	Day         string // "YYYY-MM-DD"
	StartTime   string // "HH:MM"
	EndTime     string // "HH:MM"
	IsRecurring bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Slot is one bookable sub-interval of a window.
type Slot struct {
	WindowID  uuid.UUID `json:"availabilityId"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
}

// DaySchedule maps "YYYY-MM-DD" to the ordered slots offered that day.
type DaySchedule map[string][]Slot

// DoctorSchedule is the directory entry returned by the all-doctors
// projection: the doctor plus their rolling-horizon slots.
type DoctorSchedule struct {
	DoctorID  uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Specialty *string     `json:"specialty,omitempty"`
	Days      DaySchedule `json:"availability"`
}

func newDoctorSchedule(u user.User) DoctorSchedule {
	return DoctorSchedule{
		DoctorID:  u.ID,
		Name:      u.Name,
		Specialty: u.Specialty,
		Days:      DaySchedule{},
	}
}
