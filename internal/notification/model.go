package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeAppointment  Type = "appointment"
	TypeReschedule   Type = "reschedule"
	TypeCancel       Type = "cancel"
	TypeStatusUpdate Type = "status_update"
	TypeMessage      Type = "message"
)

type DeliveryMethod string

const (
	MethodEmail DeliveryMethod = "email"
	MethodSMS   DeliveryMethod = "sms"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Notification is a persisted delivery obligation. Request handlers only
// insert them; the dispatcher owns every later mutation and never reverts a
// sent or failed record to pending. Rows are kept forever as an audit trail.
type Notification struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	RelatedID      uuid.UUID
	Type           Type
	Message        string
	DeliveryMethod DeliveryMethod
	Status         Status
	ScheduledTime  time.Time
	SentAt         *time.Time
	AttemptCount   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
