package appointment

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/priyanshsolanki/medilink-assignment3/internal/auth"
	"github.com/priyanshsolanki/medilink-assignment3/internal/notification"
	redisclient "github.com/priyanshsolanki/medilink-assignment3/internal/redis"
	"github.com/priyanshsolanki/medilink-assignment3/internal/timeslot"
	"github.com/priyanshsolanki/medilink-assignment3/internal/user"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid date or time")
	ErrInvalidStatus   = errors.New("invalid appointment status")
	ErrNoAvailability  = errors.New("no availability for this doctor on the selected date")
	ErrSlotNotOffered  = errors.New("selected time is not within available slots")
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
)

// Soft outcome messages for the booking path. Booking a busy or unoffered
// slot is expected client behavior, so these travel in a 200 response
// rather than as errors.
const (
	MsgNoAvailability = "No availability for this doctor on the selected date"
	MsgSlotNotOffered = "Selected time is not within available slots"
	MsgSlotTaken      = "Time slot already booked by another patient"
)

// SlotSource yields the bookable slot starts a doctor offers on a day.
type SlotSource interface {
	OfferedSlots(ctx context.Context, doctorID uuid.UUID, day string) ([]string, error)
}

// Notifier persists notification intents at state-change time.
type Notifier interface {
	Schedule(ctx context.Context, userID, relatedID uuid.UUID, typ notification.Type, message string, method notification.DeliveryMethod, at time.Time) (*notification.Notification, error)
}

// LinkIssuer mints call-link tokens for booked appointments.
type LinkIssuer interface {
	Issue(appointmentID uuid.UUID, day, clock string, requester auth.Actor) (string, error)
}

// Locker guards the check-then-insert of a slot against concurrent
// bookings of the same (doctor, day, time).
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type Service struct {
	repo         Repository
	users        user.Repository
	slots        SlotSource
	notifier     Notifier
	links        LinkIssuer
	locker       Locker
	reminderLead time.Duration
	log          zerolog.Logger
	now          func() time.Time
}

func NewService(repo Repository, users user.Repository, slots SlotSource, notifier Notifier, links LinkIssuer, locker Locker, reminderLead time.Duration, log zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		users:        users,
		slots:        slots,
		notifier:     notifier,
		links:        links,
		locker:       locker,
		reminderLead: reminderLead,
		log:          log,
		now:          time.Now,
	}
}

// BookResult reports either a created appointment or the soft reason the
// slot could not be booked. Unavailable is empty on success.
type BookResult struct {
	Appointment *Appointment
	CallLink    string
	Unavailable string
}

// Book creates a confirmed appointment for the acting patient. The slot
// lock plus the partial unique index make sure two concurrent requests for
// the same slot cannot both commit.
func (s *Service) Book(ctx context.Context, actor auth.Actor, patientID, doctorID uuid.UUID, day, clock string) (*BookResult, error) {
	if actor.Role != user.RolePatient {
		return nil, fmt.Errorf("%w: only patients can book appointments", ErrForbidden)
	}
	if actor.ID != patientID {
		return nil, fmt.Errorf("%w: cannot book appointments for other patients", ErrForbidden)
	}
	if !timeslot.ValidDay(day) || !timeslot.ValidClock(clock) {
		return nil, ErrInvalidInput
	}

	patient, err := s.users.GetByID(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	doctor, err := s.users.GetByID(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	appt := &Appointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		Day:       day,
		SlotTime:  clock,
		Status:    StatusConfirmed,
	}

	err = s.locker.WithLock(ctx, slotLockKey(doctorID, day, clock), func(lockCtx context.Context) error {
		if err := s.checkSlotFree(lockCtx, doctorID, day, clock, uuid.Nil); err != nil {
			return err
		}
		return s.repo.Create(lockCtx, appt)
	})
	if err != nil {
		if msg := softReason(err); msg != "" {
			return &BookResult{Unavailable: msg}, nil
		}
		if isLockBusy(err) {
			return nil, ErrSlotBeingBooked
		}
		return nil, fmt.Errorf("book appointment: %w", err)
	}

	if err := s.notifyParties(ctx, appt, notification.TypeAppointment,
		fmt.Sprintf("Reminder: Your appointment with Dr. %s is scheduled for %s at %s.", doctor.Name, day, clock),
		fmt.Sprintf("Reminder: You have an appointment with %s on %s at %s.", patient.Name, day, clock),
		s.reminderAt(day, clock),
	); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("doctor_id", doctorID.String()).
		Str("slot", day+" "+clock).
		Msg("appointment booked")

	return &BookResult{
		Appointment: appt,
		CallLink:    s.issueLink(appt, actor),
	}, nil
}

// Reschedule moves an appointment to a new slot. The appointment's own
// current slot never counts as a conflict with itself. Unlike booking,
// conflicts here are hard errors.
func (s *Service) Reschedule(ctx context.Context, actor auth.Actor, id uuid.UUID, newDay, newClock string) (*Appointment, string, error) {
	if !timeslot.ValidDay(newDay) || !timeslot.ValidClock(newClock) {
		return nil, "", ErrInvalidInput
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if actor.Role == user.RolePatient && actor.ID != appt.PatientID {
		return nil, "", fmt.Errorf("%w: cannot reschedule others' appointments", ErrForbidden)
	}

	var moved *Appointment
	err = s.locker.WithLock(ctx, slotLockKey(appt.DoctorID, newDay, newClock), func(lockCtx context.Context) error {
		if err := s.checkSlotFree(lockCtx, appt.DoctorID, newDay, newClock, appt.ID); err != nil {
			return err
		}
		var err error
		moved, err = s.repo.UpdateSlot(lockCtx, appt.ID, newDay, newClock)
		return err
	})
	if err != nil {
		if isLockBusy(err) {
			return nil, "", ErrSlotBeingBooked
		}
		return nil, "", err
	}

	patient, doctor, err := s.loadParties(ctx, moved)
	if err != nil {
		return nil, "", err
	}

	if err := s.notifyParties(ctx, moved, notification.TypeReschedule,
		fmt.Sprintf("Update: Your appointment with Dr. %s is now rescheduled to %s at %s.", doctor.Name, newDay, newClock),
		fmt.Sprintf("Update: Your appointment with %s is rescheduled to %s at %s.", patient.Name, newDay, newClock),
		s.reminderAt(newDay, newClock),
	); err != nil {
		return nil, "", err
	}

	return moved, s.issueLink(moved, actor), nil
}

// Cancel marks an appointment cancelled, freeing its slot. No availability
// re-check; only ownership.
func (s *Service) Cancel(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !(actor.Role == user.RoleAdmin || (actor.Role == user.RolePatient && actor.ID == appt.PatientID)) {
		return nil, fmt.Errorf("%w: cannot cancel others' appointments", ErrForbidden)
	}

	patient, doctor, err := s.loadParties(ctx, appt)
	if err != nil {
		return nil, err
	}

	cancelled, err := s.repo.UpdateStatus(ctx, id, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	if err := s.notifyParties(ctx, cancelled, notification.TypeCancel,
		fmt.Sprintf("Notice: Your appointment with Dr. %s on %s at %s has been cancelled.", doctor.Name, appt.Day, appt.SlotTime),
		fmt.Sprintf("Notice: Your appointment with %s on %s at %s has been cancelled.", patient.Name, appt.Day, appt.SlotTime),
		s.now(),
	); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("appointment_id", id.String()).
		Msg("appointment cancelled")

	return cancelled, nil
}

// UpdateStatus transitions an appointment's status. Doctors and admins
// only; no slot re-check.
func (s *Service) UpdateStatus(ctx context.Context, actor auth.Actor, id uuid.UUID, status Status) (*Appointment, error) {
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	if actor.Role != user.RoleDoctor && actor.Role != user.RoleAdmin {
		return nil, fmt.Errorf("%w: insufficient rights", ErrForbidden)
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patient, doctor, err := s.loadParties(ctx, appt)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	if err := s.notifyParties(ctx, updated, notification.TypeStatusUpdate,
		fmt.Sprintf("Update: Your appointment with Dr. %s on %s at %s is now %s.", doctor.Name, appt.Day, appt.SlotTime, status),
		fmt.Sprintf("Update: Your appointment with %s on %s at %s is now %s.", patient.Name, appt.Day, appt.SlotTime, status),
		s.now(),
	); err != nil {
		return nil, err
	}

	return updated, nil
}

// CallLink re-issues the consultation link for an appointment participant.
func (s *Service) CallLink(ctx context.Context, actor auth.Actor, id uuid.UUID) (string, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	participant := actor.ID == appt.PatientID || actor.ID == appt.DoctorID
	if !participant && actor.Role != user.RoleAdmin {
		return "", fmt.Errorf("%w: not a participant", ErrForbidden)
	}

	return s.links.Issue(appt.ID, appt.Day, appt.SlotTime, actor)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Detail, error) {
	details, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return details, nil
}

func (s *Service) ListByDoctor(ctx context.Context, actor auth.Actor, doctorID uuid.UUID) ([]Detail, error) {
	if actor.Role == user.RoleDoctor && actor.ID != doctorID {
		return nil, fmt.Errorf("%w: access to other doctors not allowed", ErrForbidden)
	}

	details, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by doctor: %w", err)
	}
	return details, nil
}

// checkSlotFree verifies the requested slot is offered and unoccupied.
// excludeID keeps an appointment from conflicting with itself on
// reschedule.
func (s *Service) checkSlotFree(ctx context.Context, doctorID uuid.UUID, day, clock string, excludeID uuid.UUID) error {
	offered, err := s.slots.OfferedSlots(ctx, doctorID, day)
	if err != nil {
		return fmt.Errorf("load offered slots: %w", err)
	}
	if len(offered) == 0 {
		return ErrNoAvailability
	}
	if !slices.Contains(offered, clock) {
		return ErrSlotNotOffered
	}

	_, err = s.repo.FindActiveBySlot(ctx, doctorID, day, clock, excludeID)
	if err == nil {
		return ErrSlotTaken
	}
	if !errors.Is(err, ErrAppointmentNotFound) {
		return fmt.Errorf("check slot occupancy: %w", err)
	}
	return nil
}

// notifyParties records one intent per recipient; patient and doctor each
// get their own row.
func (s *Service) notifyParties(ctx context.Context, appt *Appointment, typ notification.Type, patientMsg, doctorMsg string, at time.Time) error {
	if _, err := s.notifier.Schedule(ctx, appt.PatientID, appt.ID, typ, patientMsg, notification.MethodEmail, at); err != nil {
		return fmt.Errorf("schedule patient notification: %w", err)
	}
	if _, err := s.notifier.Schedule(ctx, appt.DoctorID, appt.ID, typ, doctorMsg, notification.MethodEmail, at); err != nil {
		return fmt.Errorf("schedule doctor notification: %w", err)
	}
	return nil
}

func (s *Service) loadParties(ctx context.Context, appt *Appointment) (patient, doctor *user.User, err error) {
	patient, err = s.users.GetByID(ctx, appt.PatientID)
	if err != nil {
		return nil, nil, fmt.Errorf("load patient: %w", err)
	}
	doctor, err = s.users.GetByID(ctx, appt.DoctorID)
	if err != nil {
		return nil, nil, fmt.Errorf("load doctor: %w", err)
	}
	return patient, doctor, nil
}

func (s *Service) reminderAt(day, clock string) time.Time {
	start, err := timeslot.Combine(day, clock)
	if err != nil {
		// Inputs were validated upstream; fall back to immediate.
		return s.now()
	}
	return start.Add(-s.reminderLead)
}

func (s *Service) issueLink(appt *Appointment, requester auth.Actor) string {
	link, err := s.links.Issue(appt.ID, appt.Day, appt.SlotTime, requester)
	if err != nil {
		// An already-expired link is not a booking failure.
		return ""
	}
	return link
}

func softReason(err error) string {
	switch {
	case errors.Is(err, ErrNoAvailability):
		return MsgNoAvailability
	case errors.Is(err, ErrSlotNotOffered):
		return MsgSlotNotOffered
	case errors.Is(err, ErrSlotTaken):
		return MsgSlotTaken
	}
	return ""
}

func isLockBusy(err error) bool {
	return errors.Is(err, redisclient.ErrLockNotAcquired)
}

func slotLockKey(doctorID uuid.UUID, day, clock string) string {
	return fmt.Sprintf("lock:slot:%s:%s:%s", doctorID, day, clock)
}
