package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/priyanshsolanki/medilink-assignment3/internal/auth"
	"github.com/priyanshsolanki/medilink-assignment3/internal/timeslot"
	"github.com/priyanshsolanki/medilink-assignment3/internal/user"
)

var (
	ErrInvalidWindow = errors.New("invalid availability window")
	ErrPastDay       = errors.New("availability day is in the past")
	ErrWindowOverlap = errors.New("conflicting availability window")
	ErrNotOwner      = errors.New("only the owning doctor can modify availability")
	ErrNotDoctor     = errors.New("user is not a doctor")
)

type Service struct {
	repo        Repository
	users       user.Repository
	slotStep    time.Duration
	horizonDays int
	log         zerolog.Logger
	now         func() time.Time
}

func NewService(repo Repository, users user.Repository, slotStep time.Duration, horizonDays int, log zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		users:       users,
		slotStep:    slotStep,
		horizonDays: horizonDays,
		log:         log,
		now:         time.Now,
	}
}

// Create registers a new window for the acting doctor. The per-day
// non-overlap invariant is enforced against every existing window for the
// same doctor and day.
func (s *Service) Create(ctx context.Context, actor auth.Actor, doctorID uuid.UUID, day, start, end string, recurring bool) (*Window, error) {
	if actor.Role != user.RoleDoctor || actor.ID != doctorID {
		return nil, ErrNotOwner
	}

	doctor, err := s.users.GetByID(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if doctor.Role != user.RoleDoctor {
		return nil, ErrNotDoctor
	}

	if err := s.validateWindow(day, start, end); err != nil {
		return nil, err
	}

	if err := s.checkOverlap(ctx, doctorID, day, start, end, uuid.Nil); err != nil {
		return nil, err
	}

	w := &Window{
		DoctorID:    doctorID,
		Day:         day,
		StartTime:   start,
		EndTime:     end,
		IsRecurring: recurring,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	s.log.Info().
		Str("doctor_id", doctorID.String()).
		Str("day", day).
		Str("window", start+"-"+end).
		Msg("availability window created")

	return w, nil
}

// UpdateParams carries the mutable window fields; nil leaves a field as is.
type UpdateParams struct {
	Day         *string
	StartTime   *string
	EndTime     *string
	IsRecurring *bool
}

// Update re-validates the window with its own id excluded from the overlap
// check, so shrinking or shifting inside its current interval is allowed.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, params UpdateParams) (*Window, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != w.DoctorID {
		return nil, ErrNotOwner
	}

	if params.Day != nil {
		w.Day = *params.Day
	}
	if params.StartTime != nil {
		w.StartTime = *params.StartTime
	}
	if params.EndTime != nil {
		w.EndTime = *params.EndTime
	}
	if params.IsRecurring != nil {
		w.IsRecurring = *params.IsRecurring
	}

	if err := s.validateWindow(w.Day, w.StartTime, w.EndTime); err != nil {
		return nil, err
	}

	if err := s.checkOverlap(ctx, w.DoctorID, w.Day, w.StartTime, w.EndTime, w.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("update window: %w", err)
	}

	return w, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.ID != w.DoctorID {
		return ErrNotOwner
	}

	if s.pastDay(w.Day) {
		return ErrPastDay
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete window: %w", err)
	}

	s.log.Info().
		Str("window_id", id.String()).
		Str("doctor_id", w.DoctorID.String()).
		Msg("availability window deleted")

	return nil
}

// OfferedSlots returns every bookable slot start the doctor offers on the
// given day, across all of that day's windows. Windows arrive ordered by
// start time and never overlap, so the result is already sorted.
func (s *Service) OfferedSlots(ctx context.Context, doctorID uuid.UUID, day string) ([]string, error) {
	windows, err := s.repo.ListByDoctorDay(ctx, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}

	var slots []string
	for _, w := range windows {
		slots = append(slots, timeslot.Generate(w.StartTime, w.EndTime, s.slotStep)...)
	}
	return slots, nil
}

// DoctorSchedule projects one doctor's windows over the rolling horizon
// (today inclusive) into per-day slot lists.
func (s *Service) DoctorSchedule(ctx context.Context, doctorID uuid.UUID) (DaySchedule, error) {
	from, to := s.horizon()

	windows, err := s.repo.ListByDoctorRange(ctx, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}

	sched := DaySchedule{}
	for _, w := range windows {
		sched[w.Day] = append(sched[w.Day], s.expand(w)...)
	}
	return sched, nil
}

// Directory returns every doctor with their rolling-horizon schedule, for
// the patient-facing booking view.
func (s *Service) Directory(ctx context.Context) ([]DoctorSchedule, error) {
	doctors, err := s.users.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}

	from, to := s.horizon()
	windows, err := s.repo.ListRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}

	byDoctor := make(map[uuid.UUID]DaySchedule, len(doctors))
	for _, w := range windows {
		if byDoctor[w.DoctorID] == nil {
			byDoctor[w.DoctorID] = DaySchedule{}
		}
		byDoctor[w.DoctorID][w.Day] = append(byDoctor[w.DoctorID][w.Day], s.expand(w)...)
	}

	result := make([]DoctorSchedule, 0, len(doctors))
	for _, d := range doctors {
		entry := newDoctorSchedule(d)
		if days, ok := byDoctor[d.ID]; ok {
			entry.Days = days
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *Service) expand(w Window) []Slot {
	labels := timeslot.Generate(w.StartTime, w.EndTime, s.slotStep)
	slots := make([]Slot, 0, len(labels))
	stepMin := int(s.slotStep.Minutes())
	for _, start := range labels {
		m, _ := timeslot.Minutes(start)
		end := m + stepMin
		slots = append(slots, Slot{
			WindowID:  w.ID,
			StartTime: start,
			EndTime:   fmt.Sprintf("%02d:%02d", end/60, end%60),
		})
	}
	return slots
}

func (s *Service) validateWindow(day, start, end string) error {
	if !timeslot.ValidDay(day) || !timeslot.ValidClock(start) || !timeslot.ValidClock(end) {
		return ErrInvalidWindow
	}

	sm, _ := timeslot.Minutes(start)
	em, _ := timeslot.Minutes(end)
	if em <= sm {
		return ErrInvalidWindow
	}

	if s.pastDay(day) {
		return ErrPastDay
	}
	return nil
}

func (s *Service) checkOverlap(ctx context.Context, doctorID uuid.UUID, day, start, end string, excludeID uuid.UUID) error {
	existing, err := s.repo.ListByDoctorDay(ctx, doctorID, day)
	if err != nil {
		return fmt.Errorf("list windows: %w", err)
	}

	for _, other := range existing {
		if other.ID == excludeID {
			continue
		}
		if timeslot.Overlaps(start, end, other.StartTime, other.EndTime) {
			return ErrWindowOverlap
		}
	}
	return nil
}

func (s *Service) pastDay(day string) bool {
	d, err := timeslot.ParseDay(day)
	if err != nil {
		return true
	}
	return d.Before(timeslot.Today(s.now()))
}

func (s *Service) horizon() (from, to string) {
	today := timeslot.Today(s.now())
	return today.Format(timeslot.DayLayout),
		today.AddDate(0, 0, s.horizonDays).Format(timeslot.DayLayout)
}
