package appointment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyanshsolanki/medilink-assignment3/internal/auth"
	"github.com/priyanshsolanki/medilink-assignment3/internal/notification"
	redisclient "github.com/priyanshsolanki/medilink-assignment3/internal/redis"
	"github.com/priyanshsolanki/medilink-assignment3/internal/user"
)

type memRepo struct {
	appts map[uuid.UUID]*Appointment
}

func newMemRepo() *memRepo {
	return &memRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *memRepo) Create(ctx context.Context, a *Appointment) error {
	if _, err := m.FindActiveBySlot(ctx, a.DoctorID, a.Day, a.SlotTime, uuid.Nil); err == nil {
		return ErrSlotTaken
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	m.appts[a.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) FindActiveBySlot(ctx context.Context, doctorID uuid.UUID, day, slotTime string, excludeID uuid.UUID) (*Appointment, error) {
	for _, a := range m.appts {
		if a.DoctorID == doctorID && a.Day == day && a.SlotTime == slotTime &&
			a.Status != StatusCancelled && a.ID != excludeID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrAppointmentNotFound
}

func (m *memRepo) UpdateSlot(ctx context.Context, id uuid.UUID, day, slotTime string) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if _, err := m.FindActiveBySlot(ctx, a.DoctorID, day, slotTime, id); err == nil {
		return nil, ErrSlotTaken
	}
	a.Day = day
	a.SlotTime = slotTime
	cp := *a
	return &cp, nil
}

func (m *memRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a.Status = status
	cp := *a
	return &cp, nil
}

func (m *memRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Detail, error) {
	var out []Detail
	for _, a := range m.appts {
		if a.PatientID == patientID {
			out = append(out, Detail{Appointment: *a})
		}
	}
	return out, nil
}

func (m *memRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Detail, error) {
	var out []Detail
	for _, a := range m.appts {
		if a.DoctorID == doctorID {
			out = append(out, Detail{Appointment: *a})
		}
	}
	return out, nil
}

type memUsers struct {
	users map[uuid.UUID]*user.User
}

func newMemUsers(users ...*user.User) *memUsers {
	m := &memUsers{users: make(map[uuid.UUID]*user.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) Create(ctx context.Context, u *user.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *memUsers) ListDoctors(ctx context.Context) ([]user.User, error) {
	var out []user.User
	for _, u := range m.users {
		if u.Role == user.RoleDoctor {
			out = append(out, *u)
		}
	}
	return out, nil
}

// fixedSlots offers the same slot list for every doctor and day it knows.
type fixedSlots struct {
	byDay map[string][]string
}

func (f *fixedSlots) OfferedSlots(ctx context.Context, doctorID uuid.UUID, day string) ([]string, error) {
	return f.byDay[day], nil
}

type scheduled struct {
	userID    uuid.UUID
	relatedID uuid.UUID
	typ       notification.Type
	message   string
	method    notification.DeliveryMethod
	at        time.Time
}

type recordingNotifier struct {
	calls []scheduled
}

func (r *recordingNotifier) Schedule(ctx context.Context, userID, relatedID uuid.UUID, typ notification.Type, message string, method notification.DeliveryMethod, at time.Time) (*notification.Notification, error) {
	r.calls = append(r.calls, scheduled{userID, relatedID, typ, message, method, at})
	return &notification.Notification{ID: uuid.New(), UserID: userID}, nil
}

type stubLinks struct {
	err error
}

func (s *stubLinks) Issue(appointmentID uuid.UUID, day, clock string, requester auth.Actor) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("https://call.example.com/%s?token=tok", appointmentID), nil
}

// passLocker runs the critical section inline.
type passLocker struct{}

func (passLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type busyLocker struct{}

func (busyLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

type fixture struct {
	svc      *Service
	repo     *memRepo
	notifier *recordingNotifier
	patient  *user.User
	doctor   *user.User
}

func testClock() time.Time {
	return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	patient := &user.User{ID: uuid.New(), Name: "Ada Nowak", Email: "ada@example.com", Role: user.RolePatient}
	doctor := &user.User{ID: uuid.New(), Name: "Okafor", Email: "okafor@example.com", Role: user.RoleDoctor}

	repo := newMemRepo()
	notifier := &recordingNotifier{}
	slots := &fixedSlots{byDay: map[string][]string{
		"2025-06-02": {"09:00", "09:30", "10:00", "14:00", "14:30"},
		"2025-06-03": {"09:00", "09:30"},
	}}

	svc := NewService(repo, newMemUsers(patient, doctor), slots, notifier, &stubLinks{}, passLocker{}, 24*time.Hour, zerolog.Nop())
	svc.now = testClock

	return &fixture{svc: svc, repo: repo, notifier: notifier, patient: patient, doctor: doctor}
}

func (f *fixture) patientActor() auth.Actor {
	return auth.Actor{ID: f.patient.ID, Role: user.RolePatient, Name: f.patient.Name}
}

func (f *fixture) doctorActor() auth.Actor {
	return auth.Actor{ID: f.doctor.ID, Role: user.RoleDoctor, Name: f.doctor.Name}
}

func TestBookSuccess(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Book(context.Background(), f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "10:00")
	require.NoError(t, err)
	require.Empty(t, res.Unavailable)
	require.NotNil(t, res.Appointment)
	assert.Equal(t, StatusConfirmed, res.Appointment.Status)
	assert.NotEmpty(t, res.CallLink)

	// One reminder intent per party, due 24h before the slot.
	require.Len(t, f.notifier.calls, 2)
	wantAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for _, c := range f.notifier.calls {
		assert.Equal(t, notification.TypeAppointment, c.typ)
		assert.Equal(t, notification.MethodEmail, c.method)
		assert.Equal(t, res.Appointment.ID, c.relatedID)
		assert.Equal(t, wantAt, c.at)
	}
	assert.Equal(t, f.patient.ID, f.notifier.calls[0].userID)
	assert.Equal(t, f.doctor.ID, f.notifier.calls[1].userID)
}

func TestBookAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Book(ctx, f.doctorActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "10:00")
	assert.ErrorIs(t, err, ErrForbidden)

	other := auth.Actor{ID: uuid.New(), Role: user.RolePatient}
	_, err = f.svc.Book(ctx, other, f.patient.ID, f.doctor.ID, "2025-06-02", "10:00")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBookInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "tomorrow", "10:00")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "10am")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBookSoftOutcomes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// No windows at all on this day.
	res, err := f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-04", "10:00")
	require.NoError(t, err)
	assert.Equal(t, MsgNoAvailability, res.Unavailable)
	assert.Nil(t, res.Appointment)

	// Day has slots but not this one.
	res, err = f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "11:00")
	require.NoError(t, err)
	assert.Equal(t, MsgSlotNotOffered, res.Unavailable)

	// Second booking of the same slot loses.
	res, err = f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "10:00")
	require.NoError(t, err)
	require.Empty(t, res.Unavailable)

	res, err = f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "10:00")
	require.NoError(t, err)
	assert.Equal(t, MsgSlotTaken, res.Unavailable)

	// Soft outcomes schedule nothing.
	assert.Len(t, f.notifier.calls, 2)
}

func TestBookLockBusy(t *testing.T) {
	f := newFixture(t)
	f.svc.locker = busyLocker{}

	_, err := f.svc.Book(context.Background(), f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "10:00")
	assert.ErrorIs(t, err, ErrSlotBeingBooked)
}

func TestCancelFreesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "10:00")
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, f.patientActor(), res.Appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	// The cancelled row no longer occupies the slot.
	res, err = f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "10:00")
	require.NoError(t, err)
	assert.Empty(t, res.Unavailable)
	require.NotNil(t, res.Appointment)
}

func TestCancelAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "10:00")
	require.NoError(t, err)

	stranger := auth.Actor{ID: uuid.New(), Role: user.RolePatient}
	_, err = f.svc.Cancel(ctx, stranger, res.Appointment.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Cancel(ctx, f.doctorActor(), res.Appointment.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	admin := auth.Actor{ID: uuid.New(), Role: user.RoleAdmin}
	_, err = f.svc.Cancel(ctx, admin, res.Appointment.ID)
	assert.NoError(t, err)
}

func TestRescheduleMovesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "14:00")
	require.NoError(t, err)

	moved, link, err := f.svc.Reschedule(ctx, f.patientActor(), res.Appointment.ID, "2025-06-02", "14:30")
	require.NoError(t, err)
	assert.Equal(t, "14:30", moved.SlotTime)
	assert.NotEmpty(t, link)

	// Reminder intents for the new slot, 24h before it.
	require.Len(t, f.notifier.calls, 4)
	last := f.notifier.calls[len(f.notifier.calls)-1]
	assert.Equal(t, notification.TypeReschedule, last.typ)
	assert.Equal(t, time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC), last.at)
}

func TestRescheduleOwnSlotIsNotAConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "14:00")
	require.NoError(t, err)

	moved, _, err := f.svc.Reschedule(ctx, f.patientActor(), res.Appointment.ID, "2025-06-02", "14:00")
	require.NoError(t, err)
	assert.Equal(t, "14:00", moved.SlotTime)
}

func TestRescheduleConflictsAreHardErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "14:00")
	require.NoError(t, err)
	second, err := f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "14:30")
	require.NoError(t, err)
	_ = first

	_, _, err = f.svc.Reschedule(ctx, f.patientActor(), second.Appointment.ID, "2025-06-02", "14:00")
	assert.ErrorIs(t, err, ErrSlotTaken)

	_, _, err = f.svc.Reschedule(ctx, f.patientActor(), second.Appointment.ID, "2025-06-04", "10:00")
	assert.ErrorIs(t, err, ErrNoAvailability)

	_, _, err = f.svc.Reschedule(ctx, f.patientActor(), second.Appointment.ID, "2025-06-02", "11:00")
	assert.ErrorIs(t, err, ErrSlotNotOffered)
}

func TestRescheduleAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "14:00")
	require.NoError(t, err)

	stranger := auth.Actor{ID: uuid.New(), Role: user.RolePatient}
	_, _, err = f.svc.Reschedule(ctx, stranger, res.Appointment.ID, "2025-06-02", "14:30")
	assert.ErrorIs(t, err, ErrForbidden)

	// Doctors and admins may move any appointment.
	_, _, err = f.svc.Reschedule(ctx, f.doctorActor(), res.Appointment.ID, "2025-06-02", "14:30")
	assert.NoError(t, err)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "10:00")
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.patientActor(), res.Appointment.ID, StatusCompleted)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdateStatus(ctx, f.doctorActor(), res.Appointment.ID, Status("done"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	updated, err := f.svc.UpdateStatus(ctx, f.doctorActor(), res.Appointment.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)

	// Status updates notify immediately, not at reminder time.
	last := f.notifier.calls[len(f.notifier.calls)-1]
	assert.Equal(t, notification.TypeStatusUpdate, last.typ)
	assert.Equal(t, testClock(), last.at)
}

func TestCallLinkAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Book(ctx, f.patientActor(), f.patient.ID, f.doctor.ID, "2025-06-02", "10:00")
	require.NoError(t, err)

	link, err := f.svc.CallLink(ctx, f.doctorActor(), res.Appointment.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, link)

	stranger := auth.Actor{ID: uuid.New(), Role: user.RolePatient}
	_, err = f.svc.CallLink(ctx, stranger, res.Appointment.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListByDoctorRestricted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	otherDoctor := auth.Actor{ID: uuid.New(), Role: user.RoleDoctor}
	_, err := f.svc.ListByDoctor(ctx, otherDoctor, f.doctor.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.ListByDoctor(ctx, f.doctorActor(), f.doctor.ID)
	assert.NoError(t, err)
}
