package clinic

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// memRepo is an in-memory Repository used to exercise the scheduling engine
// without Postgres.
type memRepo struct {
	mu           sync.Mutex
	doctors      map[uuid.UUID]Doctor
	appointments map[uuid.UUID]Appointment
}

func newMemRepo() *memRepo {
	return &memRepo{
		doctors:      make(map[uuid.UUID]Doctor),
		appointments: make(map[uuid.UUID]Appointment),
	}
}

func (r *memRepo) CreateDoctor(ctx context.Context, d *Doctor) (*Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	stored := *d
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.doctors[stored.ID] = stored
	return &stored, nil
}

func (r *memRepo) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (r *memRepo) ListDoctors(ctx context.Context) ([]Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []Doctor
	for _, d := range r.doctors {
		result = append(result, d)
	}
	return result, nil
}

func (r *memRepo) UpdateDoctor(ctx context.Context, d *Doctor) (*Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.doctors[d.ID]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	updated := *d
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.doctors[d.ID] = updated
	return &updated, nil
}

func (r *memRepo) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[id]; !ok {
		return ErrDoctorNotFound
	}
	delete(r.doctors, id)
	return nil
}

func (r *memRepo) CountAppointmentsForDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.appointments {
		if a.DoctorID == doctorID {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) CreateAppointment(ctx context.Context, a *Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	stored := *a
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.appointments[stored.ID] = stored
	return &stored, nil
}

func (r *memRepo) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *memRepo) GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	a, err := r.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	doctor, err := r.GetDoctorByID(ctx, a.DoctorID)
	if err != nil {
		doctor = nil
	}
	return &AppointmentDetail{Appointment: *a, Doctor: doctor}, nil
}

func (r *memRepo) ListAppointments(ctx context.Context) ([]AppointmentDetail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []AppointmentDetail
	for _, a := range r.appointments {
		d, ok := r.doctors[a.DoctorID]
		detail := AppointmentDetail{Appointment: a}
		if ok {
			doc := d
			detail.Doctor = &doc
		}
		result = append(result, detail)
	}
	return result, nil
}

func (r *memRepo) ListAppointmentsForDoctor(ctx context.Context, doctorID, exclude uuid.UUID) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.ID != exclude {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *memRepo) ListAppointmentsForDoctorOnDay(ctx context.Context, doctorID uuid.UUID, dayStart time.Time) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dayEnd := dayStart.Add(24 * time.Hour)
	var result []Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && !a.StartsAt.Before(dayStart) && a.StartsAt.Before(dayEnd) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *memRepo) UpdateAppointment(ctx context.Context, a *Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.appointments[a.ID]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	updated := *a
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.appointments[a.ID] = updated
	return &updated, nil
}

func (r *memRepo) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(r.appointments, id)
	return nil
}

// keyLocker serializes per doctor with in-process mutexes, standing in for
// the Redis locker.
type keyLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func (l *keyLocker) WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[uuid.UUID]*sync.Mutex)
	}
	m, ok := l.locks[doctorID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[doctorID] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

// Helpers

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, &keyLocker{}), repo
}

func seedDoctor(t *testing.T, svc *Service, start, end string) *Doctor {
	t.Helper()
	s, err := ParseTimeOfDay(start)
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		t.Fatalf("parse end: %v", err)
	}
	d, err := svc.CreateDoctor(context.Background(), DoctorParams{
		Name:         "Dr. Test",
		WorkingHours: WorkingHours{Start: s, End: e},
	})
	if err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	return d
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}

func apptParams(doctorID uuid.UUID, startsAt time.Time, duration int) AppointmentParams {
	return AppointmentParams{
		DoctorID:        doctorID,
		StartsAt:        startsAt,
		Duration:        duration,
		AppointmentType: "Routine Check-Up",
		PatientName:     "Pat Doe",
	}
}
