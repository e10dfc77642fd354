package clinic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/gi-t-ansari/babysteps-backend/internal/redis"
)

const (
	// Candidate slots are generated on a fixed half-hour grid.
	SlotIntervalMinutes = 30

	MinAppointmentMinutes = 15
	MaxAppointmentMinutes = 120
)

var (
	ErrInvalidDuration       = errors.New("duration must be between 15 and 120 minutes")
	ErrInvalidDate           = errors.New("invalid date")
	ErrInvalidWorkingHours   = errors.New("working hours start must be before end")
	ErrOutsideWorkingHours   = errors.New("appointment time is outside of working hours")
	ErrSlotConflict          = errors.New("time slot is already booked")
	ErrMissingField          = errors.New("missing required field")
	ErrDoctorHasAppointments = errors.New("doctor still has booked appointments")
	ErrDoctorBusy            = errors.New("doctor is currently being booked, please retry")
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
}

func NewService(repo Repository, locker redisclient.Locker) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
	}
}

// Doctor directory

type DoctorParams struct {
	Name           string
	WorkingHours   WorkingHours
	Specialization *string
}

func (p DoctorParams) validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	if (p.WorkingHours == WorkingHours{}) {
		return fmt.Errorf("%w: workingHours", ErrMissingField)
	}
	if !p.WorkingHours.Valid() {
		return ErrInvalidWorkingHours
	}
	return nil
}

func (s *Service) CreateDoctor(ctx context.Context, p DoctorParams) (*Doctor, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	d := &Doctor{
		ID:             uuid.New(),
		Name:           p.Name,
		WorkingHours:   p.WorkingHours,
		Specialization: p.Specialization,
	}

	created, err := s.repo.CreateDoctor(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	return created, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.repo.GetDoctorByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	return d, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]Doctor, error) {
	doctors, err := s.repo.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, p DoctorParams) (*Doctor, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	d := &Doctor{
		ID:             id,
		Name:           p.Name,
		WorkingHours:   p.WorkingHours,
		Specialization: p.Specialization,
	}

	updated, err := s.repo.UpdateDoctor(ctx, d)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update doctor: %w", err)
	}
	return updated, nil
}

// DeleteDoctor removes a doctor record. Deletion is refused while appointments
// still reference the doctor, so the ledger never holds orphaned bookings.
func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetDoctorByID(ctx, id); err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return err
		}
		return fmt.Errorf("load doctor: %w", err)
	}

	n, err := s.repo.CountAppointmentsForDoctor(ctx, id)
	if err != nil {
		return fmt.Errorf("count appointments: %w", err)
	}
	if n > 0 {
		return ErrDoctorHasAppointments
	}

	if err := s.repo.DeleteDoctor(ctx, id); err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return err
		}
		return fmt.Errorf("delete doctor: %w", err)
	}
	return nil
}

// Appointment ledger

type AppointmentParams struct {
	DoctorID        uuid.UUID
	StartsAt        time.Time
	Duration        int // minutes
	AppointmentType string
	PatientName     string
	Notes           *string
}

func (p AppointmentParams) validate() error {
	if p.DoctorID == uuid.Nil {
		return fmt.Errorf("%w: doctorId", ErrMissingField)
	}
	if p.StartsAt.IsZero() {
		return fmt.Errorf("%w: date", ErrMissingField)
	}
	if p.AppointmentType == "" {
		return fmt.Errorf("%w: appointmentType", ErrMissingField)
	}
	if p.PatientName == "" {
		return fmt.Errorf("%w: patientName", ErrMissingField)
	}
	if p.Duration < MinAppointmentMinutes || p.Duration > MaxAppointmentMinutes {
		return ErrInvalidDuration
	}
	return nil
}

// CreateAppointment books a slot for a patient after admission checks. The
// check-then-book section runs under a per-doctor lock so two concurrent
// requests for the same doctor cannot both pass the overlap check.
func (s *Service) CreateAppointment(ctx context.Context, p AppointmentParams) (*Appointment, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	doctor, err := s.repo.GetDoctorByID(ctx, p.DoctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	var created *Appointment

	err = s.locker.WithDoctorLock(ctx, doctor.ID, func(lockCtx context.Context) error {
		if err := s.checkAdmission(lockCtx, doctor, p.StartsAt, p.Duration, uuid.Nil); err != nil {
			return err
		}

		a := &Appointment{
			ID:              uuid.New(),
			DoctorID:        doctor.ID,
			StartsAt:        p.StartsAt,
			Duration:        p.Duration,
			AppointmentType: p.AppointmentType,
			PatientName:     p.PatientName,
			Notes:           p.Notes,
		}

		created, err = s.repo.CreateAppointment(lockCtx, a)
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrDoctorBusy
		}
		return nil, err
	}

	return created, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	detail, err := s.repo.GetAppointmentDetail(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return detail, nil
}

func (s *Service) ListAppointments(ctx context.Context) ([]AppointmentDetail, error) {
	appointments, err := s.repo.ListAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appointments, nil
}

// UpdateAppointment replaces every mutable field and re-runs admission. The
// appointment being edited is excluded from the overlap check so it cannot
// conflict with itself.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, p AppointmentParams) (*Appointment, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetAppointmentByID(ctx, id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	doctor, err := s.repo.GetDoctorByID(ctx, p.DoctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	var updated *Appointment

	err = s.locker.WithDoctorLock(ctx, doctor.ID, func(lockCtx context.Context) error {
		if err := s.checkAdmission(lockCtx, doctor, p.StartsAt, p.Duration, id); err != nil {
			return err
		}

		a := &Appointment{
			ID:              id,
			DoctorID:        doctor.ID,
			StartsAt:        p.StartsAt,
			Duration:        p.Duration,
			AppointmentType: p.AppointmentType,
			PatientName:     p.PatientName,
			Notes:           p.Notes,
		}

		updated, err = s.repo.UpdateAppointment(lockCtx, a)
		if err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				return err
			}
			return fmt.Errorf("update appointment: %w", err)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrDoctorBusy
		}
		return nil, err
	}

	return updated, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return err
		}
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// checkAdmission decides whether [startsAt, startsAt+duration) is bookable for
// the doctor. The start must fall inside the working window [start, end); a
// booking starting exactly at closing time is rejected, one starting at opening
// time is admitted. Only the start is checked against the window, so an
// appointment may run past closing time.
func (s *Service) checkAdmission(ctx context.Context, doctor *Doctor, startsAt time.Time, duration int, exclude uuid.UUID) error {
	if !doctor.WorkingHours.Contains(TimeOfDayOf(startsAt)) {
		return ErrOutsideWorkingHours
	}

	proposedEnd := startsAt.Add(time.Duration(duration) * time.Minute)

	existing, err := s.repo.ListAppointmentsForDoctor(ctx, doctor.ID, exclude)
	if err != nil {
		return fmt.Errorf("list appointments for doctor: %w", err)
	}

	for _, a := range existing {
		if a.Overlaps(startsAt, proposedEnd) {
			return ErrSlotConflict
		}
	}

	return nil
}

// AvailableSlots lists the open half-hour slot starts for a doctor on the
// given calendar day, ascending, formatted "HH:MM". A candidate counts as
// booked only when an appointment starts at exactly that wall-clock time.
func (s *Service) AvailableSlots(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]string, error) {
	doctor, err := s.repo.GetDoctorByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	u := day.UTC()
	dayStart := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)

	appointments, err := s.repo.ListAppointmentsForDoctorOnDay(ctx, doctorID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("list appointments for day: %w", err)
	}

	booked := make(map[string]bool, len(appointments))
	for _, a := range appointments {
		booked[TimeOfDayOf(a.StartsAt).String()] = true
	}

	slots := []string{}
	for m := doctor.WorkingHours.Start.Minutes(); m < doctor.WorkingHours.End.Minutes(); m += SlotIntervalMinutes {
		t := TimeOfDay{Hour: m / 60, Minute: m % 60}.String()
		if !booked[t] {
			slots = append(slots, t)
		}
	}

	return slots, nil
}
