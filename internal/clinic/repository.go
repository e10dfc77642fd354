package clinic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	CreateDoctor(ctx context.Context, d *Doctor) (*Doctor, error)
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)
	UpdateDoctor(ctx context.Context, d *Doctor) (*Doctor, error)
	DeleteDoctor(ctx context.Context, id uuid.UUID) error
	CountAppointmentsForDoctor(ctx context.Context, doctorID uuid.UUID) (int, error)

	CreateAppointment(ctx context.Context, a *Appointment) (*Appointment, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error)
	ListAppointments(ctx context.Context) ([]AppointmentDetail, error)

	// For conflict checks; exclude may be uuid.Nil.
	ListAppointmentsForDoctor(ctx context.Context, doctorID, exclude uuid.UUID) ([]Appointment, error)
	// For slot derivation: appointments starting within [dayStart, dayStart+24h).
	ListAppointmentsForDoctorOnDay(ctx context.Context, doctorID uuid.UUID, dayStart time.Time) ([]Appointment, error)

	UpdateAppointment(ctx context.Context, a *Appointment) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
}
