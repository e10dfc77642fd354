package clinic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var specialization *string
	var workStart, workEnd string

	err := row.Scan(
		&d.ID,
		&d.Name,
		&specialization,
		&workStart,
		&workEnd,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	if d.WorkingHours.Start, err = ParseTimeOfDay(workStart); err != nil {
		return nil, fmt.Errorf("doctor %s work_start: %w", d.ID, err)
	}
	if d.WorkingHours.End, err = ParseTimeOfDay(workEnd); err != nil {
		return nil, fmt.Errorf("doctor %s work_end: %w", d.ID, err)
	}

	d.Specialization = specialization
	return &d, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var notes *string

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.StartsAt,
		&a.Duration,
		&a.AppointmentType,
		&a.PatientName,
		&notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Notes = notes
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Doctor directory

func (r *PgRepository) CreateDoctor(ctx context.Context, d *Doctor) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO doctors (id, name, specialization, work_start, work_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING id, name, specialization, work_start, work_end, created_at, updated_at
	`, d.ID, d.Name, d.Specialization, d.WorkingHours.Start.String(), d.WorkingHours.End.String())
	return scanDoctor(row)
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialization, work_start, work_end, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, specialization, work_start, work_end, created_at, updated_at
		FROM doctors
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) UpdateDoctor(ctx context.Context, d *Doctor) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE doctors
		SET name = $2,
		    specialization = $3,
		    work_start = $4,
		    work_end = $5,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, name, specialization, work_start, work_end, created_at, updated_at
	`, d.ID, d.Name, d.Specialization, d.WorkingHours.Start.String(), d.WorkingHours.End.String())
	return scanDoctor(row)
}

func (r *PgRepository) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *PgRepository) CountAppointmentsForDoctor(ctx context.Context, doctorID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM appointments WHERE doctor_id = $1
	`, doctorID).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Appointment ledger

func (r *PgRepository) CreateAppointment(ctx context.Context, a *Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, doctor_id, starts_at, duration_minutes, appointment_type, patient_name, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING id, doctor_id, starts_at, duration_minutes, appointment_type, patient_name, notes, created_at, updated_at
	`, a.ID, a.DoctorID, a.StartsAt, a.Duration, a.AppointmentType, a.PatientName, a.Notes)
	return scanAppointment(row)
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, starts_at, duration_minutes, appointment_type, patient_name, notes, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	appt, err := r.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	doctor, err := r.GetDoctorByID(ctx, appt.DoctorID)
	if err != nil && !errors.Is(err, ErrDoctorNotFound) {
		return nil, err
	}

	return &AppointmentDetail{Appointment: *appt, Doctor: doctor}, nil
}

func (r *PgRepository) ListAppointments(ctx context.Context) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.doctor_id, a.starts_at, a.duration_minutes, a.appointment_type, a.patient_name, a.notes, a.created_at, a.updated_at,
		       d.id, d.name, d.specialization, d.work_start, d.work_end, d.created_at, d.updated_at
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AppointmentDetail
	for rows.Next() {
		var a Appointment
		var d Doctor
		var notes, specialization *string
		var workStart, workEnd string

		err := rows.Scan(
			&a.ID, &a.DoctorID, &a.StartsAt, &a.Duration, &a.AppointmentType, &a.PatientName, &notes, &a.CreatedAt, &a.UpdatedAt,
			&d.ID, &d.Name, &specialization, &workStart, &workEnd, &d.CreatedAt, &d.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		a.Notes = notes
		d.Specialization = specialization
		if d.WorkingHours.Start, err = ParseTimeOfDay(workStart); err != nil {
			return nil, fmt.Errorf("doctor %s work_start: %w", d.ID, err)
		}
		if d.WorkingHours.End, err = ParseTimeOfDay(workEnd); err != nil {
			return nil, fmt.Errorf("doctor %s work_end: %w", d.ID, err)
		}

		result = append(result, AppointmentDetail{Appointment: a, Doctor: &d})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListAppointmentsForDoctor(ctx context.Context, doctorID, exclude uuid.UUID) ([]Appointment, error) {
	const base = `
		SELECT id, doctor_id, starts_at, duration_minutes, appointment_type, patient_name, notes, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1`

	var (
		rows pgx.Rows
		err  error
	)
	if exclude == uuid.Nil {
		rows, err = r.pool.Query(ctx, base, doctorID)
	} else {
		rows, err = r.pool.Query(ctx, base+` AND id <> $2`, doctorID, exclude)
	}
	if err != nil {
		return nil, err
	}

	return collectAppointments(rows)
}

func (r *PgRepository) ListAppointmentsForDoctorOnDay(ctx context.Context, doctorID uuid.UUID, dayStart time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, starts_at, duration_minutes, appointment_type, patient_name, notes, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		  AND starts_at >= $2
		  AND starts_at < $3
	`, doctorID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	return collectAppointments(rows)
}

func (r *PgRepository) UpdateAppointment(ctx context.Context, a *Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET doctor_id = $2,
		    starts_at = $3,
		    duration_minutes = $4,
		    appointment_type = $5,
		    patient_name = $6,
		    notes = $7,
		    updated_at = now()
		WHERE id = $1
		RETURNING id, doctor_id, starts_at, duration_minutes, appointment_type, patient_name, notes, created_at, updated_at
	`, a.ID, a.DoctorID, a.StartsAt, a.Duration, a.AppointmentType, a.PatientName, a.Notes)
	return scanAppointment(row)
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}
