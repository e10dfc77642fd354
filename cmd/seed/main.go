package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/gi-t-ansari/babysteps-backend/internal/clinic"
	"github.com/gi-t-ansari/babysteps-backend/internal/db"
)

var specializations = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

var workingWindows = []clinic.WorkingHours{
	{Start: clinic.TimeOfDay{Hour: 8}, End: clinic.TimeOfDay{Hour: 16}},
	{Start: clinic.TimeOfDay{Hour: 9}, End: clinic.TimeOfDay{Hour: 17}},
	{Start: clinic.TimeOfDay{Hour: 10}, End: clinic.TimeOfDay{Hour: 18}},
	{Start: clinic.TimeOfDay{Hour: 8, Minute: 30}, End: clinic.TimeOfDay{Hour: 12, Minute: 30}},
}

var appointmentTypes = []string{
	"Routine Check-Up",
	"Follow-Up",
	"Consultation",
	"Vaccination",
	"Lab Review",
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "seed").Logger()
	logger.Info().Msg("seed starting")

	_ = godotenv.Load()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		logger.Fatal().Msg("POSTGRES_DSN is required")
	}

	doctorCount := 25
	if v := os.Getenv("SEED_DOCTORS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			doctorCount = n
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.ApplySchema(context.Background(), pool); err != nil {
		logger.Fatal().Err(err).Msg("apply schema")
	}
	logger.Info().Msg("schema applied")

	gofakeit.Seed(time.Now().UnixNano())

	doctors, err := seedDoctors(context.Background(), pool, doctorCount)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed doctors")
	}
	logger.Info().Int("count", len(doctors)).Msg("doctors seeded")

	booked, err := seedAppointments(context.Background(), pool, doctors)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed appointments")
	}
	logger.Info().Int("count", booked).Msg("appointments seeded")

	logger.Info().Msg("seed complete")
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) ([]clinic.Doctor, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	doctors := make([]clinic.Doctor, 0, count)
	for i := 0; i < count; i++ {
		spec := specializations[gofakeit.Number(0, len(specializations)-1)]
		d := clinic.Doctor{
			ID:             uuid.New(),
			Name:           "Dr. " + gofakeit.Name(),
			WorkingHours:   workingWindows[gofakeit.Number(0, len(workingWindows)-1)],
			Specialization: &spec,
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, specialization, work_start, work_end, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, d.ID, d.Name, d.Specialization, d.WorkingHours.Start.String(), d.WorkingHours.End.String())
		if err != nil {
			return nil, err
		}

		doctors = append(doctors, d)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return doctors, nil
}

// seedAppointments books a handful of half-hour visits per doctor on distinct
// slots over the coming week, so the seeded data satisfies the same
// no-overlap rule the service enforces.
func seedAppointments(ctx context.Context, pool *pgxpool.Pool, doctors []clinic.Doctor) (int, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	total := 0
	for _, d := range doctors {
		slotsPerDay := (d.WorkingHours.End.Minutes() - d.WorkingHours.Start.Minutes()) / clinic.SlotIntervalMinutes

		for day := 1; day <= 7; day++ {
			used := make(map[int]bool)
			perDay := gofakeit.Number(1, 3)

			for i := 0; i < perDay; i++ {
				slot := gofakeit.Number(0, slotsPerDay-1)
				if used[slot] {
					continue
				}
				used[slot] = true

				startMinute := d.WorkingHours.Start.Minutes() + slot*clinic.SlotIntervalMinutes
				startsAt := today.AddDate(0, 0, day).Add(time.Duration(startMinute) * time.Minute)

				_, err := tx.Exec(ctx, `
					INSERT INTO appointments (id, doctor_id, starts_at, duration_minutes, appointment_type, patient_name, notes, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, $6, NULL, now(), now())
				`, uuid.New(), d.ID, startsAt, clinic.SlotIntervalMinutes,
					appointmentTypes[gofakeit.Number(0, len(appointmentTypes)-1)], gofakeit.Name())
				if err != nil {
					return 0, err
				}
				total++
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return total, nil
}
