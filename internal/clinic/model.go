package clinic

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// TimeOfDay is a wall-clock time within a day. It replaces the "HH:MM" string
// comparisons of the old backend; ordering is numeric, formatting stays
// zero-padded 24-hour.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a zero-padded 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: must be HH:MM", s)
	}
	hour, err := strconv.Atoi(s[:2])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	minute, err := strconv.Atoi(s[3:])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: out of range", s)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// TimeOfDayOf extracts the UTC wall-clock component of a timestamp.
func TimeOfDayOf(ts time.Time) TimeOfDay {
	u := ts.UTC()
	return TimeOfDay{Hour: u.Hour(), Minute: u.Minute()}
}

func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Minutes() < o.Minutes()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// WorkingHours is a doctor's daily availability window, half-open [Start, End).
type WorkingHours struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (w WorkingHours) Valid() bool {
	return w.Start.Before(w.End)
}

// Contains reports whether t falls inside the window. The opening bound is
// included, the closing bound excluded.
func (w WorkingHours) Contains(t TimeOfDay) bool {
	return t.Minutes() >= w.Start.Minutes() && t.Minutes() < w.End.Minutes()
}

type Doctor struct {
	ID             uuid.UUID
	Name           string
	WorkingHours   WorkingHours
	Specialization *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Appointment struct {
	ID              uuid.UUID
	DoctorID        uuid.UUID
	StartsAt        time.Time
	Duration        int // minutes
	AppointmentType string
	PatientName     string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// End is the exclusive end of the appointment interval [StartsAt, End).
func (a Appointment) End() time.Time {
	return a.StartsAt.Add(time.Duration(a.Duration) * time.Minute)
}

// Overlaps reports whether two half-open intervals intersect. Back-to-back
// appointments (one ends exactly when the other starts) do not overlap.
func (a Appointment) Overlaps(start, end time.Time) bool {
	return a.StartsAt.Before(end) && start.Before(a.End())
}

type AppointmentDetail struct {
	Appointment
	Doctor *Doctor
}
