package clinic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func day() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestAvailableSlots_EmptyDay(t *testing.T) {
	svc, _ := newTestService()
	doc := seedDoctor(t, svc, "09:00", "17:00")

	slots, err := svc.AvailableSlots(context.Background(), doc.ID, day())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(slots) != 16 {
		t.Fatalf("got %d slots, want 16", len(slots))
	}
	if slots[0] != "09:00" {
		t.Errorf("first slot = %q, want %q", slots[0], "09:00")
	}
	if slots[len(slots)-1] != "16:30" {
		t.Errorf("last slot = %q, want %q", slots[len(slots)-1], "16:30")
	}

	// Strictly ascending on a 30-minute grid.
	for i := 1; i < len(slots); i++ {
		prev, _ := ParseTimeOfDay(slots[i-1])
		cur, _ := ParseTimeOfDay(slots[i])
		if cur.Minutes()-prev.Minutes() != 30 {
			t.Errorf("slots %q -> %q are not 30 minutes apart", slots[i-1], slots[i])
		}
	}
}

func TestAvailableSlots_ExcludesBookedStart(t *testing.T) {
	svc, _ := newTestService()
	doc := seedDoctor(t, svc, "09:00", "17:00")
	ctx := context.Background()

	if _, err := svc.CreateAppointment(ctx, apptParams(doc.ID, at(10, 0), 30)); err != nil {
		t.Fatalf("create: %v", err)
	}

	slots, err := svc.AvailableSlots(ctx, doc.ID, day())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(slots) != 15 {
		t.Fatalf("got %d slots, want 15", len(slots))
	}
	for _, s := range slots {
		if s == "10:00" {
			t.Error("booked slot 10:00 should not be listed")
		}
	}
}

// A booking only blocks the slot it starts on: a 60-minute appointment at
// 10:00 still leaves 10:30 listed. Exact-start matching is the documented
// contract of this endpoint.
func TestAvailableSlots_LongBookingBlocksOnlyItsStart(t *testing.T) {
	svc, _ := newTestService()
	doc := seedDoctor(t, svc, "09:00", "17:00")
	ctx := context.Background()

	if _, err := svc.CreateAppointment(ctx, apptParams(doc.ID, at(10, 0), 60)); err != nil {
		t.Fatalf("create: %v", err)
	}

	slots, err := svc.AvailableSlots(ctx, doc.ID, day())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]bool, len(slots))
	for _, s := range slots {
		seen[s] = true
	}
	if seen["10:00"] {
		t.Error("10:00 should be excluded")
	}
	if !seen["10:30"] {
		t.Error("10:30 should still be listed")
	}
}

func TestAvailableSlots_OtherDayUnaffected(t *testing.T) {
	svc, _ := newTestService()
	doc := seedDoctor(t, svc, "09:00", "17:00")
	ctx := context.Background()

	if _, err := svc.CreateAppointment(ctx, apptParams(doc.ID, at(10, 0), 30)); err != nil {
		t.Fatalf("create: %v", err)
	}

	slots, err := svc.AvailableSlots(ctx, doc.ID, day().AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 16 {
		t.Fatalf("got %d slots on the next day, want 16", len(slots))
	}
}

func TestAvailableSlots_ShortWindow(t *testing.T) {
	svc, _ := newTestService()
	doc := seedDoctor(t, svc, "08:30", "10:00")

	slots, err := svc.AvailableSlots(context.Background(), doc.ID, day())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"08:30", "09:00", "09:30"}
	if len(slots) != len(want) {
		t.Fatalf("got %v, want %v", slots, want)
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Errorf("slot[%d] = %q, want %q", i, slots[i], want[i])
		}
	}
}

func TestAvailableSlots_DoctorNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AvailableSlots(context.Background(), uuid.New(), day())
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("got %v, want ErrDoctorNotFound", err)
	}
}

func TestAvailableSlots_FullyBookedDayIsEmpty(t *testing.T) {
	svc, _ := newTestService()
	doc := seedDoctor(t, svc, "09:00", "10:00")
	ctx := context.Background()

	for _, start := range []time.Time{at(9, 0), at(9, 30)} {
		if _, err := svc.CreateAppointment(ctx, apptParams(doc.ID, start, 30)); err != nil {
			t.Fatalf("create at %v: %v", start, err)
		}
	}

	slots, err := svc.AvailableSlots(ctx, doc.ID, day())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %v, want no slots", slots)
	}
}
