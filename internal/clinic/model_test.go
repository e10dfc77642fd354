package clinic

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "09:00", want: TimeOfDay{Hour: 9}},
		{in: "00:00", want: TimeOfDay{}},
		{in: "23:59", want: TimeOfDay{Hour: 23, Minute: 59}},
		{in: "16:30", want: TimeOfDay{Hour: 16, Minute: 30}},
		{in: "9:00", wantErr: true},
		{in: "24:00", wantErr: true},
		{in: "09:60", wantErr: true},
		{in: "0900", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTimeOfDayString_ZeroPadded(t *testing.T) {
	got := TimeOfDay{Hour: 8, Minute: 5}.String()
	if got != "08:05" {
		t.Errorf("String() = %q, want %q", got, "08:05")
	}
}

func TestWorkingHoursContains_HalfOpen(t *testing.T) {
	w := WorkingHours{Start: TimeOfDay{Hour: 9}, End: TimeOfDay{Hour: 17}}

	if !w.Contains(TimeOfDay{Hour: 9}) {
		t.Error("opening time should be inside the window")
	}
	if w.Contains(TimeOfDay{Hour: 17}) {
		t.Error("closing time should be outside the window")
	}
	if !w.Contains(TimeOfDay{Hour: 16, Minute: 59}) {
		t.Error("one minute before closing should be inside the window")
	}
	if w.Contains(TimeOfDay{Hour: 8, Minute: 59}) {
		t.Error("one minute before opening should be outside the window")
	}
}

func TestAppointmentOverlaps(t *testing.T) {
	a := Appointment{StartsAt: at(9, 0), Duration: 30}

	// Back-to-back is not overlap.
	if a.Overlaps(at(9, 30), at(10, 0)) {
		t.Error("[09:00,09:30) and [09:30,10:00) should not overlap")
	}
	if a.Overlaps(at(8, 30), at(9, 0)) {
		t.Error("[09:00,09:30) and [08:30,09:00) should not overlap")
	}

	if !a.Overlaps(at(9, 15), at(9, 45)) {
		t.Error("[09:00,09:30) and [09:15,09:45) should overlap")
	}
	if !a.Overlaps(at(8, 45), at(9, 15)) {
		t.Error("[09:00,09:30) and [08:45,09:15) should overlap")
	}
	if !a.Overlaps(at(8, 0), at(11, 0)) {
		t.Error("a containing interval should overlap")
	}
}

func TestTimeOfDayOf_UsesUTC(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	ts := time.Date(2024, 1, 1, 11, 0, 0, 0, loc) // 09:00 UTC

	got := TimeOfDayOf(ts)
	if (got != TimeOfDay{Hour: 9}) {
		t.Errorf("TimeOfDayOf = %v, want 09:00", got)
	}
}
