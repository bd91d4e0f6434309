package date

import (
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2025-07-01", New(2025, time.July, 1), false},
		{"2025-7-1", New(2025, time.July, 1), false},
		{"not-a-date", Date{}, true},
	}
	for _, tc := range testCases {
		got, err := Parse(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestAddMonths(t *testing.T) {
	testCases := []struct {
		name string
		in   Date
		n    int
		want Date
	}{
		{"Forward", New(2025, time.January, 15), 2, New(2025, time.March, 15)},
		{"Across Year", New(2025, time.November, 1), 3, New(2026, time.February, 1)},
		{"Backward", New(2025, time.March, 1), -1, New(2025, time.February, 1)},
		{"Overflowing Day", New(2025, time.January, 31), 1, New(2025, time.March, 3)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.AddMonths(tc.n); got != tc.want {
				t.Errorf("AddMonths(%d) = %v, want %v", tc.n, got, tc.want)
			}
		})
	}
}

func TestMonthBoundaries(t *testing.T) {
	d := New(2024, time.February, 15)
	if got, want := d.StartOfMonth(), New(2024, time.February, 1); got != want {
		t.Errorf("StartOfMonth() = %v, want %v", got, want)
	}
	if got, want := d.EndOfMonth(), New(2024, time.February, 29); got != want {
		t.Errorf("EndOfMonth() = %v, want %v", got, want)
	}
}

func TestUnix(t *testing.T) {
	d := New(1970, time.January, 2)
	if got := d.Unix(); got != 86400 {
		t.Errorf("Unix() = %d, want 86400", got)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	d := New(2025, time.September, 8)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(b) != `"2025-09-08"` {
		t.Errorf("MarshalJSON() = %s, want %q", b, "2025-09-08")
	}
	var got Date
	if err := got.UnmarshalJSON(b); err != nil {
		t.Fatalf("UnmarshalJSON() error = %v", err)
	}
	if got != d {
		t.Errorf("round trip = %v, want %v", got, d)
	}
}
