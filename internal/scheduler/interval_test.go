package scheduler

import "testing"

func TestIntervalOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", Interval{600, 660}, Interval{720, 780}, false},
		{"contained", Interval{600, 720}, Interval{630, 660}, true},
		{"partial", Interval{600, 660}, Interval{630, 690}, true},
		{"identical", Interval{600, 660}, Interval{600, 660}, true},
		{"touching end to start", Interval{600, 660}, Interval{660, 720}, false},
		{"touching start to end", Interval{660, 720}, Interval{600, 660}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v (symmetry)", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	t.Run("accepts well-formed times", func(t *testing.T) {
		minutes, err := ParseClock("10:30")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if minutes != 630 {
			t.Fatalf("expected 630, got %d", minutes)
		}
	})

	t.Run("round trips through FormatClock", func(t *testing.T) {
		for _, value := range []string{"00:00", "08:00", "16:30", "23:59"} {
			minutes, err := ParseClock(value)
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", value, err)
			}
			if got := FormatClock(minutes); got != value {
				t.Fatalf("round trip of %q produced %q", value, got)
			}
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		for _, value := range []string{"", "10", "24:00", "12:60", "9:5", "ab:cd"} {
			if _, err := ParseClock(value); err == nil {
				t.Fatalf("expected error for %q", value)
			}
		}
	})
}

func TestWeekday(t *testing.T) {
	day, err := Weekday("2025-01-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day != "Fri" {
		t.Fatalf("expected Fri, got %q", day)
	}

	if _, err := Weekday("2025-13-40"); err == nil {
		t.Fatal("expected error for invalid date")
	}
}
