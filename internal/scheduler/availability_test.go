package scheduler

import "testing"

func booking(id string, start, end int) Booking {
	return Booking{
		PresentationID: id,
		Date:           "2025-01-10",
		Interval:       Interval{Start: start, End: end},
		VenueID:        "venue-1",
		ExaminerIDs:    []string{"examiner-1"},
		StudentIDs:     []string{"student-1"},
	}
}

func TestCheckSlot(t *testing.T) {
	existing := []Booking{booking("pres-1", 600, 660)} // 10:00-11:00

	t.Run("venue conflict on overlap", func(t *testing.T) {
		conflicts := CheckSlot(existing, SlotRequest{
			Date:     "2025-01-10",
			Interval: Interval{Start: 630, End: 690}, // 10:30-11:30
			VenueID:  "venue-1",
		})
		if len(conflicts) != 1 {
			t.Fatalf("expected 1 conflict, got %d", len(conflicts))
		}
		if conflicts[0].Dimension != DimensionVenue {
			t.Fatalf("expected venue dimension, got %s", conflicts[0].Dimension)
		}
		if conflicts[0].PresentationID != "pres-1" {
			t.Fatalf("expected pres-1, got %s", conflicts[0].PresentationID)
		}
	})

	t.Run("boundary-adjacent slot is free", func(t *testing.T) {
		free := SlotFree(existing, SlotRequest{
			Date:        "2025-01-10",
			Interval:    Interval{Start: 660, End: 720}, // 11:00-12:00
			VenueID:     "venue-1",
			ExaminerIDs: []string{"examiner-1"},
			StudentIDs:  []string{"student-1"},
		})
		if !free {
			t.Fatal("expected slot ending/starting at the boundary to be free")
		}
	})

	t.Run("each dimension probes independently", func(t *testing.T) {
		conflicts := CheckSlot(existing, SlotRequest{
			Date:        "2025-01-10",
			Interval:    Interval{Start: 630, End: 690},
			VenueID:     "venue-2",
			ExaminerIDs: []string{"examiner-1"},
			StudentIDs:  []string{"student-9"},
		})
		if len(conflicts) != 1 {
			t.Fatalf("expected 1 conflict, got %d", len(conflicts))
		}
		if conflicts[0].Dimension != DimensionExaminer {
			t.Fatalf("expected examiner dimension, got %s", conflicts[0].Dimension)
		}
	})

	t.Run("student conflict alone rejects", func(t *testing.T) {
		conflicts := CheckSlot(existing, SlotRequest{
			Date:       "2025-01-10",
			Interval:   Interval{Start: 630, End: 690},
			StudentIDs: []string{"student-1"},
		})
		if len(conflicts) != 1 || conflicts[0].Dimension != DimensionStudent {
			t.Fatalf("expected a single student conflict, got %+v", conflicts)
		}
	})

	t.Run("empty venue skips the venue dimension", func(t *testing.T) {
		conflicts := CheckSlot(existing, SlotRequest{
			Date:     "2025-01-10",
			Interval: Interval{Start: 630, End: 690},
		})
		if len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("other dates never conflict", func(t *testing.T) {
		free := SlotFree(existing, SlotRequest{
			Date:        "2025-01-11",
			Interval:    Interval{Start: 600, End: 660},
			VenueID:     "venue-1",
			ExaminerIDs: []string{"examiner-1"},
			StudentIDs:  []string{"student-1"},
		})
		if !free {
			t.Fatal("expected booking on a different date to be ignored")
		}
	})

	t.Run("excluded presentation never blocks itself", func(t *testing.T) {
		free := SlotFree(existing, SlotRequest{
			Date:        "2025-01-10",
			Interval:    Interval{Start: 600, End: 660},
			VenueID:     "venue-1",
			ExaminerIDs: []string{"examiner-1"},
			StudentIDs:  []string{"student-1"},
			ExcludeID:   "pres-1",
		})
		if !free {
			t.Fatal("expected the excluded booking to be skipped")
		}
	})

	t.Run("mutual exclusion is symmetric", func(t *testing.T) {
		a := booking("a", 600, 660)
		b := booking("b", 630, 690)

		if SlotFree([]Booking{a}, SlotRequest{Date: b.Date, Interval: b.Interval, VenueID: b.VenueID, ExaminerIDs: b.ExaminerIDs, StudentIDs: b.StudentIDs}) {
			t.Fatal("expected b to be unavailable while a exists")
		}
		if SlotFree([]Booking{b}, SlotRequest{Date: a.Date, Interval: a.Interval, VenueID: a.VenueID, ExaminerIDs: a.ExaminerIDs, StudentIDs: a.StudentIDs}) {
			t.Fatal("expected a to be unavailable while b exists")
		}
	})
}
