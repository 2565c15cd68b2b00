package scheduler

import "time"

// Slot ladder bounds: half-hour aligned starts from 08:00 through 16:30.
const (
	firstSlotStart = 8 * 60
	lastSlotStart  = 16*60 + 30
	slotStep       = 30
)

// DefaultWindowDays is the number of candidate calendar days considered.
const DefaultWindowDays = 14

// SuggestRequest carries everything the suggestion search needs. ExaminerIDs
// and VenueIDs fix the enumeration order; results are deterministic for a
// given input. LectureLoad maps an examiner to the number of timetable
// lecture entries on record for them.
type SuggestRequest struct {
	From           time.Time
	Days           int
	Duration       int
	NumExaminers   int
	StudentIDs     []string
	ExaminerIDs    []string
	VenueIDs       []string
	LectureLoad    map[string]int
	Existing       []Booking
	CheckExaminers bool
	ExcludeID      string
}

// Suggestion is a feasible (date, time, venue, examiner-set) tuple.
type Suggestion struct {
	Date        string
	Interval    Interval
	VenueID     string
	ExaminerIDs []string
}

// SuggestSlot runs the greedy first-feasible search: pick the least-loaded
// candidate date, then walk the half-hour start ladder and return the first
// slot for which the availability check passes and a valid examiner+venue
// combination can be formed. Ties break by enumeration order throughout:
// date ascending, start ascending, examiner list order.
func SuggestSlot(req SuggestRequest) (Suggestion, bool) {
	if req.Duration <= 0 || req.NumExaminers <= 0 {
		return Suggestion{}, false
	}
	days := req.Days
	if days <= 0 {
		days = DefaultWindowDays
	}

	date := pickDate(req.From, days, req.ExaminerIDs, req.LectureLoad)

	dayBookings := bookingsOn(req.Existing, date, req.ExcludeID)

	for start := firstSlotStart; start <= lastSlotStart; start += slotStep {
		slot := Interval{Start: start, End: start + req.Duration}
		if !slot.Valid() {
			continue
		}

		probe := SlotRequest{
			Date:       date,
			Interval:   slot,
			StudentIDs: req.StudentIDs,
			ExcludeID:  req.ExcludeID,
		}
		if req.CheckExaminers {
			probe.ExaminerIDs = req.ExaminerIDs
		}
		if !SlotFree(dayBookings, probe) {
			continue
		}

		examiners, venueID, ok := pickExaminersAndVenue(dayBookings, slot, req)
		if !ok {
			continue
		}

		return Suggestion{
			Date:        date,
			Interval:    slot,
			VenueID:     venueID,
			ExaminerIDs: examiners,
		}, true
	}

	return Suggestion{}, false
}

// pickDate scores each candidate day by the aggregate lecture load of the
// department's examiners and returns the minimum, earliest date winning ties.
// The load is not filtered by the candidate's weekday: every date in the
// window carries the same score, so in practice the earliest date wins.
func pickDate(from time.Time, days int, examinerIDs []string, load map[string]int) string {
	best := from
	bestScore := -1

	for offset := 0; offset < days; offset++ {
		day := from.AddDate(0, 0, offset)

		score := 0
		for _, examinerID := range examinerIDs {
			score += load[examinerID]
		}

		if bestScore < 0 || score < bestScore {
			best = day
			bestScore = score
		}
	}

	return best.Format(DateLayout)
}

// pickExaminersAndVenue forms the examiner set and venue for a candidate
// slot. Pairings already active that day are preferred so venue sprawl stays
// low; when they cannot fill the set, previously-unused examiners and the
// first unused venue are assigned instead.
func pickExaminersAndVenue(dayBookings []Booking, slot Interval, req SuggestRequest) ([]string, string, bool) {
	activeVenue := make(map[string]string)
	busyExaminer := make(map[string]bool)
	usedVenue := make(map[string]bool)
	busyVenue := make(map[string]bool)

	for _, booking := range dayBookings {
		usedVenue[booking.VenueID] = true
		if booking.Interval.Overlaps(slot) {
			busyVenue[booking.VenueID] = true
		}
		for _, examinerID := range booking.ExaminerIDs {
			if _, ok := activeVenue[examinerID]; !ok {
				activeVenue[examinerID] = booking.VenueID
			}
			if booking.Interval.Overlaps(slot) {
				busyExaminer[examinerID] = true
			}
		}
	}

	// Reschedule flow: the examiner set is fixed by the presentation being
	// moved, so only a venue needs choosing. The availability probe has
	// already confirmed every examiner is free at the slot.
	if req.CheckExaminers {
		venueID := ""
		for _, examinerID := range req.ExaminerIDs {
			if venue, active := activeVenue[examinerID]; active && !busyVenue[venue] {
				venueID = venue
				break
			}
		}
		if venueID == "" {
			for _, candidate := range req.VenueIDs {
				if !usedVenue[candidate] {
					venueID = candidate
					break
				}
			}
		}
		if venueID == "" || len(req.ExaminerIDs) < req.NumExaminers {
			return nil, "", false
		}
		return append([]string(nil), req.ExaminerIDs...), venueID, true
	}

	chosen := make([]string, 0, req.NumExaminers)
	picked := make(map[string]bool)
	venueID := ""

	// First pass: reuse examiner+venue pairings already active that day.
	for _, examinerID := range req.ExaminerIDs {
		if len(chosen) == req.NumExaminers {
			break
		}
		if busyExaminer[examinerID] || picked[examinerID] {
			continue
		}
		venue, active := activeVenue[examinerID]
		if !active || busyVenue[venue] {
			continue
		}
		if venueID == "" {
			venueID = venue
		} else if venue != venueID {
			continue
		}
		chosen = append(chosen, examinerID)
		picked[examinerID] = true
	}

	// Fallback: fill with examiners that have no booking that day.
	for _, examinerID := range req.ExaminerIDs {
		if len(chosen) == req.NumExaminers {
			break
		}
		if picked[examinerID] || busyExaminer[examinerID] {
			continue
		}
		if _, active := activeVenue[examinerID]; active {
			continue
		}
		chosen = append(chosen, examinerID)
		picked[examinerID] = true
	}

	if venueID == "" {
		for _, candidate := range req.VenueIDs {
			if !usedVenue[candidate] {
				venueID = candidate
				break
			}
		}
	}

	if len(chosen) < req.NumExaminers || venueID == "" {
		return nil, "", false
	}

	return chosen, venueID, true
}

func bookingsOn(existing []Booking, date, excludeID string) []Booking {
	var day []Booking
	for _, booking := range existing {
		if booking.Date != date {
			continue
		}
		if excludeID != "" && booking.PresentationID == excludeID {
			continue
		}
		day = append(day, booking)
	}
	return day
}
