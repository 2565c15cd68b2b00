package scheduler

// Booking is the slice of a presentation the availability checker needs:
// when it happens and which resources it occupies.
type Booking struct {
	PresentationID string
	Date           string
	Interval       Interval
	VenueID        string
	ExaminerIDs    []string
	StudentIDs     []string
}

// ConflictDimension names the resource dimension on which a slot collides.
type ConflictDimension string

const (
	// DimensionVenue indicates the venue is already booked.
	DimensionVenue ConflictDimension = "venue"
	// DimensionExaminer indicates an examiner is already booked.
	DimensionExaminer ConflictDimension = "examiner"
	// DimensionStudent indicates a student is already booked.
	DimensionStudent ConflictDimension = "student"
)

// Conflict identifies an existing booking that blocks a requested slot.
type Conflict struct {
	Dimension      ConflictDimension
	ResourceID     string
	PresentationID string
	Interval       Interval
}

// SlotRequest describes the slot whose availability is being probed. VenueID
// is optional: an empty value skips the venue dimension, used by reschedule
// suggestion flows that have not chosen a venue yet. ExcludeID removes one
// presentation from consideration so a booking never conflicts with itself.
type SlotRequest struct {
	Date        string
	Interval    Interval
	VenueID     string
	ExaminerIDs []string
	StudentIDs  []string
	ExcludeID   string
}

// CheckSlot probes each resource dimension independently against the supplied
// same-date bookings. A hit on any single dimension is sufficient to make the
// slot unavailable; the dimensions are never combined into one predicate.
func CheckSlot(existing []Booking, req SlotRequest) []Conflict {
	var conflicts []Conflict

	examiners := stringSet(req.ExaminerIDs)
	students := stringSet(req.StudentIDs)

	for _, booking := range existing {
		if booking.PresentationID == req.ExcludeID && req.ExcludeID != "" {
			continue
		}
		if booking.Date != req.Date {
			continue
		}
		if !booking.Interval.Overlaps(req.Interval) {
			continue
		}

		if req.VenueID != "" && booking.VenueID == req.VenueID {
			conflicts = append(conflicts, Conflict{
				Dimension:      DimensionVenue,
				ResourceID:     booking.VenueID,
				PresentationID: booking.PresentationID,
				Interval:       booking.Interval,
			})
		}

		for _, examinerID := range booking.ExaminerIDs {
			if _, ok := examiners[examinerID]; ok {
				conflicts = append(conflicts, Conflict{
					Dimension:      DimensionExaminer,
					ResourceID:     examinerID,
					PresentationID: booking.PresentationID,
					Interval:       booking.Interval,
				})
			}
		}

		for _, studentID := range booking.StudentIDs {
			if _, ok := students[studentID]; ok {
				conflicts = append(conflicts, Conflict{
					Dimension:      DimensionStudent,
					ResourceID:     studentID,
					PresentationID: booking.PresentationID,
					Interval:       booking.Interval,
				})
			}
		}
	}

	return conflicts
}

// SlotFree reports whether the requested slot has no conflict on any
// dimension.
func SlotFree(existing []Booking, req SlotRequest) bool {
	return len(CheckSlot(existing, req)) == 0
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		set[value] = struct{}{}
	}
	return set
}
