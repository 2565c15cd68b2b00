package scheduler

import "sort"

// WeekDays is the fixed teaching week, in schedule order.
var WeekDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}

// Lecture is one entry of a weekly timetable submission.
type Lecture struct {
	Interval   Interval
	ModuleID   string
	LecturerID string
	VenueID    string
}

// DaySchedule groups the lectures of one weekday.
type DaySchedule struct {
	Day      string
	Lectures []Lecture
}

// TimetableEntry is a persisted lecture from another timetable, used for
// cross-timetable double-booking checks.
type TimetableEntry struct {
	TimetableID string
	GroupID     string
	Day         string
	Interval    Interval
	LecturerID  string
	VenueID     string
}

// IssueKind classifies a timetable validation failure.
type IssueKind string

const (
	// IssueDuplicate flags two identical lectures within one submission.
	IssueDuplicate IssueKind = "duplicate"
	// IssueDayOverlap flags overlapping lectures within a single day.
	IssueDayOverlap IssueKind = "day_overlap"
	// IssueLecturerBooked flags a lecturer double-booked across timetables.
	IssueLecturerBooked IssueKind = "lecturer_booked"
	// IssueVenueBooked flags a venue double-booked across timetables.
	IssueVenueBooked IssueKind = "venue_booked"
)

// TimetableIssue describes one validation failure with enough detail for a
// caller to report which entries collided.
type TimetableIssue struct {
	Kind        IssueKind
	Day         string
	First       Interval
	Second      Interval
	ResourceID  string
	TimetableID string
}

// ValidWeekDay reports whether day names one of the Mon..Fri teaching days.
func ValidWeekDay(day string) bool {
	for _, d := range WeekDays {
		if d == day {
			return true
		}
	}
	return false
}

// FindDuplicateLecture scans a submission for two lectures with identical
// day, start, end, lecturer and venue. It runs on the submission alone,
// before any stored timetable is consulted.
func FindDuplicateLecture(week []DaySchedule) *TimetableIssue {
	type key struct {
		day        string
		start, end int
		lecturerID string
		venueID    string
	}
	seen := make(map[key]struct{})

	for _, day := range week {
		for _, lecture := range day.Lectures {
			k := key{
				day:        day.Day,
				start:      lecture.Interval.Start,
				end:        lecture.Interval.End,
				lecturerID: lecture.LecturerID,
				venueID:    lecture.VenueID,
			}
			if _, ok := seen[k]; ok {
				return &TimetableIssue{
					Kind:       IssueDuplicate,
					Day:        day.Day,
					First:      lecture.Interval,
					Second:     lecture.Interval,
					ResourceID: lecture.LecturerID,
				}
			}
			seen[k] = struct{}{}
		}
	}
	return nil
}

// FindDayOverlap sorts each day's lectures by start time and rejects the
// first adjacent pair whose ranges overlap. The issue carries both colliding
// ranges.
func FindDayOverlap(week []DaySchedule) *TimetableIssue {
	for _, day := range week {
		ordered := make([]Lecture, len(day.Lectures))
		copy(ordered, day.Lectures)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Interval.Start < ordered[j].Interval.Start
		})

		for i := 1; i < len(ordered); i++ {
			prev, next := ordered[i-1], ordered[i]
			if prev.Interval.End > next.Interval.Start {
				return &TimetableIssue{
					Kind:   IssueDayOverlap,
					Day:    day.Day,
					First:  prev.Interval,
					Second: next.Interval,
				}
			}
		}
	}
	return nil
}

// CrossConflicts checks every submitted lecture against other timetables'
// entries on the same weekday where the venue or the lecturer matches and the
// time ranges overlap. Entries belonging to excludeTimetableID are skipped so
// an update never conflicts with the document it replaces.
func CrossConflicts(week []DaySchedule, existing []TimetableEntry, excludeTimetableID string) []TimetableIssue {
	var issues []TimetableIssue

	for _, day := range week {
		for _, lecture := range day.Lectures {
			for _, entry := range existing {
				if excludeTimetableID != "" && entry.TimetableID == excludeTimetableID {
					continue
				}
				if entry.Day != day.Day {
					continue
				}
				if !entry.Interval.Overlaps(lecture.Interval) {
					continue
				}
				if entry.VenueID == lecture.VenueID {
					issues = append(issues, TimetableIssue{
						Kind:        IssueVenueBooked,
						Day:         day.Day,
						First:       lecture.Interval,
						Second:      entry.Interval,
						ResourceID:  entry.VenueID,
						TimetableID: entry.TimetableID,
					})
				}
				if entry.LecturerID == lecture.LecturerID {
					issues = append(issues, TimetableIssue{
						Kind:        IssueLecturerBooked,
						Day:         day.Day,
						First:       lecture.Interval,
						Second:      entry.Interval,
						ResourceID:  entry.LecturerID,
						TimetableID: entry.TimetableID,
					})
				}
			}
		}
	}

	return issues
}
