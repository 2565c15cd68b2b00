package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

var (
	studentCounter  uint64
	examinerCounter uint64
	venueCounter    uint64
	moduleCounter   uint64
)

var referenceTime = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It falls on a Monday so weekday-sensitive suggestion tests are stable.
func ReferenceTime() time.Time {
	return referenceTime
}

// NewStudent materialises a deterministic student record. Each call yields a
// unique identifier and friendly code.
func NewStudent(department string) application.Student {
	n := atomic.AddUint64(&studentCounter, 1)
	if department == "" {
		department = "Computing"
	}
	return application.Student{
		ID:         fmt.Sprintf("student-%d", n),
		Code:       fmt.Sprintf("STSET2025%03d", n),
		Name:       fmt.Sprintf("Student %d", n),
		Email:      fmt.Sprintf("student%d@example.edu", n),
		Department: department,
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
}

// NewExaminer materialises a deterministic examiner record.
func NewExaminer(department string) application.Examiner {
	n := atomic.AddUint64(&examinerCounter, 1)
	if department == "" {
		department = "Computing"
	}
	return application.Examiner{
		ID:         fmt.Sprintf("examiner-%d", n),
		Code:       fmt.Sprintf("EXSET2025%03d", n),
		Name:       fmt.Sprintf("Examiner %d", n),
		Email:      fmt.Sprintf("examiner%d@example.edu", n),
		Department: department,
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
}

// NewVenue materialises a deterministic venue record with a VN-prefixed code.
func NewVenue(capacity int) application.Venue {
	n := atomic.AddUint64(&venueCounter, 1)
	if capacity <= 0 {
		capacity = 20
	}
	return application.Venue{
		ID:        fmt.Sprintf("venue-%d", n),
		Code:      fmt.Sprintf("VN%d", 100+n),
		Name:      fmt.Sprintf("Room %d", 100+n),
		Capacity:  capacity,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
}

// NewModule materialises a deterministic taught module record.
func NewModule() application.Module {
	n := atomic.AddUint64(&moduleCounter, 1)
	return application.Module{
		ID:        fmt.Sprintf("module-%d", n),
		Code:      fmt.Sprintf("CS%d", 100+n),
		Title:     fmt.Sprintf("Module %d", n),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
}

// NewPresentation materialises a presentation on the given date occupying the
// half-open minute range [start, end).
func NewPresentation(id, date string, start, end int, venueID string, examinerIDs, studentIDs []string) application.Presentation {
	return application.Presentation{
		ID:           id,
		Title:        "Defense " + id,
		Department:   "Computing",
		Date:         date,
		Start:        start,
		End:          end,
		DurationMin:  end - start,
		VenueID:      venueID,
		ExaminerIDs:  append([]string(nil), examinerIDs...),
		StudentIDs:   append([]string(nil), studentIDs...),
		NumExaminers: len(examinerIDs),
		CreatedAt:    referenceTime,
		UpdatedAt:    referenceTime,
	}
}
