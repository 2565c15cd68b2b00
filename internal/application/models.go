package application

import (
	"time"

	"github.com/example/campus-scheduler/internal/scheduler"
)

// Role names the position a user holds within the faculty.
type Role string

const (
	// RoleStudent identifies an enrolled student account.
	RoleStudent Role = "student"
	// RoleExaminer identifies teaching staff who lecture and examine.
	RoleExaminer Role = "examiner"
	// RoleAdmin identifies scheduling coordinators.
	RoleAdmin Role = "admin"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	Role    Role
	IsAdmin bool
}

// Student is a directory record referenced by friendly code (STSET2025001).
type Student struct {
	ID         string
	Code       string
	Name       string
	Email      string
	Department string
	GroupID    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Examiner is teaching staff; examiners also appear as lecturers in weekly
// timetables.
type Examiner struct {
	ID         string
	Code       string
	Name       string
	Email      string
	Department string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Venue is a bookable room referenced by friendly code (VN101).
type Venue struct {
	ID        string
	Code      string
	Name      string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Module is a taught course unit referenced by its caller-supplied code.
type Module struct {
	ID        string
	Code      string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StudentGroup is a department cohort (GR1001). A student belongs to at most
// one group at a time.
type StudentGroup struct {
	ID         string
	Code       string
	Department string
	StudentIDs []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Presentation is a scheduled defense slot binding a venue, an examiner set
// and a student set on one calendar day. Start and End are minutes since
// midnight; the occupied range is half-open.
type Presentation struct {
	ID           string
	Title        string
	Department   string
	Date         string
	Start        int
	End          int
	DurationMin  int
	VenueID      string
	ExaminerIDs  []string
	StudentIDs   []string
	NumExaminers int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Booking converts a presentation into the checker's resource view.
func (p Presentation) Booking() scheduler.Booking {
	return scheduler.Booking{
		PresentationID: p.ID,
		Date:           p.Date,
		Interval:       scheduler.Interval{Start: p.Start, End: p.End},
		VenueID:        p.VenueID,
		ExaminerIDs:    append([]string(nil), p.ExaminerIDs...),
		StudentIDs:     append([]string(nil), p.StudentIDs...),
	}
}

// PresentationInput captures caller-provided presentation fields with friendly
// codes still unresolved.
type PresentationInput struct {
	Title         string
	Date          string
	Start         int
	End           int
	VenueCode     string
	ExaminerCodes []string
	StudentCodes  []string
	NumExaminers  int
}

// CreatePresentationParams wraps the data required to schedule a presentation.
type CreatePresentationParams struct {
	Principal Principal
	Input     PresentationInput
}

// SlotCheck is an availability probe with all references already resolved to
// internal identifiers. VenueID may be empty to skip the venue dimension;
// ExcludePresentationID removes one booking from consideration.
type SlotCheck struct {
	Date                  string
	Start                 int
	End                   int
	VenueID               string
	ExaminerIDs           []string
	StudentIDs            []string
	ExcludePresentationID string
}

// SlotConflict reports one blocking booking found by an availability probe.
type SlotConflict struct {
	Dimension      scheduler.ConflictDimension
	ResourceID     string
	PresentationID string
	Start          int
	End            int
}

// AvailabilityResult is the outcome of an availability probe.
type AvailabilityResult struct {
	Available bool
	Conflicts []SlotConflict
}

// CheckAvailabilityParams carries a caller-level probe using friendly codes.
type CheckAvailabilityParams struct {
	Date          string
	Start         int
	End           int
	VenueCode     string
	ExaminerCodes []string
	StudentCodes  []string
}

// SuggestSlotParams requests a fresh-scheduling slot suggestion.
type SuggestSlotParams struct {
	StudentCodes []string
	NumExaminers int
	DurationMin  int
}

// SlotSuggestion is a feasible slot rendered back in friendly codes.
type SlotSuggestion struct {
	Date          string
	Start         int
	End           int
	VenueCode     string
	ExaminerCodes []string
}

// TimetableLecture is one resolved lecture entry of a weekly schedule.
type TimetableLecture struct {
	Start      int
	End        int
	ModuleID   string
	LecturerID string
	VenueID    string
}

// TimetableDay groups the resolved lectures of one weekday.
type TimetableDay struct {
	Day      string
	Lectures []TimetableLecture
}

// Timetable is the weekly schedule document of one student group.
type Timetable struct {
	ID        string
	GroupID   string
	Week      []TimetableDay
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TimetableLectureInput is a lecture entry with unresolved friendly codes.
type TimetableLectureInput struct {
	Start        int
	End          int
	ModuleCode   string
	LecturerCode string
	VenueCode    string
}

// TimetableDayInput groups submitted lectures for one weekday.
type TimetableDayInput struct {
	Day      string
	Lectures []TimetableLectureInput
}

// TimetableInput captures a full weekly schedule submission.
type TimetableInput struct {
	GroupCode string
	Week      []TimetableDayInput
}

// SaveTimetableParams wraps a create or update submission. TimetableID is set
// only for updates.
type SaveTimetableParams struct {
	Principal   Principal
	TimetableID string
	Input       TimetableInput
}

// GroupInput captures caller-provided group fields.
type GroupInput struct {
	Department   string
	StudentCodes []string
}

// CreateGroupParams wraps the data required to create a student group.
type CreateGroupParams struct {
	Principal Principal
	Input     GroupInput
}

// RescheduleStatus is the lifecycle state of a reschedule request.
type RescheduleStatus string

const (
	// ReschedulePending marks a request awaiting review.
	ReschedulePending RescheduleStatus = "Pending"
	// RescheduleApproved marks a request whose slot change was applied.
	RescheduleApproved RescheduleStatus = "Approved"
	// RescheduleRejected marks a request that was turned down.
	RescheduleRejected RescheduleStatus = "Rejected"
)

// RescheduleRequest asks to move an existing presentation to a new slot. The
// request is created Pending and transitions exactly once, to Approved or
// Rejected.
type RescheduleRequest struct {
	ID             string
	PresentationID string
	RequestedByID  string
	RequestedRole  Role
	RequestorEmail string
	Date           string
	Start          int
	End            int
	VenueID        string
	Reason         string
	Status         RescheduleStatus
	CreatedAt      time.Time
	DecidedAt      *time.Time
}

// RescheduleInput captures a caller's change-of-slot request.
type RescheduleInput struct {
	PresentationID string
	Date           string
	Start          int
	End            int
	VenueCode      string
	Reason         string
}

// CreateRescheduleParams wraps the data required to file a request.
type CreateRescheduleParams struct {
	Principal      Principal
	RequestorEmail string
	Input          RescheduleInput
}

// DecideRescheduleParams wraps a reviewer's decision on a pending request.
type DecideRescheduleParams struct {
	Principal Principal
	RequestID string
	Approve   bool
}

// User represents an account exposed by the application services.
type User struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
	Disabled     bool
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful login.
type AuthenticateResult struct {
	User    User
	Session Session
}
