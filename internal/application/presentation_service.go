package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/scheduler"
)

// ErrNoSuitableSlot is returned when the suggestion engine exhausts the slot
// ladder without finding a feasible combination.
var ErrNoSuitableSlot = errors.New("application: no suitable slot")

// PresentationRepository captures the persistence interactions needed by the
// presentation service.
type PresentationRepository interface {
	CreatePresentation(ctx context.Context, presentation Presentation) (Presentation, error)
	GetPresentation(ctx context.Context, id string) (Presentation, error)
	UpdatePresentationSlot(ctx context.Context, id, date string, start, end int, venueID string, updatedAt time.Time) (Presentation, error)
	ListPresentations(ctx context.Context) ([]Presentation, error)
	ListPresentationsByDate(ctx context.Context, date string) ([]Presentation, error)
	ListPresentationsBetween(ctx context.Context, from, to string) ([]Presentation, error)
}

// LectureLoadCounter reports how many timetable lecture entries each lecturer
// carries, feeding the suggestion engine's workload score.
type LectureLoadCounter interface {
	CountLecturesForLecturers(ctx context.Context, lecturerIDs []string) (map[string]int, error)
}

// PresentationService orchestrates validation, availability checking and
// persistence for presentation scheduling.
type PresentationService struct {
	presentations PresentationRepository
	directory     DirectoryRepository
	loads         LectureLoadCounter
	notifier      Notifier
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewPresentationService wires dependencies for presentation operations.
func NewPresentationService(presentations PresentationRepository, directory DirectoryRepository, loads LectureLoadCounter, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PresentationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PresentationService{
		presentations: presentations,
		directory:     directory,
		loads:         loads,
		notifier:      notifier,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *PresentationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PresentationService", operation, attrs...)
}

// Create validates the request, resolves friendly codes, probes availability
// on every dimension and persists the presentation. Participants are notified
// best-effort.
//
// The check-then-save pair is not atomic: two concurrent requests that both
// pass the availability probe can both persist. This race is accepted; there
// is no database-level exclusion constraint.
func (s *PresentationService) Create(ctx context.Context, params CreatePresentationParams) (Presentation, error) {
	if s == nil || s.presentations == nil {
		return Presentation{}, fmt.Errorf("presentation repository not configured")
	}
	if !params.Principal.IsAdmin {
		return Presentation{}, ErrUnauthorized
	}
	input := params.Input

	vErr := &ValidationError{}
	validateSlotCore(input.Date, input.Start, input.End, vErr)
	if strings.TrimSpace(input.Title) == "" {
		vErr.Add("title", "title is required")
	}
	if input.NumExaminers < 1 {
		vErr.Add("num_examiners", "at least one examiner is required")
	}
	if len(input.ExaminerCodes) == 0 {
		vErr.Add("examiners", "at least one examiner is required")
	}
	if len(input.StudentCodes) == 0 {
		vErr.Add("students", "at least one student is required")
	}
	if strings.TrimSpace(input.VenueCode) == "" {
		vErr.Add("venue", "venue is required")
	}
	if vErr.HasErrors() {
		return Presentation{}, vErr
	}

	students, examiners, venue, err := s.resolveParticipants(ctx, input.StudentCodes, input.ExaminerCodes, input.VenueCode)
	if err != nil {
		return Presentation{}, err
	}

	check := SlotCheck{
		Date:        input.Date,
		Start:       input.Start,
		End:         input.End,
		VenueID:     venue.ID,
		ExaminerIDs: examinerIDs(examiners),
		StudentIDs:  studentIDs(students),
	}
	result, err := s.CheckSlot(ctx, check)
	if err != nil {
		return Presentation{}, err
	}
	if !result.Available {
		return Presentation{}, s.conflictError(result.Conflicts[0], students, examiners, venue)
	}

	now := s.now()
	presentation := Presentation{
		ID:           s.idGenerator(),
		Title:        strings.TrimSpace(input.Title),
		Department:   students[0].Department,
		Date:         input.Date,
		Start:        input.Start,
		End:          input.End,
		DurationMin:  input.End - input.Start,
		VenueID:      venue.ID,
		ExaminerIDs:  examinerIDs(examiners),
		StudentIDs:   studentIDs(students),
		NumExaminers: input.NumExaminers,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.presentations.CreatePresentation(ctx, presentation)
	if err != nil {
		s.loggerWith(ctx, "Create").ErrorContext(ctx, "failed to persist presentation", "error", err, "error_kind", ErrorKind(err))
		return Presentation{}, err
	}

	slot := scheduler.Interval{Start: created.Start, End: created.End}
	notify(ctx, s.loggerWith(ctx, "Create"), s.notifier,
		participantEmails(students, examiners),
		"Presentation scheduled: "+created.Title,
		fmt.Sprintf("Your presentation %q is scheduled on %s at %s in %s.", created.Title, created.Date, slot, venue.Code),
	)

	return created, nil
}

// Get returns one presentation by internal identifier.
func (s *PresentationService) Get(ctx context.Context, id string) (Presentation, error) {
	if s == nil || s.presentations == nil {
		return Presentation{}, fmt.Errorf("presentation repository not configured")
	}
	return s.presentations.GetPresentation(ctx, id)
}

// List enumerates presentations, optionally narrowed to one calendar day.
func (s *PresentationService) List(ctx context.Context, date string) ([]Presentation, error) {
	if s == nil || s.presentations == nil {
		return nil, fmt.Errorf("presentation repository not configured")
	}
	if date != "" {
		if _, err := scheduler.ParseDate(date); err != nil {
			vErr := &ValidationError{}
			vErr.Add("date", "date must be YYYY-MM-DD")
			return nil, vErr
		}
		return s.presentations.ListPresentationsByDate(ctx, date)
	}
	return s.presentations.ListPresentations(ctx)
}

// CheckAvailability resolves the caller's friendly codes and probes the slot.
// The venue code is optional; when absent the venue dimension is skipped.
func (s *PresentationService) CheckAvailability(ctx context.Context, params CheckAvailabilityParams) (AvailabilityResult, error) {
	if s == nil || s.presentations == nil {
		return AvailabilityResult{}, fmt.Errorf("presentation repository not configured")
	}

	vErr := &ValidationError{}
	validateSlotCore(params.Date, params.Start, params.End, vErr)
	if vErr.HasErrors() {
		return AvailabilityResult{}, vErr
	}

	check := SlotCheck{Date: params.Date, Start: params.Start, End: params.End}

	if params.VenueCode != "" {
		venue, err := s.directory.GetVenueByCode(ctx, params.VenueCode)
		if err != nil {
			return AvailabilityResult{}, unknownCode("venue", params.VenueCode, err)
		}
		check.VenueID = venue.ID
	}
	for _, code := range params.ExaminerCodes {
		examiner, err := s.directory.GetExaminerByCode(ctx, code)
		if err != nil {
			return AvailabilityResult{}, unknownCode("examiners", code, err)
		}
		check.ExaminerIDs = append(check.ExaminerIDs, examiner.ID)
	}
	for _, code := range params.StudentCodes {
		student, err := s.directory.GetStudentByCode(ctx, code)
		if err != nil {
			return AvailabilityResult{}, unknownCode("students", code, err)
		}
		check.StudentIDs = append(check.StudentIDs, student.ID)
	}

	return s.CheckSlot(ctx, check)
}

// CheckSlot probes a slot whose references are already internal identifiers.
// Each dimension (examiners, venue, students) is tested independently against
// the same-date presentations; any hit makes the slot unavailable.
func (s *PresentationService) CheckSlot(ctx context.Context, check SlotCheck) (AvailabilityResult, error) {
	if s == nil || s.presentations == nil {
		return AvailabilityResult{}, fmt.Errorf("presentation repository not configured")
	}

	sameDay, err := s.presentations.ListPresentationsByDate(ctx, check.Date)
	if err != nil {
		return AvailabilityResult{}, err
	}

	existing := make([]scheduler.Booking, 0, len(sameDay))
	for _, presentation := range sameDay {
		existing = append(existing, presentation.Booking())
	}

	conflicts := scheduler.CheckSlot(existing, scheduler.SlotRequest{
		Date:        check.Date,
		Interval:    scheduler.Interval{Start: check.Start, End: check.End},
		VenueID:     check.VenueID,
		ExaminerIDs: check.ExaminerIDs,
		StudentIDs:  check.StudentIDs,
		ExcludeID:   check.ExcludePresentationID,
	})

	result := AvailabilityResult{Available: len(conflicts) == 0}
	for _, conflict := range conflicts {
		result.Conflicts = append(result.Conflicts, SlotConflict{
			Dimension:      conflict.Dimension,
			ResourceID:     conflict.ResourceID,
			PresentationID: conflict.PresentationID,
			Start:          conflict.Interval.Start,
			End:            conflict.Interval.End,
		})
	}
	return result, nil
}

// SuggestSlot runs the fresh-scheduling greedy search: the day window starts
// today and only the students constrain the time probe; examiners and venue
// are assigned by the selection policy.
func (s *PresentationService) SuggestSlot(ctx context.Context, params SuggestSlotParams) (SlotSuggestion, error) {
	if s == nil || s.presentations == nil {
		return SlotSuggestion{}, fmt.Errorf("presentation repository not configured")
	}

	vErr := &ValidationError{}
	if len(params.StudentCodes) == 0 {
		vErr.Add("students", "at least one student is required")
	}
	if params.NumExaminers < 1 {
		vErr.Add("num_examiners", "at least one examiner is required")
	}
	if params.DurationMin < 1 {
		vErr.Add("duration", "duration must be positive")
	}
	if vErr.HasErrors() {
		return SlotSuggestion{}, vErr
	}

	students := make([]Student, 0, len(params.StudentCodes))
	for _, code := range params.StudentCodes {
		student, err := s.directory.GetStudentByCode(ctx, code)
		if err != nil {
			return SlotSuggestion{}, unknownCode("students", code, err)
		}
		students = append(students, student)
	}

	// The first student's department is authoritative for staffing.
	from := startOfDay(s.now())
	return s.suggest(ctx, suggestArgs{
		department:   students[0].Department,
		from:         from,
		duration:     params.DurationMin,
		numExaminers: params.NumExaminers,
		studentIDs:   studentIDs(students),
	})
}

// SuggestForReschedule runs the reschedule variant for an existing
// presentation: candidate days start tomorrow, the presentation's own
// examiners are part of the probe and its current booking is excluded.
func (s *PresentationService) SuggestForReschedule(ctx context.Context, presentation Presentation) (SlotSuggestion, error) {
	if s == nil || s.presentations == nil {
		return SlotSuggestion{}, fmt.Errorf("presentation repository not configured")
	}

	from := startOfDay(s.now()).AddDate(0, 0, 1)
	return s.suggest(ctx, suggestArgs{
		department:     presentation.Department,
		from:           from,
		duration:       presentation.DurationMin,
		numExaminers:   len(presentation.ExaminerIDs),
		studentIDs:     presentation.StudentIDs,
		examinerIDs:    presentation.ExaminerIDs,
		checkExaminers: true,
		excludeID:      presentation.ID,
	})
}

type suggestArgs struct {
	department     string
	from           time.Time
	duration       int
	numExaminers   int
	studentIDs     []string
	examinerIDs    []string
	checkExaminers bool
	excludeID      string
}

func (s *PresentationService) suggest(ctx context.Context, args suggestArgs) (SlotSuggestion, error) {
	examiners, err := s.directory.ListExaminersByDepartment(ctx, args.department)
	if err != nil {
		return SlotSuggestion{}, err
	}
	venues, err := s.directory.ListVenues(ctx)
	if err != nil {
		return SlotSuggestion{}, err
	}

	pool := args.examinerIDs
	if !args.checkExaminers {
		pool = examinerIDs(examiners)
	}

	var load map[string]int
	if s.loads != nil {
		departmentIDs := examinerIDs(examiners)
		load, err = s.loads.CountLecturesForLecturers(ctx, departmentIDs)
		if err != nil {
			return SlotSuggestion{}, err
		}
	}

	to := args.from.AddDate(0, 0, scheduler.DefaultWindowDays-1)
	existing, err := s.presentations.ListPresentationsBetween(ctx, args.from.Format(scheduler.DateLayout), to.Format(scheduler.DateLayout))
	if err != nil {
		return SlotSuggestion{}, err
	}

	bookings := make([]scheduler.Booking, 0, len(existing))
	for _, presentation := range existing {
		bookings = append(bookings, presentation.Booking())
	}

	venueIDs := make([]string, 0, len(venues))
	for _, venue := range venues {
		venueIDs = append(venueIDs, venue.ID)
	}

	suggestion, ok := scheduler.SuggestSlot(scheduler.SuggestRequest{
		From:           args.from,
		Days:           scheduler.DefaultWindowDays,
		Duration:       args.duration,
		NumExaminers:   args.numExaminers,
		StudentIDs:     args.studentIDs,
		ExaminerIDs:    pool,
		VenueIDs:       venueIDs,
		LectureLoad:    load,
		Existing:       bookings,
		CheckExaminers: args.checkExaminers,
		ExcludeID:      args.excludeID,
	})
	if !ok {
		return SlotSuggestion{}, ErrNoSuitableSlot
	}

	return s.renderSuggestion(ctx, suggestion, examiners, venues)
}

func (s *PresentationService) renderSuggestion(ctx context.Context, suggestion scheduler.Suggestion, examiners []Examiner, venues []Venue) (SlotSuggestion, error) {
	codeOfExaminer := make(map[string]string, len(examiners))
	for _, examiner := range examiners {
		codeOfExaminer[examiner.ID] = examiner.Code
	}
	codeOfVenue := make(map[string]string, len(venues))
	for _, venue := range venues {
		codeOfVenue[venue.ID] = venue.Code
	}

	out := SlotSuggestion{
		Date:      suggestion.Date,
		Start:     suggestion.Interval.Start,
		End:       suggestion.Interval.End,
		VenueCode: codeOfVenue[suggestion.VenueID],
	}
	for _, id := range suggestion.ExaminerIDs {
		code, ok := codeOfExaminer[id]
		if !ok {
			examiner, err := s.directory.GetExaminer(ctx, id)
			if err != nil {
				return SlotSuggestion{}, err
			}
			code = examiner.Code
		}
		out.ExaminerCodes = append(out.ExaminerCodes, code)
	}
	return out, nil
}

func (s *PresentationService) resolveParticipants(ctx context.Context, studentCodes, examinerCodes []string, venueCode string) ([]Student, []Examiner, Venue, error) {
	students := make([]Student, 0, len(studentCodes))
	for _, code := range studentCodes {
		student, err := s.directory.GetStudentByCode(ctx, code)
		if err != nil {
			return nil, nil, Venue{}, unknownCode("students", code, err)
		}
		students = append(students, student)
	}

	examiners := make([]Examiner, 0, len(examinerCodes))
	for _, code := range examinerCodes {
		examiner, err := s.directory.GetExaminerByCode(ctx, code)
		if err != nil {
			return nil, nil, Venue{}, unknownCode("examiners", code, err)
		}
		examiners = append(examiners, examiner)
	}

	venue, err := s.directory.GetVenueByCode(ctx, venueCode)
	if err != nil {
		return nil, nil, Venue{}, unknownCode("venue", venueCode, err)
	}

	return students, examiners, venue, nil
}

func (s *PresentationService) conflictError(conflict SlotConflict, students []Student, examiners []Examiner, venue Venue) error {
	slot := scheduler.Interval{Start: conflict.Start, End: conflict.End}

	switch conflict.Dimension {
	case scheduler.DimensionVenue:
		return &ConflictError{
			Resource: "venue",
			Detail:   fmt.Sprintf("venue %s is already booked %s", venue.Code, slot),
		}
	case scheduler.DimensionExaminer:
		code := conflict.ResourceID
		for _, examiner := range examiners {
			if examiner.ID == conflict.ResourceID {
				code = examiner.Code
			}
		}
		return &ConflictError{
			Resource: "examiner",
			Detail:   fmt.Sprintf("examiner %s is already booked %s", code, slot),
		}
	default:
		code := conflict.ResourceID
		for _, student := range students {
			if student.ID == conflict.ResourceID {
				code = student.Code
			}
		}
		return &ConflictError{
			Resource: "student",
			Detail:   fmt.Sprintf("student %s is already booked %s", code, slot),
		}
	}
}

func validateSlotCore(date string, start, end int, vErr *ValidationError) {
	if date == "" {
		vErr.Add("date", "date is required")
	} else if _, err := scheduler.ParseDate(date); err != nil {
		vErr.Add("date", "date must be YYYY-MM-DD")
	}
	slot := scheduler.Interval{Start: start, End: end}
	if !slot.Valid() {
		vErr.Add("time", "start must be before end within one day")
	}
}

func unknownCode(field, code string, err error) error {
	if errors.Is(err, ErrNotFound) {
		vErr := &ValidationError{}
		vErr.Add(field, fmt.Sprintf("unknown %s code: %s", strings.TrimSuffix(field, "s"), code))
		return vErr
	}
	return err
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func studentIDs(students []Student) []string {
	ids := make([]string, 0, len(students))
	for _, student := range students {
		ids = append(ids, student.ID)
	}
	return ids
}

func examinerIDs(examiners []Examiner) []string {
	ids := make([]string, 0, len(examiners))
	for _, examiner := range examiners {
		ids = append(ids, examiner.ID)
	}
	return ids
}

func participantEmails(students []Student, examiners []Examiner) []string {
	emails := make([]string, 0, len(students)+len(examiners))
	for _, student := range students {
		if student.Email != "" {
			emails = append(emails, student.Email)
		}
	}
	for _, examiner := range examiners {
		if examiner.Email != "" {
			emails = append(emails, examiner.Email)
		}
	}
	return emails
}
