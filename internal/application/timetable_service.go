package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/scheduler"
)

// TimetableRepository captures the persistence interactions needed by the
// timetable service.
type TimetableRepository interface {
	CreateTimetable(ctx context.Context, timetable Timetable) (Timetable, error)
	UpdateTimetable(ctx context.Context, timetable Timetable) (Timetable, error)
	GetTimetable(ctx context.Context, id string) (Timetable, error)
	GetTimetableByGroup(ctx context.Context, groupID string) (Timetable, error)
	// ListTimetableEntries flattens every stored timetable into per-lecture
	// rows for cross-timetable conflict checks.
	ListTimetableEntries(ctx context.Context) ([]scheduler.TimetableEntry, error)
}

// GroupRepository captures the persistence interactions for student groups.
type GroupRepository interface {
	CreateGroup(ctx context.Context, group StudentGroup) (StudentGroup, error)
	GetGroup(ctx context.Context, id string) (StudentGroup, error)
	GetGroupByCode(ctx context.Context, code string) (StudentGroup, error)
	ListGroups(ctx context.Context) ([]StudentGroup, error)
	AssignStudents(ctx context.Context, groupID string, studentIDs []string) error
}

// TimetableService validates and stores weekly schedules for student groups.
type TimetableService struct {
	timetables  TimetableRepository
	groups      GroupRepository
	directory   DirectoryRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTimetableService wires dependencies for timetable operations.
func NewTimetableService(timetables TimetableRepository, groups GroupRepository, directory DirectoryRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TimetableService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TimetableService{
		timetables:  timetables,
		groups:      groups,
		directory:   directory,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *TimetableService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TimetableService", operation, attrs...)
}

// Save validates and persists a weekly timetable. With an empty TimetableID a
// new timetable is created; otherwise the named timetable is replaced
// wholesale. Validation runs duplicates first, then per-day overlaps, then
// conflicts against every other stored timetable; the first failing check
// aborts and nothing is written.
func (s *TimetableService) Save(ctx context.Context, params SaveTimetableParams) (Timetable, error) {
	if s == nil || s.timetables == nil {
		return Timetable{}, fmt.Errorf("timetable repository not configured")
	}
	if !params.Principal.IsAdmin {
		return Timetable{}, ErrUnauthorized
	}
	input := params.Input

	vErr := &ValidationError{}
	if strings.TrimSpace(input.GroupCode) == "" {
		vErr.Add("group", "group is required")
	}
	if len(input.Week) == 0 {
		vErr.Add("week", "at least one day is required")
	}
	seenDay := make(map[string]bool, len(input.Week))
	for _, day := range input.Week {
		if !scheduler.ValidWeekDay(day.Day) {
			vErr.Add("week", fmt.Sprintf("unknown weekday: %s", day.Day))
			continue
		}
		if seenDay[day.Day] {
			vErr.Add("week", fmt.Sprintf("duplicate weekday: %s", day.Day))
		}
		seenDay[day.Day] = true
		for _, lecture := range day.Lectures {
			slot := scheduler.Interval{Start: lecture.Start, End: lecture.End}
			if !slot.Valid() {
				vErr.Add("week", fmt.Sprintf("%s: lecture start must be before end", day.Day))
			}
		}
	}
	if vErr.HasErrors() {
		return Timetable{}, vErr
	}

	group, err := s.groups.GetGroupByCode(ctx, input.GroupCode)
	if err != nil {
		return Timetable{}, unknownCode("group", input.GroupCode, err)
	}

	week, schedule, err := s.resolveWeek(ctx, input.Week)
	if err != nil {
		return Timetable{}, err
	}

	if issue := scheduler.FindDuplicateLecture(schedule); issue != nil {
		return Timetable{}, timetableConflict(*issue)
	}
	if issue := scheduler.FindDayOverlap(schedule); issue != nil {
		return Timetable{}, timetableConflict(*issue)
	}

	entries, err := s.timetables.ListTimetableEntries(ctx)
	if err != nil {
		return Timetable{}, err
	}
	if issues := scheduler.CrossConflicts(schedule, entries, params.TimetableID); len(issues) > 0 {
		return Timetable{}, timetableConflict(issues[0])
	}

	now := s.now()
	if params.TimetableID != "" {
		current, err := s.timetables.GetTimetable(ctx, params.TimetableID)
		if err != nil {
			return Timetable{}, err
		}
		current.GroupID = group.ID
		current.Week = week
		current.UpdatedAt = now
		updated, err := s.timetables.UpdateTimetable(ctx, current)
		if err != nil {
			s.loggerWith(ctx, "Save").ErrorContext(ctx, "failed to update timetable", "error", err, "error_kind", ErrorKind(err))
			return Timetable{}, err
		}
		return updated, nil
	}

	created, err := s.timetables.CreateTimetable(ctx, Timetable{
		ID:        s.idGenerator(),
		GroupID:   group.ID,
		Week:      week,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.loggerWith(ctx, "Save").ErrorContext(ctx, "failed to create timetable", "error", err, "error_kind", ErrorKind(err))
		return Timetable{}, err
	}
	return created, nil
}

// GetByGroup resolves a group reference (friendly code preferred, internal id
// accepted) and returns that group's timetable.
func (s *TimetableService) GetByGroup(ctx context.Context, groupRef string) (Timetable, error) {
	if s == nil || s.timetables == nil {
		return Timetable{}, fmt.Errorf("timetable repository not configured")
	}

	group, err := s.groups.GetGroupByCode(ctx, groupRef)
	if err != nil {
		group, err = s.groups.GetGroup(ctx, groupRef)
		if err != nil {
			return Timetable{}, err
		}
	}
	return s.timetables.GetTimetableByGroup(ctx, group.ID)
}

// resolveWeek maps every friendly code in the submission to internal
// identifiers and builds the validator's per-day view. The first unknown code
// aborts resolution.
func (s *TimetableService) resolveWeek(ctx context.Context, week []TimetableDayInput) ([]TimetableDay, []scheduler.DaySchedule, error) {
	resolved := make([]TimetableDay, 0, len(week))
	schedule := make([]scheduler.DaySchedule, 0, len(week))

	moduleIDs := make(map[string]string)
	lecturerIDs := make(map[string]string)
	venueIDs := make(map[string]string)

	for _, day := range week {
		outDay := TimetableDay{Day: day.Day}
		outSchedule := scheduler.DaySchedule{Day: day.Day}
		for _, lecture := range day.Lectures {
			moduleID, ok := moduleIDs[lecture.ModuleCode]
			if !ok {
				module, err := s.directory.GetModuleByCode(ctx, lecture.ModuleCode)
				if err != nil {
					return nil, nil, unknownCode("modules", lecture.ModuleCode, err)
				}
				moduleID = module.ID
				moduleIDs[lecture.ModuleCode] = moduleID
			}
			lecturerID, ok := lecturerIDs[lecture.LecturerCode]
			if !ok {
				lecturer, err := s.directory.GetExaminerByCode(ctx, lecture.LecturerCode)
				if err != nil {
					return nil, nil, unknownCode("lecturers", lecture.LecturerCode, err)
				}
				lecturerID = lecturer.ID
				lecturerIDs[lecture.LecturerCode] = lecturerID
			}
			venueID, ok := venueIDs[lecture.VenueCode]
			if !ok {
				venue, err := s.directory.GetVenueByCode(ctx, lecture.VenueCode)
				if err != nil {
					return nil, nil, unknownCode("venues", lecture.VenueCode, err)
				}
				venueID = venue.ID
				venueIDs[lecture.VenueCode] = venueID
			}

			outDay.Lectures = append(outDay.Lectures, TimetableLecture{
				Start:      lecture.Start,
				End:        lecture.End,
				ModuleID:   moduleID,
				LecturerID: lecturerID,
				VenueID:    venueID,
			})
			outSchedule.Lectures = append(outSchedule.Lectures, scheduler.Lecture{
				Interval:   scheduler.Interval{Start: lecture.Start, End: lecture.End},
				ModuleID:   moduleID,
				LecturerID: lecturerID,
				VenueID:    venueID,
			})
		}
		resolved = append(resolved, outDay)
		schedule = append(schedule, outSchedule)
	}
	return resolved, schedule, nil
}

func timetableConflict(issue scheduler.TimetableIssue) error {
	slot := issue.First

	switch issue.Kind {
	case scheduler.IssueDuplicate:
		return &ConflictError{
			Resource: "timetable",
			Detail:   fmt.Sprintf("duplicate lecture on %s at %s", issue.Day, slot),
		}
	case scheduler.IssueDayOverlap:
		return &ConflictError{
			Resource: "timetable",
			Detail:   fmt.Sprintf("overlapping lectures on %s around %s", issue.Day, slot),
		}
	case scheduler.IssueLecturerBooked:
		return &ConflictError{
			Resource: "lecturer",
			Detail:   fmt.Sprintf("lecturer already teaches another group on %s at %s", issue.Day, slot),
		}
	default:
		return &ConflictError{
			Resource: "venue",
			Detail:   fmt.Sprintf("venue hosts another group on %s at %s", issue.Day, slot),
		}
	}
}
