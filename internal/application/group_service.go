package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// GroupService manages department cohorts.
type GroupService struct {
	groups      GroupRepository
	directory   DirectoryRepository
	sequences   SequenceSource
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewGroupService wires dependencies for group operations.
func NewGroupService(groups GroupRepository, directory DirectoryRepository, sequences SequenceSource, idGenerator func() string, now func() time.Time, logger *slog.Logger) *GroupService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &GroupService{
		groups:      groups,
		directory:   directory,
		sequences:   sequences,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *GroupService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "GroupService", operation, attrs...)
}

// Create forms a new group from ungrouped students. Every referenced student
// must exist and must not already belong to a group; the first violation
// aborts the whole request.
func (s *GroupService) Create(ctx context.Context, params CreateGroupParams) (StudentGroup, error) {
	if s == nil || s.groups == nil {
		return StudentGroup{}, fmt.Errorf("group repository not configured")
	}
	if !params.Principal.IsAdmin {
		return StudentGroup{}, ErrUnauthorized
	}
	input := params.Input

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Department) == "" {
		vErr.Add("department", "department is required")
	}
	if len(input.StudentCodes) == 0 {
		vErr.Add("students", "at least one student is required")
	}
	if vErr.HasErrors() {
		return StudentGroup{}, vErr
	}

	ids := make([]string, 0, len(input.StudentCodes))
	for _, code := range input.StudentCodes {
		student, err := s.directory.GetStudentByCode(ctx, code)
		if err != nil {
			return StudentGroup{}, unknownCode("students", code, err)
		}
		if student.GroupID != "" {
			return StudentGroup{}, &ConflictError{
				Resource: "student",
				Detail:   fmt.Sprintf("student %s already belongs to a group", student.Code),
			}
		}
		ids = append(ids, student.ID)
	}

	code, err := s.nextGroupCode(ctx)
	if err != nil {
		return StudentGroup{}, err
	}

	now := s.now()
	group, err := s.groups.CreateGroup(ctx, StudentGroup{
		ID:         s.idGenerator(),
		Code:       code,
		Department: strings.TrimSpace(input.Department),
		StudentIDs: ids,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		s.loggerWith(ctx, "Create").ErrorContext(ctx, "failed to persist group", "error", err, "error_kind", ErrorKind(err))
		return StudentGroup{}, err
	}

	if err := s.groups.AssignStudents(ctx, group.ID, ids); err != nil {
		s.loggerWith(ctx, "Create").ErrorContext(ctx, "failed to assign students", "error", err, "error_kind", ErrorKind(err))
		return StudentGroup{}, err
	}
	return group, nil
}

// Get resolves a group by friendly code first, then by internal identifier.
func (s *GroupService) Get(ctx context.Context, ref string) (StudentGroup, error) {
	if s == nil || s.groups == nil {
		return StudentGroup{}, fmt.Errorf("group repository not configured")
	}
	group, err := s.groups.GetGroupByCode(ctx, ref)
	if err == nil {
		return group, nil
	}
	return s.groups.GetGroup(ctx, ref)
}

// List enumerates all groups.
func (s *GroupService) List(ctx context.Context) ([]StudentGroup, error) {
	if s == nil || s.groups == nil {
		return nil, fmt.Errorf("group repository not configured")
	}
	return s.groups.ListGroups(ctx)
}

func (s *GroupService) nextGroupCode(ctx context.Context) (string, error) {
	if s.sequences == nil {
		return "", fmt.Errorf("sequence source not configured")
	}
	n, err := s.sequences.Next(ctx, sequenceGroup)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("GR%d", 1000+n), nil
}
