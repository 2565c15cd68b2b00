package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DirectoryRepository stores the identity records referenced by friendly
// codes: students, examiners, venues and modules.
type DirectoryRepository interface {
	CreateStudent(ctx context.Context, student Student) (Student, error)
	GetStudent(ctx context.Context, id string) (Student, error)
	GetStudentByCode(ctx context.Context, code string) (Student, error)

	CreateExaminer(ctx context.Context, examiner Examiner) (Examiner, error)
	GetExaminer(ctx context.Context, id string) (Examiner, error)
	GetExaminerByCode(ctx context.Context, code string) (Examiner, error)
	ListExaminersByDepartment(ctx context.Context, department string) ([]Examiner, error)

	CreateVenue(ctx context.Context, venue Venue) (Venue, error)
	GetVenue(ctx context.Context, id string) (Venue, error)
	GetVenueByCode(ctx context.Context, code string) (Venue, error)
	ListVenues(ctx context.Context) ([]Venue, error)

	CreateModule(ctx context.Context, module Module) (Module, error)
	GetModuleByCode(ctx context.Context, code string) (Module, error)
}

// SequenceSource yields the next value of a named monotonic counter. Friendly
// codes are derived from these counters atomically, so two concurrent creates
// never observe the same value.
type SequenceSource interface {
	Next(ctx context.Context, name string) (int64, error)
}

// Sequence categories.
const (
	sequenceStudent  = "student"
	sequenceExaminer = "examiner"
	sequenceVenue    = "venue"
	sequenceGroup    = "group"
)

// StudentInput captures caller-provided student attributes.
type StudentInput struct {
	Name       string
	Email      string
	Department string
}

// ExaminerInput captures caller-provided examiner attributes.
type ExaminerInput struct {
	Name       string
	Email      string
	Department string
}

// VenueInput captures caller-provided venue attributes.
type VenueInput struct {
	Name     string
	Capacity int
}

// ModuleInput captures caller-provided module attributes.
type ModuleInput struct {
	Code  string
	Title string
}

// DirectoryService manages the identity records behind friendly codes.
type DirectoryService struct {
	directory   DirectoryRepository
	sequences   SequenceSource
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewDirectoryService wires dependencies for directory operations.
func NewDirectoryService(directory DirectoryRepository, sequences SequenceSource, idGenerator func() string, now func() time.Time, logger *slog.Logger) *DirectoryService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &DirectoryService{
		directory:   directory,
		sequences:   sequences,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateStudent registers a student and assigns the next STSET code.
func (s *DirectoryService) CreateStudent(ctx context.Context, principal Principal, input StudentInput) (Student, error) {
	if s == nil || s.directory == nil {
		return Student{}, fmt.Errorf("directory repository not configured")
	}
	if !principal.IsAdmin {
		return Student{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	validatePerson(input.Name, input.Email, input.Department, vErr)
	if vErr.HasErrors() {
		return Student{}, vErr
	}

	code, err := s.nextCode(ctx, sequenceStudent)
	if err != nil {
		return Student{}, err
	}

	now := s.now()
	student := Student{
		ID:         s.idGenerator(),
		Code:       code,
		Name:       strings.TrimSpace(input.Name),
		Email:      strings.TrimSpace(input.Email),
		Department: strings.TrimSpace(input.Department),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := s.directory.CreateStudent(ctx, student)
	if err != nil {
		s.loggerWith(ctx, "CreateStudent").ErrorContext(ctx, "failed to create student", "error", err, "error_kind", ErrorKind(err))
		return Student{}, err
	}
	return created, nil
}

// CreateExaminer registers an examiner and assigns the next EXSET code.
func (s *DirectoryService) CreateExaminer(ctx context.Context, principal Principal, input ExaminerInput) (Examiner, error) {
	if s == nil || s.directory == nil {
		return Examiner{}, fmt.Errorf("directory repository not configured")
	}
	if !principal.IsAdmin {
		return Examiner{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	validatePerson(input.Name, input.Email, input.Department, vErr)
	if vErr.HasErrors() {
		return Examiner{}, vErr
	}

	code, err := s.nextCode(ctx, sequenceExaminer)
	if err != nil {
		return Examiner{}, err
	}

	now := s.now()
	examiner := Examiner{
		ID:         s.idGenerator(),
		Code:       code,
		Name:       strings.TrimSpace(input.Name),
		Email:      strings.TrimSpace(input.Email),
		Department: strings.TrimSpace(input.Department),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := s.directory.CreateExaminer(ctx, examiner)
	if err != nil {
		s.loggerWith(ctx, "CreateExaminer").ErrorContext(ctx, "failed to create examiner", "error", err, "error_kind", ErrorKind(err))
		return Examiner{}, err
	}
	return created, nil
}

// CreateVenue registers a venue and assigns the next VN code.
func (s *DirectoryService) CreateVenue(ctx context.Context, principal Principal, input VenueInput) (Venue, error) {
	if s == nil || s.directory == nil {
		return Venue{}, fmt.Errorf("directory repository not configured")
	}
	if !principal.IsAdmin {
		return Venue{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.Add("name", "name is required")
	}
	if input.Capacity < 0 {
		vErr.Add("capacity", "capacity must not be negative")
	}
	if vErr.HasErrors() {
		return Venue{}, vErr
	}

	code, err := s.nextCode(ctx, sequenceVenue)
	if err != nil {
		return Venue{}, err
	}

	now := s.now()
	venue := Venue{
		ID:        s.idGenerator(),
		Code:      code,
		Name:      strings.TrimSpace(input.Name),
		Capacity:  input.Capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.directory.CreateVenue(ctx, venue)
	if err != nil {
		s.loggerWith(ctx, "CreateVenue").ErrorContext(ctx, "failed to create venue", "error", err, "error_kind", ErrorKind(err))
		return Venue{}, err
	}
	return created, nil
}

// CreateModule registers a module under its caller-supplied code.
func (s *DirectoryService) CreateModule(ctx context.Context, principal Principal, input ModuleInput) (Module, error) {
	if s == nil || s.directory == nil {
		return Module{}, fmt.Errorf("directory repository not configured")
	}
	if !principal.IsAdmin {
		return Module{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Code) == "" {
		vErr.Add("code", "code is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		vErr.Add("title", "title is required")
	}
	if vErr.HasErrors() {
		return Module{}, vErr
	}

	now := s.now()
	module := Module{
		ID:        s.idGenerator(),
		Code:      strings.TrimSpace(input.Code),
		Title:     strings.TrimSpace(input.Title),
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.directory.CreateModule(ctx, module)
	if err != nil {
		s.loggerWith(ctx, "CreateModule").ErrorContext(ctx, "failed to create module", "error", err, "error_kind", ErrorKind(err))
		return Module{}, err
	}
	return created, nil
}

func (s *DirectoryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "DirectoryService", operation, attrs...)
}

// nextCode draws the next counter value for a category and renders the
// friendly code: STSET2025001 and EXSET2025001 carry the current year,
// VN101 and GR1001 are offset-numbered.
func (s *DirectoryService) nextCode(ctx context.Context, category string) (string, error) {
	if s.sequences == nil {
		return "", fmt.Errorf("sequence source not configured")
	}
	n, err := s.sequences.Next(ctx, category)
	if err != nil {
		return "", err
	}
	switch category {
	case sequenceStudent:
		return fmt.Sprintf("STSET%d%03d", s.now().Year(), n), nil
	case sequenceExaminer:
		return fmt.Sprintf("EXSET%d%03d", s.now().Year(), n), nil
	case sequenceVenue:
		return fmt.Sprintf("VN%d", 100+n), nil
	case sequenceGroup:
		return fmt.Sprintf("GR%d", 1000+n), nil
	default:
		return "", fmt.Errorf("unknown sequence category %q", category)
	}
}

func validatePerson(name, email, department string, vErr *ValidationError) {
	if strings.TrimSpace(name) == "" {
		vErr.Add("name", "name is required")
	}
	if strings.TrimSpace(email) == "" {
		vErr.Add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		vErr.Add("email", "email is invalid")
	}
	if strings.TrimSpace(department) == "" {
		vErr.Add("department", "department is required")
	}
}
