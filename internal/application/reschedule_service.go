package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/scheduler"
)

// RescheduleRepository captures the persistence interactions for reschedule
// requests.
type RescheduleRepository interface {
	CreateRequest(ctx context.Context, request RescheduleRequest) (RescheduleRequest, error)
	GetRequest(ctx context.Context, id string) (RescheduleRequest, error)
	ListRequestsByStatus(ctx context.Context, status RescheduleStatus) ([]RescheduleRequest, error)
	UpdateRequestStatus(ctx context.Context, id string, status RescheduleStatus, decidedAt time.Time) (RescheduleRequest, error)
	DeleteRejectedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SlotAdvisor exposes the scheduling capabilities the reschedule workflow
// needs. PresentationService satisfies it.
type SlotAdvisor interface {
	CheckSlot(ctx context.Context, check SlotCheck) (AvailabilityResult, error)
	SuggestForReschedule(ctx context.Context, presentation Presentation) (SlotSuggestion, error)
}

// RescheduleService runs the request-and-review workflow for moving scheduled
// presentations.
type RescheduleService struct {
	requests      RescheduleRepository
	presentations PresentationRepository
	directory     DirectoryRepository
	advisor       SlotAdvisor
	notifier      Notifier
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewRescheduleService wires dependencies for the reschedule workflow.
func NewRescheduleService(requests RescheduleRepository, presentations PresentationRepository, directory DirectoryRepository, advisor SlotAdvisor, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RescheduleService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RescheduleService{
		requests:      requests,
		presentations: presentations,
		directory:     directory,
		advisor:       advisor,
		notifier:      notifier,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *RescheduleService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RescheduleService", operation, attrs...)
}

// Create files a Pending reschedule request against an existing presentation.
// The target slot must be fully specified and currently free; the presentation
// itself is not modified until a reviewer approves.
func (s *RescheduleService) Create(ctx context.Context, params CreateRescheduleParams) (RescheduleRequest, error) {
	if s == nil || s.requests == nil {
		return RescheduleRequest{}, fmt.Errorf("reschedule repository not configured")
	}
	input := params.Input

	vErr := &ValidationError{}
	if strings.TrimSpace(input.PresentationID) == "" {
		vErr.Add("presentation", "presentation is required")
	}
	validateSlotCore(input.Date, input.Start, input.End, vErr)
	if strings.TrimSpace(input.VenueCode) == "" {
		vErr.Add("venue", "venue is required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		vErr.Add("reason", "reason is required")
	}
	if vErr.HasErrors() {
		return RescheduleRequest{}, vErr
	}

	presentation, err := s.presentations.GetPresentation(ctx, input.PresentationID)
	if err != nil {
		return RescheduleRequest{}, err
	}

	venue, err := s.directory.GetVenueByCode(ctx, input.VenueCode)
	if err != nil {
		return RescheduleRequest{}, unknownCode("venue", input.VenueCode, err)
	}

	result, err := s.advisor.CheckSlot(ctx, SlotCheck{
		Date:                  input.Date,
		Start:                 input.Start,
		End:                   input.End,
		VenueID:               venue.ID,
		ExaminerIDs:           presentation.ExaminerIDs,
		StudentIDs:            presentation.StudentIDs,
		ExcludePresentationID: presentation.ID,
	})
	if err != nil {
		return RescheduleRequest{}, err
	}
	if !result.Available {
		conflict := result.Conflicts[0]
		slot := scheduler.Interval{Start: conflict.Start, End: conflict.End}
		return RescheduleRequest{}, &ConflictError{
			Resource: string(conflict.Dimension),
			Detail:   fmt.Sprintf("requested slot collides with an existing booking %s", slot),
		}
	}

	created, err := s.requests.CreateRequest(ctx, RescheduleRequest{
		ID:             s.idGenerator(),
		PresentationID: presentation.ID,
		RequestedByID:  params.Principal.UserID,
		RequestedRole:  params.Principal.Role,
		RequestorEmail: params.RequestorEmail,
		Date:           input.Date,
		Start:          input.Start,
		End:            input.End,
		VenueID:        venue.ID,
		Reason:         strings.TrimSpace(input.Reason),
		Status:         ReschedulePending,
		CreatedAt:      s.now(),
	})
	if err != nil {
		s.loggerWith(ctx, "Create").ErrorContext(ctx, "failed to persist request", "error", err, "error_kind", ErrorKind(err))
		return RescheduleRequest{}, err
	}
	return created, nil
}

// Get returns one reschedule request.
func (s *RescheduleService) Get(ctx context.Context, id string) (RescheduleRequest, error) {
	if s == nil || s.requests == nil {
		return RescheduleRequest{}, fmt.Errorf("reschedule repository not configured")
	}
	return s.requests.GetRequest(ctx, id)
}

// ListPending returns every request still awaiting review.
func (s *RescheduleService) ListPending(ctx context.Context) ([]RescheduleRequest, error) {
	if s == nil || s.requests == nil {
		return nil, fmt.Errorf("reschedule repository not configured")
	}
	return s.requests.ListRequestsByStatus(ctx, ReschedulePending)
}

// Decide resolves a pending request. A rejection only flips the status. An
// approval re-checks the requested slot at decision time: if another booking
// claimed it since the request was filed, the request is auto-rejected and the
// presentation keeps its current slot; otherwise the presentation is moved and
// everyone involved is notified.
func (s *RescheduleService) Decide(ctx context.Context, params DecideRescheduleParams) (RescheduleRequest, error) {
	if s == nil || s.requests == nil {
		return RescheduleRequest{}, fmt.Errorf("reschedule repository not configured")
	}
	if !params.Principal.IsAdmin {
		return RescheduleRequest{}, ErrUnauthorized
	}

	request, err := s.requests.GetRequest(ctx, params.RequestID)
	if err != nil {
		return RescheduleRequest{}, err
	}
	if request.Status != ReschedulePending {
		return RescheduleRequest{}, &ConflictError{
			Resource: "reschedule_request",
			Detail:   fmt.Sprintf("request is already %s", strings.ToLower(string(request.Status))),
		}
	}

	if !params.Approve {
		return s.requests.UpdateRequestStatus(ctx, request.ID, RescheduleRejected, s.now())
	}

	presentation, err := s.presentations.GetPresentation(ctx, request.PresentationID)
	if err != nil {
		return RescheduleRequest{}, err
	}

	result, err := s.advisor.CheckSlot(ctx, SlotCheck{
		Date:                  request.Date,
		Start:                 request.Start,
		End:                   request.End,
		VenueID:               request.VenueID,
		ExaminerIDs:           presentation.ExaminerIDs,
		StudentIDs:            presentation.StudentIDs,
		ExcludePresentationID: presentation.ID,
	})
	if err != nil {
		return RescheduleRequest{}, err
	}
	if !result.Available {
		decided, err := s.requests.UpdateRequestStatus(ctx, request.ID, RescheduleRejected, s.now())
		if err != nil {
			return RescheduleRequest{}, err
		}
		s.loggerWith(ctx, "Decide").InfoContext(ctx, "auto-rejected stale reschedule request", "request_id", request.ID)
		s.notifyOutcome(ctx, decided, presentation, false)
		return decided, nil
	}

	if _, err := s.presentations.UpdatePresentationSlot(ctx, presentation.ID, request.Date, request.Start, request.End, request.VenueID, s.now()); err != nil {
		s.loggerWith(ctx, "Decide").ErrorContext(ctx, "failed to move presentation", "error", err, "error_kind", ErrorKind(err))
		return RescheduleRequest{}, err
	}

	decided, err := s.requests.UpdateRequestStatus(ctx, request.ID, RescheduleApproved, s.now())
	if err != nil {
		return RescheduleRequest{}, err
	}
	s.notifyOutcome(ctx, decided, presentation, true)
	return decided, nil
}

// SuggestSlot proposes an alternative slot for the request's presentation,
// starting from tomorrow and keeping its examiner set.
func (s *RescheduleService) SuggestSlot(ctx context.Context, requestID string) (SlotSuggestion, error) {
	if s == nil || s.requests == nil {
		return SlotSuggestion{}, fmt.Errorf("reschedule repository not configured")
	}
	request, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return SlotSuggestion{}, err
	}
	presentation, err := s.presentations.GetPresentation(ctx, request.PresentationID)
	if err != nil {
		return SlotSuggestion{}, err
	}
	return s.advisor.SuggestForReschedule(ctx, presentation)
}

// PurgeRejected deletes rejected requests older than the retention window.
func (s *RescheduleService) PurgeRejected(ctx context.Context, retention time.Duration) (int64, error) {
	if s == nil || s.requests == nil {
		return 0, fmt.Errorf("reschedule repository not configured")
	}
	cutoff := s.now().Add(-retention)
	deleted, err := s.requests.DeleteRejectedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.loggerWith(ctx, "PurgeRejected").InfoContext(ctx, "purged rejected requests", "count", deleted)
	}
	return deleted, nil
}

func (s *RescheduleService) notifyOutcome(ctx context.Context, request RescheduleRequest, presentation Presentation, approved bool) {
	logger := s.loggerWith(ctx, "Decide")

	recipients := make([]string, 0, 1+len(presentation.ExaminerIDs)+len(presentation.StudentIDs))
	if request.RequestorEmail != "" {
		recipients = append(recipients, request.RequestorEmail)
	}
	for _, id := range presentation.ExaminerIDs {
		examiner, err := s.directory.GetExaminer(ctx, id)
		if err != nil {
			logger.WarnContext(ctx, "failed to resolve examiner for notification", "error", err)
			continue
		}
		if examiner.Email != "" {
			recipients = append(recipients, examiner.Email)
		}
	}
	for _, id := range presentation.StudentIDs {
		student, err := s.directory.GetStudent(ctx, id)
		if err != nil {
			logger.WarnContext(ctx, "failed to resolve student for notification", "error", err)
			continue
		}
		if student.Email != "" {
			recipients = append(recipients, student.Email)
		}
	}

	slot := scheduler.Interval{Start: request.Start, End: request.End}
	if approved {
		notify(ctx, logger, s.notifier, recipients,
			"Reschedule approved: "+presentation.Title,
			fmt.Sprintf("The presentation %q has moved to %s at %s.", presentation.Title, request.Date, slot),
		)
		return
	}
	notify(ctx, logger, s.notifier, recipients,
		"Reschedule rejected: "+presentation.Title,
		fmt.Sprintf("The request to move %q to %s at %s was rejected; the original slot stands.", presentation.Title, request.Date, slot),
	)
}
