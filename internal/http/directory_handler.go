package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

type directoryService interface {
	CreateStudent(ctx context.Context, principal application.Principal, input application.StudentInput) (application.Student, error)
	CreateExaminer(ctx context.Context, principal application.Principal, input application.ExaminerInput) (application.Examiner, error)
	CreateVenue(ctx context.Context, principal application.Principal, input application.VenueInput) (application.Venue, error)
	CreateModule(ctx context.Context, principal application.Principal, input application.ModuleInput) (application.Module, error)
}

// DirectoryHandler exposes creation of the identity records that the
// scheduling endpoints reference by friendly code.
type DirectoryHandler struct {
	service   directoryService
	responder responder
	logger    *slog.Logger
}

func NewDirectoryHandler(service directoryService, logger *slog.Logger) *DirectoryHandler {
	base := defaultLogger(logger)
	return &DirectoryHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *DirectoryHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DirectoryHandler", operation, attrs...)
}

func (h *DirectoryHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validateRequest(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "CreateStudent", "department", req.Department)

	student, err := h.service.CreateStudent(r.Context(), principal, application.StudentInput{
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create student", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "student created", "student_code", student.Code)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, personResponse{
		ID:         student.ID,
		Code:       student.Code,
		Name:       student.Name,
		Email:      student.Email,
		Department: student.Department,
		CreatedAt:  student.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (h *DirectoryHandler) CreateExaminer(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req personRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validateRequest(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "CreateExaminer", "department", req.Department)

	examiner, err := h.service.CreateExaminer(r.Context(), principal, application.ExaminerInput{
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create examiner", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "examiner created", "examiner_code", examiner.Code)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, personResponse{
		ID:         examiner.ID,
		Code:       examiner.Code,
		Name:       examiner.Name,
		Email:      examiner.Email,
		Department: examiner.Department,
		CreatedAt:  examiner.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (h *DirectoryHandler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req venueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validateRequest(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "CreateVenue", "name", req.Name)

	venue, err := h.service.CreateVenue(r.Context(), principal, application.VenueInput{
		Name:     req.Name,
		Capacity: req.Capacity,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create venue", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "venue created", "venue_code", venue.Code)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, venueResponse{
		ID:        venue.ID,
		Code:      venue.Code,
		Name:      venue.Name,
		Capacity:  venue.Capacity,
		CreatedAt: venue.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (h *DirectoryHandler) CreateModule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req moduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validateRequest(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "CreateModule", "module_code", req.Code)

	module, err := h.service.CreateModule(r.Context(), principal, application.ModuleInput{
		Code:  req.Code,
		Title: req.Title,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create module", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "module created", "module_code", module.Code)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, moduleResponse{
		ID:        module.ID,
		Code:      module.Code,
		Title:     module.Title,
		CreatedAt: module.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

type personRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"required"`
}

type personResponse struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	CreatedAt  string `json:"created_at"`
}

type venueRequest struct {
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
}

type venueResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	CreatedAt string `json:"created_at"`
}

type moduleRequest struct {
	Code  string `json:"code" validate:"required"`
	Title string `json:"title" validate:"required"`
}

type moduleResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}
