package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

type groupService interface {
	Create(ctx context.Context, params application.CreateGroupParams) (application.StudentGroup, error)
	Get(ctx context.Context, ref string) (application.StudentGroup, error)
	List(ctx context.Context) ([]application.StudentGroup, error)
}

type GroupHandler struct {
	service   groupService
	responder responder
	logger    *slog.Logger
}

func NewGroupHandler(service groupService, logger *slog.Logger) *GroupHandler {
	base := defaultLogger(logger)
	return &GroupHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *GroupHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "GroupHandler", operation, attrs...)
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validateRequest(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create", "department", req.Department, "students", len(req.StudentCodes))

	created, err := h.service.Create(r.Context(), application.CreateGroupParams{
		Principal: principal,
		Input: application.GroupInput{
			Department:   req.Department,
			StudentCodes: req.StudentCodes,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create group", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "group created", "group_id", created.ID, "group_code", created.Code)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, renderGroup(created))
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ref, ok := GroupRefFromContext(r.Context())
	if !ok || ref == "" {
		http.NotFound(w, r)
		return
	}

	logger := h.log(r.Context(), "Get", "group_ref", ref)

	group, err := h.service.Get(r.Context(), ref)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to fetch group", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, renderGroup(group))
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")

	groups, err := h.service.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list groups", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	items := make([]groupResponse, 0, len(groups))
	for _, group := range groups {
		items = append(items, renderGroup(group))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, groupListResponse{Groups: items})
}

type groupRequest struct {
	Department   string   `json:"department" validate:"required"`
	StudentCodes []string `json:"student_codes" validate:"required,min=1,dive,required"`
}

type groupResponse struct {
	ID         string   `json:"id"`
	Code       string   `json:"code"`
	Department string   `json:"department"`
	StudentIDs []string `json:"student_ids"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

type groupListResponse struct {
	Groups []groupResponse `json:"groups"`
}

func renderGroup(group application.StudentGroup) groupResponse {
	return groupResponse{
		ID:         group.ID,
		Code:       group.Code,
		Department: group.Department,
		StudentIDs: append([]string(nil), group.StudentIDs...),
		CreatedAt:  group.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  group.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
