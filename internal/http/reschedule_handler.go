package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

type rescheduleService interface {
	Create(ctx context.Context, params application.CreateRescheduleParams) (application.RescheduleRequest, error)
	ListPending(ctx context.Context) ([]application.RescheduleRequest, error)
	Decide(ctx context.Context, params application.DecideRescheduleParams) (application.RescheduleRequest, error)
	SuggestSlot(ctx context.Context, requestID string) (application.SlotSuggestion, error)
}

type RescheduleHandler struct {
	service   rescheduleService
	responder responder
	logger    *slog.Logger
}

func NewRescheduleHandler(service rescheduleService, logger *slog.Logger) *RescheduleHandler {
	base := defaultLogger(logger)
	return &RescheduleHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RescheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RescheduleHandler", operation, attrs...)
}

func (h *RescheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req rescheduleRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validateRequest(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create", "presentation_id", req.PresentationID, "date", req.Date)

	created, err := h.service.Create(r.Context(), application.CreateRescheduleParams{
		Principal:      principal,
		RequestorEmail: req.RequestorEmail,
		Input: application.RescheduleInput{
			PresentationID: req.PresentationID,
			Date:           req.Date,
			Start:          req.Start,
			End:            req.End,
			VenueCode:      req.VenueCode,
			Reason:         req.Reason,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to file reschedule request", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reschedule request filed", "request_id", created.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, renderReschedule(created))
}

func (h *RescheduleHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "ListPending")

	requests, err := h.service.ListPending(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list pending requests", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	items := make([]rescheduleResponse, 0, len(requests))
	for _, request := range requests {
		items = append(items, renderReschedule(request))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, rescheduleListResponse{Requests: items})
}

func (h *RescheduleHandler) Decide(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req rescheduleDecisionBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validateRequest(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Decide", "request_id", req.RequestID, "decision", req.Decision)

	decided, err := h.service.Decide(r.Context(), application.DecideRescheduleParams{
		Principal: principal,
		RequestID: req.RequestID,
		Approve:   req.Decision == "approve",
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to decide reschedule request", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reschedule request decided", "status", string(decided.Status))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, renderReschedule(decided))
}

func (h *RescheduleHandler) SuggestSlot(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req rescheduleSuggestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validateRequest(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "SuggestSlot", "request_id", req.RequestID)

	suggestion, err := h.service.SuggestSlot(r.Context(), req.RequestID)
	if err != nil {
		logger.ErrorContext(r.Context(), "reschedule slot suggestion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, renderSuggestion(suggestion))
}

type rescheduleRequestBody struct {
	PresentationID string `json:"presentation_id" validate:"required"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Start          int    `json:"start_min" validate:"min=0,max=1439"`
	End            int    `json:"end_min" validate:"required,min=1,max=1440,gtfield=Start"`
	VenueCode      string `json:"venue_code" validate:"required"`
	Reason         string `json:"reason" validate:"required"`
	RequestorEmail string `json:"requestor_email" validate:"omitempty,email"`
}

type rescheduleDecisionBody struct {
	RequestID string `json:"request_id" validate:"required"`
	Decision  string `json:"decision" validate:"required,oneof=approve reject"`
}

type rescheduleSuggestBody struct {
	RequestID string `json:"request_id" validate:"required"`
}

type rescheduleResponse struct {
	ID             string `json:"id"`
	PresentationID string `json:"presentation_id"`
	Date           string `json:"date"`
	Start          int    `json:"start_min"`
	End            int    `json:"end_min"`
	VenueID        string `json:"venue_id"`
	Reason         string `json:"reason"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
	DecidedAt      string `json:"decided_at,omitempty"`
}

type rescheduleListResponse struct {
	Requests []rescheduleResponse `json:"requests"`
}

func renderReschedule(request application.RescheduleRequest) rescheduleResponse {
	resp := rescheduleResponse{
		ID:             request.ID,
		PresentationID: request.PresentationID,
		Date:           request.Date,
		Start:          request.Start,
		End:            request.End,
		VenueID:        request.VenueID,
		Reason:         request.Reason,
		Status:         string(request.Status),
		CreatedAt:      request.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if request.DecidedAt != nil {
		resp.DecidedAt = request.DecidedAt.UTC().Format(time.RFC3339Nano)
	}
	return resp
}
