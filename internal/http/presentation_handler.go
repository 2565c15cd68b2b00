package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

type presentationService interface {
	Create(ctx context.Context, params application.CreatePresentationParams) (application.Presentation, error)
	List(ctx context.Context, date string) ([]application.Presentation, error)
	CheckAvailability(ctx context.Context, params application.CheckAvailabilityParams) (application.AvailabilityResult, error)
	SuggestSlot(ctx context.Context, params application.SuggestSlotParams) (application.SlotSuggestion, error)
}

type PresentationHandler struct {
	service   presentationService
	responder responder
	logger    *slog.Logger
}

func NewPresentationHandler(service presentationService, logger *slog.Logger) *PresentationHandler {
	base := defaultLogger(logger)
	return &PresentationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *PresentationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PresentationHandler", operation, attrs...)
}

func (h *PresentationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req presentationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validateRequest(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create", "date", req.Date, "venue_code", req.VenueCode)

	created, err := h.service.Create(r.Context(), application.CreatePresentationParams{
		Principal: principal,
		Input: application.PresentationInput{
			Title:         req.Title,
			Date:          req.Date,
			Start:         req.Start,
			End:           req.End,
			VenueCode:     req.VenueCode,
			ExaminerCodes: req.ExaminerCodes,
			StudentCodes:  req.StudentCodes,
			NumExaminers:  req.NumExaminers,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to schedule presentation", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "presentation scheduled", "presentation_id", created.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, renderPresentation(created))
}

func (h *PresentationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	logger := h.log(r.Context(), "List", "date", date)

	presentations, err := h.service.List(r.Context(), date)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to list presentations", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	items := make([]presentationResponse, 0, len(presentations))
	for _, p := range presentations {
		items = append(items, renderPresentation(p))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, presentationListResponse{Presentations: items})
}

func (h *PresentationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validateRequest(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "CheckAvailability", "date", req.Date)

	result, err := h.service.CheckAvailability(r.Context(), application.CheckAvailabilityParams{
		Date:          req.Date,
		Start:         req.Start,
		End:           req.End,
		VenueCode:     req.VenueCode,
		ExaminerCodes: req.ExaminerCodes,
		StudentCodes:  req.StudentCodes,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "availability probe failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, renderAvailability(result))
}

func (h *PresentationHandler) SuggestSlot(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req suggestSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validateRequest(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "SuggestSlot", "students", len(req.StudentCodes))

	suggestion, err := h.service.SuggestSlot(r.Context(), application.SuggestSlotParams{
		StudentCodes: req.StudentCodes,
		NumExaminers: req.NumExaminers,
		DurationMin:  req.DurationMin,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "slot suggestion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, renderSuggestion(suggestion))
}

type presentationRequest struct {
	Title         string   `json:"title" validate:"required"`
	Date          string   `json:"date" validate:"required,datetime=2006-01-02"`
	Start         int      `json:"start_min" validate:"min=0,max=1439"`
	End           int      `json:"end_min" validate:"required,min=1,max=1440,gtfield=Start"`
	VenueCode     string   `json:"venue_code" validate:"required"`
	ExaminerCodes []string `json:"examiner_codes" validate:"required,min=1,dive,required"`
	StudentCodes  []string `json:"student_codes" validate:"required,min=1,dive,required"`
	NumExaminers  int      `json:"num_examiners" validate:"required,min=1"`
}

type availabilityRequest struct {
	Date          string   `json:"date" validate:"required,datetime=2006-01-02"`
	Start         int      `json:"start_min" validate:"min=0,max=1439"`
	End           int      `json:"end_min" validate:"required,min=1,max=1440,gtfield=Start"`
	VenueCode     string   `json:"venue_code"`
	ExaminerCodes []string `json:"examiner_codes"`
	StudentCodes  []string `json:"student_codes"`
}

type suggestSlotRequest struct {
	StudentCodes []string `json:"student_codes" validate:"required,min=1,dive,required"`
	NumExaminers int      `json:"num_examiners" validate:"required,min=1"`
	DurationMin  int      `json:"duration_min" validate:"required,min=1"`
}

type presentationResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Department   string   `json:"department"`
	Date         string   `json:"date"`
	Start        int      `json:"start_min"`
	End          int      `json:"end_min"`
	DurationMin  int      `json:"duration_min"`
	VenueID      string   `json:"venue_id"`
	ExaminerIDs  []string `json:"examiner_ids"`
	StudentIDs   []string `json:"student_ids"`
	NumExaminers int      `json:"num_examiners"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

type presentationListResponse struct {
	Presentations []presentationResponse `json:"presentations"`
}

type availabilityResponse struct {
	Available bool               `json:"available"`
	Conflicts []conflictResponse `json:"conflicts,omitempty"`
}

type conflictResponse struct {
	Dimension      string `json:"dimension"`
	ResourceID     string `json:"resource_id"`
	PresentationID string `json:"presentation_id"`
	Start          int    `json:"start_min"`
	End            int    `json:"end_min"`
}

type suggestionResponse struct {
	Date          string   `json:"date"`
	Start         int      `json:"start_min"`
	End           int      `json:"end_min"`
	VenueCode     string   `json:"venue_code"`
	ExaminerCodes []string `json:"examiner_codes"`
}

func renderPresentation(p application.Presentation) presentationResponse {
	return presentationResponse{
		ID:           p.ID,
		Title:        p.Title,
		Department:   p.Department,
		Date:         p.Date,
		Start:        p.Start,
		End:          p.End,
		DurationMin:  p.DurationMin,
		VenueID:      p.VenueID,
		ExaminerIDs:  append([]string(nil), p.ExaminerIDs...),
		StudentIDs:   append([]string(nil), p.StudentIDs...),
		NumExaminers: p.NumExaminers,
		CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func renderAvailability(result application.AvailabilityResult) availabilityResponse {
	resp := availabilityResponse{Available: result.Available}
	for _, c := range result.Conflicts {
		resp.Conflicts = append(resp.Conflicts, conflictResponse{
			Dimension:      string(c.Dimension),
			ResourceID:     c.ResourceID,
			PresentationID: c.PresentationID,
			Start:          c.Start,
			End:            c.End,
		})
	}
	return resp
}

func renderSuggestion(s application.SlotSuggestion) suggestionResponse {
	return suggestionResponse{
		Date:          s.Date,
		Start:         s.Start,
		End:           s.End,
		VenueCode:     s.VenueCode,
		ExaminerCodes: append([]string(nil), s.ExaminerCodes...),
	}
}
