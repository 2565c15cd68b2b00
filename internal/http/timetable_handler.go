package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

type timetableService interface {
	Save(ctx context.Context, params application.SaveTimetableParams) (application.Timetable, error)
	GetByGroup(ctx context.Context, groupRef string) (application.Timetable, error)
}

type TimetableHandler struct {
	service   timetableService
	responder responder
	logger    *slog.Logger
}

func NewTimetableHandler(service timetableService, logger *slog.Logger) *TimetableHandler {
	base := defaultLogger(logger)
	return &TimetableHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TimetableHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "TimetableHandler", operation, attrs...)
}

func (h *TimetableHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

func (h *TimetableHandler) Update(w http.ResponseWriter, r *http.Request) {
	timetableID, ok := TimetableIDFromContext(r.Context())
	if !ok || timetableID == "" {
		http.NotFound(w, r)
		return
	}
	h.save(w, r, timetableID)
}

func (h *TimetableHandler) save(w http.ResponseWriter, r *http.Request, timetableID string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req timetableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := validateRequest(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	operation := "Create"
	if timetableID != "" {
		operation = "Update"
	}
	logger := h.log(r.Context(), operation, "group_code", req.GroupCode)

	week := make([]application.TimetableDayInput, 0, len(req.Week))
	for _, day := range req.Week {
		lectures := make([]application.TimetableLectureInput, 0, len(day.Lectures))
		for _, lecture := range day.Lectures {
			lectures = append(lectures, application.TimetableLectureInput{
				Start:        lecture.Start,
				End:          lecture.End,
				ModuleCode:   lecture.ModuleCode,
				LecturerCode: lecture.LecturerCode,
				VenueCode:    lecture.VenueCode,
			})
		}
		week = append(week, application.TimetableDayInput{Day: day.Day, Lectures: lectures})
	}

	saved, err := h.service.Save(r.Context(), application.SaveTimetableParams{
		Principal:   principal,
		TimetableID: timetableID,
		Input: application.TimetableInput{
			GroupCode: req.GroupCode,
			Week:      week,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to save timetable", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusCreated
	if timetableID != "" {
		status = http.StatusOK
	}
	logger.InfoContext(r.Context(), "timetable saved", "timetable_id", saved.ID)
	h.responder.writeJSON(r.Context(), w, status, renderTimetable(saved))
}

func (h *TimetableHandler) GetByGroup(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	groupRef, ok := GroupRefFromContext(r.Context())
	if !ok || groupRef == "" {
		http.NotFound(w, r)
		return
	}

	logger := h.log(r.Context(), "GetByGroup", "group_ref", groupRef)

	timetable, err := h.service.GetByGroup(r.Context(), groupRef)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to fetch timetable", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, renderTimetable(timetable))
}

type timetableRequest struct {
	GroupCode string             `json:"group_code" validate:"required"`
	Week      []timetableDayBody `json:"week" validate:"required,min=1,dive"`
}

type timetableDayBody struct {
	Day      string                 `json:"day" validate:"required"`
	Lectures []timetableLectureBody `json:"lectures" validate:"dive"`
}

type timetableLectureBody struct {
	Start        int    `json:"start_min" validate:"min=0,max=1439"`
	End          int    `json:"end_min" validate:"required,min=1,max=1440,gtfield=Start"`
	ModuleCode   string `json:"module_code" validate:"required"`
	LecturerCode string `json:"lecturer_code" validate:"required"`
	VenueCode    string `json:"venue_code" validate:"required"`
}

type timetableResponse struct {
	ID        string                 `json:"id"`
	GroupID   string                 `json:"group_id"`
	Week      []timetableDayResponse `json:"week"`
	CreatedAt string                 `json:"created_at"`
	UpdatedAt string                 `json:"updated_at"`
}

type timetableDayResponse struct {
	Day      string                     `json:"day"`
	Lectures []timetableLectureResponse `json:"lectures"`
}

type timetableLectureResponse struct {
	Start      int    `json:"start_min"`
	End        int    `json:"end_min"`
	ModuleID   string `json:"module_id"`
	LecturerID string `json:"lecturer_id"`
	VenueID    string `json:"venue_id"`
}

func renderTimetable(t application.Timetable) timetableResponse {
	week := make([]timetableDayResponse, 0, len(t.Week))
	for _, day := range t.Week {
		lectures := make([]timetableLectureResponse, 0, len(day.Lectures))
		for _, lecture := range day.Lectures {
			lectures = append(lectures, timetableLectureResponse{
				Start:      lecture.Start,
				End:        lecture.End,
				ModuleID:   lecture.ModuleID,
				LecturerID: lecture.LecturerID,
				VenueID:    lecture.VenueID,
			})
		}
		week = append(week, timetableDayResponse{Day: day.Day, Lectures: lectures})
	}

	return timetableResponse{
		ID:        t.ID,
		GroupID:   t.GroupID,
		Week:      week,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
