package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/campus-scheduler/internal/application"
)

type authServiceStub struct {
	authenticate func(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	revoke       func(ctx context.Context, token string) error
}

func (s *authServiceStub) Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	return s.authenticate(ctx, params)
}

func (s *authServiceStub) RevokeSession(ctx context.Context, token string) error {
	if s.revoke == nil {
		return nil
	}
	return s.revoke(ctx, token)
}

type presentationServiceStub struct {
	create  func(ctx context.Context, params application.CreatePresentationParams) (application.Presentation, error)
	list    func(ctx context.Context, date string) ([]application.Presentation, error)
	check   func(ctx context.Context, params application.CheckAvailabilityParams) (application.AvailabilityResult, error)
	suggest func(ctx context.Context, params application.SuggestSlotParams) (application.SlotSuggestion, error)
}

func (s *presentationServiceStub) Create(ctx context.Context, params application.CreatePresentationParams) (application.Presentation, error) {
	return s.create(ctx, params)
}

func (s *presentationServiceStub) List(ctx context.Context, date string) ([]application.Presentation, error) {
	return s.list(ctx, date)
}

func (s *presentationServiceStub) CheckAvailability(ctx context.Context, params application.CheckAvailabilityParams) (application.AvailabilityResult, error) {
	return s.check(ctx, params)
}

func (s *presentationServiceStub) SuggestSlot(ctx context.Context, params application.SuggestSlotParams) (application.SlotSuggestion, error) {
	return s.suggest(ctx, params)
}

type rescheduleServiceStub struct {
	create      func(ctx context.Context, params application.CreateRescheduleParams) (application.RescheduleRequest, error)
	listPending func(ctx context.Context) ([]application.RescheduleRequest, error)
	decide      func(ctx context.Context, params application.DecideRescheduleParams) (application.RescheduleRequest, error)
	suggest     func(ctx context.Context, requestID string) (application.SlotSuggestion, error)
}

func (s *rescheduleServiceStub) Create(ctx context.Context, params application.CreateRescheduleParams) (application.RescheduleRequest, error) {
	return s.create(ctx, params)
}

func (s *rescheduleServiceStub) ListPending(ctx context.Context) ([]application.RescheduleRequest, error) {
	return s.listPending(ctx)
}

func (s *rescheduleServiceStub) Decide(ctx context.Context, params application.DecideRescheduleParams) (application.RescheduleRequest, error) {
	return s.decide(ctx, params)
}

func (s *rescheduleServiceStub) SuggestSlot(ctx context.Context, requestID string) (application.SlotSuggestion, error) {
	return s.suggest(ctx, requestID)
}

type timetableServiceStub struct {
	save       func(ctx context.Context, params application.SaveTimetableParams) (application.Timetable, error)
	getByGroup func(ctx context.Context, groupRef string) (application.Timetable, error)
}

func (s *timetableServiceStub) Save(ctx context.Context, params application.SaveTimetableParams) (application.Timetable, error) {
	return s.save(ctx, params)
}

func (s *timetableServiceStub) GetByGroup(ctx context.Context, groupRef string) (application.Timetable, error) {
	return s.getByGroup(ctx, groupRef)
}

type groupServiceStub struct {
	create func(ctx context.Context, params application.CreateGroupParams) (application.StudentGroup, error)
	get    func(ctx context.Context, ref string) (application.StudentGroup, error)
	list   func(ctx context.Context) ([]application.StudentGroup, error)
}

func (s *groupServiceStub) Create(ctx context.Context, params application.CreateGroupParams) (application.StudentGroup, error) {
	return s.create(ctx, params)
}

func (s *groupServiceStub) Get(ctx context.Context, ref string) (application.StudentGroup, error) {
	return s.get(ctx, ref)
}

func (s *groupServiceStub) List(ctx context.Context) ([]application.StudentGroup, error) {
	return s.list(ctx)
}

type directoryServiceStub struct {
	createStudent  func(ctx context.Context, principal application.Principal, input application.StudentInput) (application.Student, error)
	createExaminer func(ctx context.Context, principal application.Principal, input application.ExaminerInput) (application.Examiner, error)
	createVenue    func(ctx context.Context, principal application.Principal, input application.VenueInput) (application.Venue, error)
	createModule   func(ctx context.Context, principal application.Principal, input application.ModuleInput) (application.Module, error)
}

func (s *directoryServiceStub) CreateStudent(ctx context.Context, principal application.Principal, input application.StudentInput) (application.Student, error) {
	return s.createStudent(ctx, principal, input)
}

func (s *directoryServiceStub) CreateExaminer(ctx context.Context, principal application.Principal, input application.ExaminerInput) (application.Examiner, error) {
	return s.createExaminer(ctx, principal, input)
}

func (s *directoryServiceStub) CreateVenue(ctx context.Context, principal application.Principal, input application.VenueInput) (application.Venue, error) {
	return s.createVenue(ctx, principal, input)
}

func (s *directoryServiceStub) CreateModule(ctx context.Context, principal application.Principal, input application.ModuleInput) (application.Module, error) {
	return s.createModule(ctx, principal, input)
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func withPrincipal(req *http.Request, principal application.Principal) *http.Request {
	return req.WithContext(ContextWithPrincipal(req.Context(), principal))
}

func adminPrincipal() application.Principal {
	return application.Principal{UserID: "user-admin", Role: application.RoleAdmin, IsAdmin: true}
}

func TestAuthHandler_LoginIssuesToken(t *testing.T) {
	t.Parallel()

	expires := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	service := &authServiceStub{
		authenticate: func(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
			if params.Email != "coordinator@example.edu" {
				t.Fatalf("email = %q", params.Email)
			}
			return application.AuthenticateResult{
				User:    application.User{ID: "user-1", Role: application.RoleAdmin},
				Session: application.Session{Token: "token-1", ExpiresAt: expires},
			}, nil
		},
	}
	handler := NewAuthHandler(service, nil)

	body := strings.NewReader(`{"email":"Coordinator@Example.edu","password":"secret"}`)
	recorder := httptest.NewRecorder()
	handler.Login(recorder, httptest.NewRequest(http.MethodPost, "/login", body))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusCreated)
	}
	if got := recorder.Header().Get("X-Session-Token"); got != "token-1" {
		t.Fatalf("X-Session-Token = %q", got)
	}
	cookieSet := false
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == "session_token" && cookie.Value == "token-1" {
			cookieSet = true
		}
	}
	if !cookieSet {
		t.Fatal("session cookie was not set")
	}
	payload := decodeBody(t, recorder)
	if payload["token"] != "token-1" || payload["role"] != "admin" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestAuthHandler_LoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	service := &authServiceStub{
		authenticate: func(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
			return application.AuthenticateResult{}, application.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(service, nil)

	body := strings.NewReader(`{"email":"coordinator@example.edu","password":"wrong"}`)
	recorder := httptest.NewRecorder()
	handler.Login(recorder, httptest.NewRequest(http.MethodPost, "/login", body))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandler_LoginValidatesBody(t *testing.T) {
	t.Parallel()

	handler := NewAuthHandler(&authServiceStub{
		authenticate: func(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
			t.Fatal("service should not be reached for invalid input")
			return application.AuthenticateResult{}, nil
		},
	}, nil)

	body := strings.NewReader(`{"email":"not-an-email","password":""}`)
	recorder := httptest.NewRecorder()
	handler.Login(recorder, httptest.NewRequest(http.MethodPost, "/login", body))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
	payload := decodeBody(t, recorder)
	errs, ok := payload["errors"].(map[string]any)
	if !ok {
		t.Fatalf("errors missing from payload: %v", payload)
	}
	if _, ok := errs["email"]; !ok {
		t.Fatalf("expected email field error, got %v", errs)
	}
	if _, ok := errs["password"]; !ok {
		t.Fatalf("expected password field error, got %v", errs)
	}
}

func TestAuthHandler_DeleteCurrentSessionRevokesToken(t *testing.T) {
	t.Parallel()

	var revoked string
	handler := NewAuthHandler(&authServiceStub{
		authenticate: func(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
			return application.AuthenticateResult{}, nil
		},
		revoke: func(ctx context.Context, token string) error {
			revoked = token
			return nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/current", nil)
	req.Header.Set("Authorization", "Bearer token-9")
	recorder := httptest.NewRecorder()
	handler.DeleteCurrentSession(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNoContent)
	}
	if revoked != "token-9" {
		t.Fatalf("revoked token = %q", revoked)
	}
}

func TestPresentationHandler_CreateMapsConflictTo400(t *testing.T) {
	t.Parallel()

	handler := NewPresentationHandler(&presentationServiceStub{
		create: func(ctx context.Context, params application.CreatePresentationParams) (application.Presentation, error) {
			return application.Presentation{}, &application.ConflictError{Resource: "venue", Detail: "venue VN101 is already booked from 600 to 660"}
		},
	}, nil)

	body := strings.NewReader(`{
		"title": "Final year defense",
		"date": "2025-03-12",
		"start_min": 600,
		"end_min": 660,
		"venue_code": "VN101",
		"examiner_codes": ["EXSET2025001"],
		"student_codes": ["STSET2025001"],
		"num_examiners": 1
	}`)
	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/presentations", body), adminPrincipal())
	recorder := httptest.NewRecorder()
	handler.Create(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
	payload := decodeBody(t, recorder)
	if payload["error_code"] != "SLOT_CONFLICT" || payload["resource"] != "venue" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestPresentationHandler_CreateRejectsMalformedDate(t *testing.T) {
	t.Parallel()

	handler := NewPresentationHandler(&presentationServiceStub{
		create: func(ctx context.Context, params application.CreatePresentationParams) (application.Presentation, error) {
			t.Fatal("service should not be reached for invalid input")
			return application.Presentation{}, nil
		},
	}, nil)

	body := strings.NewReader(`{
		"title": "Final year defense",
		"date": "12-03-2025",
		"start_min": 600,
		"end_min": 660,
		"venue_code": "VN101",
		"examiner_codes": ["EXSET2025001"],
		"student_codes": ["STSET2025001"],
		"num_examiners": 1
	}`)
	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/presentations", body), adminPrincipal())
	recorder := httptest.NewRecorder()
	handler.Create(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
	payload := decodeBody(t, recorder)
	errs, ok := payload["errors"].(map[string]any)
	if !ok {
		t.Fatalf("errors missing from payload: %v", payload)
	}
	if _, ok := errs["date"]; !ok {
		t.Fatalf("expected date field error, got %v", errs)
	}
}

func TestPresentationHandler_CreateReturnsCreatedPresentation(t *testing.T) {
	t.Parallel()

	handler := NewPresentationHandler(&presentationServiceStub{
		create: func(ctx context.Context, params application.CreatePresentationParams) (application.Presentation, error) {
			if !params.Principal.IsAdmin {
				t.Fatal("principal was not forwarded")
			}
			return application.Presentation{
				ID:           "presentation-1",
				Title:        params.Input.Title,
				Date:         params.Input.Date,
				Start:        params.Input.Start,
				End:          params.Input.End,
				DurationMin:  params.Input.End - params.Input.Start,
				VenueID:      "venue-1",
				ExaminerIDs:  []string{"examiner-1"},
				StudentIDs:   []string{"student-1"},
				NumExaminers: params.Input.NumExaminers,
			}, nil
		},
	}, nil)

	body := strings.NewReader(`{
		"title": "Final year defense",
		"date": "2025-03-12",
		"start_min": 600,
		"end_min": 660,
		"venue_code": "VN101",
		"examiner_codes": ["EXSET2025001"],
		"student_codes": ["STSET2025001"],
		"num_examiners": 1
	}`)
	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/presentations", body), adminPrincipal())
	recorder := httptest.NewRecorder()
	handler.Create(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", recorder.Code, http.StatusCreated, recorder.Body.String())
	}
	payload := decodeBody(t, recorder)
	if payload["id"] != "presentation-1" || payload["duration_min"] != float64(60) {
		t.Fatalf("payload = %v", payload)
	}
}

func TestPresentationHandler_CheckAvailabilityReportsConflicts(t *testing.T) {
	t.Parallel()

	handler := NewPresentationHandler(&presentationServiceStub{
		check: func(ctx context.Context, params application.CheckAvailabilityParams) (application.AvailabilityResult, error) {
			return application.AvailabilityResult{
				Available: false,
				Conflicts: []application.SlotConflict{{
					Dimension:      "venue",
					ResourceID:     "venue-1",
					PresentationID: "presentation-9",
					Start:          600,
					End:            660,
				}},
			}, nil
		},
	}, nil)

	body := strings.NewReader(`{"date":"2025-03-12","start_min":630,"end_min":690,"venue_code":"VN101"}`)
	recorder := httptest.NewRecorder()
	handler.CheckAvailability(recorder, httptest.NewRequest(http.MethodPost, "/presentations/check-availability", body))

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	payload := decodeBody(t, recorder)
	if payload["available"] != false {
		t.Fatalf("payload = %v", payload)
	}
	conflicts, ok := payload["conflicts"].([]any)
	if !ok || len(conflicts) != 1 {
		t.Fatalf("conflicts = %v", payload["conflicts"])
	}
}

func TestPresentationHandler_SuggestSlotMapsExhaustionTo400(t *testing.T) {
	t.Parallel()

	handler := NewPresentationHandler(&presentationServiceStub{
		suggest: func(ctx context.Context, params application.SuggestSlotParams) (application.SlotSuggestion, error) {
			return application.SlotSuggestion{}, application.ErrNoSuitableSlot
		},
	}, nil)

	body := strings.NewReader(`{"student_codes":["STSET2025001"],"num_examiners":2,"duration_min":60}`)
	recorder := httptest.NewRecorder()
	handler.SuggestSlot(recorder, httptest.NewRequest(http.MethodPost, "/presentations/suggest-slot", body))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
	payload := decodeBody(t, recorder)
	if payload["error_code"] != "NO_SUITABLE_SLOT" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestRescheduleHandler_DecideForwardsDecision(t *testing.T) {
	t.Parallel()

	handler := NewRescheduleHandler(&rescheduleServiceStub{
		decide: func(ctx context.Context, params application.DecideRescheduleParams) (application.RescheduleRequest, error) {
			if params.RequestID != "request-1" || !params.Approve {
				t.Fatalf("params = %+v", params)
			}
			decided := time.Date(2025, 3, 11, 10, 0, 0, 0, time.UTC)
			return application.RescheduleRequest{
				ID:        params.RequestID,
				Status:    application.RescheduleApproved,
				DecidedAt: &decided,
			}, nil
		},
	}, nil)

	body := strings.NewReader(`{"request_id":"request-1","decision":"approve"}`)
	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/presentations/reschedule-request/decide", body), adminPrincipal())
	recorder := httptest.NewRecorder()
	handler.Decide(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	payload := decodeBody(t, recorder)
	if payload["status"] != "Approved" || payload["decided_at"] == "" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestRescheduleHandler_DecideRejectsUnknownDecision(t *testing.T) {
	t.Parallel()

	handler := NewRescheduleHandler(&rescheduleServiceStub{
		decide: func(ctx context.Context, params application.DecideRescheduleParams) (application.RescheduleRequest, error) {
			t.Fatal("service should not be reached for invalid input")
			return application.RescheduleRequest{}, nil
		},
	}, nil)

	body := strings.NewReader(`{"request_id":"request-1","decision":"defer"}`)
	recorder := httptest.NewRecorder()
	handler.Decide(recorder, httptest.NewRequest(http.MethodPost, "/presentations/reschedule-request/decide", body))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
}

func TestRescheduleHandler_CreateMapsMissingPresentationTo404(t *testing.T) {
	t.Parallel()

	handler := NewRescheduleHandler(&rescheduleServiceStub{
		create: func(ctx context.Context, params application.CreateRescheduleParams) (application.RescheduleRequest, error) {
			return application.RescheduleRequest{}, application.ErrNotFound
		},
	}, nil)

	body := strings.NewReader(`{
		"presentation_id": "missing",
		"date": "2025-03-13",
		"start_min": 600,
		"end_min": 660,
		"venue_code": "VN101",
		"reason": "examiner travel"
	}`)
	recorder := httptest.NewRecorder()
	handler.Create(recorder, httptest.NewRequest(http.MethodPost, "/presentations/reschedule-request", body))

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNotFound)
	}
}

func TestRouter_DispatchesTimetableRoutes(t *testing.T) {
	t.Parallel()

	var savedID string
	var fetchedRef string
	timetables := &timetableServiceStub{
		save: func(ctx context.Context, params application.SaveTimetableParams) (application.Timetable, error) {
			savedID = params.TimetableID
			return application.Timetable{ID: "timetable-1", GroupID: "group-1"}, nil
		},
		getByGroup: func(ctx context.Context, groupRef string) (application.Timetable, error) {
			fetchedRef = groupRef
			return application.Timetable{ID: "timetable-1", GroupID: "group-1"}, nil
		},
	}
	router := NewRouter(RouterConfig{Timetables: NewTimetableHandler(timetables, nil)})

	timetableBody := `{
		"group_code": "GR1001",
		"week": [{"day": "Mon", "lectures": [{"start_min": 540, "end_min": 600, "module_code": "CS101", "lecturer_code": "EXSET2025001", "venue_code": "VN101"}]}]
	}`

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/timetables", strings.NewReader(timetableBody)))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", recorder.Code, recorder.Body.String())
	}
	if savedID != "" {
		t.Fatalf("create forwarded timetable id %q", savedID)
	}

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/timetables/timetable-1", strings.NewReader(timetableBody)))
	if recorder.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", recorder.Code, recorder.Body.String())
	}
	if savedID != "timetable-1" {
		t.Fatalf("update forwarded timetable id %q", savedID)
	}

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/timetables/group/GR1001", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("get status = %d", recorder.Code)
	}
	if fetchedRef != "GR1001" {
		t.Fatalf("group ref = %q", fetchedRef)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	router := NewRouter(RouterConfig{
		Presentations: NewPresentationHandler(&presentationServiceStub{}, nil),
	})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/presentations", nil))

	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusMethodNotAllowed)
	}
	if allow := recorder.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
		t.Fatalf("Allow = %q", allow)
	}
}

func TestGroupHandler_CreateMapsAlreadyGroupedTo400(t *testing.T) {
	t.Parallel()

	handler := NewGroupHandler(&groupServiceStub{
		create: func(ctx context.Context, params application.CreateGroupParams) (application.StudentGroup, error) {
			return application.StudentGroup{}, &application.ConflictError{Resource: "student", Detail: "student STSET2025001 already belongs to a group"}
		},
	}, nil)

	body := strings.NewReader(`{"department":"Computing","student_codes":["STSET2025001"]}`)
	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/groups", body), adminPrincipal())
	recorder := httptest.NewRecorder()
	handler.Create(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
	payload := decodeBody(t, recorder)
	if payload["resource"] != "student" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestDirectoryHandler_CreateStudentMapsUnauthorizedTo401(t *testing.T) {
	t.Parallel()

	handler := NewDirectoryHandler(&directoryServiceStub{
		createStudent: func(ctx context.Context, principal application.Principal, input application.StudentInput) (application.Student, error) {
			return application.Student{}, application.ErrUnauthorized
		},
	}, nil)

	body := strings.NewReader(`{"name":"Asha Patel","email":"asha@example.edu","department":"Computing"}`)
	recorder := httptest.NewRecorder()
	handler.CreateStudent(recorder, httptest.NewRequest(http.MethodPost, "/students", body))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnauthorized)
	}
}

func TestDirectoryHandler_CreateVenueReturnsAssignedCode(t *testing.T) {
	t.Parallel()

	handler := NewDirectoryHandler(&directoryServiceStub{
		createVenue: func(ctx context.Context, principal application.Principal, input application.VenueInput) (application.Venue, error) {
			return application.Venue{ID: "venue-1", Code: "VN101", Name: input.Name, Capacity: input.Capacity}, nil
		},
	}, nil)

	body := strings.NewReader(`{"name":"Seminar Room A","capacity":20}`)
	req := withPrincipal(httptest.NewRequest(http.MethodPost, "/venues", body), adminPrincipal())
	recorder := httptest.NewRecorder()
	handler.CreateVenue(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusCreated)
	}
	payload := decodeBody(t, recorder)
	if payload["code"] != "VN101" {
		t.Fatalf("payload = %v", payload)
	}
}
