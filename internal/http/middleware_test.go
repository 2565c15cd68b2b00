package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/campus-scheduler/internal/application"
)

type sessionValidatorStub struct {
	principal application.Principal
	err       error
	tokens    []string
}

func (s *sessionValidatorStub) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	s.tokens = append(s.tokens, token)
	return s.principal, s.err
}

func TestRequireSession_RejectsMissingToken(t *testing.T) {
	t.Parallel()

	validator := &sessionValidatorStub{}
	handler := RequireSession(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run without a token")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/presentations", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnauthorized)
	}
	if len(validator.tokens) != 0 {
		t.Fatalf("validator was called with %v", validator.tokens)
	}
}

func TestRequireSession_RejectsInvalidSession(t *testing.T) {
	t.Parallel()

	validator := &sessionValidatorStub{err: application.ErrSessionExpired}
	handler := RequireSession(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run for an expired session")
	}))

	req := httptest.NewRequest(http.MethodGet, "/presentations", nil)
	req.Header.Set("Authorization", "Bearer stale-token")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnauthorized)
	}
	if len(validator.tokens) != 1 || validator.tokens[0] != "stale-token" {
		t.Fatalf("validator tokens = %v", validator.tokens)
	}
}

func TestRequireSession_AttachesPrincipal(t *testing.T) {
	t.Parallel()

	want := application.Principal{UserID: "user-1", Role: application.RoleAdmin, IsAdmin: true}
	validator := &sessionValidatorStub{principal: want}

	var got application.Principal
	var ok bool
	handler := RequireSession(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/presentations", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "valid-token"})
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	if !ok || got != want {
		t.Fatalf("principal = %+v (ok=%t), want %+v", got, ok, want)
	}
}

func TestRequireSession_SkipsExemptPath(t *testing.T) {
	t.Parallel()

	validator := &sessionValidatorStub{err: application.ErrUnauthorized}
	called := false
	handler := RequireSession(validator, nil, "/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/login", nil))

	if !called {
		t.Fatal("exempt path should reach the next handler without a session")
	}
	if len(validator.tokens) != 0 {
		t.Fatalf("validator was called with %v", validator.tokens)
	}
}

func TestRequireSession_ReportsValidatorFailure(t *testing.T) {
	t.Parallel()

	validator := &sessionValidatorStub{err: context.DeadlineExceeded}
	handler := RequireSession(validator, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not run when validation errors")
	}))

	req := httptest.NewRequest(http.MethodGet, "/presentations", nil)
	req.Header.Set("Authorization", "Bearer token")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusInternalServerError)
	}
}
