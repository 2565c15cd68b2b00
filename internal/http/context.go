package http

import (
	"context"
	"log/slog"

	"github.com/example/campus-scheduler/internal/application"
	"github.com/example/campus-scheduler/internal/logging"
)

type contextKey string

const (
	principalContextKey   contextKey = "principal"
	timetableIDContextKey contextKey = "timetable_id"
	groupRefContextKey    contextKey = "group_ref"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithTimetableID injects the timetable identifier resolved from the request path.
func ContextWithTimetableID(ctx context.Context, timetableID string) context.Context {
	return context.WithValue(ctx, timetableIDContextKey, timetableID)
}

// TimetableIDFromContext extracts a timetable identifier previously associated with the context.
func TimetableIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(timetableIDContextKey).(string)
	return id, ok
}

// ContextWithGroupRef injects the group code or identifier resolved from the request path.
func ContextWithGroupRef(ctx context.Context, ref string) context.Context {
	return context.WithValue(ctx, groupRefContextKey, ref)
}

// GroupRefFromContext extracts a group code or identifier previously associated with the context.
func GroupRefFromContext(ctx context.Context) (string, bool) {
	ref, ok := ctx.Value(groupRefContextKey).(string)
	return ref, ok
}

// ContextWithLogger attaches a request-scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request-scoped logger if one was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
