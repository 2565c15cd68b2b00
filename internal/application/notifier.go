package application

import (
	"context"
	"log/slog"
)

// Notifier delivers a notification email. Implementations are fire-and-forget
// from the services' perspective: a delivery failure is logged by the caller
// and never affects the primary state transition.
type Notifier interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// notify sends best-effort. Errors are logged and swallowed.
func notify(ctx context.Context, logger *slog.Logger, notifier Notifier, to []string, subject, body string) {
	if notifier == nil || len(to) == 0 {
		return
	}
	if err := notifier.Send(ctx, to, subject, body); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.WarnContext(ctx, "notification failed", "subject", subject, "recipients", len(to), "error", err)
	}
}
