// Package notification delivers scheduling emails. A Sendgrid-backed sender
// covers production while a console sender serves development setups without
// an API key; both satisfy application.Notifier.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridNotifier delivers mail through the Sendgrid v3 API.
type SendgridNotifier struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	logger     *slog.Logger
}

// NewSendgridNotifier builds a notifier sending from the given address with
// every subject prefixed by the application name.
func NewSendgridNotifier(key, appName, fromEmail string, logger *slog.Logger) *SendgridNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendgridNotifier{
		key:        key,
		from:       sgmail.NewEmail(appName, fromEmail),
		subjPrefix: "[" + appName + "] ",
		logger:     logger,
	}
}

func (n *SendgridNotifier) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	req := sendgrid.GetRequest(n.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(n.prepare(to, subject, body))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		n.logger.ErrorContext(ctx, "sendgrid rejected message", "status", res.StatusCode, "body", res.Body)
		return fmt.Errorf("sendgrid: status %d", res.StatusCode)
	}
	return nil
}

func (n *SendgridNotifier) prepare(to []string, subject, body string) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = n.subjPrefix + subject
	for _, addr := range to {
		p.AddTos(sgmail.NewEmail("", addr))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(n.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", body))
	return m
}

// ConsoleNotifier logs messages instead of delivering them.
type ConsoleNotifier struct {
	logger *slog.Logger
}

func NewConsoleNotifier(logger *slog.Logger) *ConsoleNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleNotifier{logger: logger}
}

func (n *ConsoleNotifier) Send(ctx context.Context, to []string, subject, body string) error {
	n.logger.InfoContext(ctx, "notification",
		"to", strings.Join(to, ", "),
		"subject", subject,
		"body", body,
	)
	return nil
}
