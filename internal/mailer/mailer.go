package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/httpclient"
)

// Template identifiers understood by the mail delivery service.
const (
	TemplateNewsletterConfirmation = "newsletter_confirmation"
	TemplateReservationReceived    = "reservation_received"
)

// Mailer sends transactional mail through a delivery backend.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message describes a single transactional mail.
type Message struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
}

// HTTPMailer delivers mail by POSTing to an external mail service. Calls go
// through a circuit breaker so a degraded mail backend cannot stall request
// handling paths.
type HTTPMailer struct {
	client  *httpclient.Client
	baseURL string
	logger  *slog.Logger
}

// NewHTTPMailer creates a mailer backed by the mail service at baseURL.
func NewHTTPMailer(baseURL string, logger *slog.Logger) *HTTPMailer {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 10 * time.Second

	return &HTTPMailer{
		client:  httpclient.New("mailer", cfg, logger),
		baseURL: baseURL,
		logger:  logger,
	}
}

// Send posts the message to the mail service.
func (m *HTTPMailer) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mail message: %w", err)
	}

	resp, err := m.client.Post(ctx, m.baseURL+"/v1/send", "application/json", body)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return httpclient.ParseResponseError(resp, "mailer")
	}

	m.logger.InfoContext(ctx, "mail sent",
		slog.String("template", msg.Template),
		slog.String("to", msg.To),
	)

	return nil
}

// NoopMailer logs messages instead of sending them. Used when mail delivery
// is disabled in configuration.
type NoopMailer struct {
	logger *slog.Logger
}

// NewNoopMailer creates a mailer that only logs.
func NewNoopMailer(logger *slog.Logger) *NoopMailer {
	return &NoopMailer{logger: logger}
}

// Send logs the message and succeeds.
func (m *NoopMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "mailer disabled, skipping send",
		slog.String("template", msg.Template),
		slog.String("to", msg.To),
	)
	return nil
}
