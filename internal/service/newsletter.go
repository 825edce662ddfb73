package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/mailer"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/repository"
	apperrors "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/errors"
)

// NewsletterEventPublisher publishes newsletter subscription events.
type NewsletterEventPublisher interface {
	PublishNewsletterSubscribed(ctx context.Context, subscriber *domain.Subscriber) error
}

// SubscribeInput holds the parameters for a newsletter subscription.
type SubscribeInput struct {
	Email string `json:"email" validate:"required,email"`
}

// NewsletterService implements the business logic for newsletter subscriptions.
type NewsletterService struct {
	repo      repository.NewsletterRepository
	publisher NewsletterEventPublisher
	mail      mailer.Mailer
	logger    *slog.Logger
}

// NewNewsletterService creates a new newsletter service. publisher may be
// nil when eventing is disabled.
func NewNewsletterService(repo repository.NewsletterRepository, publisher NewsletterEventPublisher, mail mailer.Mailer, logger *slog.Logger) *NewsletterService {
	return &NewsletterService{
		repo:      repo,
		publisher: publisher,
		mail:      mail,
		logger:    logger,
	}
}

// Subscribe registers an email address for the newsletter and sends a
// confirmation mail. Subscribing an already registered address yields
// ErrAlreadyExists.
func (s *NewsletterService) Subscribe(ctx context.Context, input *SubscribeInput) (*domain.Subscriber, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	subscriber := &domain.Subscriber{
		Email:        email,
		SubscribedAt: time.Now().UTC(),
	}

	if err := s.repo.Subscribe(ctx, subscriber); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", email, err)
	}

	s.logger.InfoContext(ctx, "newsletter subscription created",
		slog.Int64("subscriber_id", subscriber.ID),
	)

	if s.publisher != nil {
		if err := s.publisher.PublishNewsletterSubscribed(ctx, subscriber); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish newsletter.subscribed",
				slog.Int64("subscriber_id", subscriber.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.mail.Send(ctx, mailer.Message{
		To:       subscriber.Email,
		Template: mailer.TemplateNewsletterConfirmation,
		Data:     map[string]any{"email": subscriber.Email},
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to send subscription confirmation",
			slog.Int64("subscriber_id", subscriber.ID),
			slog.String("error", err.Error()),
		)
	}

	return subscriber, nil
}

// Unsubscribe removes an email address from the newsletter.
func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	if err := s.repo.Unsubscribe(ctx, email); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", email, err)
	}

	s.logger.InfoContext(ctx, "newsletter subscription removed")

	return nil
}
