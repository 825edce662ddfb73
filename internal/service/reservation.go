package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/mailer"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/repository"
	apperrors "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/errors"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/pagination"
)

// ReservationEventPublisher publishes reservation lifecycle events.
type ReservationEventPublisher interface {
	PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error
}

// CreateReservationInput holds the parameters for a reservation request.
type CreateReservationInput struct {
	BusinessID    int64  `json:"business_id" validate:"required,gt=0"`
	CustomerName  string `json:"customer_name" validate:"required,max=255"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerPhone string `json:"customer_phone" validate:"max=32"`
	ReservedFor   string `json:"reserved_for" validate:"required"`
	PartySize     int    `json:"party_size" validate:"required,gt=0"`
	Note          string `json:"note" validate:"max=1000"`
}

// ReservationListResult contains a page of reservations and the total count.
type ReservationListResult struct {
	Reservations []domain.Reservation `json:"reservations"`
	TotalCount   int                  `json:"total_count"`
	Page         int                  `json:"page"`
	PerPage      int                  `json:"per_page"`
}

// ReservationService implements the business logic for reservations.
type ReservationService struct {
	repo         repository.ReservationRepository
	businessRepo repository.BusinessRepository
	publisher    ReservationEventPublisher
	mail         mailer.Mailer
	logger       *slog.Logger
}

// NewReservationService creates a new reservation service. publisher may be
// nil when eventing is disabled.
func NewReservationService(repo repository.ReservationRepository, businessRepo repository.BusinessRepository, publisher ReservationEventPublisher, mail mailer.Mailer, logger *slog.Logger) *ReservationService {
	return &ReservationService{
		repo:         repo,
		businessRepo: businessRepo,
		publisher:    publisher,
		mail:         mail,
		logger:       logger,
	}
}

// Create records a reservation request in pending state and notifies the
// customer. The reservation time must be in the future.
func (s *ReservationService) Create(ctx context.Context, input *CreateReservationInput) (*domain.Reservation, error) {
	if input.BusinessID <= 0 {
		return nil, apperrors.InvalidInput("business_id is required")
	}
	if input.CustomerName == "" {
		return nil, apperrors.InvalidInput("customer_name is required")
	}
	if input.CustomerEmail == "" {
		return nil, apperrors.InvalidInput("customer_email is required")
	}
	if input.PartySize <= 0 {
		return nil, apperrors.InvalidInput("party_size must be positive")
	}

	reservedFor, err := time.Parse(time.RFC3339, input.ReservedFor)
	if err != nil {
		return nil, apperrors.InvalidField("reserved_for", "must be an RFC 3339 timestamp")
	}
	if !reservedFor.After(time.Now()) {
		return nil, apperrors.InvalidField("reserved_for", "must be in the future")
	}

	business, err := s.businessRepo.GetByID(ctx, input.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("get business %d: %w", input.BusinessID, err)
	}

	reservation := &domain.Reservation{
		BusinessID:    business.ID,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		ReservedFor:   reservedFor.UTC(),
		PartySize:     input.PartySize,
		Note:          input.Note,
		Status:        domain.ReservationStatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	s.logger.InfoContext(ctx, "reservation created",
		slog.Int64("reservation_id", reservation.ID),
		slog.Int64("business_id", reservation.BusinessID),
		slog.Int("party_size", reservation.PartySize),
		slog.Time("reserved_for", reservation.ReservedFor),
	)

	if s.publisher != nil {
		if err := s.publisher.PublishReservationCreated(ctx, reservation); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish reservation.created",
				slog.Int64("reservation_id", reservation.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.mail.Send(ctx, mailer.Message{
		To:       reservation.CustomerEmail,
		Template: mailer.TemplateReservationReceived,
		Data: map[string]any{
			"business_name": business.Name,
			"reserved_for":  reservation.ReservedFor.Format(time.RFC3339),
			"party_size":    reservation.PartySize,
		},
	}); err != nil {
		// Mail is best effort; the reservation is already recorded.
		s.logger.WarnContext(ctx, "failed to send reservation confirmation",
			slog.Int64("reservation_id", reservation.ID),
			slog.String("error", err.Error()),
		)
	}

	return reservation, nil
}

// ListByBusiness returns paginated reservations for a business.
func (s *ReservationService) ListByBusiness(ctx context.Context, businessID int64, page, perPage int) (*ReservationListResult, error) {
	if businessID <= 0 {
		return nil, apperrors.InvalidInput("business id must be positive")
	}
	p := pagination.Normalize(page, perPage)

	reservations, total, err := s.repo.ListByBusiness(ctx, businessID, p.PerPage, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	return &ReservationListResult{
		Reservations: reservations,
		TotalCount:   total,
		Page:         p.Page,
		PerPage:      p.PerPage,
	}, nil
}
