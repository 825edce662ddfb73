package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	pkgkafka "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/kafka"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/logger"
)

// Kafka topic constants for Foodeez domain events.
const (
	// TopicReviewSubmitted carries new, not yet approved reviews.
	TopicReviewSubmitted = "foodeez.review.submitted"
	// TopicReviewModerated is produced by the external moderation process;
	// this service consumes it and applies the approval decision.
	TopicReviewModerated = "foodeez.review.moderated"
	// TopicReviewApprovalApplied is emitted after a moderation decision has
	// been applied to the store and the business aggregate.
	TopicReviewApprovalApplied = "foodeez.review.approval_applied"
	// TopicReservationCreated carries new reservation requests.
	TopicReservationCreated = "foodeez.reservation.created"
	// TopicNewsletterSubscribed carries new newsletter subscriptions.
	TopicNewsletterSubscribed = "foodeez.newsletter.subscribed"
)

// Aggregate type constants.
const (
	AggregateTypeReview      = "review"
	AggregateTypeReservation = "reservation"
	AggregateTypeSubscriber  = "subscriber"
)

// Source identifier for events originating from this service.
const SourceFoodeezAPI = "foodeez-api"

// ReviewSubmittedData is the payload for a review.submitted event.
type ReviewSubmittedData struct {
	ReviewID   int64  `json:"review_id"`
	BusinessID int64  `json:"business_id"`
	Rating     int    `json:"rating"`
	Reviewer   string `json:"reviewer,omitempty"`
}

// ReviewModeratedData is the payload of the inbound review.moderated event
// and of the outbound approval_applied event.
type ReviewModeratedData struct {
	ReviewID int64 `json:"review_id"`
	Approved bool  `json:"approved"`
}

// ReservationCreatedData is the payload for a reservation.created event.
type ReservationCreatedData struct {
	ReservationID int64  `json:"reservation_id"`
	BusinessID    int64  `json:"business_id"`
	CustomerEmail string `json:"customer_email"`
	ReservedFor   string `json:"reserved_for"`
	PartySize     int    `json:"party_size"`
}

// NewsletterSubscribedData is the payload for a newsletter.subscribed event.
type NewsletterSubscribedData struct {
	SubscriberID int64  `json:"subscriber_id"`
	Email        string `json:"email"`
}

// Producer publishes Foodeez domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewSubmitted publishes a review.submitted event.
func (p *Producer) PublishReviewSubmitted(ctx context.Context, review *domain.Review) error {
	data := ReviewSubmittedData{
		ReviewID:   review.ID,
		BusinessID: review.BusinessID,
		Rating:     review.Rating,
		Reviewer:   review.ReviewerName,
	}
	return p.publish(ctx, TopicReviewSubmitted, strconv.FormatInt(review.ID, 10), AggregateTypeReview, data)
}

// PublishReviewApprovalApplied publishes the outcome of a moderation decision.
func (p *Producer) PublishReviewApprovalApplied(ctx context.Context, review *domain.Review) error {
	data := ReviewModeratedData{
		ReviewID: review.ID,
		Approved: review.Approved,
	}
	return p.publish(ctx, TopicReviewApprovalApplied, strconv.FormatInt(review.ID, 10), AggregateTypeReview, data)
}

// PublishReservationCreated publishes a reservation.created event.
func (p *Producer) PublishReservationCreated(ctx context.Context, res *domain.Reservation) error {
	data := ReservationCreatedData{
		ReservationID: res.ID,
		BusinessID:    res.BusinessID,
		CustomerEmail: res.CustomerEmail,
		ReservedFor:   res.ReservedFor.Format(time.RFC3339),
		PartySize:     res.PartySize,
	}
	return p.publish(ctx, TopicReservationCreated, strconv.FormatInt(res.ID, 10), AggregateTypeReservation, data)
}

// PublishNewsletterSubscribed publishes a newsletter.subscribed event.
func (p *Producer) PublishNewsletterSubscribed(ctx context.Context, sub *domain.Subscriber) error {
	data := NewsletterSubscribedData{
		SubscriberID: sub.ID,
		Email:        sub.Email,
	}
	return p.publish(ctx, TopicNewsletterSubscribed, strconv.FormatInt(sub.ID, 10), AggregateTypeSubscriber, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceFoodeezAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
