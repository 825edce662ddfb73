package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	apperrors "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/errors"
	pkgkafka "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/kafka"
)

// idempotencyTTL bounds how long processed event IDs are remembered.
const idempotencyTTL = 24 * time.Hour

// ReviewApprover applies moderation decisions to stored reviews.
type ReviewApprover interface {
	SetReviewApproval(ctx context.Context, reviewID int64, approved bool) (*domain.Review, error)
}

// ModerationHandler processes review.moderated events coming from the
// moderation pipeline and applies the decision to the store.
func ModerationHandler(approver ReviewApprover, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, event *pkgkafka.Event) error {
		var data ReviewModeratedData
		if err := event.UnmarshalData(&data); err != nil {
			return fmt.Errorf("unmarshal review.moderated payload: %w", err)
		}

		if data.ReviewID <= 0 {
			// Malformed payload; retrying will never help.
			logger.WarnContext(ctx, "review.moderated event without review_id, skipping",
				slog.String("event_id", event.EventID),
			)
			return nil
		}

		if _, err := approver.SetReviewApproval(ctx, data.ReviewID, data.Approved); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// The review may have been deleted since moderation saw it.
				logger.WarnContext(ctx, "moderated review no longer exists, skipping",
					slog.Int64("review_id", data.ReviewID),
				)
				return nil
			}
			return fmt.Errorf("apply moderation decision for review %d: %w", data.ReviewID, err)
		}

		logger.InfoContext(ctx, "moderation decision applied",
			slog.Int64("review_id", data.ReviewID),
			slog.Bool("approved", data.Approved),
		)

		return nil
	}
}

// NewModerationConsumer builds the Kafka consumer for review.moderated events.
// The handler is wrapped with idempotency deduplication, and messages that
// exhaust all retries go to the dead-letter queue.
func NewModerationConsumer(brokers []string, groupID string, approver ReviewApprover, dlq *pkgkafka.DLQProducer, logger *slog.Logger) *pkgkafka.Consumer {
	store := pkgkafka.NewMemoryIdempotencyStore(idempotencyTTL)
	handler := pkgkafka.IdempotentHandler(store, ModerationHandler(approver, logger), logger)

	consumer := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   TopicReviewModerated,
	}, handler, logger)

	if dlq != nil {
		consumer = consumer.WithDLQ(dlq)
	}

	return consumer
}
