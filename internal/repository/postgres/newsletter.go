package postgres

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/errors"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/database"
)

// NewsletterRepository implements repository.NewsletterRepository using PostgreSQL.
type NewsletterRepository struct {
	pool database.DBTX
}

// NewNewsletterRepository creates a new PostgreSQL-backed newsletter repository.
func NewNewsletterRepository(pool database.DBTX) *NewsletterRepository {
	return &NewsletterRepository{pool: pool}
}

// Subscribe inserts a subscriber. A duplicate email surfaces as ALREADY_EXISTS.
func (r *NewsletterRepository) Subscribe(ctx context.Context, sub *domain.Subscriber) error {
	sub.SubscribedAt = time.Now().UTC()

	query := `
		INSERT INTO newsletter_subscriber (email, subscribed_at)
		VALUES ($1, $2)
		RETURNING subscriber_id`

	ctx, end := database.TraceQuery(ctx, "Subscribe", query)
	err := r.pool.QueryRow(ctx, query, sub.Email, sub.SubscribedAt).Scan(&sub.ID)
	end(err)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("subscriber", "email", sub.Email)
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}

	return nil
}

// Unsubscribe removes a subscriber by email.
func (r *NewsletterRepository) Unsubscribe(ctx context.Context, email string) error {
	query := `DELETE FROM newsletter_subscriber WHERE email = $1`

	ctx, end := database.TraceQuery(ctx, "Unsubscribe", query)
	ct, err := r.pool.Exec(ctx, query, email)
	end(err)
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
