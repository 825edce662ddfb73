package repository

import (
	"context"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
)

// Listing defaults and bounds for BusinessFilter.
const (
	DefaultBusinessLimit = 9
	MaxBusinessLimit     = 100
)

// BusinessFilter defines location filter criteria for listing businesses.
// Nil pointer fields mean "no restriction"; city and zip compose with AND.
type BusinessFilter struct {
	City    *string
	ZipCode *string
	Limit   int
	Offset  int
}

// NewBusinessFilter applies the listing defaults: limit 9 when unset,
// clamped to 100; negative offset becomes 0.
func NewBusinessFilter(city, zipCode *string, limit, offset int) BusinessFilter {
	if limit <= 0 {
		limit = DefaultBusinessLimit
	}
	if limit > MaxBusinessLimit {
		limit = MaxBusinessLimit
	}
	if offset < 0 {
		offset = 0
	}
	return BusinessFilter{City: city, ZipCode: zipCode, Limit: limit, Offset: offset}
}

// BusinessRepository defines persistence operations for businesses.
type BusinessRepository interface {
	// Create inserts a new business and fills in its generated ID.
	Create(ctx context.Context, business *domain.Business) error

	// GetByID retrieves a business by its unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.Business, error)

	// List returns visible businesses matching the filter along with the total count.
	List(ctx context.Context, filter BusinessFilter) ([]domain.Business, int, error)

	// ListFeatured returns the top-rated visible businesses.
	ListFeatured(ctx context.Context, limit int) ([]domain.Business, error)

	// ApplyRatingDelta atomically adjusts the denormalized review aggregate.
	ApplyRatingDelta(ctx context.Context, businessID int64, sumDelta int64, countDelta int) (*domain.Aggregate, error)
}

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	// Create inserts a new review and fills in its generated ID.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review by its unique identifier.
	GetByID(ctx context.Context, id int64) (*domain.Review, error)

	// ListApprovedByBusiness returns paginated approved reviews with the total count.
	ListApprovedByBusiness(ctx context.Context, businessID int64, limit, offset int) ([]domain.Review, int, error)

	// SetApproval flips the review's moderation state and applies the
	// aggregate delta to the business in one atomic statement. It returns
	// the updated review and whether the flip changed anything; a no-op
	// flip (already in the target state) returns the review unchanged
	// with applied=false.
	SetApproval(ctx context.Context, reviewID int64, approved bool) (*domain.Review, bool, error)

	// Like atomically increments the like counter and returns the new value.
	Like(ctx context.Context, reviewID int64) (int, error)
}

// ReservationRepository defines persistence operations for reservations.
type ReservationRepository interface {
	// Create inserts a new reservation request and fills in its generated ID.
	Create(ctx context.Context, reservation *domain.Reservation) error

	// ListByBusiness returns paginated reservations for a business with the total count.
	ListByBusiness(ctx context.Context, businessID int64, limit, offset int) ([]domain.Reservation, int, error)
}

// NewsletterRepository defines persistence operations for newsletter subscriptions.
type NewsletterRepository interface {
	// Subscribe inserts a subscriber; a duplicate email yields ErrAlreadyExists.
	Subscribe(ctx context.Context, subscriber *domain.Subscriber) error

	// Unsubscribe removes a subscriber by email.
	Unsubscribe(ctx context.Context, email string) error
}
