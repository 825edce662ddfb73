package domain

import (
	"math"
	"time"

	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/slug"
)

// Business status constants.
const (
	BusinessStatusActive   = "active"
	BusinessStatusInactive = "inactive"
	BusinessStatusClosed   = "closed"
)

// Business represents a restaurant or food business in the directory.
type Business struct {
	ID          int64     `json:"business_id"`
	Name        string    `json:"business_name"`
	Description string    `json:"description,omitempty"`
	Street      string    `json:"street,omitempty"`
	ZipCode     string    `json:"zip_code,omitempty"`
	City        string    `json:"city,omitempty"`
	Country     string    `json:"country,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	WebAddress  string    `json:"web_address,omitempty"`
	Status      string    `json:"status"`
	Approved    bool      `json:"approved"`
	RatingSum   int64     `json:"-"`
	ReviewCount int       `json:"review_count"`
	// AverageRating is derived from RatingSum/ReviewCount; nil when the
	// business has no approved reviews.
	AverageRating *float64  `json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Slug returns the URL path segment for this business. Only the trailing
// id is authoritative when the slug is decoded again.
func (b *Business) Slug() string {
	return slug.Encode(b.Name, b.ID)
}

// DeriveAverage recomputes AverageRating from the stored sum and count.
func (b *Business) DeriveAverage() {
	b.AverageRating = NewAggregate(b.ID, b.RatingSum, b.ReviewCount).AverageRating
}

// Aggregate is the denormalized review rollup of a business. AverageRating
// is nil when no approved reviews exist.
type Aggregate struct {
	BusinessID    int64    `json:"business_id"`
	RatingSum     int64    `json:"-"`
	ReviewCount   int      `json:"review_count"`
	AverageRating *float64 `json:"average_rating"`
}

// NewAggregate derives the average (rounded to one decimal) from the stored
// sum and count.
func NewAggregate(businessID, ratingSum int64, reviewCount int) Aggregate {
	agg := Aggregate{
		BusinessID:  businessID,
		RatingSum:   ratingSum,
		ReviewCount: reviewCount,
	}
	if reviewCount > 0 {
		avg := math.Round(float64(ratingSum)/float64(reviewCount)*10) / 10
		agg.AverageRating = &avg
	}
	return agg
}

// ValidBusinessStatuses returns the set of valid business statuses.
func ValidBusinessStatuses() []string {
	return []string{BusinessStatusActive, BusinessStatusInactive, BusinessStatusClosed}
}

// IsValidBusinessStatus checks whether the given status string is valid.
func IsValidBusinessStatus(status string) bool {
	for _, s := range ValidBusinessStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
