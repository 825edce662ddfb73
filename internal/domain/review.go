package domain

import "time"

// Rating bounds for reviews.
const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a review submitted for a business. Reviews start
// unapproved and only count toward the business aggregate once moderation
// approves them.
type Review struct {
	ID            int64     `json:"review_id"`
	BusinessID    int64     `json:"business_id"`
	Rating        int       `json:"rating"`
	Text          string    `json:"review_text,omitempty"`
	ReviewerName  string    `json:"reviewer_name,omitempty"`
	ReviewerEmail string    `json:"-"`
	Image1URL     string    `json:"image1_url,omitempty"`
	Image2URL     string    `json:"image2_url,omitempty"`
	Image3URL     string    `json:"image3_url,omitempty"`
	Approved      bool      `json:"approved"`
	LikeCount     int       `json:"like_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RatingDelta describes a change to a business aggregate caused by a
// moderation decision or review edit. OldRating 0 means "no prior approved
// rating" (addition); NewRating 0 means the rating is being removed.
type RatingDelta struct {
	OldRating int
	NewRating int
}

// SumDelta returns the change to apply to the stored rating sum.
func (d RatingDelta) SumDelta() int64 {
	return int64(d.NewRating - d.OldRating)
}

// CountDelta returns the change to apply to the stored review count.
func (d RatingDelta) CountDelta() int {
	switch {
	case d.OldRating == 0 && d.NewRating != 0:
		return 1
	case d.OldRating != 0 && d.NewRating == 0:
		return -1
	default:
		return 0
	}
}

// IsValidRating checks the inclusive [1,5] rating range.
func IsValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
