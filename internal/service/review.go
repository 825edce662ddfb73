package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/repository"
	apperrors "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/errors"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/pagination"
)

// ReviewEventPublisher publishes review lifecycle events. Publish failures
// are logged but never fail the originating operation.
type ReviewEventPublisher interface {
	PublishReviewSubmitted(ctx context.Context, review *domain.Review) error
	PublishReviewApprovalApplied(ctx context.Context, review *domain.Review) error
}

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	BusinessID    int64  `json:"business_id" validate:"required,gt=0"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Text          string `json:"review_text" validate:"max=4000"`
	ReviewerName  string `json:"reviewer_name" validate:"max=255"`
	ReviewerEmail string `json:"reviewer_email" validate:"omitempty,email"`
	Image1URL     string `json:"image1_url" validate:"omitempty,url"`
	Image2URL     string `json:"image2_url" validate:"omitempty,url"`
	Image3URL     string `json:"image3_url" validate:"omitempty,url"`
}

// ReviewListResult contains a page of approved reviews and the business's
// aggregate rating summary.
type ReviewListResult struct {
	Reviews    []domain.Review  `json:"reviews"`
	Summary    domain.Aggregate `json:"summary"`
	TotalCount int              `json:"total_count"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
}

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	repo         repository.ReviewRepository
	businessRepo repository.BusinessRepository
	publisher    ReviewEventPublisher
	logger       *slog.Logger
}

// NewReviewService creates a new review service. publisher may be nil when
// eventing is disabled.
func NewReviewService(repo repository.ReviewRepository, businessRepo repository.BusinessRepository, publisher ReviewEventPublisher, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:         repo,
		businessRepo: businessRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// Submit creates a new review. Reviews always start unapproved and do not
// touch the business aggregate until moderation approves them.
func (s *ReviewService) Submit(ctx context.Context, input *SubmitReviewInput) (*domain.Review, error) {
	if input.BusinessID <= 0 {
		return nil, apperrors.InvalidInput("business_id is required")
	}
	if !domain.IsValidRating(input.Rating) {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	// The business must exist and be visible.
	if _, err := s.businessRepo.GetByID(ctx, input.BusinessID); err != nil {
		return nil, fmt.Errorf("get business %d: %w", input.BusinessID, err)
	}

	now := time.Now().UTC()
	review := &domain.Review{
		BusinessID:    input.BusinessID,
		Rating:        input.Rating,
		Text:          input.Text,
		ReviewerName:  input.ReviewerName,
		ReviewerEmail: input.ReviewerEmail,
		Image1URL:     input.Image1URL,
		Image2URL:     input.Image2URL,
		Image3URL:     input.Image3URL,
		Approved:      false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.Int64("review_id", review.ID),
		slog.Int64("business_id", review.BusinessID),
		slog.Int("rating", review.Rating),
	)

	if s.publisher != nil {
		if err := s.publisher.PublishReviewSubmitted(ctx, review); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish review.submitted",
				slog.Int64("review_id", review.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return review, nil
}

// List returns paginated approved reviews for a business together with the
// business's aggregate rating summary.
func (s *ReviewService) List(ctx context.Context, businessID int64, page, perPage int) (*ReviewListResult, error) {
	if businessID <= 0 {
		return nil, apperrors.InvalidInput("business id must be positive")
	}
	p := pagination.Normalize(page, perPage)

	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("get business %d: %w", businessID, err)
	}

	reviews, total, err := s.repo.ListApprovedByBusiness(ctx, businessID, p.PerPage, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return &ReviewListResult{
		Reviews:    reviews,
		Summary:    domain.NewAggregate(business.ID, business.RatingSum, business.ReviewCount),
		TotalCount: total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: p.TotalPages(total),
	}, nil
}

// SetReviewApproval applies a moderation decision. The approval flip and the
// business aggregate change are a single atomic store operation; flipping a
// review that is already in the target state changes nothing and publishes
// no outcome event, so replayed decisions stay silent.
func (s *ReviewService) SetReviewApproval(ctx context.Context, reviewID int64, approved bool) (*domain.Review, error) {
	if reviewID <= 0 {
		return nil, apperrors.InvalidInput("review id must be positive")
	}

	review, applied, err := s.repo.SetApproval(ctx, reviewID, approved)
	if err != nil {
		return nil, fmt.Errorf("set approval for review %d: %w", reviewID, err)
	}

	s.logger.InfoContext(ctx, "review approval set",
		slog.Int64("review_id", review.ID),
		slog.Int64("business_id", review.BusinessID),
		slog.Bool("approved", review.Approved),
		slog.Bool("applied", applied),
	)

	if s.publisher != nil && applied {
		if err := s.publisher.PublishReviewApprovalApplied(ctx, review); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish approval event",
				slog.Int64("review_id", review.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return review, nil
}

// ApplyRatingChange adjusts a business aggregate for a rating edit of an
// already approved review, for example when moderation amends a rating. The
// delta is applied in one atomic statement and the fresh aggregate returned.
func (s *ReviewService) ApplyRatingChange(ctx context.Context, businessID int64, delta domain.RatingDelta) (*domain.Aggregate, error) {
	if businessID <= 0 {
		return nil, apperrors.InvalidInput("business id must be positive")
	}
	if delta.OldRating != 0 && !domain.IsValidRating(delta.OldRating) {
		return nil, apperrors.InvalidInput("old rating must be between 1 and 5")
	}
	if delta.NewRating != 0 && !domain.IsValidRating(delta.NewRating) {
		return nil, apperrors.InvalidInput("new rating must be between 1 and 5")
	}

	agg, err := s.businessRepo.ApplyRatingDelta(ctx, businessID, delta.SumDelta(), delta.CountDelta())
	if err != nil {
		return nil, fmt.Errorf("apply rating delta for business %d: %w", businessID, err)
	}

	s.logger.InfoContext(ctx, "rating delta applied",
		slog.Int64("business_id", businessID),
		slog.Int64("sum_delta", delta.SumDelta()),
		slog.Int("count_delta", delta.CountDelta()),
	)

	return agg, nil
}

// Like increments the like counter of a review and returns the new count.
func (s *ReviewService) Like(ctx context.Context, reviewID int64) (int, error) {
	if reviewID <= 0 {
		return 0, apperrors.InvalidInput("review id must be positive")
	}

	count, err := s.repo.Like(ctx, reviewID)
	if err != nil {
		return 0, fmt.Errorf("like review %d: %w", reviewID, err)
	}

	return count, nil
}
