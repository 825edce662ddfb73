package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	apperrors "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/errors"
)

func newTestReviewService(repo *mockReviewRepository, businessRepo *mockBusinessRepository, publisher *mockPublisher) *ReviewService {
	var p ReviewEventPublisher
	if publisher != nil {
		p = publisher
	}
	return NewReviewService(repo, businessRepo, p, newTestLogger())
}

func TestSubmitReview_Success(t *testing.T) {
	repo := new(mockReviewRepository)
	businessRepo := new(mockBusinessRepository)
	publisher := new(mockPublisher)
	svc := newTestReviewService(repo, businessRepo, publisher)
	ctx := context.Background()

	businessRepo.On("GetByID", ctx, int64(7)).Return(&domain.Business{ID: 7, Name: "Cafe 24"}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Review).ID = 101
	}).Return(nil)
	publisher.On("PublishReviewSubmitted", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)

	review, err := svc.Submit(ctx, &SubmitReviewInput{
		BusinessID:   7,
		Rating:       5,
		Text:         "Excellent fondue.",
		ReviewerName: "Anna",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(101), review.ID)
	assert.False(t, review.Approved, "new reviews must await moderation")
	assert.NotZero(t, review.CreatedAt)

	repo.AssertExpectations(t)
	businessRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestSubmitReview_InvalidRating(t *testing.T) {
	for _, rating := range []int{0, -1, 6, 100} {
		repo := new(mockReviewRepository)
		businessRepo := new(mockBusinessRepository)
		svc := newTestReviewService(repo, businessRepo, nil)

		review, err := svc.Submit(context.Background(), &SubmitReviewInput{BusinessID: 7, Rating: rating})

		require.Error(t, err, "rating %d", rating)
		assert.Nil(t, review)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		repo.AssertNotCalled(t, "Create")
	}
}

func TestSubmitReview_UnknownBusiness(t *testing.T) {
	repo := new(mockReviewRepository)
	businessRepo := new(mockBusinessRepository)
	svc := newTestReviewService(repo, businessRepo, nil)
	ctx := context.Background()

	businessRepo.On("GetByID", ctx, int64(99)).Return(nil, apperrors.NotFound("business", 99))

	review, err := svc.Submit(ctx, &SubmitReviewInput{BusinessID: 99, Rating: 4})

	require.Error(t, err)
	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertNotCalled(t, "Create")
}

func TestSubmitReview_PublishFailureDoesNotFailSubmit(t *testing.T) {
	repo := new(mockReviewRepository)
	businessRepo := new(mockBusinessRepository)
	publisher := new(mockPublisher)
	svc := newTestReviewService(repo, businessRepo, publisher)
	ctx := context.Background()

	businessRepo.On("GetByID", ctx, int64(7)).Return(&domain.Business{ID: 7}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
	publisher.On("PublishReviewSubmitted", ctx, mock.AnythingOfType("*domain.Review")).Return(errors.New("broker down"))

	review, err := svc.Submit(ctx, &SubmitReviewInput{BusinessID: 7, Rating: 3})

	require.NoError(t, err)
	assert.NotNil(t, review)
}

func TestListReviews_IncludesSummary(t *testing.T) {
	repo := new(mockReviewRepository)
	businessRepo := new(mockBusinessRepository)
	svc := newTestReviewService(repo, businessRepo, nil)
	ctx := context.Background()

	businessRepo.On("GetByID", ctx, int64(7)).Return(&domain.Business{ID: 7, RatingSum: 14, ReviewCount: 4}, nil)
	repo.On("ListApprovedByBusiness", ctx, int64(7), 20, 0).Return([]domain.Review{{ID: 1, Approved: true}}, 41, nil)

	result, err := svc.List(ctx, 7, 1, 20)

	require.NoError(t, err)
	assert.Len(t, result.Reviews, 1)
	assert.Equal(t, 41, result.TotalCount)
	assert.Equal(t, 3, result.TotalPages)
	require.NotNil(t, result.Summary.AverageRating)
	assert.Equal(t, 3.5, *result.Summary.AverageRating)
	assert.Equal(t, 4, result.Summary.ReviewCount)
}

func TestListReviews_NoApprovedReviews(t *testing.T) {
	repo := new(mockReviewRepository)
	businessRepo := new(mockBusinessRepository)
	svc := newTestReviewService(repo, businessRepo, nil)
	ctx := context.Background()

	businessRepo.On("GetByID", ctx, int64(7)).Return(&domain.Business{ID: 7}, nil)
	repo.On("ListApprovedByBusiness", ctx, int64(7), 20, 0).Return([]domain.Review{}, 0, nil)

	result, err := svc.List(ctx, 7, 1, 20)

	require.NoError(t, err)
	assert.Empty(t, result.Reviews)
	assert.Nil(t, result.Summary.AverageRating, "no approved reviews means no average")
}

func TestSetReviewApproval_PublishesOutcome(t *testing.T) {
	repo := new(mockReviewRepository)
	businessRepo := new(mockBusinessRepository)
	publisher := new(mockPublisher)
	svc := newTestReviewService(repo, businessRepo, publisher)
	ctx := context.Background()

	approved := &domain.Review{ID: 101, BusinessID: 7, Rating: 5, Approved: true}
	repo.On("SetApproval", ctx, int64(101), true).Return(approved, true, nil)
	publisher.On("PublishReviewApprovalApplied", ctx, approved).Return(nil)

	review, err := svc.SetReviewApproval(ctx, 101, true)

	require.NoError(t, err)
	assert.True(t, review.Approved)
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestSetReviewApproval_NoOpFlipSkipsPublish(t *testing.T) {
	repo := new(mockReviewRepository)
	businessRepo := new(mockBusinessRepository)
	publisher := new(mockPublisher)
	svc := newTestReviewService(repo, businessRepo, publisher)
	ctx := context.Background()

	// The review is already approved; a replayed decision must not emit a
	// second outcome event.
	already := &domain.Review{ID: 101, BusinessID: 7, Rating: 5, Approved: true}
	repo.On("SetApproval", ctx, int64(101), true).Return(already, false, nil)

	review, err := svc.SetReviewApproval(ctx, 101, true)

	require.NoError(t, err)
	assert.True(t, review.Approved)
	publisher.AssertNotCalled(t, "PublishReviewApprovalApplied", mock.Anything, mock.Anything)
}

func TestSetReviewApproval_UnknownReview(t *testing.T) {
	repo := new(mockReviewRepository)
	businessRepo := new(mockBusinessRepository)
	svc := newTestReviewService(repo, businessRepo, nil)
	ctx := context.Background()

	repo.On("SetApproval", ctx, int64(999), true).Return(nil, false, apperrors.NotFound("review", 999))

	review, err := svc.SetReviewApproval(ctx, 999, true)

	require.Error(t, err)
	assert.Nil(t, review)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestApplyRatingChange_EditDelta(t *testing.T) {
	repo := new(mockReviewRepository)
	businessRepo := new(mockBusinessRepository)
	svc := newTestReviewService(repo, businessRepo, nil)
	ctx := context.Background()

	// A 3 -> 5 edit shifts the sum by 2 and leaves the count alone.
	avg := 4.7
	businessRepo.On("ApplyRatingDelta", ctx, int64(7), int64(2), 0).
		Return(&domain.Aggregate{BusinessID: 7, ReviewCount: 3, AverageRating: &avg}, nil)

	agg, err := svc.ApplyRatingChange(ctx, 7, domain.RatingDelta{OldRating: 3, NewRating: 5})

	require.NoError(t, err)
	assert.Equal(t, 4.7, *agg.AverageRating)
	businessRepo.AssertExpectations(t)
}

func TestApplyRatingChange_RemovalDelta(t *testing.T) {
	repo := new(mockReviewRepository)
	businessRepo := new(mockBusinessRepository)
	svc := newTestReviewService(repo, businessRepo, nil)
	ctx := context.Background()

	businessRepo.On("ApplyRatingDelta", ctx, int64(7), int64(-4), -1).
		Return(&domain.Aggregate{BusinessID: 7}, nil)

	_, err := svc.ApplyRatingChange(ctx, 7, domain.RatingDelta{OldRating: 4, NewRating: 0})

	require.NoError(t, err)
	businessRepo.AssertExpectations(t)
}

func TestApplyRatingChange_InvalidRatings(t *testing.T) {
	repo := new(mockReviewRepository)
	businessRepo := new(mockBusinessRepository)
	svc := newTestReviewService(repo, businessRepo, nil)

	_, err := svc.ApplyRatingChange(context.Background(), 7, domain.RatingDelta{OldRating: 9, NewRating: 2})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	businessRepo.AssertNotCalled(t, "ApplyRatingDelta")
}

func TestLikeReview(t *testing.T) {
	repo := new(mockReviewRepository)
	businessRepo := new(mockBusinessRepository)
	svc := newTestReviewService(repo, businessRepo, nil)
	ctx := context.Background()

	repo.On("Like", ctx, int64(101)).Return(6, nil)

	count, err := svc.Like(ctx, 101)

	require.NoError(t, err)
	assert.Equal(t, 6, count)
}
