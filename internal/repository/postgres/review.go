package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/errors"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/database"
)

const reviewColumns = `review_id, business_id, rating, review_text, reviewer_name, reviewer_email,
	       image1_url, image2_url, image3_url, approved, like_count, created_at, updated_at`

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a new review into the database. The caller is responsible
// for having set Approved; submissions always arrive unapproved and never
// touch the business aggregate here.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	query := `
		INSERT INTO review (business_id, rating, review_text, reviewer_name, reviewer_email,
		                    image1_url, image2_url, image3_url, approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING review_id`

	ctx, end := database.TraceQuery(ctx, "CreateReview", query)
	err := r.pool.QueryRow(ctx, query,
		review.BusinessID,
		review.Rating,
		review.Text,
		review.ReviewerName,
		review.ReviewerEmail,
		review.Image1URL,
		review.Image2URL,
		review.Image3URL,
		review.Approved,
		review.CreatedAt,
		review.UpdatedAt,
	).Scan(&review.ID)
	end(err)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM review WHERE review_id = $1`, reviewColumns)

	ctx, end := database.TraceQuery(ctx, "GetReview", query)
	rv, err := scanReviewRow(r.pool.QueryRow(ctx, query, id))
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return rv, nil
}

// ListApprovedByBusiness returns paginated approved reviews for a business
// along with the total count.
func (r *ReviewRepository) ListApprovedByBusiness(ctx context.Context, businessID int64, limit, offset int) ([]domain.Review, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT %s,
		       count(*) OVER() AS total_count
		FROM review
		WHERE business_id = $1 AND approved
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, reviewColumns)

	ctx, end := database.TraceQuery(ctx, "ListApprovedReviews", query)
	rows, err := r.pool.Query(ctx, query, businessID, limit, offset)
	if err != nil {
		end(err)
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.BusinessID,
			&rv.Rating,
			&rv.Text,
			&rv.ReviewerName,
			&rv.ReviewerEmail,
			&rv.Image1URL,
			&rv.Image2URL,
			&rv.Image3URL,
			&rv.Approved,
			&rv.LikeCount,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&totalCount,
		); err != nil {
			end(err)
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		end(err)
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}
	end(nil)

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// SetApproval flips the review's moderation state and applies the matching
// aggregate delta to the owning business in one atomic statement. The CTE is
// the single enforcement point for "only approved reviews count": the
// business aggregate only ever changes together with the flip, and a flip to
// the state the review is already in changes nothing and reports
// applied=false.
func (r *ReviewRepository) SetApproval(ctx context.Context, reviewID int64, approved bool) (*domain.Review, bool, error) {
	query := fmt.Sprintf(`
		WITH flip AS (
			UPDATE review
			SET approved = $2, updated_at = NOW()
			WHERE review_id = $1 AND approved <> $2
			RETURNING %s
		), agg AS (
			UPDATE business b
			SET rating_sum = b.rating_sum + CASE WHEN f.approved THEN f.rating ELSE -f.rating END,
			    review_count = b.review_count + CASE WHEN f.approved THEN 1 ELSE -1 END,
			    updated_at = NOW()
			FROM flip f
			WHERE b.business_id = f.business_id
		)
		SELECT %s FROM flip`, reviewColumns, reviewColumns)

	ctx, end := database.TraceQuery(ctx, "SetReviewApproval", query)
	rv, err := scanReviewRow(r.pool.QueryRow(ctx, query, reviewID, approved))
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the review does not exist or it is already in the
			// target state. Distinguish with a plain lookup.
			existing, lookupErr := r.GetByID(ctx, reviewID)
			if lookupErr != nil {
				return nil, false, lookupErr
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("set review approval: %w", err)
	}

	return rv, true, nil
}

// Like atomically increments the like counter and returns the new value.
func (r *ReviewRepository) Like(ctx context.Context, reviewID int64) (int, error) {
	query := `
		UPDATE review
		SET like_count = like_count + 1, updated_at = NOW()
		WHERE review_id = $1
		RETURNING like_count`

	var likeCount int
	ctx, end := database.TraceQuery(ctx, "LikeReview", query)
	err := r.pool.QueryRow(ctx, query, reviewID).Scan(&likeCount)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NotFound("review", reviewID)
		}
		return 0, fmt.Errorf("like review: %w", err)
	}

	return likeCount, nil
}

// scanReviewRow scans a full review row.
func scanReviewRow(row pgx.Row) (*domain.Review, error) {
	var rv domain.Review
	err := row.Scan(
		&rv.ID,
		&rv.BusinessID,
		&rv.Rating,
		&rv.Text,
		&rv.ReviewerName,
		&rv.ReviewerEmail,
		&rv.Image1URL,
		&rv.Image2URL,
		&rv.Image3URL,
		&rv.Approved,
		&rv.LikeCount,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}
