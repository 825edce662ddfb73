package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/errors"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/repository"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/database"
)

const businessColumns = `business_id, business_name, description, street, zip_code, city, country,
	       phone, email, web_address, status, approved, rating_sum, review_count, created_at, updated_at`

// avgRatingExpr orders NULL (no approved reviews) after every real average.
const avgRatingExpr = `CASE WHEN review_count > 0 THEN rating_sum::float8 / review_count END`

// BusinessRepository implements repository.BusinessRepository using PostgreSQL.
type BusinessRepository struct {
	pool database.DBTX
}

// NewBusinessRepository creates a new PostgreSQL-backed business repository.
func NewBusinessRepository(pool database.DBTX) *BusinessRepository {
	return &BusinessRepository{pool: pool}
}

// Create inserts a new business into the database.
func (r *BusinessRepository) Create(ctx context.Context, b *domain.Business) error {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	query := `
		INSERT INTO business (business_name, description, street, zip_code, city, country,
		                      phone, email, web_address, status, approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING business_id`

	ctx, end := database.TraceQuery(ctx, "CreateBusiness", query)
	err := r.pool.QueryRow(ctx, query,
		b.Name,
		b.Description,
		b.Street,
		b.ZipCode,
		b.City,
		b.Country,
		b.Phone,
		b.Email,
		b.WebAddress,
		b.Status,
		b.Approved,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.ID)
	end(err)
	if err != nil {
		return fmt.Errorf("insert business: %w", err)
	}

	return nil
}

// GetByID retrieves a business by its ID.
func (r *BusinessRepository) GetByID(ctx context.Context, id int64) (*domain.Business, error) {
	query := fmt.Sprintf(`SELECT %s FROM business WHERE business_id = $1`, businessColumns)

	ctx, end := database.TraceQuery(ctx, "GetBusiness", query)
	b, err := r.scanBusiness(ctx, query, id)
	end(err)
	return b, err
}

// List returns visible businesses matching the location filter with the
// total count. The WHERE clause is assembled exclusively from positional
// bind parameters; filter values are never interpolated into the SQL text.
func (r *BusinessRepository) List(ctx context.Context, filter repository.BusinessFilter) ([]domain.Business, int, error) {
	var (
		conditions = []string{"approved", "status = 'active'"}
		args       []any
		argIndex   = 1
	)

	if filter.City != nil {
		conditions = append(conditions, fmt.Sprintf("LOWER(city) = LOWER($%d)", argIndex))
		args = append(args, *filter.City)
		argIndex++
	}

	if filter.ZipCode != nil {
		conditions = append(conditions, fmt.Sprintf("zip_code = $%d", argIndex))
		args = append(args, *filter.ZipCode)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT %s,
		       count(*) OVER() AS total_count
		FROM business
		WHERE %s
		ORDER BY %s DESC NULLS LAST, business_id ASC
		LIMIT $%d OFFSET $%d`,
		businessColumns, strings.Join(conditions, " AND "), avgRatingExpr, argIndex, argIndex+1,
	)

	args = append(args, filter.Limit, filter.Offset)

	ctx, end := database.TraceQuery(ctx, "ListBusinesses", query)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		end(err)
		return nil, 0, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	var (
		businesses []domain.Business
		totalCount int
	)

	for rows.Next() {
		b, err := scanBusinessRow(rows, &totalCount)
		if err != nil {
			end(err)
			return nil, 0, err
		}
		businesses = append(businesses, *b)
	}

	if err := rows.Err(); err != nil {
		end(err)
		return nil, 0, fmt.Errorf("iterate business rows: %w", err)
	}
	end(nil)

	if businesses == nil {
		businesses = []domain.Business{}
	}

	return businesses, totalCount, nil
}

// ListFeatured returns the top-rated visible businesses.
func (r *BusinessRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Business, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM business
		WHERE approved AND status = 'active' AND review_count > 0
		ORDER BY %s DESC NULLS LAST, business_id ASC
		LIMIT $1`,
		businessColumns, avgRatingExpr,
	)

	ctx, end := database.TraceQuery(ctx, "ListFeaturedBusinesses", query)
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		end(err)
		return nil, fmt.Errorf("list featured businesses: %w", err)
	}
	defer rows.Close()

	var businesses []domain.Business
	for rows.Next() {
		b, err := scanBusinessRow(rows, nil)
		if err != nil {
			end(err)
			return nil, err
		}
		businesses = append(businesses, *b)
	}

	if err := rows.Err(); err != nil {
		end(err)
		return nil, fmt.Errorf("iterate featured rows: %w", err)
	}
	end(nil)

	if businesses == nil {
		businesses = []domain.Business{}
	}

	return businesses, nil
}

// ApplyRatingDelta atomically adjusts the denormalized aggregate in a single
// UPDATE. Row-level locking serializes concurrent deltas for the same
// business; no value is read back into application code before the write.
func (r *BusinessRepository) ApplyRatingDelta(ctx context.Context, businessID int64, sumDelta int64, countDelta int) (*domain.Aggregate, error) {
	query := `
		UPDATE business
		SET rating_sum = rating_sum + $1,
		    review_count = review_count + $2,
		    updated_at = NOW()
		WHERE business_id = $3
		RETURNING rating_sum, review_count`

	var (
		ratingSum   int64
		reviewCount int
	)
	ctx, end := database.TraceQuery(ctx, "ApplyRatingDelta", query)
	err := r.pool.QueryRow(ctx, query, sumDelta, countDelta, businessID).Scan(&ratingSum, &reviewCount)
	end(err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("business", businessID)
		}
		return nil, fmt.Errorf("apply rating delta: %w", err)
	}

	agg := domain.NewAggregate(businessID, ratingSum, reviewCount)
	return &agg, nil
}

// scanBusiness executes a query expected to return a single business row.
func (r *BusinessRepository) scanBusiness(ctx context.Context, query string, args ...any) (*domain.Business, error) {
	var b domain.Business

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&b.ID,
		&b.Name,
		&b.Description,
		&b.Street,
		&b.ZipCode,
		&b.City,
		&b.Country,
		&b.Phone,
		&b.Email,
		&b.WebAddress,
		&b.Status,
		&b.Approved,
		&b.RatingSum,
		&b.ReviewCount,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan business: %w", err)
	}

	b.DeriveAverage()
	return &b, nil
}

// scanBusinessRow scans one row of a listing query. When totalCount is
// non-nil the row is expected to carry a trailing count(*) OVER() column.
func scanBusinessRow(rows pgx.Rows, totalCount *int) (*domain.Business, error) {
	var b domain.Business

	dest := []any{
		&b.ID,
		&b.Name,
		&b.Description,
		&b.Street,
		&b.ZipCode,
		&b.City,
		&b.Country,
		&b.Phone,
		&b.Email,
		&b.WebAddress,
		&b.Status,
		&b.Approved,
		&b.RatingSum,
		&b.ReviewCount,
		&b.CreatedAt,
		&b.UpdatedAt,
	}
	if totalCount != nil {
		dest = append(dest, totalCount)
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan business row: %w", err)
	}

	b.DeriveAverage()
	return &b, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
