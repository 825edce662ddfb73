package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/database"
)

// ReservationRepository implements repository.ReservationRepository using PostgreSQL.
type ReservationRepository struct {
	pool database.DBTX
}

// NewReservationRepository creates a new PostgreSQL-backed reservation repository.
func NewReservationRepository(pool database.DBTX) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

// Create inserts a new reservation request into the database.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	res.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO reservation (business_id, customer_name, customer_email, customer_phone,
		                         reserved_for, party_size, note, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING reservation_id`

	ctx, end := database.TraceQuery(ctx, "CreateReservation", query)
	err := r.pool.QueryRow(ctx, query,
		res.BusinessID,
		res.CustomerName,
		res.CustomerEmail,
		res.CustomerPhone,
		res.ReservedFor,
		res.PartySize,
		res.Note,
		res.Status,
		res.CreatedAt,
	).Scan(&res.ID)
	end(err)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	return nil
}

// ListByBusiness returns paginated reservations for a business with the total count.
func (r *ReservationRepository) ListByBusiness(ctx context.Context, businessID int64, limit, offset int) ([]domain.Reservation, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT reservation_id, business_id, customer_name, customer_email, customer_phone,
		       reserved_for, party_size, note, status, created_at,
		       count(*) OVER() AS total_count
		FROM reservation
		WHERE business_id = $1
		ORDER BY reserved_for ASC
		LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, "ListReservations", query)
	rows, err := r.pool.Query(ctx, query, businessID, limit, offset)
	if err != nil {
		end(err)
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var (
		reservations []domain.Reservation
		totalCount   int
	)

	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID,
			&res.BusinessID,
			&res.CustomerName,
			&res.CustomerEmail,
			&res.CustomerPhone,
			&res.ReservedFor,
			&res.PartySize,
			&res.Note,
			&res.Status,
			&res.CreatedAt,
			&totalCount,
		); err != nil {
			end(err)
			return nil, 0, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		end(err)
		return nil, 0, fmt.Errorf("iterate reservation rows: %w", err)
	}
	end(nil)

	if reservations == nil {
		reservations = []domain.Reservation{}
	}

	return reservations, totalCount, nil
}
