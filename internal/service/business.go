package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/repository"
	apperrors "github.com/alvina-abdullah/foodeez.ch-sub002/pkg/errors"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/slug"
)

// featuredCacheKey is the cache key for the featured businesses list.
const featuredCacheKey = "foodeez:featured"

// featuredLimit is how many top-rated businesses the featured list shows.
const featuredLimit = 6

// RegisterBusinessInput holds the parameters for registering a business.
type RegisterBusinessInput struct {
	Name        string `json:"business_name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=4000"`
	Street      string `json:"street" validate:"max=255"`
	ZipCode     string `json:"zip_code" validate:"max=16"`
	City        string `json:"city" validate:"max=128"`
	Country     string `json:"country" validate:"max=128"`
	Phone       string `json:"phone" validate:"max=32"`
	Email       string `json:"email" validate:"omitempty,email"`
	WebAddress  string `json:"web_address" validate:"omitempty,url"`
}

// ListBusinessesInput holds the location filter for listing businesses.
// Empty strings mean "no restriction".
type ListBusinessesInput struct {
	City    string
	ZipCode string
	Limit   int
	Offset  int
}

// BusinessListResult contains a page of businesses and the total match count.
type BusinessListResult struct {
	Businesses []domain.Business `json:"businesses"`
	TotalCount int               `json:"total_count"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
}

// BusinessService implements the business logic for the directory.
type BusinessService struct {
	repo        repository.BusinessRepository
	cache       Cache
	featuredTTL time.Duration
	logger      *slog.Logger
}

// NewBusinessService creates a new business service. cache may be nil, in
// which case the featured list is read from the store on every call.
func NewBusinessService(repo repository.BusinessRepository, cache Cache, featuredTTL time.Duration, logger *slog.Logger) *BusinessService {
	return &BusinessService{
		repo:        repo,
		cache:       cache,
		featuredTTL: featuredTTL,
		logger:      logger,
	}
}

// Register creates a new business. It starts unapproved and is not visible
// in listings until an operator approves it.
func (s *BusinessService) Register(ctx context.Context, input *RegisterBusinessInput) (*domain.Business, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("business_name is required")
	}

	now := time.Now().UTC()
	business := &domain.Business{
		Name:        input.Name,
		Description: input.Description,
		Street:      input.Street,
		ZipCode:     input.ZipCode,
		City:        input.City,
		Country:     input.Country,
		Phone:       input.Phone,
		Email:       input.Email,
		WebAddress:  input.WebAddress,
		Status:      domain.BusinessStatusActive,
		Approved:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, business); err != nil {
		return nil, fmt.Errorf("create business: %w", err)
	}

	s.logger.InfoContext(ctx, "business registered",
		slog.Int64("business_id", business.ID),
		slog.String("business_name", business.Name),
		slog.String("city", business.City),
	)

	return business, nil
}

// GetByID retrieves a business by its numeric id.
func (s *BusinessService) GetByID(ctx context.Context, id int64) (*domain.Business, error) {
	if id <= 0 {
		return nil, apperrors.InvalidInput("business id must be positive")
	}

	business, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get business %d: %w", id, err)
	}

	return business, nil
}

// GetBySlug resolves a business from its URL slug. Only the trailing numeric
// id is authoritative; the name portion of the slug is ignored, so stale
// slugs keep working after a business is renamed.
func (s *BusinessService) GetBySlug(ctx context.Context, businessSlug string) (*domain.Business, error) {
	_, id := slug.Decode(businessSlug)
	if id <= 0 {
		return nil, apperrors.InvalidInput("slug must end in a numeric id")
	}

	return s.GetByID(ctx, id)
}

// List returns visible businesses matching the location filter.
func (s *BusinessService) List(ctx context.Context, input ListBusinessesInput) (*BusinessListResult, error) {
	var city, zipCode *string
	if input.City != "" {
		city = &input.City
	}
	if input.ZipCode != "" {
		zipCode = &input.ZipCode
	}

	filter := repository.NewBusinessFilter(city, zipCode, input.Limit, input.Offset)

	businesses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}

	return &BusinessListResult{
		Businesses: businesses,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// Featured returns the top-rated visible businesses, cached for the
// configured TTL. Cache failures fall back to the store.
func (s *BusinessService) Featured(ctx context.Context) ([]domain.Business, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, featuredCacheKey)
		if err == nil {
			var businesses []domain.Business
			if jsonErr := json.Unmarshal([]byte(cached), &businesses); jsonErr == nil {
				return businesses, nil
			}
			// Corrupt cache entry; fall through to the store.
			_ = s.cache.Delete(ctx, featuredCacheKey)
		} else if !errors.Is(err, ErrCacheMiss) {
			s.logger.WarnContext(ctx, "featured cache read failed",
				slog.String("error", err.Error()),
			)
		}
	}

	businesses, err := s.repo.ListFeatured(ctx, featuredLimit)
	if err != nil {
		return nil, fmt.Errorf("list featured businesses: %w", err)
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(businesses); err == nil {
			if setErr := s.cache.Set(ctx, featuredCacheKey, string(encoded), s.featuredTTL); setErr != nil {
				s.logger.WarnContext(ctx, "featured cache write failed",
					slog.String("error", setErr.Error()),
				)
			}
		}
	}

	return businesses, nil
}
