package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/mailer"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/repository"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/service"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/httputil"
)

// =============================================================================
// Mock repositories
// =============================================================================

type mockBusinessRepo struct {
	mock.Mock
}

func (m *mockBusinessRepo) Create(ctx context.Context, business *domain.Business) error {
	args := m.Called(ctx, business)
	return args.Error(0)
}

func (m *mockBusinessRepo) GetByID(ctx context.Context, id int64) (*domain.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *mockBusinessRepo) List(ctx context.Context, filter repository.BusinessFilter) ([]domain.Business, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Business), args.Int(1), args.Error(2)
}

func (m *mockBusinessRepo) ListFeatured(ctx context.Context, limit int) ([]domain.Business, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Business), args.Error(1)
}

func (m *mockBusinessRepo) ApplyRatingDelta(ctx context.Context, businessID int64, sumDelta int64, countDelta int) (*domain.Aggregate, error) {
	args := m.Called(ctx, businessID, sumDelta, countDelta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Aggregate), args.Error(1)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepo) ListApprovedByBusiness(ctx context.Context, businessID int64, limit, offset int) ([]domain.Review, int, error) {
	args := m.Called(ctx, businessID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) SetApproval(ctx context.Context, reviewID int64, approved bool) (*domain.Review, bool, error) {
	args := m.Called(ctx, reviewID, approved)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Review), args.Bool(1), args.Error(2)
}

func (m *mockReviewRepo) Like(ctx context.Context, reviewID int64) (int, error) {
	args := m.Called(ctx, reviewID)
	return args.Int(0), args.Error(1)
}

type mockReservationRepo struct {
	mock.Mock
}

func (m *mockReservationRepo) Create(ctx context.Context, reservation *domain.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *mockReservationRepo) ListByBusiness(ctx context.Context, businessID int64, limit, offset int) ([]domain.Reservation, int, error) {
	args := m.Called(ctx, businessID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Reservation), args.Int(1), args.Error(2)
}

type mockNewsletterRepo struct {
	mock.Mock
}

func (m *mockNewsletterRepo) Subscribe(ctx context.Context, subscriber *domain.Subscriber) error {
	args := m.Called(ctx, subscriber)
	return args.Error(0)
}

func (m *mockNewsletterRepo) Unsubscribe(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// =============================================================================
// Test helpers
// =============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBusinessService(repo *mockBusinessRepo) *service.BusinessService {
	return service.NewBusinessService(repo, nil, time.Minute, testLogger())
}

func testReviewService(repo *mockReviewRepo, businessRepo *mockBusinessRepo) *service.ReviewService {
	return service.NewReviewService(repo, businessRepo, nil, testLogger())
}

func testReservationService(repo *mockReservationRepo, businessRepo *mockBusinessRepo) *service.ReservationService {
	return service.NewReservationService(repo, businessRepo, nil, mailer.NewNoopMailer(testLogger()), testLogger())
}

func testNewsletterService(repo *mockNewsletterRepo) *service.NewsletterService {
	return service.NewNewsletterService(repo, nil, mailer.NewNoopMailer(testLogger()), testLogger())
}

func businessRouter(handler *BusinessHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/businesses", func(r chi.Router) {
		r.Get("/", handler.ListBusinesses)
		r.Get("/featured", handler.ListFeatured)
		r.Post("/", handler.RegisterBusiness)
		r.Get("/{slug}", handler.GetBusiness)
	})
	return r
}

func reviewRouter(handler *ReviewHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/businesses/{slug}/reviews", func(r chi.Router) {
		r.Get("/", handler.ListReviews)
		r.Post("/", handler.SubmitReview)
	})
	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Post("/{id}/like", handler.LikeReview)
		r.Patch("/{id}/approval", handler.SetApproval)
	})
	return r
}

func reservationRouter(handler *ReservationHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/businesses/{slug}/reservations", func(r chi.Router) {
		r.Get("/", handler.ListReservations)
		r.Post("/", handler.CreateReservation)
	})
	return r
}

func newsletterRouter(handler *NewsletterHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/newsletter/subscriptions", func(r chi.Router) {
		r.Post("/", handler.Subscribe)
		r.Delete("/{email}", handler.Unsubscribe)
	})
	return r
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func sampleBusiness() *domain.Business {
	now := time.Now().UTC()
	avg := 4.5
	return &domain.Business{
		ID:            42,
		Name:          "Cafe 24",
		City:          "Zurich",
		ZipCode:       "8001",
		Country:       "Switzerland",
		Status:        domain.BusinessStatusActive,
		Approved:      true,
		RatingSum:     9,
		ReviewCount:   2,
		AverageRating: &avg,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
