package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/service"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/httputil"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/pagination"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/slug"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/validator"
)

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: svc,
		logger:  logger,
	}
}

// businessIDFromPath resolves the {slug} path segment of nested review and
// reservation routes. Bare numeric ids and full slugs both work.
func businessIDFromPath(r *http.Request) int64 {
	param := chi.URLParam(r, "slug")
	if id, err := strconv.ParseInt(param, 10, 64); err == nil {
		return id
	}
	return slug.ExtractID(param)
}

// ListReviews handles GET /api/v1/businesses/{slug}/reviews
// Returns approved reviews only, newest first, plus the aggregate summary.
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromPath(r)
	if businessID <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "business slug must end in a numeric id"},
		})
		return
	}

	params := pagination.FromRequest(r)

	result, err := h.service.List(r.Context(), businessID, params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// SubmitReviewRequest is the JSON request body for submitting a review.
type SubmitReviewRequest struct {
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Text          string `json:"review_text" validate:"max=4000"`
	ReviewerName  string `json:"reviewer_name" validate:"max=255"`
	ReviewerEmail string `json:"reviewer_email" validate:"omitempty,email"`
	Image1URL     string `json:"image1_url" validate:"omitempty,url"`
	Image2URL     string `json:"image2_url" validate:"omitempty,url"`
	Image3URL     string `json:"image3_url" validate:"omitempty,url"`
}

// SubmitReview handles POST /api/v1/businesses/{slug}/reviews
// The new review starts unapproved and is invisible until moderated.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromPath(r)
	if businessID <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "business slug must end in a numeric id"},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.Submit(r.Context(), &service.SubmitReviewInput{
		BusinessID:    businessID,
		Rating:        req.Rating,
		Text:          req.Text,
		ReviewerName:  req.ReviewerName,
		ReviewerEmail: req.ReviewerEmail,
		Image1URL:     req.Image1URL,
		Image2URL:     req.Image2URL,
		Image3URL:     req.Image3URL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// LikeReview handles POST /api/v1/reviews/{id}/like
func (h *ReviewHandler) LikeReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	count, err := h.service.Like(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"review_id":  id,
		"like_count": count,
	}})
}

// SetApprovalRequest is the JSON request body for a moderation decision.
type SetApprovalRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

// SetApproval handles PATCH /api/v1/reviews/{id}/approval
// Called by the moderation process. The flip and the business aggregate
// update happen atomically; repeating a decision is a no-op.
func (h *ReviewHandler) SetApproval(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req SetApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if req.Approved == nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "approved is required"},
		})
		return
	}

	review, err := h.service.SetReviewApproval(r.Context(), id, *req.Approved)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}
