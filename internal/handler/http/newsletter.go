package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/service"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/httputil"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/validator"
)

// NewsletterHandler handles HTTP requests for newsletter endpoints.
type NewsletterHandler struct {
	service *service.NewsletterService
	logger  *slog.Logger
}

// NewNewsletterHandler creates a new newsletter HTTP handler.
func NewNewsletterHandler(svc *service.NewsletterService, logger *slog.Logger) *NewsletterHandler {
	return &NewsletterHandler{
		service: svc,
		logger:  logger,
	}
}

// SubscribeRequest is the JSON request body for a newsletter subscription.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Subscribe handles POST /api/v1/newsletter/subscriptions
// A duplicate email yields 409 ALREADY_EXISTS.
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req SubscribeRequest
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

	subscriber, err := h.service.Subscribe(r.Context(), &service.SubscribeInput{Email: req.Email})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: subscriber})
}

// Unsubscribe handles DELETE /api/v1/newsletter/subscriptions/{email}
func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil || email == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "email path segment is required"},
		})
		return
	}

	if err := h.service.Unsubscribe(r.Context(), email); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"email":  email,
		"status": "unsubscribed",
	}})
}
