package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/domain"
	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/service"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/httputil"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/validator"
)

// BusinessHandler handles HTTP requests for business endpoints.
type BusinessHandler struct {
	service *service.BusinessService
	logger  *slog.Logger
}

// NewBusinessHandler creates a new business HTTP handler.
func NewBusinessHandler(svc *service.BusinessService, logger *slog.Logger) *BusinessHandler {
	return &BusinessHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Response DTOs ---

// BusinessResponse is a business enriched with its URL slug.
type BusinessResponse struct {
	domain.Business
	URLSlug string `json:"slug"`
}

// NewBusinessResponse builds the response shape for a business.
func NewBusinessResponse(b domain.Business) BusinessResponse {
	return BusinessResponse{Business: b, URLSlug: b.Slug()}
}

func newBusinessResponses(businesses []domain.Business) []BusinessResponse {
	out := make([]BusinessResponse, 0, len(businesses))
	for _, b := range businesses {
		out = append(out, NewBusinessResponse(b))
	}
	return out
}

// --- Handlers ---

// ListBusinesses handles GET /api/v1/businesses
// Optional query parameters: city, zip, limit, offset. City and zip compose
// with AND; limit defaults to 9 and is capped at 100.
func (h *BusinessHandler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	input := service.ListBusinessesInput{
		City:    r.URL.Query().Get("city"),
		ZipCode: r.URL.Query().Get("zip"),
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "limit must be a valid positive integer"},
			})
			return
		}
		input.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "offset must be a valid non-negative integer"},
			})
			return
		}
		input.Offset = offset
	}

	result, err := h.service.List(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"businesses":  newBusinessResponses(result.Businesses),
		"total_count": result.TotalCount,
		"limit":       result.Limit,
		"offset":      result.Offset,
	}})
}

// ListFeatured handles GET /api/v1/businesses/featured
func (h *BusinessHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	businesses, err := h.service.Featured(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newBusinessResponses(businesses)})
}

// GetBusiness handles GET /api/v1/businesses/{slug}
// The path segment may be a full slug ("cafe-24-42") or a bare numeric id.
// Either way only the numeric id decides which business is returned.
func (h *BusinessHandler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "slug")

	var (
		business *domain.Business
		err      error
	)

	if id, parseErr := strconv.ParseInt(param, 10, 64); parseErr == nil {
		business, err = h.service.GetByID(r.Context(), id)
	} else {
		business, err = h.service.GetBySlug(r.Context(), param)
	}

	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: NewBusinessResponse(*business)})
}

// RegisterBusinessRequest is the JSON request body for registering a business.
type RegisterBusinessRequest struct {
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

// RegisterBusiness handles POST /api/v1/businesses
func (h *BusinessHandler) RegisterBusiness(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req RegisterBusinessRequest
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

	business, err := h.service.Register(r.Context(), &service.RegisterBusinessInput{
		Name:        req.Name,
		Description: req.Description,
		Street:      req.Street,
		ZipCode:     req.ZipCode,
		City:        req.City,
		Country:     req.Country,
		Phone:       req.Phone,
		Email:       req.Email,
		WebAddress:  req.WebAddress,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: NewBusinessResponse(*business)})
}
