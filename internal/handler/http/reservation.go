package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/alvina-abdullah/foodeez.ch-sub002/internal/service"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/httputil"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/pagination"
	"github.com/alvina-abdullah/foodeez.ch-sub002/pkg/validator"
)

// ReservationHandler handles HTTP requests for reservation endpoints.
type ReservationHandler struct {
	service *service.ReservationService
	logger  *slog.Logger
}

// NewReservationHandler creates a new reservation HTTP handler.
func NewReservationHandler(svc *service.ReservationService, logger *slog.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateReservationRequest is the JSON request body for a reservation.
type CreateReservationRequest struct {
	CustomerName  string `json:"customer_name" validate:"required,max=255"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	CustomerPhone string `json:"customer_phone" validate:"max=32"`
	ReservedFor   string `json:"reserved_for" validate:"required"`
	PartySize     int    `json:"party_size" validate:"required,gt=0"`
	Note          string `json:"note" validate:"max=1000"`
}

// CreateReservation handles POST /api/v1/businesses/{slug}/reservations
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromPath(r)
	if businessID <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "business slug must end in a numeric id"},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateReservationRequest
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

	reservation, err := h.service.Create(r.Context(), &service.CreateReservationInput{
		BusinessID:    businessID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		ReservedFor:   req.ReservedFor,
		PartySize:     req.PartySize,
		Note:          req.Note,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: reservation})
}

// ListReservations handles GET /api/v1/businesses/{slug}/reservations
func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	businessID := businessIDFromPath(r)
	if businessID <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "business slug must end in a numeric id"},
		})
		return
	}

	params := pagination.FromRequest(r)

	result, err := h.service.ListByBusiness(r.Context(), businessID, params.Page, params.PerPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}
