package domain

import "time"

// Reservation status constants.
const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusDeclined  = "declined"
)

// Reservation represents a table reservation request for a business.
type Reservation struct {
	ID            int64     `json:"reservation_id"`
	BusinessID    int64     `json:"business_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone,omitempty"`
	ReservedFor   time.Time `json:"reserved_for"`
	PartySize     int       `json:"party_size"`
	Note          string    `json:"note,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
