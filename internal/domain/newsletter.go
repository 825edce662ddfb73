package domain

import "time"

// Subscriber represents a newsletter subscription.
type Subscriber struct {
	ID           int64     `json:"subscriber_id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
}
