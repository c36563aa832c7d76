package dto

import "time"

// OrderResponse represents an order as exposed via transport layers. Status
// is derived at query time and attached here, never read from storage.
type OrderResponse struct {
	ID          int64      `json:"id"`
	UserID      *int64     `json:"user_id"`
	SupplyID    *int64     `json:"supply_id"`
	Phone       string     `json:"phone,omitempty"`
	Email       string     `json:"email,omitempty"`
	Country     string     `json:"country,omitempty"`
	Unit        string     `json:"unit"`
	Quantity    int        `json:"quantity"`
	Location    string     `json:"location"`
	Status      string     `json:"status"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	Fulfilled   bool       `json:"fulfilled"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RejectionResponse is the structured outcome of a failed submission.
type RejectionResponse struct {
	MessageKey string            `json:"message_key"`
	Errors     map[string]string `json:"errors,omitempty"`
}
