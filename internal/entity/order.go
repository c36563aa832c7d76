package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Order is a supply request created from an inbound text message. Status is
// never stored on the row; it is derived from created_at and response linkage.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID          int64      `bun:",pk,autoincrement"`
	UserID      *int64     `bun:"user_id"`
	SupplyID    *int64     `bun:"supply_id"`
	Phone       string     `bun:"phone"`
	Email       string     `bun:"email"`
	Country     string     `bun:"country"`
	Unit        string     `bun:"unit"`
	Quantity    int        `bun:"quantity"`
	Location    string     `bun:"location"`
	FulfilledAt *time.Time `bun:"fulfilled_at,nullzero"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`

	User     *User     `bun:"rel:belongs-to,join:user_id=id"`
	Supply   *Supply   `bun:"rel:belongs-to,join:supply_id=id"`
	Response *Response `bun:"rel:has-one,join:id=order_id"`
}

// Responded reports whether a response has been linked to the order.
// The Response relation must be loaded for this to be meaningful.
func (o *Order) Responded() bool {
	return o.Response != nil
}

// RespondedAt returns the linked response's creation time, or nil.
func (o *Order) RespondedAt() *time.Time {
	if o.Response == nil {
		return nil
	}
	return &o.Response.CreatedAt
}

// Fulfilled reports presence of the fulfilled_at mark. The mark is written by
// the fulfillment collaborator, never by this service.
func (o *Order) Fulfilled() bool {
	return o.FulfilledAt != nil
}
