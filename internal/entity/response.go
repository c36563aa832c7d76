package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Response records that an order was answered. At most one response exists
// per order; this service only observes the linkage, it never writes one.
type Response struct {
	bun.BaseModel `bun:"table:responses"`

	ID        int64     `bun:",pk,autoincrement"`
	OrderID   int64     `bun:"order_id"`
	Body      string    `bun:"body"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
