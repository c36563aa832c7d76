package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Supply is an orderable item addressed by a short code in text messages.
type Supply struct {
	bun.BaseModel `bun:"table:supplies"`

	ID        int64     `bun:",pk,autoincrement"`
	Shortcode string    `bun:"shortcode"`
	Name      string    `bun:"name"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
