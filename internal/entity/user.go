package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a field volunteer identified by an opaque PCV ID.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        int64     `bun:",pk,autoincrement"`
	PCVID     string    `bun:"pcv_id"`
	Email     string    `bun:"email"`
	Phone     string    `bun:"phone"`
	Location  string    `bun:"location"`
	Country   string    `bun:"country"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
}
