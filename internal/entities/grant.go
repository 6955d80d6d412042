package entities

import (
	"database/sql"
	"time"
)

type Grant struct {
	ID             int64          `db:"id"`
	UserID         string         `db:"user_id"`
	ItemID         string         `db:"item_id"`
	Count          int            `db:"count"`
	Reason         string         `db:"reason"`
	ExtraJSON      sql.NullString `db:"extra_json"`
	IdempotencyKey sql.NullString `db:"idempotency_key"`
	CreatedAt      time.Time      `db:"created_at"`
}

type NewGrant struct {
	UserID         string
	ItemID         string
	Count          int
	Reason         string
	ExtraJSON      string
	IdempotencyKey string
}
