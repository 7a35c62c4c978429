// internal/storage/models/base.go
package models

import "time"

// BaseModel carries the bookkeeping columns every record has.
type BaseModel struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
