package models

import "time"

// User is a bare identifier; there is no authentication. Rows exist so
// completions and participants have something to reference and are
// provisioned implicitly on first use.
type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
