package models

import "time"

// Space is the tenant boundary. Every entity and image belongs to one.
type Space struct {
	ID          int64     `json:"id" db:"id"`
	OwnerUserID int64     `json:"-" db:"owner_user_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
