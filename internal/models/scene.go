package models

import (
	"time"

	"gorm.io/gorm"
)

// Scene is a named, saved snapshot of renderer configuration.
// The State payload is opaque to the engine: we store it, hand it to the
// renderer on load, and never look inside.
type Scene struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;not null" json:"name"`
	State     string         `gorm:"type:text;not null" json:"-"` // raw JSON blob
	Thumbnail string         `gorm:"type:text" json:"thumbnail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
