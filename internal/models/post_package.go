package models

import (
	"time"

	"gorm.io/gorm"
)

// PostPackage is a purchasable posting tier: how many listings a buyer may
// publish and for how long. Packages are soft-deactivated, never hard-deleted,
// because payments and user packages keep referencing them.
type PostPackage struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string   `gorm:"type:varchar(255);not null" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
	Price       int64    `gorm:"not null" json:"price"`    // VND
	Duration    int      `gorm:"not null" json:"duration"` // days
	PostLimit   int      `gorm:"not null" json:"post_limit"`
	Features    []string `gorm:"serializer:json" json:"features"`
	IsActive    bool     `gorm:"default:true" json:"is_active"`
}
