package models

import (
	"time"

	"gorm.io/gorm"
)

// UserPackage is a user's time-boxed claim on a PostPackage's quota.
// Invariant: at most one row per user with is_active=true and expires_at in
// the future at any committed point in time.
type UserPackage struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID    uint `gorm:"index" json:"user_id"`
	PackageID uint `gorm:"index" json:"package_id"`

	PurchasedAt time.Time `json:"purchased_at"`
	ExpiresAt   time.Time `gorm:"index" json:"expires_at"`
	PostsLeft   int       `json:"posts_left"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	PaymentID   *uint     `json:"payment_id,omitempty"`

	// Relationships
	User    User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Package PostPackage `gorm:"foreignKey:PackageID" json:"package,omitempty"`
	Payment *Payment    `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
}
