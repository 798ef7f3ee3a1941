package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole represents the role of a user
type UserRole string

const (
	UserRoleAdmin  UserRole = "Admin"
	UserRoleMember UserRole = "Member"
)

// User represents a user in the system. Identity comes from the JWT; this
// row only carries the profile fields the package flow needs.
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Username string   `gorm:"type:varchar(255)" json:"username"`
	Email    string   `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Phone    string   `gorm:"type:varchar(50)" json:"phone"`
	Role     UserRole `gorm:"type:varchar(20);default:'Member'" json:"role"`

	// Relationships
	Payments     []Payment     `gorm:"foreignKey:UserID" json:"payments,omitempty"`
	UserPackages []UserPackage `gorm:"foreignKey:UserID" json:"user_packages,omitempty"`
	Posts        []Post        `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
