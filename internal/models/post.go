package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a rental listing. Creation is gated by the owner's active package
// quota; the rest of the listing feature set lives outside this service.
type Post struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID      uint   `gorm:"index" json:"user_id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `json:"price"` // VND per month
	Address     string `gorm:"type:varchar(500)" json:"address"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
