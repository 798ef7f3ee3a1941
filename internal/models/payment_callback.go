package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// PaymentCallback is an audit record of every callback the gateway delivered,
// including replays and rejected signatures. Verification outcomes live here;
// payment state transitions live on Payment.
type PaymentCallback struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PaymentGateway PaymentGateway  `gorm:"type:varchar(50);not null" json:"payment_gateway"`
	OrderID        string          `gorm:"type:varchar(32);index" json:"order_id"`
	Outcome        string          `gorm:"type:varchar(50)" json:"outcome"`
	Payload        json.RawMessage `gorm:"type:jsonb" json:"payload"`
}
