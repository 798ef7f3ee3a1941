package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type PaymentGateway string

const (
	PaymentGatewayVNPay  PaymentGateway = "vnpay"
	PaymentGatewayManual PaymentGateway = "manual"
)

// PaymentStatus is the lifecycle state of a purchase attempt.
// pending is the only non-terminal state; a payment that reached
// completed/failed/refunded is never mutated again.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment records one purchase attempt against the gateway.
type Payment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UUID      string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID    uint  `gorm:"index" json:"user_id"`
	PackageID uint  `gorm:"index" json:"package_id"`
	Amount    int64 `gorm:"not null" json:"amount"` // VND, copied from the package at creation

	// OrderID correlates this payment with the gateway transaction (vnp_TxnRef).
	OrderID string `gorm:"type:varchar(32);uniqueIndex" json:"order_id"`

	Status        PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaymentMethod PaymentGateway `gorm:"type:varchar(50);default:'vnpay'" json:"payment_method"`

	// ResponseData is the raw callback parameter set, stored verbatim for audit.
	ResponseData json.RawMessage `gorm:"type:jsonb" json:"response_data,omitempty"`

	// ActivationError is set when the payment completed but package activation
	// failed. Money has moved; operators reconcile these manually.
	ActivationError string `gorm:"type:text" json:"activation_error,omitempty"`

	// Relationships
	User    User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Package PostPackage `gorm:"foreignKey:PackageID" json:"package,omitempty"`
}

// Terminal reports whether the payment reached a final state.
func (p Payment) Terminal() bool {
	return p.Status != PaymentStatusPending
}
