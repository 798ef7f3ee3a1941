package tasks

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"nhatro_api/internal/models"
)

// ExpireUserPackagesTaskDef deactivates user packages past their expiry.
type ExpireUserPackagesTaskDef struct{}

func (t *ExpireUserPackagesTaskDef) TaskID() string {
	return "expire_user_packages"
}

func (t *ExpireUserPackagesTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	res := db.WithContext(ctx).Model(&models.UserPackage{}).
		Where("is_active = ? AND expires_at <= ?", true, time.Now()).
		Update("is_active", false)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected > 0 {
		log.Printf("[Task: expire_user_packages] Deactivated %d expired packages", res.RowsAffected)
	}
	return map[string]interface{}{
		"status":      "success",
		"deactivated": res.RowsAffected,
	}, nil
}

// ExpireUserPackagesTask is the singleton instance of ExpireUserPackagesTaskDef
var ExpireUserPackagesTask = &ExpireUserPackagesTaskDef{}

// ExpirePendingPaymentsTaskDef sweeps abandoned checkouts: payments still
// pending after the cutoff are marked failed. Completed and failed payments
// are terminal and never touched.
type ExpirePendingPaymentsTaskDef struct{}

func (t *ExpirePendingPaymentsTaskDef) TaskID() string {
	return "expire_pending_payments"
}

func (t *ExpirePendingPaymentsTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	maxAgeHours := 48.0
	if v, ok := task.Arguments["max_age_hours"].(float64); ok && v > 0 {
		maxAgeHours = v
	}
	cutoff := time.Now().Add(-time.Duration(maxAgeHours * float64(time.Hour)))

	res := db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ? AND created_at < ?", models.PaymentStatusPending, cutoff).
		Update("status", models.PaymentStatusFailed)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected > 0 {
		log.Printf("[Task: expire_pending_payments] Expired %d abandoned payments", res.RowsAffected)
	}
	return map[string]interface{}{
		"status":        "success",
		"expired":       res.RowsAffected,
		"max_age_hours": maxAgeHours,
	}, nil
}

// ExpirePendingPaymentsTask is the singleton instance of ExpirePendingPaymentsTaskDef
var ExpirePendingPaymentsTask = &ExpirePendingPaymentsTaskDef{}
