package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nhatro_api/internal/models"
)

// BuildScheduledTask is a helper to build ScheduledTask records generically
func BuildScheduledTask(taskName string, args interface{}, due time.Time, recurringInterval *string, taskType models.ScheduledTaskType, maxAttempt int) (*models.ScheduledTask, error) {
	argsBytes, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}

	var mapArgs map[string]interface{}
	if err := json.Unmarshal(argsBytes, &mapArgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into map: %w", err)
	}

	return &models.ScheduledTask{
		TaskName:          taskName,
		Arguments:         mapArgs,
		Due:               due,
		RecurringInterval: recurringInterval,
		Status:            models.ScheduledTaskStatusActive,
		TaskType:          taskType,
		MaxAttempt:        maxAttempt,
	}, nil
}

// EnsureDefaultSweeps seeds the recurring maintenance tasks if no row for
// them exists yet: the daily package-expiry sweep and the hourly
// pending-payment sweep.
func EnsureDefaultSweeps(db *gorm.DB, pendingPaymentTTLHours int) error {
	if pendingPaymentTTLHours <= 0 {
		pendingPaymentTTLHours = 48
	}

	daily := "FREQ=DAILY"
	hourly := "FREQ=HOURLY"

	sweeps := []struct {
		name      string
		args      map[string]interface{}
		recurring *string
	}{
		{ExpireUserPackagesTask.TaskID(), map[string]interface{}{}, &daily},
		{ExpirePendingPaymentsTask.TaskID(), map[string]interface{}{"max_age_hours": pendingPaymentTTLHours}, &hourly},
	}

	for _, sweep := range sweeps {
		var existing models.ScheduledTask
		err := db.Where("task_name = ? AND status IN ?", sweep.name,
			[]models.ScheduledTaskStatus{models.ScheduledTaskStatusActive, models.ScheduledTaskStatusFailure}).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		task, err := BuildScheduledTask(sweep.name, sweep.args, time.Now(), sweep.recurring, models.ScheduledTaskTypeRecurring, 3)
		if err != nil {
			return err
		}
		if err := db.Create(task).Error; err != nil {
			return err
		}
	}
	return nil
}
