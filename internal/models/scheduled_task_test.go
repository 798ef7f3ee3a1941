package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestNextDueOneTime(t *testing.T) {
	due := time.Now().Add(-time.Hour)
	task := ScheduledTask{TaskType: ScheduledTaskTypeOneTime, Due: due}
	assert.Equal(t, due, task.NextDue())
}

func TestNextDueRecurring(t *testing.T) {
	due := time.Now().Add(-2 * time.Hour).Truncate(time.Second)

	daily := ScheduledTask{
		TaskType:          ScheduledTaskTypeRecurring,
		Due:               due,
		RecurringInterval: strPtr("FREQ=DAILY"),
	}
	next := daily.NextDue()
	assert.True(t, next.After(time.Now()))
	assert.True(t, next.Before(time.Now().Add(25*time.Hour)))

	hourly := ScheduledTask{
		TaskType:          ScheduledTaskTypeRecurring,
		Due:               due,
		RecurringInterval: strPtr("FREQ=HOURLY"),
	}
	next = hourly.NextDue()
	assert.True(t, next.After(time.Now()))
	assert.True(t, next.Before(time.Now().Add(2*time.Hour)))
}

func TestNextDueInvalidRule(t *testing.T) {
	due := time.Now().Add(-time.Hour)
	task := ScheduledTask{
		TaskType:          ScheduledTaskTypeRecurring,
		Due:               due,
		RecurringInterval: strPtr("not an rrule"),
	}
	// Falls back to the stored due so the worker can mark the task done
	// instead of rescheduling it.
	assert.Equal(t, due, task.NextDue())
}

func TestPaymentTerminal(t *testing.T) {
	assert.False(t, Payment{Status: PaymentStatusPending}.Terminal())
	assert.True(t, Payment{Status: PaymentStatusCompleted}.Terminal())
	assert.True(t, Payment{Status: PaymentStatusFailed}.Terminal())
	assert.True(t, Payment{Status: PaymentStatusRefunded}.Terminal())
}
