package tasks

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nhatro_api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Payment{},
		&models.UserPackage{},
		&models.ScheduledTask{},
		&models.ScheduledTaskHistory{},
	))
	return db
}

func TestExpireUserPackages(t *testing.T) {
	db := newTestDB(t)

	expired := models.UserPackage{UserID: 1, PackageID: 1, ExpiresAt: time.Now().AddDate(0, 0, -1), PostsLeft: 2, IsActive: true}
	valid := models.UserPackage{UserID: 2, PackageID: 1, ExpiresAt: time.Now().AddDate(0, 0, 10), PostsLeft: 5, IsActive: true}
	alreadyInactive := models.UserPackage{UserID: 3, PackageID: 1, ExpiresAt: time.Now().AddDate(0, 0, -5), PostsLeft: 0, IsActive: false}
	require.NoError(t, db.Create(&expired).Error)
	require.NoError(t, db.Create(&valid).Error)
	require.NoError(t, db.Create(&alreadyInactive).Error)

	result, err := ExpireUserPackagesTask.HandleExecution(context.Background(), db, models.ScheduledTask{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result["deactivated"])

	var got models.UserPackage
	require.NoError(t, db.First(&got, expired.ID).Error)
	assert.False(t, got.IsActive)

	require.NoError(t, db.First(&got, valid.ID).Error)
	assert.True(t, got.IsActive)
	assert.Equal(t, 5, got.PostsLeft)
}

func TestExpirePendingPayments(t *testing.T) {
	db := newTestDB(t)

	old := time.Now().Add(-72 * time.Hour)
	abandoned := models.Payment{UUID: "a", OrderID: "20260826101500001", Status: models.PaymentStatusPending, CreatedAt: old}
	fresh := models.Payment{UUID: "b", OrderID: "20260829101500002", Status: models.PaymentStatusPending}
	completed := models.Payment{UUID: "c", OrderID: "20260825101500003", Status: models.PaymentStatusCompleted, CreatedAt: old}
	require.NoError(t, db.Create(&abandoned).Error)
	require.NoError(t, db.Create(&fresh).Error)
	require.NoError(t, db.Create(&completed).Error)

	task := models.ScheduledTask{Arguments: map[string]interface{}{"max_age_hours": float64(48)}}
	result, err := ExpirePendingPaymentsTask.HandleExecution(context.Background(), db, task)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result["expired"])
	assert.Equal(t, 48.0, result["max_age_hours"])

	var got models.Payment
	require.NoError(t, db.First(&got, abandoned.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, got.Status)

	require.NoError(t, db.First(&got, fresh.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, got.Status)

	// Terminal payments are never touched by the sweep.
	require.NoError(t, db.First(&got, completed.ID).Error)
	assert.Equal(t, models.PaymentStatusCompleted, got.Status)
}

func TestExpirePendingPaymentsDefaultCutoff(t *testing.T) {
	db := newTestDB(t)

	stale := models.Payment{UUID: "a", OrderID: "20260826101500001", Status: models.PaymentStatusPending, CreatedAt: time.Now().Add(-49 * time.Hour)}
	recent := models.Payment{UUID: "b", OrderID: "20260828101500002", Status: models.PaymentStatusPending, CreatedAt: time.Now().Add(-47 * time.Hour)}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Create(&recent).Error)

	result, err := ExpirePendingPaymentsTask.HandleExecution(context.Background(), db, models.ScheduledTask{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result["expired"])
	assert.Equal(t, 48.0, result["max_age_hours"])
}

func TestEnsureDefaultSweeps(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, EnsureDefaultSweeps(db, 48))
	// Seeding again must not duplicate the rows.
	require.NoError(t, EnsureDefaultSweeps(db, 48))

	var sweeps []models.ScheduledTask
	require.NoError(t, db.Order("task_name").Find(&sweeps).Error)
	require.Len(t, sweeps, 2)

	assert.Equal(t, ExpirePendingPaymentsTask.TaskID(), sweeps[0].TaskName)
	require.NotNil(t, sweeps[0].RecurringInterval)
	assert.Equal(t, "FREQ=HOURLY", *sweeps[0].RecurringInterval)
	assert.Equal(t, float64(48), sweeps[0].Arguments["max_age_hours"])

	assert.Equal(t, ExpireUserPackagesTask.TaskID(), sweeps[1].TaskName)
	require.NotNil(t, sweeps[1].RecurringInterval)
	assert.Equal(t, "FREQ=DAILY", *sweeps[1].RecurringInterval)

	for _, sweep := range sweeps {
		assert.Equal(t, models.ScheduledTaskTypeRecurring, sweep.TaskType)
		assert.Equal(t, models.ScheduledTaskStatusActive, sweep.Status)
	}
}

func TestRegistryResolvesHandlers(t *testing.T) {
	DefineTasks()

	for _, name := range []string{ExpireUserPackagesTask.TaskID(), ExpirePendingPaymentsTask.TaskID()} {
		handler, found := GetHandler(name)
		assert.True(t, found, name)
		assert.NotNil(t, handler, name)
	}

	_, found := GetHandler("no_such_task")
	assert.False(t, found)
}
