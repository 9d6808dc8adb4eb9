package worker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/projectpsu986-droid/pet-monitoring/internal/alerts"
	"github.com/projectpsu986-droid/pet-monitoring/internal/common"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/database"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{
		Driver:       database.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AlertLog{}, &models.NotificationState{}))
	return db
}

func insertAlert(t *testing.T, db *gorm.DB, catName, alertType string) models.AlertLog {
	t.Helper()
	row := models.AlertLog{
		CatName:   catName,
		Color:     "black",
		AlertType: alertType,
		Message:   catName + " did something",
		AlertDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2025, 7, 1, 23, 59, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestEventFromAlert(t *testing.T) {
	row := models.AlertLog{
		ID: 7, CatName: "Shadow", Color: "black",
		AlertType: alerts.TypeNoCat, Message: "gone",
		AlertDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	event := EventFromAlert(row)
	assert.Equal(t, int64(7), event.ID)
	assert.Equal(t, "2025-07-01", event.AlertDate)
	assert.Equal(t, common.AlertSourceRealtime, event.Source)

	row.AlertType = alerts.TypeNoEating
	assert.Equal(t, common.AlertSourceDaily, EventFromAlert(row).Source)
}

func TestPushNew_AdvancesWatermark(t *testing.T) {
	db := openDB(t)

	var pushed []string
	w := &Worker{
		db:            db,
		notifyEnabled: true,
		notifyTitle:   "Cats",
		notify: func(title, body string) error {
			pushed = append(pushed, title+"|"+body)
			return nil
		},
		now: time.Now,
	}

	insertAlert(t, db, "Shadow", alerts.TypeNoEating)
	insertAlert(t, db, "Misty", alerts.TypeNoCat)

	require.NoError(t, w.pushNew())
	require.Len(t, pushed, 2)
	assert.Equal(t, "Cats|[2025-07-01] Shadow did something", pushed[0])

	// Nothing new: no pushes, watermark holds.
	require.NoError(t, w.pushNew())
	assert.Len(t, pushed, 2)

	var state models.NotificationState
	require.NoError(t, db.First(&state, "state_key = ?", WatermarkKey).Error)
	assert.NotEqual(t, "0", state.Value)

	// A later alert is picked up from the watermark onward.
	insertAlert(t, db, "Tiger", alerts.TypeHighExcrete)
	require.NoError(t, w.pushNew())
	require.Len(t, pushed, 3)
	assert.Contains(t, pushed[2], "Tiger")
}

func TestPushNew_DeliveryFailureStillAdvances(t *testing.T) {
	db := openDB(t)
	w := &Worker{
		db:            db,
		notifyEnabled: true,
		notify: func(string, string) error {
			return fmt.Errorf("gateway down")
		},
		now: time.Now,
	}

	insertAlert(t, db, "Shadow", alerts.TypeNoEating)
	require.NoError(t, w.pushNew())

	var state models.NotificationState
	require.NoError(t, db.First(&state, "state_key = ?", WatermarkKey).Error)
	assert.Equal(t, "1", state.Value, "failed delivery must not replay forever")
}

func TestPushNew_MangledWatermarkRestartsScan(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.Create(&models.NotificationState{
		Key: WatermarkKey, Value: "not-a-number",
	}).Error)

	var n int
	w := &Worker{
		db:            db,
		notifyEnabled: true,
		notify: func(string, string) error {
			n++
			return nil
		},
		now: time.Now,
	}
	insertAlert(t, db, "Shadow", alerts.TypeNoEating)

	require.NoError(t, w.pushNew())
	assert.Equal(t, 1, n)
}
