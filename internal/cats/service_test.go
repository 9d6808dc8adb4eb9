package cats

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/database"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/local_cache"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
	"github.com/projectpsu986-droid/pet-monitoring/internal/rooms"
	"github.com/projectpsu986-droid/pet-monitoring/internal/sysconfig"
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
)

func newService(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()
	require.NoError(t, local_cache.NewLocalCache())

	db, err := database.Open(database.Options{
		Driver:       database.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Cat{},
		&models.SystemConfig{},
		&models.SystemConfigCat{},
		&models.AlertLog{},
		&models.CatConfigMonthly{},
	))
	require.NoError(t, db.Exec(
		"CREATE TABLE timeslot (date_slot DATETIME, `black` TEXT, `black_cam` TEXT, `black_ac` TEXT)",
	).Error)

	inspector := timeslot.NewInspector(db,
		timeslot.WithColumnCacheKey("test:"+t.Name()),
		timeslot.WithColumnCacheTTL(time.Minute),
	)
	reader := timeslot.NewReader(db, inspector)
	svc := NewService(db, inspector, reader, sysconfig.NewResolver(db),
		rooms.FromCameras(map[string]string{"C2": "kitchen"}))
	return db, svc
}

func TestList_JoinsObservationState(t *testing.T) {
	db, svc := newService(t)
	require.NoError(t, db.Create(&models.Cat{Name: "Shadow", Color: "black", DisplayStatus: true}).Error)
	require.NoError(t, db.Create(&models.Cat{Name: "Misty", Color: "white", DisplayStatus: true}).Error)

	ts := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, db.Exec(
		"INSERT INTO timeslot (date_slot, `black`, `black_cam`, `black_ac`) VALUES (?, ?, ?, ?)",
		ts, "F", "C2", "eat",
	).Error)

	views, err := svc.List()
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Ordered by name: Misty first, no channel columns for "white".
	assert.Equal(t, "Misty", views[0].Name)
	assert.False(t, views[0].HasChannel)
	assert.Empty(t, views[0].CurrentRoom)

	assert.Equal(t, "Shadow", views[1].Name)
	assert.True(t, views[1].HasChannel)
	assert.True(t, views[1].Present)
	assert.Equal(t, "kitchen", views[1].CurrentRoom)
	require.NotNil(t, views[1].LastSeen)
	assert.True(t, views[1].LastSeen.Equal(ts))
}

func TestCreate_ValidatesColorAndLimit(t *testing.T) {
	db, svc := newService(t)

	_, err := svc.Create(models.Cat{Name: "Shadow", Color: "black; drop"})
	assert.True(t, cerrors.IsCode(err, cerrors.ErrMissingCatColor.Code))

	cat, err := svc.Create(models.Cat{Name: "Shadow", Color: " Black "})
	require.NoError(t, err)
	assert.Equal(t, "black", cat.Color)

	two := 2
	require.NoError(t, db.Create(&models.SystemConfig{
		ID: models.ActiveConfigID, MaxSupportedCats: &two,
	}).Error)
	_, err = svc.Create(models.Cat{Name: "Misty", Color: "white"})
	require.NoError(t, err)
	_, err = svc.Create(models.Cat{Name: "Tiger", Color: "orange"})
	assert.True(t, cerrors.IsCode(err, cerrors.ErrGenericBadRequest.Code))
}

func TestSetDisplay_BatchIsAtomic(t *testing.T) {
	db, svc := newService(t)
	require.NoError(t, db.Create(&models.Cat{Name: "Shadow", DisplayStatus: true}).Error)

	err := svc.SetDisplay([]DisplayUpdate{
		{Name: "Shadow", DisplayStatus: false},
		{Name: "Ghost", DisplayStatus: true},
	})
	assert.True(t, cerrors.IsCode(err, cerrors.ErrCatNotFound.Code))

	var cat models.Cat
	require.NoError(t, db.First(&cat, "name = ?", "Shadow").Error)
	assert.True(t, cat.DisplayStatus, "failed batch must not half-apply")

	require.NoError(t, svc.SetDisplay([]DisplayUpdate{{Name: "Shadow", DisplayStatus: false}}))
	require.NoError(t, db.First(&cat, "name = ?", "Shadow").Error)
	assert.False(t, cat.DisplayStatus)
}

func TestRename_Cascades(t *testing.T) {
	db, svc := newService(t)
	require.NoError(t, db.Create(&models.Cat{Name: "Shadow", Color: "black"}).Error)
	require.NoError(t, db.Create(&models.AlertLog{
		CatName: "Shadow", Color: "black", AlertType: "no_eating",
		AlertDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}).Error)
	require.NoError(t, db.Create(&models.CatConfigMonthly{
		MonthYm: "2025-06", CatColor: "black", CatName: "Shadow", DaysInMonth: 30,
	}).Error)

	require.NoError(t, svc.Rename("Shadow", "Onyx"))

	var cat models.Cat
	require.NoError(t, db.First(&cat, "name = ?", "Onyx").Error)

	var alert models.AlertLog
	require.NoError(t, db.First(&alert).Error)
	assert.Equal(t, "Onyx", alert.CatName)

	var summary models.CatConfigMonthly
	require.NoError(t, db.First(&summary).Error)
	assert.Equal(t, "Onyx", summary.CatName)

	err := svc.Rename("Ghost", "Spirit")
	assert.True(t, cerrors.IsCode(err, cerrors.ErrCatNotFound.Code))
}

func TestDelete_RemovesOverrideRow(t *testing.T) {
	db, svc := newService(t)
	require.NoError(t, db.Create(&models.Cat{Name: "Shadow", Color: "black"}).Error)
	six := 6
	require.NoError(t, db.Create(&models.SystemConfigCat{CatColor: "black", AlertNoCat: &six}).Error)

	require.NoError(t, svc.Delete("Shadow"))

	var n int64
	require.NoError(t, db.Model(&models.Cat{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.SystemConfigCat{}).Count(&n).Error)
	assert.Zero(t, n)

	assert.True(t, cerrors.IsCode(svc.Delete("Shadow"), cerrors.ErrCatNotFound.Code))
}
