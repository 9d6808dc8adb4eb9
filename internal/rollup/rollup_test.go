package rollup

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
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
)

func newEngine(t *testing.T) (*gorm.DB, *Engine) {
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
		&models.CatConfigMonthly{},
	))
	require.NoError(t, db.Exec(
		"CREATE TABLE timeslot (date_slot DATETIME, `black` TEXT, `black_cam` TEXT, `black_ac` TEXT)",
	).Error)
	require.NoError(t, db.Create(&models.Cat{
		Name: "Shadow", Color: "black", DisplayStatus: true,
	}).Error)

	inspector := timeslot.NewInspector(db,
		timeslot.WithColumnCacheKey("test:"+t.Name()),
		timeslot.WithColumnCacheTTL(time.Minute),
	)
	reader := timeslot.NewReader(db, inspector)
	engine := NewEngine(db, inspector, reader)
	return db, engine
}

// fillMonth writes hourly samples for the given number of days of June 2025,
// carrying eatPerDay and excretePerDay episodes each day.
func fillMonth(t *testing.T, db *gorm.DB, days, eatPerDay, excretePerDay int) {
	t.Helper()
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < days; d++ {
		day := start.AddDate(0, 0, d)
		acts := make([]string, 24)
		for i := range acts {
			acts[i] = "NO"
		}
		for i := 0; i < eatPerDay; i++ {
			acts[1+2*i] = "eat"
		}
		for i := 0; i < excretePerDay; i++ {
			acts[13+2*i] = "excrete"
		}
		for h, ac := range acts {
			require.NoError(t, db.Exec(
				"INSERT INTO timeslot (date_slot, `black`, `black_cam`, `black_ac`) VALUES (?, ?, ?, ?)",
				day.Add(time.Duration(h)*time.Hour), "F", "C2", ac,
			).Error)
		}
	}
}

func TestRun_RefusesOpenMonth(t *testing.T) {
	_, engine := newEngine(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	err := engine.Run("2025-06", now)
	assert.True(t, cerrors.IsCode(err, cerrors.ErrInvalidMonth.Code))

	err = engine.Run("2025-07", now)
	assert.True(t, cerrors.IsCode(err, cerrors.ErrInvalidMonth.Code))
}

func TestRun_IncompleteCoverageSkips(t *testing.T) {
	db, engine := newEngine(t)
	fillMonth(t, db, 29, 2, 3) // June has 30 days

	now := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, engine.Run("2025-06", now))

	var n int64
	require.NoError(t, db.Model(&models.CatConfigMonthly{}).Count(&n).Error)
	assert.Zero(t, n, "29 of 30 covered days must not produce a summary")
}

func TestRun_FullMonthUpserts(t *testing.T) {
	db, engine := newEngine(t)
	fillMonth(t, db, 30, 2, 3)

	now := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, engine.Run("2025-06", now))

	var row models.CatConfigMonthly
	require.NoError(t, db.First(&row, "month_ym = ? AND cat_color = ?", "2025-06", "black").Error)
	assert.Equal(t, "Shadow", row.CatName)
	assert.Equal(t, 30, row.DaysInMonth)
	assert.InDelta(t, 2.0, row.AvgEatPerDay, 1e-9)
	assert.InDelta(t, 3.0, row.AvgExcretePerDay, 1e-9)
	assert.Equal(t, 2, row.AlertNoEat)
	assert.Equal(t, 3, row.AlertNoExcreteMax)

	// Re-running overwrites in place instead of duplicating.
	require.NoError(t, engine.Run("2025-06", now))
	var n int64
	require.NoError(t, db.Model(&models.CatConfigMonthly{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestSuggest_HalfRoundsToEven(t *testing.T) {
	assert.Equal(t, 2, suggest(2.5))
	assert.Equal(t, 4, suggest(3.5))
	assert.Equal(t, 3, suggest(2.6))
	assert.Equal(t, 0, suggest(-0.4))
}

func TestEnsurePrevious_RunsOnce(t *testing.T) {
	db, engine := newEngine(t)
	fillMonth(t, db, 30, 2, 3)

	now := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, engine.EnsurePrevious(now))

	var row models.CatConfigMonthly
	require.NoError(t, db.First(&row, "month_ym = ?", "2025-06").Error)
	created := row.CreatedAt

	require.NoError(t, engine.EnsurePrevious(now))
	require.NoError(t, db.First(&row, "month_ym = ?", "2025-06").Error)
	assert.Equal(t, created, row.CreatedAt, "existing summary short-circuits the rollup")
}

func TestSummaries_Stability(t *testing.T) {
	db, _ := newEngine(t)
	mk := func(month string, eat, excrete int) models.CatConfigMonthly {
		return models.CatConfigMonthly{
			MonthYm: month, CatColor: "black", CatName: "Shadow",
			AlertNoEat: eat, AlertNoExcreteMax: excrete, DaysInMonth: 30,
		}
	}
	require.NoError(t, db.Create(&[]models.CatConfigMonthly{
		mk("2025-04", 2, 3),
		mk("2025-05", 2, 3),
		mk("2025-06", 2, 3),
	}).Error)

	s := NewSummaries(db)

	months, err := s.Months()
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06", "2025-05", "2025-04"}, months)

	rows, err := s.ForMonth("2025-06")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Stable, "three agreeing months make a stable pair")

	rows, err = s.ForMonth("2025-05")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Stable, "window reaches before the first summary")

	// A drifting suggestion breaks stability.
	drift := mk("2025-07", 3, 3)
	require.NoError(t, db.Create(&drift).Error)
	rows, err = s.ForMonth("2025-07")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Stable)
}
