package sysconfig

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/database"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
)

func intPtr(v int) *int { return &v }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{
		Driver:       database.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.SystemConfig{},
		&models.SystemConfigCat{},
		&models.CatConfigMonthly{},
	))
	return db
}

func TestResolver_HardcodedFloor(t *testing.T) {
	db := openTestDB(t)
	r := NewResolver(db)

	eff, err := r.Global()
	require.NoError(t, err)
	assert.Equal(t, Effective{
		AbsenceHours:     DefaultAbsenceHours,
		MinEatPerDay:     DefaultMinEatPerDay,
		MinExcretePerDay: DefaultMinExcretePerDay,
		MaxExcretePerDay: DefaultMaxExcretePerDay,
		MaxSupportedCats: DefaultMaxSupportedCats,
	}, eff)
}

func TestResolver_GlobalRowOverridesFieldWise(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.SystemConfig{
		ID:         models.ActiveConfigID,
		AlertNoCat: intPtr(24),
		AlertNoEat: intPtr(0), // non-positive stays unset
	}).Error)

	eff, err := NewResolver(db).Global()
	require.NoError(t, err)
	assert.Equal(t, 24, eff.AbsenceHours)
	assert.Equal(t, DefaultMinEatPerDay, eff.MinEatPerDay)
	assert.Equal(t, DefaultMaxExcretePerDay, eff.MaxExcretePerDay)
}

func TestResolver_DefaultRowIsNotActive(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.SystemConfig{
		ID:         models.DefaultConfigID,
		AlertNoCat: intPtr(48),
	}).Error)

	eff, err := NewResolver(db).Global()
	require.NoError(t, err)
	assert.Equal(t, DefaultAbsenceHours, eff.AbsenceHours, "row 1 is a template, not live config")
}

func TestResolver_PerCatChain(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.SystemConfig{
		ID:                models.ActiveConfigID,
		AlertNoEat:        intPtr(4),
		AlertNoExcreteMax: intPtr(8),
	}).Error)
	require.NoError(t, db.Create(&models.SystemConfigCat{
		CatColor:   "black",
		AlertNoEat: intPtr(6),
	}).Error)

	r := NewResolver(db)

	eff, err := r.ForCat("Black")
	require.NoError(t, err)
	assert.Equal(t, 6, eff.MinEatPerDay, "per-cat field wins")
	assert.Equal(t, 8, eff.MaxExcretePerDay, "unset per-cat field falls back to global")
	assert.Equal(t, DefaultAbsenceHours, eff.AbsenceHours, "unset everywhere falls to the floor")

	eff, err = r.ForCat("white")
	require.NoError(t, err)
	assert.Equal(t, 4, eff.MinEatPerDay, "cat without override resolves globally")
}

func TestAdmin_UpdateGlobalMergesAndValidates(t *testing.T) {
	db := openTestDB(t)
	a := NewAdmin(db)

	view, err := a.UpdateGlobal(Patch{AlertNoExcreteMin: intPtr(2), AlertNoExcreteMax: intPtr(6)})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Effective.MinExcretePerDay)
	assert.Equal(t, 6, view.Effective.MaxExcretePerDay)

	// Partial patch keeps the untouched fields.
	view, err = a.UpdateGlobal(Patch{AlertNoEat: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, view.Effective.MinEatPerDay)
	assert.Equal(t, 6, view.Effective.MaxExcretePerDay)

	// Floor above ceiling is rejected against the merged row.
	_, err = a.UpdateGlobal(Patch{AlertNoExcreteMin: intPtr(9)})
	assert.True(t, cerrors.IsCode(err, cerrors.ErrExcretionBounds.Code))

	// Zero clears a field back to unset.
	view, err = a.UpdateGlobal(Patch{AlertNoEat: intPtr(0)})
	require.NoError(t, err)
	assert.Nil(t, view.Stored.AlertNoEat)
	assert.Equal(t, DefaultMinEatPerDay, view.Effective.MinEatPerDay)
}

func TestAdmin_ResetAndApplySummary(t *testing.T) {
	db := openTestDB(t)
	a := NewAdmin(db)

	_, err := a.UpdateCat("black", Patch{AlertNoCat: intPtr(6)})
	require.NoError(t, err)

	view, err := a.ResetCat("black")
	require.NoError(t, err)
	assert.Nil(t, view.Stored)

	_, err = a.ApplySummary("2025-06", "black")
	assert.True(t, cerrors.IsCode(err, cerrors.ErrConfigNotFound.Code))

	require.NoError(t, db.Create(&models.CatConfigMonthly{
		MonthYm:           "2025-06",
		CatColor:          "black",
		CatName:           "Shadow",
		AlertNoEat:        5,
		AlertNoExcreteMax: 7,
		DaysInMonth:       30,
	}).Error)

	view, err = a.ApplySummary("2025-06", "black")
	require.NoError(t, err)
	require.NotNil(t, view.Stored)
	assert.Equal(t, 5, *view.Stored.AlertNoEat)
	assert.Equal(t, 7, *view.Stored.AlertNoExcreteMax)
	assert.Equal(t, 5, view.Effective.MinEatPerDay)
	assert.Equal(t, 7, view.Effective.MaxExcretePerDay)
}

func TestAdmin_ResetGlobalCopiesDefaults(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.SystemConfig{
		ID:         models.DefaultConfigID,
		AlertNoEat: intPtr(2),
	}).Error)
	a := NewAdmin(db)

	_, err := a.UpdateGlobal(Patch{AlertNoEat: intPtr(9)})
	require.NoError(t, err)

	view, err := a.ResetGlobal()
	require.NoError(t, err)
	require.NotNil(t, view.Stored.AlertNoEat)
	assert.Equal(t, 2, *view.Stored.AlertNoEat)
}
