package sysconfig

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
)

// Patch is a sparse threshold update. Nil fields are left untouched; a
// non-positive value clears the stored field back to unset.
type Patch struct {
	AlertNoCat        *int `json:"alertNoCat"`
	AlertNoEat        *int `json:"alertNoEat"`
	AlertNoExcreteMin *int `json:"alertNoExcreteMin"`
	AlertNoExcreteMax *int `json:"alertNoExcreteMax"`
	MaxSupportedCats  *int `json:"maxSupportedCats"`
}

func (p Patch) empty() bool {
	return p.AlertNoCat == nil && p.AlertNoEat == nil &&
		p.AlertNoExcreteMin == nil && p.AlertNoExcreteMax == nil &&
		p.MaxSupportedCats == nil
}

// normalized maps non-positive patch values to nil so "0" in a request clears
// the override instead of storing a dead threshold.
func normalized(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

// checkBounds rejects stored pairs where the excretion floor exceeds the
// ceiling. Unset sides never conflict.
func checkBounds(min, max *int) error {
	if min != nil && max != nil && *min > 0 && *max > 0 && *min > *max {
		return cerrors.ErrExcretionBounds
	}
	return nil
}

// Admin is the read/write surface over the threshold tables. Reads come back
// paired with the resolved effective values so callers never re-implement the
// fallback chain.
type Admin struct {
	db       *gorm.DB
	resolver *Resolver
}

func NewAdmin(db *gorm.DB) *Admin {
	return &Admin{db: db, resolver: NewResolver(db)}
}

func (a *Admin) Resolver() *Resolver { return a.resolver }

// GlobalView is the active global row (sparse) plus its resolved values.
type GlobalView struct {
	Stored    models.SystemConfig `json:"stored"`
	Effective Effective           `json:"effective"`
}

// CatView is one per-cat override row plus the values that cat resolves to.
type CatView struct {
	CatColor  string                  `json:"cat_color"`
	Stored    *models.SystemConfigCat `json:"stored"`
	Effective Effective               `json:"effective"`
}

// Global returns the active config row and its effective resolution. A
// missing row reads as an all-unset stored config, not an error.
func (a *Admin) Global() (GlobalView, error) {
	view := GlobalView{Stored: models.SystemConfig{ID: models.ActiveConfigID}}

	var row models.SystemConfig
	err := a.db.First(&row, "id = ?", models.ActiveConfigID).Error
	if err == nil {
		view.Stored = row
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return view, cerrors.ErrConfigWriteFailed.WithCause(err)
	}

	eff, err := a.resolver.Global()
	if err != nil {
		return view, cerrors.ErrConfigWriteFailed.WithCause(err)
	}
	view.Effective = eff
	return view, nil
}

// Cat returns the override row for one color (nil when absent) and the cat's
// effective thresholds.
func (a *Admin) Cat(catColor string) (CatView, error) {
	color := timeslot.NormalizePrefix(catColor)
	if color == "" {
		return CatView{}, cerrors.ErrMissingCatColor
	}
	view := CatView{CatColor: color}

	var row models.SystemConfigCat
	err := a.db.First(&row, "cat_color = ?", color).Error
	if err == nil {
		view.Stored = &row
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return view, cerrors.ErrConfigWriteFailed.WithCause(err)
	}

	eff, err := a.resolver.ForCat(color)
	if err != nil {
		return view, cerrors.ErrConfigWriteFailed.WithCause(err)
	}
	view.Effective = eff
	return view, nil
}

// UpdateGlobal merges a patch into the active config row and returns the new
// view. The merge is field-wise; the excretion bounds are validated on the
// merged row, so a patch cannot cross the stored floor over the ceiling.
func (a *Admin) UpdateGlobal(p Patch) (GlobalView, error) {
	err := a.db.Transaction(func(tx *gorm.DB) error {
		row := models.SystemConfig{ID: models.ActiveConfigID}
		if err := tx.First(&row, "id = ?", models.ActiveConfigID).Error; err != nil &&
			!errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if p.AlertNoCat != nil {
			row.AlertNoCat = normalized(p.AlertNoCat)
		}
		if p.AlertNoEat != nil {
			row.AlertNoEat = normalized(p.AlertNoEat)
		}
		if p.AlertNoExcreteMin != nil {
			row.AlertNoExcreteMin = normalized(p.AlertNoExcreteMin)
		}
		if p.AlertNoExcreteMax != nil {
			row.AlertNoExcreteMax = normalized(p.AlertNoExcreteMax)
		}
		if p.MaxSupportedCats != nil {
			row.MaxSupportedCats = normalized(p.MaxSupportedCats)
		}

		if err := checkBounds(row.AlertNoExcreteMin, row.AlertNoExcreteMax); err != nil {
			return err
		}
		return tx.Save(&row).Error
	})
	if err != nil {
		return GlobalView{}, wrapWrite(err)
	}
	return a.Global()
}

// UpdateCat merges a patch into one cat's override row, creating it on first
// write.
func (a *Admin) UpdateCat(catColor string, p Patch) (CatView, error) {
	color := timeslot.NormalizePrefix(catColor)
	if color == "" {
		return CatView{}, cerrors.ErrMissingCatColor
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		row := models.SystemConfigCat{CatColor: color}
		if err := tx.First(&row, "cat_color = ?", color).Error; err != nil &&
			!errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if p.AlertNoCat != nil {
			row.AlertNoCat = normalized(p.AlertNoCat)
		}
		if p.AlertNoEat != nil {
			row.AlertNoEat = normalized(p.AlertNoEat)
		}
		if p.AlertNoExcreteMin != nil {
			row.AlertNoExcreteMin = normalized(p.AlertNoExcreteMin)
		}
		if p.AlertNoExcreteMax != nil {
			row.AlertNoExcreteMax = normalized(p.AlertNoExcreteMax)
		}
		if p.MaxSupportedCats != nil {
			row.MaxSupportedCats = normalized(p.MaxSupportedCats)
		}

		if err := checkBounds(row.AlertNoExcreteMin, row.AlertNoExcreteMax); err != nil {
			return err
		}
		row.UpdatedAt = time.Now()
		return tx.Save(&row).Error
	})
	if err != nil {
		return CatView{}, wrapWrite(err)
	}
	return a.Cat(color)
}

// ResetGlobal restores the active row from the factory default row. A missing
// default row resets every field to unset.
func (a *Admin) ResetGlobal() (GlobalView, error) {
	err := a.db.Transaction(func(tx *gorm.DB) error {
		var def models.SystemConfig
		if err := tx.First(&def, "id = ?", models.DefaultConfigID).Error; err != nil &&
			!errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		def.ID = models.ActiveConfigID
		return tx.Save(&def).Error
	})
	if err != nil {
		return GlobalView{}, wrapWrite(err)
	}
	return a.Global()
}

// ResetCat removes one cat's override row, dropping it back to the global
// chain. Deleting an absent row succeeds.
func (a *Admin) ResetCat(catColor string) (CatView, error) {
	color := timeslot.NormalizePrefix(catColor)
	if color == "" {
		return CatView{}, cerrors.ErrMissingCatColor
	}
	if err := a.db.Delete(&models.SystemConfigCat{}, "cat_color = ?", color).Error; err != nil {
		return CatView{}, cerrors.ErrConfigWriteFailed.WithCause(err)
	}
	return a.Cat(color)
}

// ApplySummary copies one monthly rollup's threshold suggestions into the
// cat's override row. Other override fields survive the write.
func (a *Admin) ApplySummary(monthYm, catColor string) (CatView, error) {
	color := timeslot.NormalizePrefix(catColor)
	if color == "" {
		return CatView{}, cerrors.ErrMissingCatColor
	}

	var summary models.CatConfigMonthly
	err := a.db.First(&summary, "month_ym = ? AND cat_color = ?", monthYm, color).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CatView{}, cerrors.ErrConfigNotFound.WithMessage(
				"no monthly summary for %s / %s", monthYm, color)
		}
		return CatView{}, cerrors.ErrConfigWriteFailed.WithCause(err)
	}

	eat := summary.AlertNoEat
	excrete := summary.AlertNoExcreteMax
	return a.UpdateCat(color, Patch{
		AlertNoEat:        &eat,
		AlertNoExcreteMax: &excrete,
	})
}

func wrapWrite(err error) error {
	var appErr *cerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return cerrors.ErrConfigWriteFailed.WithCause(err)
}
