package sysconfig

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
)

// Hardcoded floor of the threshold chain. These apply when neither the active
// global row nor a per-cat override carries a positive value.
const (
	DefaultAbsenceHours     = 12
	DefaultMinEatPerDay     = 2
	DefaultMinExcretePerDay = 3
	DefaultMaxExcretePerDay = 5
	DefaultMaxSupportedCats = 10
)

// Effective is a fully resolved threshold set. Every field is positive.
type Effective struct {
	AbsenceHours     int `json:"alert_no_cat"`
	MinEatPerDay     int `json:"alert_no_eat"`
	MinExcretePerDay int `json:"alert_no_excrete_min"`
	MaxExcretePerDay int `json:"alert_no_excrete_max"`
	MaxSupportedCats int `json:"max_supported_cats"`
}

// Resolver materializes effective thresholds through the per-cat -> global ->
// hardcoded fallback chain. A nil or non-positive stored value counts as
// unset at every level.
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

func hardcoded() Effective {
	return Effective{
		AbsenceHours:     DefaultAbsenceHours,
		MinEatPerDay:     DefaultMinEatPerDay,
		MinExcretePerDay: DefaultMinExcretePerDay,
		MaxExcretePerDay: DefaultMaxExcretePerDay,
		MaxSupportedCats: DefaultMaxSupportedCats,
	}
}

func overlay(dst *int, src *int) {
	if src != nil && *src > 0 {
		*dst = *src
	}
}

func applyGlobal(eff *Effective, row *models.SystemConfig) {
	if row == nil {
		return
	}
	overlay(&eff.AbsenceHours, row.AlertNoCat)
	overlay(&eff.MinEatPerDay, row.AlertNoEat)
	overlay(&eff.MinExcretePerDay, row.AlertNoExcreteMin)
	overlay(&eff.MaxExcretePerDay, row.AlertNoExcreteMax)
	overlay(&eff.MaxSupportedCats, row.MaxSupportedCats)
}

func applyCat(eff *Effective, row *models.SystemConfigCat) {
	if row == nil {
		return
	}
	overlay(&eff.AbsenceHours, row.AlertNoCat)
	overlay(&eff.MinEatPerDay, row.AlertNoEat)
	overlay(&eff.MinExcretePerDay, row.AlertNoExcreteMin)
	overlay(&eff.MaxExcretePerDay, row.AlertNoExcreteMax)
	overlay(&eff.MaxSupportedCats, row.MaxSupportedCats)
}

// Global resolves the active global thresholds (row 2 over the hardcoded
// floor). A missing row is not an error.
func (r *Resolver) Global() (Effective, error) {
	eff := hardcoded()

	var row models.SystemConfig
	err := r.db.First(&row, "id = ?", models.ActiveConfigID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return eff, nil
		}
		return eff, errors.Wrap(err, "failed to load active system config")
	}
	applyGlobal(&eff, &row)
	return eff, nil
}

// ForCat resolves thresholds for one cat color: per-cat override fields win
// over the global effective values, field by field.
func (r *Resolver) ForCat(catColor string) (Effective, error) {
	eff, err := r.Global()
	if err != nil {
		return eff, err
	}

	color := timeslot.NormalizePrefix(catColor)
	if color == "" {
		return eff, nil
	}

	var row models.SystemConfigCat
	err = r.db.First(&row, "cat_color = ?", color).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return eff, nil
		}
		return eff, errors.Wrap(err, "failed to load per-cat config")
	}
	applyCat(&eff, &row)
	return eff, nil
}
