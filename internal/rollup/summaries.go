package rollup

import (
	"time"

	"gorm.io/gorm"

	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
)

// stableWindow is how many consecutive monthly suggestions must agree before
// a pair is flagged as stable enough to apply.
const stableWindow = 3

// Summary is one monthly row plus its stability flag.
type Summary struct {
	models.CatConfigMonthly
	Stable bool `json:"stable"`
}

// Summaries reads materialized monthly rows.
type Summaries struct {
	db *gorm.DB
}

func NewSummaries(db *gorm.DB) *Summaries {
	return &Summaries{db: db}
}

// Months lists every month carrying at least one summary, newest first.
func (s *Summaries) Months() ([]string, error) {
	var months []string
	err := s.db.Model(&models.CatConfigMonthly{}).
		Distinct("month_ym").
		Order("month_ym DESC").
		Pluck("month_ym", &months).Error
	if err != nil {
		return nil, cerrors.ErrStatsQueryFailed.WithCause(err)
	}
	return months, nil
}

// ForMonth returns one month's summaries with stability computed against the
// two months before it: a pair is stable when the rounded suggestions have
// not moved across the whole window.
func (s *Summaries) ForMonth(monthYm string) ([]Summary, error) {
	start, _, err := MonthBounds(monthYm)
	if err != nil {
		return nil, err
	}

	var rows []models.CatConfigMonthly
	if err := s.db.
		Where("month_ym = ?", monthYm).
		Order("cat_name ASC").
		Find(&rows).Error; err != nil {
		return nil, cerrors.ErrStatsQueryFailed.WithCause(err)
	}

	window := windowMonths(start)
	out := make([]Summary, 0, len(rows))
	for _, row := range rows {
		stable, err := s.stable(row, window)
		if err != nil {
			return nil, err
		}
		out = append(out, Summary{CatConfigMonthly: row, Stable: stable})
	}
	return out, nil
}

// windowMonths returns the month keys of the stability window ending at
// start's month, oldest excluded month first.
func windowMonths(start time.Time) []string {
	months := make([]string, 0, stableWindow-1)
	for i := 1; i < stableWindow; i++ {
		months = append(months, start.AddDate(0, -i, 0).Format(constants.MonthLayout))
	}
	return months
}

func (s *Summaries) stable(row models.CatConfigMonthly, priorMonths []string) (bool, error) {
	var priors []models.CatConfigMonthly
	err := s.db.
		Where("cat_color = ? AND month_ym IN ?", row.CatColor, priorMonths).
		Find(&priors).Error
	if err != nil {
		return false, cerrors.ErrStatsQueryFailed.WithCause(err)
	}
	if len(priors) < len(priorMonths) {
		return false, nil
	}
	for _, p := range priors {
		if p.AlertNoEat != row.AlertNoEat || p.AlertNoExcreteMax != row.AlertNoExcreteMax {
			return false, nil
		}
	}
	return true, nil
}
