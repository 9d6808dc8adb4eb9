package rollup

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
)

// MonthBounds parses a YYYY-MM key into its half-open [start, end) interval.
func MonthBounds(monthYm string) (time.Time, time.Time, error) {
	start, err := time.Parse(constants.MonthLayout, monthYm)
	if err != nil {
		return time.Time{}, time.Time{}, cerrors.ErrInvalidMonth
	}
	return start, start.AddDate(0, 1, 0), nil
}

// PreviousMonth returns the YYYY-MM key of the month before now.
func PreviousMonth(now time.Time) string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -1, 0).Format(constants.MonthLayout)
}

// Engine computes per-cat monthly behavior summaries from the raw samples.
// A summary only materializes for a closed, fully covered month; partial
// months would bias the averages low and poison the threshold suggestions.
type Engine struct {
	db        *gorm.DB
	inspector *timeslot.Inspector
	reader    *timeslot.Reader
}

func NewEngine(db *gorm.DB, inspector *timeslot.Inspector, reader *timeslot.Reader) *Engine {
	return &Engine{db: db, inspector: inspector, reader: reader}
}

// suggest rounds a daily average to a whole threshold, half to even, floored
// at zero.
func suggest(avg float64) int {
	v := int(math.RoundToEven(avg))
	if v < 0 {
		return 0
	}
	return v
}

// Run computes and upserts the summary rows for one month. The current and
// future months are refused outright; a past month without full day coverage
// is skipped without error, so callers can retry once the data lands.
func (e *Engine) Run(monthYm string, now time.Time) error {
	start, end, err := MonthBounds(monthYm)
	if err != nil {
		return err
	}
	currentStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if !start.Before(currentStart) {
		return cerrors.ErrInvalidMonth.WithMessage("month %s is not closed yet", monthYm)
	}

	daysInMonth := end.Add(-time.Hour).Day()
	covered, err := e.reader.DistinctDayCount(start, end)
	if err != nil {
		return cerrors.ErrRollupFailed.WithCause(err)
	}
	if covered < daysInMonth {
		log.Default().Info("skipping monthly rollup, incomplete coverage",
			zap.String("month", monthYm),
			zap.Int("covered_days", covered),
			zap.Int("days_in_month", daysInMonth))
		return nil
	}

	chans, err := e.inspector.Channels(true)
	if err != nil {
		return cerrors.ErrRollupFailed.WithCause(err)
	}

	for _, cc := range chans {
		if err := e.rollCat(cc, monthYm, start, daysInMonth); err != nil {
			log.Default().Warn("monthly rollup failed for cat",
				zap.String("cat", cc.Cat.Name),
				zap.String("month", monthYm),
				zap.Error(err))
		}
	}
	return nil
}

func (e *Engine) rollCat(cc timeslot.CatChannel, monthYm string, start time.Time, daysInMonth int) error {
	totalEat, totalExcrete := 0, 0
	for d := 0; d < daysInMonth; d++ {
		dayStart := start.AddDate(0, 0, d)
		slots, err := e.reader.FetchRange(cc.Channel, dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			return err
		}
		totalEat += timeslot.CountTransitions(slots, timeslot.ActivityEat)
		totalExcrete += timeslot.CountTransitions(slots, timeslot.ActivityExcrete)
	}

	avgEat := float64(totalEat) / float64(daysInMonth)
	avgExcrete := float64(totalExcrete) / float64(daysInMonth)

	row := models.CatConfigMonthly{
		MonthYm:           monthYm,
		CatColor:          cc.Channel.Prefix,
		CatName:           cc.Cat.Name,
		AlertNoEat:        suggest(avgEat),
		AlertNoExcreteMax: suggest(avgExcrete),
		AvgEatPerDay:      avgEat,
		AvgExcretePerDay:  avgExcrete,
		DaysInMonth:       daysInMonth,
		CreatedAt:         time.Now(),
	}
	err := e.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "month_ym"}, {Name: "cat_color"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cat_name", "alert_no_eat", "alert_no_excrete_max",
			"avg_eat_per_day", "avg_excrete_per_day", "days_in_month",
		}),
	}).Create(&row).Error
	return errors.Wrap(err, "failed to upsert monthly summary")
}

// EnsurePrevious rolls up the month before now unless its summary rows
// already exist. Alert listings call this, so the summary appears shortly
// after a month closes without any scheduler involvement.
func (e *Engine) EnsurePrevious(now time.Time) error {
	monthYm := PreviousMonth(now)
	var n int64
	if err := e.db.Model(&models.CatConfigMonthly{}).
		Where("month_ym = ?", monthYm).
		Count(&n).Error; err != nil {
		return cerrors.ErrRollupFailed.WithCause(err)
	}
	if n > 0 {
		return nil
	}
	return e.Run(monthYm, now)
}
