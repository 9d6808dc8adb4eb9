package stats

import (
	"time"

	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
)

// DayStat is one day's behavior counts for one cat.
type DayStat struct {
	Day            string `json:"day"`
	EatCount       int    `json:"eat_count"`
	ExcreteCount   int    `json:"excrete_count"`
	PresentMinutes int    `json:"present_minutes"`
	HasData        bool   `json:"has_data"`
}

// MonthStat aggregates a month of DayStats.
type MonthStat struct {
	Month        string  `json:"month"`
	EatCount     int     `json:"eat_count"`
	ExcreteCount int     `json:"excrete_count"`
	DaysWithData int     `json:"days_with_data"`
	AvgEat       float64 `json:"avg_eat_per_day"`
	AvgExcrete   float64 `json:"avg_excrete_per_day"`
}

func dayStat(day time.Time, slots []timeslot.Slot) DayStat {
	st := DayStat{Day: day.Format(constants.DateLayout), HasData: len(slots) > 0}
	if !st.HasData {
		return st
	}
	st.EatCount = timeslot.CountTransitions(slots, timeslot.ActivityEat)
	st.ExcreteCount = timeslot.CountTransitions(slots, timeslot.ActivityExcrete)
	present := 0
	for _, s := range slots {
		if s.Present() {
			present++
		}
	}
	st.PresentMinutes = minutes(present)
	return st
}

// DailyStats computes one cat's counts for a single day.
func (s *Service) DailyStats(catName string, day time.Time) (DayStat, error) {
	_, ch, err := s.channelForCat(catName)
	if err != nil {
		return DayStat{}, err
	}
	start, end := dayBounds(day)
	slots, err := s.reader.FetchRange(ch, start, end)
	if err != nil {
		return DayStat{}, cerrors.ErrStatsQueryFailed.WithCause(err)
	}
	return dayStat(start, slots), nil
}

// RangeStats computes one cat's per-day series over [start, end] inclusive
// of both days. Days without samples appear with HasData false so charts
// keep their x-axis contiguous.
func (s *Service) RangeStats(catName string, startDay, endDay time.Time) ([]DayStat, error) {
	if endDay.Before(startDay) {
		return nil, cerrors.ErrInvalidDate.WithMessage("end date precedes start date")
	}
	_, ch, err := s.channelForCat(catName)
	if err != nil {
		return nil, err
	}

	start, _ := dayBounds(startDay)
	_, end := dayBounds(endDay)
	slots, err := s.reader.FetchRange(ch, start, end)
	if err != nil {
		return nil, cerrors.ErrStatsQueryFailed.WithCause(err)
	}

	byDay := make(map[string][]timeslot.Slot)
	for _, slot := range slots {
		key := slot.Time.Format(constants.DateLayout)
		byDay[key] = append(byDay[key], slot)
	}

	var out []DayStat
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		out = append(out, dayStat(d, byDay[d.Format(constants.DateLayout)]))
	}
	return out, nil
}

// MonthlyStats is the per-day series for one calendar month.
func (s *Service) MonthlyStats(catName, monthYm string) ([]DayStat, error) {
	start, err := time.Parse(constants.MonthLayout, monthYm)
	if err != nil {
		return nil, cerrors.ErrInvalidMonth
	}
	end := start.AddDate(0, 1, 0).AddDate(0, 0, -1)
	return s.RangeStats(catName, start, end)
}

// YearlyStats aggregates one cat's year into per-month totals and averages.
// Averages divide by days that actually carried data.
func (s *Service) YearlyStats(catName string, year int) ([]MonthStat, error) {
	out := make([]MonthStat, 0, 12)
	for m := time.January; m <= time.December; m++ {
		monthStart := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
		days, err := s.RangeStats(catName, monthStart, monthStart.AddDate(0, 1, -1))
		if err != nil {
			return nil, err
		}

		ms := MonthStat{Month: monthStart.Format(constants.MonthLayout)}
		for _, d := range days {
			if !d.HasData {
				continue
			}
			ms.DaysWithData++
			ms.EatCount += d.EatCount
			ms.ExcreteCount += d.ExcreteCount
		}
		if ms.DaysWithData > 0 {
			ms.AvgEat = float64(ms.EatCount) / float64(ms.DaysWithData)
			ms.AvgExcrete = float64(ms.ExcreteCount) / float64(ms.DaysWithData)
		}
		out = append(out, ms)
	}
	return out, nil
}
