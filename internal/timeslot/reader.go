package timeslot

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Slot is one 10-second sample projected onto a single cat's channel.
// Status/Cam/Activity are nil when the upstream pipeline wrote no value for
// that interval.
type Slot struct {
	Time     time.Time `gorm:"column:date_slot"`
	Status   *string   `gorm:"column:status"`
	Cam      *string   `gorm:"column:cam"`
	Activity *string   `gorm:"column:activity"`
}

// Present reports whether the cat was found ('F') in this slot.
func (s Slot) Present() bool {
	return s.Status != nil && strings.EqualFold(strings.TrimSpace(*s.Status), StatusFound)
}

// ActivityLower returns the normalized activity label, "" when absent.
func (s Slot) ActivityLower() string {
	if s.Activity == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*s.Activity))
}

// CamCode returns the trimmed camera code, "" when absent.
func (s Slot) CamCode() string {
	if s.Cam == nil {
		return ""
	}
	return strings.TrimSpace(*s.Cam)
}

const (
	StatusFound    = "F"
	StatusNotFound = "NF"
)

// Reader fetches raw channel rows from the timeslot table. All range queries
// are half-open [start, end). A channel whose columns vanished between
// introspection and read yields an empty result, never an error: schema
// drift excludes a cat, it does not break the batch.
type Reader struct {
	db        *gorm.DB
	inspector *Inspector
}

func NewReader(db *gorm.DB, inspector *Inspector) *Reader {
	return &Reader{db: db, inspector: inspector}
}

func (r *Reader) selectClause(ch Channel) string {
	return fmt.Sprintf(
		"SELECT date_slot, `%s` AS status, `%s` AS cam, `%s` AS activity FROM %s",
		ch.StatusColumn, ch.CamColumn, ch.ActivityColumn, TableName,
	)
}

func (r *Reader) channelUsable(ch Channel) (bool, error) {
	cols, err := r.inspector.Columns()
	if err != nil {
		return false, err
	}
	if _, ok := cols[DateSlotColumn]; !ok {
		return false, nil
	}
	return ch.ExistsIn(cols), nil
}

// FetchRange returns the channel's slots in [start, end) ascending.
func (r *Reader) FetchRange(ch Channel, start, end time.Time) ([]Slot, error) {
	ok, err := r.channelUsable(ch)
	if err != nil || !ok {
		return nil, err
	}

	var slots []Slot
	sql := r.selectClause(ch) + " WHERE date_slot >= ? AND date_slot < ? ORDER BY date_slot ASC"
	if err := r.db.Raw(sql, start, end).Scan(&slots).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch timeslot range")
	}
	return slots, nil
}

// FetchRecent returns up to limit slots descending, optionally bounded to
// [start, end) and/or strictly before a cursor. Used by the timeline views.
func (r *Reader) FetchRecent(ch Channel, start, end, before *time.Time, limit int) ([]Slot, error) {
	ok, err := r.channelUsable(ch)
	if err != nil || !ok {
		return nil, err
	}

	var (
		conds []string
		args  []any
	)
	if start != nil {
		conds = append(conds, "date_slot >= ?")
		args = append(args, *start)
	}
	if end != nil {
		conds = append(conds, "date_slot < ?")
		args = append(args, *end)
	}
	if before != nil {
		conds = append(conds, "date_slot < ?")
		args = append(args, *before)
	}

	sql := r.selectClause(ch)
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}
	sql += " ORDER BY date_slot DESC LIMIT ?"
	args = append(args, limit)

	var slots []Slot
	if err := r.db.Raw(sql, args...).Scan(&slots).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch recent timeslots")
	}
	return slots, nil
}

// Latest returns the channel's most recent slot carrying any status, or nil.
func (r *Reader) Latest(ch Channel) (*Slot, error) {
	ok, err := r.channelUsable(ch)
	if err != nil || !ok {
		return nil, err
	}

	var slots []Slot
	sql := r.selectClause(ch) + fmt.Sprintf(" WHERE `%s` IS NOT NULL ORDER BY date_slot DESC LIMIT 1", ch.StatusColumn)
	if err := r.db.Raw(sql).Scan(&slots).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch latest timeslot")
	}
	if len(slots) == 0 {
		return nil, nil
	}
	return &slots[0], nil
}

// LastFoundTime returns the most recent instant the cat was observed present,
// or nil when it was never found.
func (r *Reader) LastFoundTime(ch Channel) (*time.Time, error) {
	ok, err := r.channelUsable(ch)
	if err != nil || !ok {
		return nil, err
	}

	var row struct {
		LastFound *time.Time `gorm:"column:last_found"`
	}
	sql := fmt.Sprintf(
		"SELECT MAX(date_slot) AS last_found FROM %s WHERE `%s` = ?",
		TableName, ch.StatusColumn,
	)
	if err := r.db.Raw(sql, StatusFound).Scan(&row).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch last found time")
	}
	return row.LastFound, nil
}

// LatestTime returns the greatest date_slot across the whole table, or nil
// when the table is empty.
func (r *Reader) LatestTime() (*time.Time, error) {
	var row struct {
		T *time.Time `gorm:"column:t"`
	}
	sql := fmt.Sprintf("SELECT MAX(date_slot) AS t FROM %s", TableName)
	if err := r.db.Raw(sql).Scan(&row).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch latest timeslot time")
	}
	return row.T, nil
}

// LatestTimeInRange returns the greatest date_slot within [start, end).
func (r *Reader) LatestTimeInRange(start, end time.Time) (*time.Time, error) {
	var row struct {
		T *time.Time `gorm:"column:t"`
	}
	sql := fmt.Sprintf("SELECT MAX(date_slot) AS t FROM %s WHERE date_slot >= ? AND date_slot < ?", TableName)
	if err := r.db.Raw(sql, start, end).Scan(&row).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch latest timeslot time in range")
	}
	return row.T, nil
}

// LatestDate returns the calendar day of the newest row, or nil when the
// table is empty.
func (r *Reader) LatestDate() (*time.Time, error) {
	t, err := r.LatestTime()
	if err != nil || t == nil {
		return nil, err
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return &d, nil
}

// DistinctDayCount counts calendar days carrying at least one row in
// [start, end). The monthly rollup completeness gate builds on this.
func (r *Reader) DistinctDayCount(start, end time.Time) (int, error) {
	var row struct {
		N int `gorm:"column:n"`
	}
	sql := fmt.Sprintf(
		"SELECT COUNT(DISTINCT DATE(date_slot)) AS n FROM %s WHERE date_slot >= ? AND date_slot < ?",
		TableName,
	)
	if err := r.db.Raw(sql, start, end).Scan(&row).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count distinct timeslot days")
	}
	return row.N, nil
}

// Years returns every calendar year carrying data, ascending.
func (r *Reader) Years() ([]int, error) {
	var rows []struct {
		Y *int `gorm:"column:y"`
	}
	sql := fmt.Sprintf(
		"SELECT DISTINCT CAST(STRFTIME('%%Y', date_slot) AS INTEGER) AS y FROM %s WHERE date_slot IS NOT NULL ORDER BY y ASC",
		TableName,
	)
	if r.db.Dialector.Name() == "mysql" {
		sql = fmt.Sprintf(
			"SELECT DISTINCT YEAR(date_slot) AS y FROM %s WHERE date_slot IS NOT NULL ORDER BY y ASC",
			TableName,
		)
	}
	if err := r.db.Raw(sql).Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to fetch timeslot years")
	}
	years := make([]int, 0, len(rows))
	for _, row := range rows {
		if row.Y != nil {
			years = append(years, *row.Y)
		}
	}
	return years, nil
}
