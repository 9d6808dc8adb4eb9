package alerts

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/database"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/local_cache"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
	"github.com/projectpsu986-droid/pet-monitoring/internal/sysconfig"
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
)

type fixture struct {
	db  *gorm.DB
	svc *Service
}

func newFixture(t *testing.T) *fixture {
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
	))
	require.NoError(t, db.Exec(
		"CREATE TABLE timeslot (date_slot DATETIME, `black` TEXT, `black_cam` TEXT, `black_ac` TEXT)",
	).Error)
	require.NoError(t, db.Create(&models.Cat{
		Name: "Shadow", Color: "Black", DisplayStatus: true,
	}).Error)

	inspector := timeslot.NewInspector(db,
		timeslot.WithColumnCacheKey("test:"+t.Name()),
		timeslot.WithColumnCacheTTL(time.Minute),
	)
	reader := timeslot.NewReader(db, inspector)
	resolver := sysconfig.NewResolver(db)
	svc := NewService(db,
		NewEvaluator(inspector, reader, resolver),
		NewIngestor(db),
		reader,
	)
	return &fixture{db: db, svc: svc}
}

func (f *fixture) insertSlot(t *testing.T, ts time.Time, status, cam, ac string) {
	t.Helper()
	require.NoError(t, f.db.Exec(
		"INSERT INTO timeslot (date_slot, `black`, `black_cam`, `black_ac`) VALUES (?, ?, ?, ?)",
		ts, status, cam, ac,
	).Error)
}

// fillDay writes one present sample every hour, carrying the given number of
// eat and excrete episodes. Episodes sit on alternating hours so an idle
// sample separates each one; supports up to six of each.
func (f *fixture) fillDay(t *testing.T, day time.Time, eats, excretes int) {
	t.Helper()
	acts := make([]string, 24)
	for i := range acts {
		acts[i] = "NO"
	}
	for i := 0; i < eats; i++ {
		acts[1+2*i] = "eat"
	}
	for i := 0; i < excretes; i++ {
		acts[13+2*i] = "excrete"
	}
	for h, ac := range acts {
		f.insertSlot(t, day.Add(time.Duration(h)*time.Hour), "F", "C2", ac)
	}
}

func TestIngestDaily_ThresholdsAndMessages(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	// Defaults: min eat 2, excrete window [3, 5]. One eat and one excrete
	// episode breach both minimums.
	f.fillDay(t, day, 1, 1)

	rows, err := f.svc.IngestDaily(day)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byType := map[string]models.AlertLog{}
	for _, r := range rows {
		byType[r.AlertType] = r
	}
	require.Contains(t, byType, TypeNoEating)
	require.Contains(t, byType, TypeLowExcrete)
	assert.Equal(t, "Shadow ate 1 times, below the minimum of 2", byType[TypeNoEating].Message)
	assert.Equal(t, "black", byType[TypeNoEating].Color)
	assert.Equal(t, models.AlertUnread, byType[TypeNoEating].IsRead)
	// Day-scoped alerts are stamped at the end of their target day.
	assert.Equal(t, 23, byType[TypeNoEating].CreatedAt.Hour())
	assert.Equal(t, 59, byType[TypeNoEating].CreatedAt.Minute())
}

func TestIngestDaily_Idempotent(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	f.fillDay(t, day, 0, 0)

	first, err := f.svc.IngestDaily(day)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := f.svc.IngestDaily(day)
	require.NoError(t, err)
	assert.Empty(t, second, "re-evaluating the same day must not duplicate")

	var n int64
	require.NoError(t, f.db.Model(&models.AlertLog{}).Count(&n).Error)
	assert.Equal(t, int64(len(first)), n)
}

func TestIngestDaily_ArchivedAlertRearms(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	f.fillDay(t, day, 2, 1) // eating fine, excretion below minimum

	first, err := f.svc.IngestDaily(day)
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = f.svc.Archive([]int64{first[0].ID})
	require.NoError(t, err)

	second, err := f.svc.IngestDaily(day)
	require.NoError(t, err)
	assert.Len(t, second, 1, "archived rows do not block dedup")
}

func TestIngestDaily_HighExcrete(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	f.fillDay(t, day, 2, 6) // above max of 5

	rows, err := f.svc.IngestDaily(day)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, TypeHighExcrete, rows[0].AlertType)
	assert.Equal(t, "Shadow excreted 6 times, above the maximum of 5", rows[0].Message)
}

func TestIngestDaily_EmptyDayCountsZero(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	// No samples at all: both behavior counts are zero and breach their
	// minimums. Absence stays silent because no found sample exists.
	rows, err := f.svc.IngestDaily(day)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byType := map[string]models.AlertLog{}
	for _, r := range rows {
		byType[r.AlertType] = r
	}
	require.Contains(t, byType, TypeNoEating)
	require.Contains(t, byType, TypeLowExcrete)
	assert.Equal(t, "Shadow ate 0 times, below the minimum of 2", byType[TypeNoEating].Message)
}

func TestIngestDaily_DayBoundedAbsence(t *testing.T) {
	f := newFixture(t)
	// Last found the day before; the evaluated day has no samples, so the
	// absence reference falls back to the end of the day.
	f.insertSlot(t, time.Date(2025, 6, 30, 10, 0, 0, 0, time.UTC), "F", "C2", "NO")
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	rows, err := f.svc.IngestDaily(day)
	require.NoError(t, err)
	require.Len(t, rows, 3, "absence plus both zero-count behavior alerts")

	byType := map[string]models.AlertLog{}
	for _, r := range rows {
		byType[r.AlertType] = r
	}
	require.Contains(t, byType, TypeNoCat)
	absence := byType[TypeNoCat]
	assert.Equal(t, day.Format("2006-01-02"), absence.AlertDate.Format("2006-01-02"))
	assert.Equal(t, 23, absence.CreatedAt.Hour())

	// Behavior-only evaluation never raises absence.
	behavior, err := f.svc.IngestDailyBehavior(day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, behavior, 2)
	for _, r := range behavior {
		assert.NotEqual(t, TypeNoCat, r.AlertType)
	}
}

func TestRealtimeAbsence_Boundary(t *testing.T) {
	f := newFixture(t)
	lastSeen := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	f.insertSlot(t, lastSeen, "F", "C2", "NO")

	// One second under the 12h default threshold: silent.
	rows, err := f.svc.IngestRealtimeAbsence(lastSeen.Add(12*time.Hour - time.Second))
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Exactly at the threshold: fires.
	now := lastSeen.Add(12 * time.Hour)
	rows, err = f.svc.IngestRealtimeAbsence(now)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, TypeNoCat, rows[0].AlertType)
	assert.Equal(t, "Shadow has not been detected for 12 hours (threshold 12)", rows[0].Message)
	assert.Equal(t, now, rows[0].CreatedAt.UTC())
}

func TestRealtimeAbsence_NeverSeenStaysSilent(t *testing.T) {
	f := newFixture(t)
	// Only not-found samples: no last_found reference, no alert.
	f.insertSlot(t, time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC), "NF", "", "")

	rows, err := f.svc.IngestRealtimeAbsence(time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRealtimeAbsence_PerCatThreshold(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Create(&models.SystemConfigCat{
		CatColor:   "black",
		AlertNoCat: intp(6),
	}).Error)

	lastSeen := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	f.insertSlot(t, lastSeen, "F", "C2", "NO")

	rows, err := f.svc.IngestRealtimeAbsence(lastSeen.Add(7 * time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1, "per-cat override lowers the threshold")
}

func TestRealtimeAbsence_CatLimitDoesNotGateEvaluation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Exec("ALTER TABLE timeslot ADD COLUMN `white` TEXT").Error)
	require.NoError(t, f.db.Exec("ALTER TABLE timeslot ADD COLUMN `white_cam` TEXT").Error)
	require.NoError(t, f.db.Exec("ALTER TABLE timeslot ADD COLUMN `white_ac` TEXT").Error)
	require.NoError(t, f.db.Create(&models.Cat{
		Name: "Misty", Color: "White", DisplayStatus: true,
	}).Error)
	require.NoError(t, f.db.Create(&models.SystemConfig{
		ID: models.ActiveConfigID, MaxSupportedCats: intp(1),
	}).Error)

	lastSeen := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	f.insertSlot(t, lastSeen, "F", "C2", "NO")
	require.NoError(t, f.db.Exec(
		"INSERT INTO timeslot (date_slot, `white`, `white_cam`, `white_ac`) VALUES (?, ?, ?, ?)",
		lastSeen, "F", "C1", "NO",
	).Error)

	// The cat limit gates registration, not evaluation: every registered
	// cat still alerts.
	rows, err := f.svc.IngestRealtimeAbsence(lastSeen.Add(13 * time.Hour))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestListAndMarkRead(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	f.fillDay(t, day, 0, 0)

	_, err := f.svc.IngestDaily(day)
	require.NoError(t, err)

	res, err := f.svc.List(ListParams{Mode: ModeDaily, Cat: "Shadow"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, int64(2), res.Unread)
	require.Len(t, res.Alerts, 2)

	n, err := f.svc.MarkRead([]int64{res.Alerts[0].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	res, err = f.svc.List(ListParams{Mode: ModeDaily})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, int64(1), res.Unread)

	n, err = f.svc.MarkAllRead("")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	unread, err := f.svc.UnreadCount()
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func intp(v int) *int { return &v }
