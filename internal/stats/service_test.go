package stats

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
	require.NoError(t, db.AutoMigrate(&models.Cat{}))
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
	svc := NewService(db, inspector, reader,
		rooms.FromCameras(map[string]string{"C1": "hall", "C2": "kitchen"}))
	return db, svc
}

func insert(t *testing.T, db *gorm.DB, ts time.Time, status, cam, ac string) {
	t.Helper()
	require.NoError(t, db.Exec(
		"INSERT INTO timeslot (date_slot, `black`, `black_cam`, `black_ac`) VALUES (?, ?, ?, ?)",
		ts, status, cam, ac,
	).Error)
}

func TestDailyStats(t *testing.T) {
	db, svc := newService(t)
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	// Two eat episodes separated by idle, one excrete, 5 present samples.
	insert(t, db, day.Add(8*time.Hour), "F", "C2", "eat")
	insert(t, db, day.Add(8*time.Hour+10*time.Second), "F", "C2", "NO")
	insert(t, db, day.Add(8*time.Hour+20*time.Second), "F", "C2", "eat")
	insert(t, db, day.Add(12*time.Hour), "F", "C1", "excrete")
	insert(t, db, day.Add(13*time.Hour), "NF", "", "")
	insert(t, db, day.Add(14*time.Hour), "F", "C1", "NO")

	st, err := svc.DailyStats("Shadow", day)
	require.NoError(t, err)
	assert.True(t, st.HasData)
	assert.Equal(t, 2, st.EatCount)
	assert.Equal(t, 1, st.ExcreteCount)
	assert.Equal(t, 0, st.PresentMinutes, "5 samples is under a minute")
}

func TestDailyStats_UnknownCat(t *testing.T) {
	_, svc := newService(t)
	_, err := svc.DailyStats("Ghost", time.Now())
	assert.True(t, cerrors.IsCode(err, cerrors.ErrCatNotFound.Code))
}

func TestRangeStats_KeepsEmptyDays(t *testing.T) {
	db, svc := newService(t)
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	insert(t, db, start.Add(9*time.Hour), "F", "C2", "eat")
	insert(t, db, start.AddDate(0, 0, 2).Add(9*time.Hour), "F", "C2", "eat")

	days, err := svc.RangeStats("Shadow", start, start.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.True(t, days[0].HasData)
	assert.False(t, days[1].HasData, "gap day stays in the series")
	assert.True(t, days[2].HasData)

	_, err = svc.RangeStats("Shadow", start, start.AddDate(0, 0, -1))
	assert.True(t, cerrors.IsCode(err, cerrors.ErrInvalidDate.Code))
}

func TestCatTimeline_CollapsesSegments(t *testing.T) {
	db, svc := newService(t)
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	base := day.Add(9 * time.Hour)
	insert(t, db, base, "F", "C2", "eat")
	insert(t, db, base.Add(10*time.Second), "F", "C2", "eat")
	insert(t, db, base.Add(20*time.Second), "F", "C2", "NO")
	insert(t, db, base.Add(30*time.Second), "NF", "", "")

	tl, err := svc.CatTimeline("Shadow", day)
	require.NoError(t, err)
	assert.Equal(t, "Shadow", tl.Cat)
	assert.Equal(t, "2025-07-01", tl.Day)
	require.Len(t, tl.Segments, 3)

	assert.Equal(t, SegmentEating, tl.Segments[0].State)
	assert.Equal(t, "kitchen", tl.Segments[0].Room)
	assert.True(t, tl.Segments[0].End.Equal(base.Add(10*time.Second)))

	assert.Equal(t, SegmentIdle, tl.Segments[1].State)
	assert.Equal(t, SegmentAbsent, tl.Segments[2].State)
}

func TestTimelineTable(t *testing.T) {
	db, svc := newService(t)
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	// Hour 9: two kitchen eat visits split by an idle sample.
	base := day.Add(9 * time.Hour)
	insert(t, db, base, "F", "C2", "eat")
	insert(t, db, base.Add(10*time.Second), "F", "C2", "NO")
	insert(t, db, base.Add(20*time.Second), "F", "C2", "eat")
	// Hour 10: one unmapped-camera excrete.
	insert(t, db, day.Add(10*time.Hour), "F", "C9", "excrete")

	table, err := svc.TimelineTable(day)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	row := table.Rows[0]
	assert.Equal(t, "Shadow", row.Cat)
	require.Len(t, row.Hours, 24)

	require.Len(t, row.Hours[9], 1)
	assert.Equal(t, "eat (kitchen): 2x, 0m", row.Hours[9][0].Label)
	assert.Equal(t, 2, row.Hours[9][0].Count)

	require.Len(t, row.Hours[10], 1)
	assert.Equal(t, "-", row.Hours[10][0].Room)
	assert.Empty(t, row.Hours[8])
}

func TestRoomTimeline(t *testing.T) {
	db, svc := newService(t)
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	base := day.Add(9 * time.Hour)
	insert(t, db, base, "F", "C2", "NO")
	insert(t, db, base.Add(10*time.Second), "F", "C2", "eat")
	insert(t, db, base.Add(20*time.Second), "F", "C1", "NO")

	byRoom, err := svc.RoomTimeline(day)
	require.NoError(t, err)

	require.Len(t, byRoom["kitchen"], 1)
	stay := byRoom["kitchen"][0]
	assert.Equal(t, "Shadow", stay.Cat)
	assert.True(t, stay.Start.Equal(base))
	assert.True(t, stay.End.Equal(base.Add(10*time.Second)))

	require.Len(t, byRoom["hall"], 1)
}

func TestActivitiesFeed(t *testing.T) {
	db, svc := newService(t)
	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)

	insert(t, db, base, "F", "C2", "eat")
	insert(t, db, base.Add(10*time.Second), "F", "C2", "eat")
	insert(t, db, base.Add(20*time.Second), "F", "C2", "NO")
	insert(t, db, base.Add(30*time.Second), "F", "C1", "excrete")

	feed, err := svc.Activities("Shadow", 10, nil)
	require.NoError(t, err)
	require.Len(t, feed.Activities, 2)
	assert.Nil(t, feed.NextCursor, "short history has no further pages")

	// Newest first.
	assert.Equal(t, "excrete", feed.Activities[0].Activity)
	assert.Equal(t, "hall", feed.Activities[0].Room)
	assert.Equal(t, "eat", feed.Activities[1].Activity)
	assert.True(t, feed.Activities[1].Start.Equal(base))
	assert.True(t, feed.Activities[1].End.Equal(base.Add(10*time.Second)))
}

func TestYears(t *testing.T) {
	db, svc := newService(t)
	insert(t, db, time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), "F", "C2", "NO")
	insert(t, db, time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC), "F", "C2", "NO")

	years, err := svc.Years()
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2025}, years)
}
