package stats

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
	"github.com/projectpsu986-droid/pet-monitoring/internal/rooms"
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
)

// Service answers the read-only analytics queries: activity feeds, timelines,
// the hourly grid and the aggregate series. It owns no state beyond its
// collaborators and never writes.
type Service struct {
	db        *gorm.DB
	inspector *timeslot.Inspector
	reader    *timeslot.Reader
	rooms     rooms.Map
}

func NewService(db *gorm.DB, inspector *timeslot.Inspector, reader *timeslot.Reader, roomMap rooms.Map) *Service {
	return &Service{db: db, inspector: inspector, reader: reader, rooms: roomMap}
}

// Years lists every calendar year carrying samples, ascending.
func (s *Service) Years() ([]int, error) {
	years, err := s.reader.Years()
	if err != nil {
		return nil, cerrors.ErrStatsQueryFailed.WithCause(err)
	}
	return years, nil
}

// channelForCat resolves a cat by name into its timeslot channel.
func (s *Service) channelForCat(name string) (models.Cat, timeslot.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Cat{}, timeslot.Channel{}, cerrors.ErrMissingCatName
	}

	var cat models.Cat
	if err := s.db.First(&cat, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return models.Cat{}, timeslot.Channel{}, cerrors.ErrCatNotFound
		}
		return models.Cat{}, timeslot.Channel{}, cerrors.ErrStatsQueryFailed.WithCause(err)
	}

	key := cat.Color
	if key == "" {
		key = cat.Name
	}
	ch, ok, err := s.inspector.ChannelFor(key)
	if err != nil {
		return cat, timeslot.Channel{}, cerrors.ErrStatsQueryFailed.WithCause(err)
	}
	if !ok {
		return cat, timeslot.Channel{}, cerrors.ErrChannelNotMapped
	}
	return cat, ch, nil
}

// minutes converts a sample count to whole minutes of slot coverage.
func minutes(samples int) int {
	return samples * constants.SlotSeconds / 60
}

// dayBounds returns the half-open interval covering one calendar day.
func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}
