package alerts

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
	"github.com/projectpsu986-droid/pet-monitoring/internal/timeslot"
)

// Ingestion modes accepted by List. Daily re-evaluates behavior (eat and
// excretion) for the newest data day, realtime re-evaluates absence as of
// now, mixed runs the full daily evaluator including the day-bounded absence
// check.
const (
	ModeDaily    = "daily"
	ModeRealtime = "realtime"
	ModeMixed    = "mixed"
)

// RollupTrigger is satisfied by the monthly rollup engine. Listing alerts
// opportunistically materializes the previous month's summary.
type RollupTrigger interface {
	EnsurePrevious(now time.Time) error
}

// Service is the read/write surface over alerts_log, and the place where
// reads trigger recomputation: a List call refreshes ingestion for its mode
// before querying, so the client always sees current alerts without a
// separate scheduler being up.
type Service struct {
	db        *gorm.DB
	evaluator *Evaluator
	ingestor  *Ingestor
	reader    *timeslot.Reader
	rollup    RollupTrigger
	now       func() time.Time
}

type ServiceOption func(*Service)

// WithClock overrides the service clock.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithRollupTrigger wires the monthly rollup refresh into List.
func WithRollupTrigger(rt RollupTrigger) ServiceOption {
	return func(s *Service) { s.rollup = rt }
}

func NewService(db *gorm.DB, evaluator *Evaluator, ingestor *Ingestor, reader *timeslot.Reader, opts ...ServiceOption) *Service {
	s := &Service{
		db:        db,
		evaluator: evaluator,
		ingestor:  ingestor,
		reader:    reader,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListParams filters the alert listing. Nil time fields mean unbounded.
type ListParams struct {
	Mode       string
	Cat        string
	Type       string
	Day        *time.Time
	Start      *time.Time
	End        *time.Time
	UnreadOnly bool
	Limit      int
	Offset     int
}

type ListResult struct {
	Alerts []models.AlertLog `json:"alerts"`
	Total  int64             `json:"total"`
	Unread int64             `json:"unread"`
}

// IngestDaily runs the full daily evaluator (absence plus behavior) for one
// calendar day and persists the deduplicated result.
func (s *Service) IngestDaily(day time.Time) ([]models.AlertLog, error) {
	candidates, err := s.evaluator.DailyCandidates(day)
	if err != nil {
		return nil, cerrors.ErrAlertIngestFailed.WithCause(err)
	}
	rows, err := s.ingestor.Ingest(candidates)
	if err != nil {
		return nil, cerrors.ErrAlertIngestFailed.WithCause(err)
	}
	return rows, nil
}

// IngestDailyBehavior evaluates only the eat/excretion checks for one day.
func (s *Service) IngestDailyBehavior(day time.Time) ([]models.AlertLog, error) {
	candidates, err := s.evaluator.BehaviorCandidates(day)
	if err != nil {
		return nil, cerrors.ErrAlertIngestFailed.WithCause(err)
	}
	rows, err := s.ingestor.Ingest(candidates)
	if err != nil {
		return nil, cerrors.ErrAlertIngestFailed.WithCause(err)
	}
	return rows, nil
}

// latestDay returns the newest calendar day carrying data, nil when the
// timeslot table is empty.
func (s *Service) latestDay() (*time.Time, error) {
	day, err := s.reader.LatestDate()
	if err != nil {
		return nil, cerrors.ErrAlertIngestFailed.WithCause(err)
	}
	return day, nil
}

// IngestLatestDaily runs the full daily evaluator on the newest day carrying
// data. With an empty timeslot table it is a no-op.
func (s *Service) IngestLatestDaily() ([]models.AlertLog, error) {
	day, err := s.latestDay()
	if err != nil || day == nil {
		return nil, err
	}
	return s.IngestDaily(*day)
}

// IngestLatestBehavior is IngestLatestDaily restricted to behavior checks.
func (s *Service) IngestLatestBehavior() ([]models.AlertLog, error) {
	day, err := s.latestDay()
	if err != nil || day == nil {
		return nil, err
	}
	return s.IngestDailyBehavior(*day)
}

// IngestRealtimeAbsence evaluates absence as of now and persists the result.
func (s *Service) IngestRealtimeAbsence(now time.Time) ([]models.AlertLog, error) {
	candidates, err := s.evaluator.RealtimeAbsence(now)
	if err != nil {
		return nil, cerrors.ErrAlertIngestFailed.WithCause(err)
	}
	rows, err := s.ingestor.Ingest(candidates)
	if err != nil {
		return nil, cerrors.ErrAlertIngestFailed.WithCause(err)
	}
	return rows, nil
}

// refresh runs the side computations a listing triggers. Failures here are
// logged and swallowed: a broken rollup or a transient evaluation error must
// not hide already persisted alerts from the client.
func (s *Service) refresh(mode string) {
	now := s.now()

	if s.rollup != nil {
		if err := s.rollup.EnsurePrevious(now); err != nil {
			log.Default().Warn("monthly rollup refresh failed", zap.Error(err))
		}
	}

	switch mode {
	case ModeMixed:
		if _, err := s.IngestLatestDaily(); err != nil {
			log.Default().Warn("daily alert refresh failed", zap.Error(err))
		}
	case ModeDaily:
		if _, err := s.IngestLatestBehavior(); err != nil {
			log.Default().Warn("daily alert refresh failed", zap.Error(err))
		}
	case ModeRealtime:
		if _, err := s.IngestRealtimeAbsence(now); err != nil {
			log.Default().Warn("realtime alert refresh failed", zap.Error(err))
		}
	}
}

// List refreshes ingestion for the requested mode, then returns matching
// non-archived alerts newest first.
func (s *Service) List(p ListParams) (ListResult, error) {
	mode := p.Mode
	if mode == "" {
		mode = ModeRealtime
	}
	s.refresh(mode)

	q := s.db.Model(&models.AlertLog{}).Where("is_read <> ?", models.AlertArchived)
	if p.Cat != "" {
		q = q.Where("cat_name = ?", p.Cat)
	}
	if p.Type != "" {
		q = q.Where("alert_type = ?", p.Type)
	}
	if p.Day != nil {
		q = q.Where("DATE(alert_date) = ?", p.Day.Format(constants.DateLayout))
	}
	if p.Start != nil {
		q = q.Where("DATE(alert_date) >= ?", p.Start.Format(constants.DateLayout))
	}
	if p.End != nil {
		q = q.Where("DATE(alert_date) <= ?", p.End.Format(constants.DateLayout))
	}
	if p.UnreadOnly {
		q = q.Where("is_read = ?", models.AlertUnread)
	}

	var res ListResult
	if err := q.Session(&gorm.Session{}).Count(&res.Total).Error; err != nil {
		return res, cerrors.ErrAlertQueryFailed.WithCause(err)
	}
	if err := q.Session(&gorm.Session{}).
		Where("is_read = ?", models.AlertUnread).
		Count(&res.Unread).Error; err != nil {
		return res, cerrors.ErrAlertQueryFailed.WithCause(err)
	}

	listQ := q.Order("created_at DESC, id DESC")
	if p.Limit > 0 {
		listQ = listQ.Limit(p.Limit).Offset(p.Offset)
	}
	if err := listQ.Find(&res.Alerts).Error; err != nil {
		return res, cerrors.ErrAlertQueryFailed.WithCause(err)
	}
	return res, nil
}

// MarkRead flips the given alerts to read. Unknown ids are ignored; the
// returned count reflects rows actually changed.
func (s *Service) MarkRead(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, cerrors.ErrMissingAlertIDs
	}
	res := s.db.Model(&models.AlertLog{}).
		Where("id IN ? AND is_read = ?", ids, models.AlertUnread).
		Update("is_read", models.AlertRead)
	if res.Error != nil {
		return 0, cerrors.ErrAlertQueryFailed.WithCause(res.Error)
	}
	return res.RowsAffected, nil
}

// MarkAllRead flips every unread alert to read, optionally scoped to one cat.
func (s *Service) MarkAllRead(cat string) (int64, error) {
	q := s.db.Model(&models.AlertLog{}).Where("is_read = ?", models.AlertUnread)
	if cat != "" {
		q = q.Where("cat_name = ?", cat)
	}
	res := q.Update("is_read", models.AlertRead)
	if res.Error != nil {
		return 0, cerrors.ErrAlertQueryFailed.WithCause(res.Error)
	}
	return res.RowsAffected, nil
}

// Archive hides alerts from listings and, deliberately, from dedup matching:
// an archived alert can fire again the same day.
func (s *Service) Archive(ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, cerrors.ErrMissingAlertIDs
	}
	res := s.db.Model(&models.AlertLog{}).
		Where("id IN ?", ids).
		Update("is_read", models.AlertArchived)
	if res.Error != nil {
		return 0, cerrors.ErrAlertQueryFailed.WithCause(res.Error)
	}
	return res.RowsAffected, nil
}

// UnreadCount returns the live unread total, used by the worker watermark.
func (s *Service) UnreadCount() (int64, error) {
	var n int64
	err := s.db.Model(&models.AlertLog{}).
		Where("is_read = ?", models.AlertUnread).
		Count(&n).Error
	if err != nil {
		return 0, cerrors.ErrAlertQueryFailed.WithCause(err)
	}
	return n, nil
}
