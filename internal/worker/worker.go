package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/projectpsu986-droid/pet-monitoring/internal/alerts"
	"github.com/projectpsu986-droid/pet-monitoring/internal/common"
	"github.com/projectpsu986-droid/pet-monitoring/internal/config"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/mqtt_client"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/notifier"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
	"github.com/projectpsu986-droid/pet-monitoring/internal/rollup"
	"github.com/projectpsu986-droid/pet-monitoring/internal/signaling"
	"github.com/projectpsu986-droid/pet-monitoring/internal/utilities"
)

// WatermarkKey is the notification_state row tracking the highest alert id
// already pushed. It survives restarts so a reboot never replays old pushes.
const WatermarkKey = "last_alert_push_id"

// Worker periodically re-evaluates alerts and pushes anything newly
// persisted to the fan-out targets. Every failure inside a tick is logged
// and swallowed; the loop itself only stops with the context.
type Worker struct {
	db        *gorm.DB
	alertSvc  *alerts.Service
	rollupEng *rollup.Engine
	hub       *signaling.AlertHub

	interval   time.Duration
	dailyEvery time.Duration

	notifyEnabled bool
	notifyTitle   string
	mqttEnabled   bool
	mqttTopic     string

	notify      func(title, body string) error
	mqttPublish func(topic string, payload any) error
	now         func() time.Time
}

type Option func(*Worker)

// WithClock overrides the worker clock.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

// WithNotifyFunc overrides the push delivery. Used by tests.
func WithNotifyFunc(fn func(title, body string) error) Option {
	return func(w *Worker) { w.notify = fn }
}

// WithMQTTPublishFunc overrides the broker delivery. Used by tests.
func WithMQTTPublishFunc(fn func(topic string, payload any) error) Option {
	return func(w *Worker) { w.mqttPublish = fn }
}

func New(db *gorm.DB, alertSvc *alerts.Service, rollupEng *rollup.Engine, hub *signaling.AlertHub, opts ...Option) *Worker {
	interval := time.Duration(viper.GetInt(config.WorkerIntervalSeconds)) * time.Second
	if interval <= 0 {
		interval = time.Duration(constants.DefaultWorkerIntervalSeconds) * time.Second
	}
	if interval < time.Duration(constants.MinWorkerIntervalSeconds)*time.Second {
		interval = time.Duration(constants.MinWorkerIntervalSeconds) * time.Second
	}
	dailyEvery := time.Duration(viper.GetInt(config.WorkerDailyCheckSeconds)) * time.Second
	if dailyEvery <= 0 {
		dailyEvery = time.Duration(constants.DefaultWorkerDailyCheckSeconds) * time.Second
	}

	w := &Worker{
		db:            db,
		alertSvc:      alertSvc,
		rollupEng:     rollupEng,
		hub:           hub,
		interval:      interval,
		dailyEvery:    dailyEvery,
		notifyEnabled: viper.GetBool(config.NotifyEnabled),
		notifyTitle:   viper.GetString(config.NotifyTitle),
		mqttEnabled:   viper.GetBool(config.AppEnableMQTT),
		mqttTopic:     viper.GetString(config.MqttAlertTopic),
		notify:        notifier.Send,
		mqttPublish:   mqtt_client.PublishJSON,
		now:           time.Now,
	}
	if w.mqttTopic == "" {
		w.mqttTopic = constants.MqttDefaultAlertTopic
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drives the evaluation loop until the context ends.
func (w *Worker) Run(ctx context.Context) error {
	log.Default().Info("Starting alert worker",
		zap.Duration("interval", w.interval),
		zap.Duration("daily_check_every", w.dailyEvery))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var lastDaily time.Time
	w.tick(&lastDaily)
	for {
		select {
		case <-ticker.C:
			w.tick(&lastDaily)
		case <-ctx.Done():
			log.Default().Info("Shutting down alert worker")
			return nil
		}
	}
}

func (w *Worker) tick(lastDaily *time.Time) {
	now := w.now()

	if _, err := w.alertSvc.IngestRealtimeAbsence(now); err != nil {
		log.Default().Warn("worker realtime evaluation failed", zap.Error(err))
	}

	if now.Sub(*lastDaily) >= w.dailyEvery {
		*lastDaily = now
		if _, err := w.alertSvc.IngestLatestBehavior(); err != nil {
			log.Default().Warn("worker daily evaluation failed", zap.Error(err))
		}
		if w.rollupEng != nil {
			if err := w.rollupEng.EnsurePrevious(now); err != nil {
				log.Default().Warn("worker rollup refresh failed", zap.Error(err))
			}
		}
	}

	if err := w.pushNew(); err != nil {
		log.Default().Warn("worker alert push failed", zap.Error(err))
	}
}

// pushNew fans out every alert above the watermark, whatever path inserted
// it, then advances the watermark. Delivery failures on a target do not hold
// the watermark back: the listing stays the source of truth, pushes are
// best effort.
func (w *Worker) pushNew() error {
	watermark, err := w.loadWatermark()
	if err != nil {
		return err
	}

	var rows []models.AlertLog
	if err := w.db.
		Where("id > ?", watermark).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	for _, row := range rows {
		event := EventFromAlert(row)
		if w.hub != nil {
			w.hub.Publish(event)
		}
		if w.notifyEnabled {
			title, body := w.compose(event)
			var sendErr error
			utilities.RetryWithBackoff(func() error {
				sendErr = w.notify(title, body)
				return sendErr
			}, 3, 200*time.Millisecond, time.Second)
			if sendErr != nil {
				log.Default().Warn("push notification failed",
					zap.Int64("alert_id", event.ID), zap.Error(sendErr))
			}
		}
		if w.mqttEnabled {
			if err := w.mqttPublish(w.mqttTopic, event); err != nil {
				log.Default().Warn("mqtt alert publish failed",
					zap.Int64("alert_id", event.ID), zap.Error(err))
			}
		}
	}
	return w.saveWatermark(rows[len(rows)-1].ID)
}

// EventFromAlert maps a persisted alert row to its fan-out event.
func EventFromAlert(row models.AlertLog) common.AlertEvent {
	source := common.AlertSourceDaily
	if row.AlertType == alerts.TypeNoCat {
		source = common.AlertSourceRealtime
	}
	return common.AlertEvent{
		ID:        row.ID,
		Cat:       row.CatName,
		Color:     row.Color,
		Type:      row.AlertType,
		Message:   row.Message,
		AlertDate: row.AlertDate.Format(constants.DateLayout),
		CreatedAt: row.CreatedAt,
		Source:    source,
	}
}

func (w *Worker) compose(event common.AlertEvent) (string, string) {
	title := w.notifyTitle
	if title == "" {
		title = "Pet monitoring alert"
	}
	body := fmt.Sprintf("[%s] %s", event.AlertDate, event.Message)
	return title, body
}

func (w *Worker) loadWatermark() (int64, error) {
	var state models.NotificationState
	err := w.db.First(&state, "state_key = ?", WatermarkKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	id, err := strconv.ParseInt(state.Value, 10, 64)
	if err != nil {
		// A mangled watermark restarts the scan rather than wedging it.
		return 0, nil
	}
	return id, nil
}

func (w *Worker) saveWatermark(id int64) error {
	state := models.NotificationState{
		Key:       WatermarkKey,
		Value:     strconv.FormatInt(id, 10),
		UpdatedAt: w.now(),
	}
	return w.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"state_value", "updated_at"}),
	}).Create(&state).Error
}
