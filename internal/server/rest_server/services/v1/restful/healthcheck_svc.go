package restful

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/projectpsu986-droid/pet-monitoring/internal/api_response"
	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/config"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
)

type IHealthcheckService interface {
	Healthcheck(ctx *gin.Context, input *HealthcheckInput) (*api_response.BaseOutput, *cerrors.AppError)
}

type HealthcheckService struct {
	db      *gorm.DB
	logger  *log.Logger
	started time.Time
}

func NewHealthcheckService(options ...func(*HealthcheckService)) *HealthcheckService {
	svc := &HealthcheckService{started: time.Now()}
	for _, opt := range options {
		opt(svc)
	}
	logger := log.MustNewECSLogger()
	svc.logger = logger
	return svc
}

func WithHealthcheckDB(db *gorm.DB) func(*HealthcheckService) {
	return func(svc *HealthcheckService) {
		svc.db = db
	}
}

type HealthcheckInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
}

type HealthcheckOutput struct {
	Name          string `json:"name"`
	Database      string `json:"database"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (svc *HealthcheckService) Healthcheck(ctx *gin.Context, input *HealthcheckInput) (*api_response.BaseOutput, *cerrors.AppError) {
	rootCtx, span := input.Tracer.Start(input.TracerCtx, "healthcheck-handler")
	defer span.End()

	resp := &api_response.BaseOutput{}
	lg := svc.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)

	dbState := "ok"
	_, cSpan := input.Tracer.Start(rootCtx, "ping-database")
	sqlDB, err := svc.db.DB()
	if err == nil {
		err = sqlDB.PingContext(rootCtx)
	}
	if err != nil {
		cSpan.End()
		wErr := errors.Wrap(err, "database ping failed")
		lg.Error(wErr.Error())
		dbState = "unreachable"
	} else {
		cSpan.End()
	}

	resp.Code = cerrors.OK.Code
	resp.Message = cerrors.OK.Message
	resp.Data = HealthcheckOutput{
		Name:          viper.GetString(config.AppName),
		Database:      dbState,
		UptimeSeconds: int64(time.Since(svc.started).Seconds()),
	}
	return resp, nil
}
