package restful

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/projectpsu986-droid/pet-monitoring/internal/api_response"
	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
	"github.com/projectpsu986-droid/pet-monitoring/internal/rollup"
)

type ISummaryService interface {
	Months(ctx *gin.Context, input *SummaryInput) (*api_response.BaseOutput, *cerrors.AppError)
	ForMonth(ctx *gin.Context, input *SummaryInput) (*api_response.BaseOutput, *cerrors.AppError)
	Run(ctx *gin.Context, input *SummaryRunInput) (*api_response.BaseOutput, *cerrors.AppError)
}

type SummaryService struct {
	summaries *rollup.Summaries
	engine    *rollup.Engine
	logger    *log.Logger
}

func NewSummaryService(options ...func(*SummaryService)) *SummaryService {
	svc := &SummaryService{}
	for _, opt := range options {
		opt(svc)
	}
	logger := log.MustNewECSLogger()
	svc.logger = logger
	return svc
}

func WithSummaries(summaries *rollup.Summaries) func(*SummaryService) {
	return func(svc *SummaryService) {
		svc.summaries = summaries
	}
}

func WithRollupEngine(engine *rollup.Engine) func(*SummaryService) {
	return func(svc *SummaryService) {
		svc.engine = engine
	}
}

type SummaryInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
}

type SummaryRunInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	Month     string `json:"month"`
}

func (svc *SummaryService) logRequest(ctx *gin.Context) *log.Logger {
	return svc.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)
}

func (svc *SummaryService) Months(ctx *gin.Context, input *SummaryInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "summary-months-handler")
	defer span.End()

	months, err := svc.summaries.Months()
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return ok(months, len(months)), nil
}

func (svc *SummaryService) ForMonth(ctx *gin.Context, input *SummaryInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "summary-for-month-handler")
	defer span.End()

	month := ctx.Query("month")
	if month == "" {
		return nil, cerrors.ErrInvalidMonth
	}

	rows, err := svc.summaries.ForMonth(month)
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return ok(rows, len(rows)), nil
}

func (svc *SummaryService) Run(ctx *gin.Context, input *SummaryRunInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "summary-run-handler")
	defer span.End()

	if err := ctx.ShouldBindJSON(input); err != nil {
		return nil, cerrors.ErrGenericBadRequest.WithCause(err)
	}
	month := input.Month
	if month == "" {
		month = rollup.PreviousMonth(time.Now())
	}

	if err := svc.engine.Run(month, time.Now()); err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}

	rows, err := svc.summaries.ForMonth(month)
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return ok(rows, len(rows)), nil
}
