package restful

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/projectpsu986-droid/pet-monitoring/internal/api_response"
	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
	"github.com/projectpsu986-droid/pet-monitoring/internal/stats"
)

type IStatsService interface {
	Years(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError)
	Activities(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError)
	CatTimeline(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError)
	TimelineTable(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError)
	RoomTimeline(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError)
	DailyStats(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError)
	RangeStats(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError)
	MonthlyStats(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError)
	YearlyStats(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError)
}

type StatsService struct {
	stats  *stats.Service
	logger *log.Logger
}

func NewStatsService(options ...func(*StatsService)) *StatsService {
	svc := &StatsService{}
	for _, opt := range options {
		opt(svc)
	}
	logger := log.MustNewECSLogger()
	svc.logger = logger
	return svc
}

func WithStatsDomainService(domain *stats.Service) func(*StatsService) {
	return func(svc *StatsService) {
		svc.stats = domain
	}
}

type StatsInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
}

func (svc *StatsService) logRequest(ctx *gin.Context) *log.Logger {
	return svc.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)
}

func requireCat(ctx *gin.Context) (string, *cerrors.AppError) {
	cat := ctx.Query("cat")
	if cat == "" {
		return "", cerrors.ErrMissingCatName
	}
	return cat, nil
}

func requireDate(ctx *gin.Context, key string) (time.Time, *cerrors.AppError) {
	raw := ctx.Query(key)
	if raw == "" {
		return time.Time{}, cerrors.ErrInvalidDate.WithMessage("missing %s", key)
	}
	day, err := time.Parse(constants.DateLayout, raw)
	if err != nil {
		return time.Time{}, cerrors.ErrInvalidDate.WithCause(err)
	}
	return day, nil
}

func ok(data any, count int) *api_response.BaseOutput {
	return &api_response.BaseOutput{
		Code:    cerrors.OK.Code,
		Message: cerrors.OK.Message,
		Data:    data,
		Count:   count,
	}
}

func (svc *StatsService) Years(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "stats-years-handler")
	defer span.End()

	years, err := svc.stats.Years()
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return ok(years, len(years)), nil
}

func (svc *StatsService) Activities(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "stats-activities-handler")
	defer span.End()

	cat, appErr := requireCat(ctx)
	if appErr != nil {
		return nil, appErr
	}
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	var before *time.Time
	if raw := ctx.Query("before"); raw != "" {
		t, err := time.Parse(constants.DateTimeLayout, raw)
		if err != nil {
			return nil, cerrors.ErrInvalidDateTime.WithCause(err)
		}
		before = &t
	}

	feed, err := svc.stats.Activities(cat, limit, before)
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return ok(feed, len(feed.Activities)), nil
}

func (svc *StatsService) CatTimeline(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "stats-cat-timeline-handler")
	defer span.End()

	cat, appErr := requireCat(ctx)
	if appErr != nil {
		return nil, appErr
	}
	day, appErr := requireDate(ctx, "date")
	if appErr != nil {
		return nil, appErr
	}

	timeline, err := svc.stats.CatTimeline(cat, day)
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return ok(timeline, len(timeline.Segments)), nil
}

func (svc *StatsService) TimelineTable(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "stats-timeline-table-handler")
	defer span.End()

	day, appErr := requireDate(ctx, "date")
	if appErr != nil {
		return nil, appErr
	}

	table, err := svc.stats.TimelineTable(day)
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return ok(table, len(table.Rows)), nil
}

func (svc *StatsService) RoomTimeline(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "stats-room-timeline-handler")
	defer span.End()

	day, appErr := requireDate(ctx, "date")
	if appErr != nil {
		return nil, appErr
	}

	rooms, err := svc.stats.RoomTimeline(day)
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return ok(rooms, len(rooms)), nil
}

func (svc *StatsService) DailyStats(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "stats-daily-handler")
	defer span.End()

	cat, appErr := requireCat(ctx)
	if appErr != nil {
		return nil, appErr
	}
	day, appErr := requireDate(ctx, "date")
	if appErr != nil {
		return nil, appErr
	}

	stat, err := svc.stats.DailyStats(cat, day)
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return ok(stat, 1), nil
}

func (svc *StatsService) RangeStats(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "stats-range-handler")
	defer span.End()

	cat, appErr := requireCat(ctx)
	if appErr != nil {
		return nil, appErr
	}
	start, appErr := requireDate(ctx, "start_date")
	if appErr != nil {
		return nil, appErr
	}
	end, appErr := requireDate(ctx, "end_date")
	if appErr != nil {
		return nil, appErr
	}

	days, err := svc.stats.RangeStats(cat, start, end)
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return ok(days, len(days)), nil
}

func (svc *StatsService) MonthlyStats(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "stats-monthly-handler")
	defer span.End()

	cat, appErr := requireCat(ctx)
	if appErr != nil {
		return nil, appErr
	}
	month := ctx.Query("month")
	if month == "" {
		return nil, cerrors.ErrInvalidMonth
	}

	days, err := svc.stats.MonthlyStats(cat, month)
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return ok(days, len(days)), nil
}

func (svc *StatsService) YearlyStats(ctx *gin.Context, input *StatsInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "stats-yearly-handler")
	defer span.End()

	cat, appErr := requireCat(ctx)
	if appErr != nil {
		return nil, appErr
	}
	year, err := strconv.Atoi(ctx.Query("year"))
	if err != nil || year < 2000 || year > 2200 {
		return nil, cerrors.ErrInvalidDate.WithMessage("invalid year %q", ctx.Query("year"))
	}

	months, domErr := svc.stats.YearlyStats(cat, year)
	if domErr != nil {
		svc.logRequest(ctx).Error(domErr.Error())
		return nil, asAppError(domErr)
	}
	return ok(months, len(months)), nil
}
