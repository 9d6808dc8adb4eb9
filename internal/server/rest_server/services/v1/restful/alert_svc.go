package restful

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/projectpsu986-droid/pet-monitoring/internal/alerts"
	"github.com/projectpsu986-droid/pet-monitoring/internal/api_response"
	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
)

type IAlertService interface {
	List(ctx *gin.Context, input *AlertListInput) (*api_response.BaseOutput, *cerrors.AppError)
	MarkRead(ctx *gin.Context, input *AlertIDsInput) (*api_response.BaseOutput, *cerrors.AppError)
	MarkAllRead(ctx *gin.Context, input *AlertActionInput) (*api_response.BaseOutput, *cerrors.AppError)
	Archive(ctx *gin.Context, input *AlertIDsInput) (*api_response.BaseOutput, *cerrors.AppError)
	IngestDaily(ctx *gin.Context, input *AlertIngestInput) (*api_response.BaseOutput, *cerrors.AppError)
	IngestRealtime(ctx *gin.Context, input *AlertActionInput) (*api_response.BaseOutput, *cerrors.AppError)
}

type AlertService struct {
	alerts *alerts.Service
	logger *log.Logger
}

func NewAlertService(options ...func(*AlertService)) *AlertService {
	svc := &AlertService{}
	for _, opt := range options {
		opt(svc)
	}
	logger := log.MustNewECSLogger()
	svc.logger = logger
	return svc
}

func WithAlertDomainService(domain *alerts.Service) func(*AlertService) {
	return func(svc *AlertService) {
		svc.alerts = domain
	}
}

type AlertListInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
}

type AlertActionInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
}

type AlertIDsInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	IDs       []int64 `json:"ids"`
}

type AlertIngestInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	Date      string `json:"date"`
}

// parseDateParam parses an optional YYYY-MM-DD query value.
func parseDateParam(raw string) (*time.Time, *cerrors.AppError) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(constants.DateLayout, raw)
	if err != nil {
		return nil, cerrors.ErrInvalidDate
	}
	return &t, nil
}

func (svc *AlertService) List(ctx *gin.Context, input *AlertListInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "list-alerts-handler")
	defer span.End()

	resp := &api_response.BaseOutput{}
	lg := svc.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)

	params := alerts.ListParams{
		Mode:       ctx.Query("mode"),
		Cat:        ctx.Query("cat"),
		Type:       ctx.Query("type"),
		UnreadOnly: ctx.Query("unread") == "true",
	}
	switch params.Mode {
	case "", alerts.ModeDaily, alerts.ModeRealtime, alerts.ModeMixed:
	default:
		return nil, cerrors.ErrGenericBadRequest.WithMessage("unknown mode %q", params.Mode)
	}

	var appErr *cerrors.AppError
	if params.Day, appErr = parseDateParam(ctx.Query("date")); appErr != nil {
		return nil, appErr
	}
	if params.Start, appErr = parseDateParam(ctx.Query("start_date")); appErr != nil {
		return nil, appErr
	}
	if params.End, appErr = parseDateParam(ctx.Query("end_date")); appErr != nil {
		return nil, appErr
	}

	page, perPage := parsePagination(ctx)
	params.Limit = perPage
	params.Offset = (page - 1) * perPage

	result, err := svc.alerts.List(params)
	if err != nil {
		lg.Error(err.Error())
		return nil, asAppError(err)
	}

	resp.Code = cerrors.OK.Code
	resp.Message = cerrors.OK.Message
	resp.Data = result
	resp.Count = len(result.Alerts)
	return resp, nil
}

func (svc *AlertService) MarkRead(ctx *gin.Context, input *AlertIDsInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "mark-alerts-read-handler")
	defer span.End()

	resp := &api_response.BaseOutput{}
	if err := ctx.ShouldBindJSON(input); err != nil {
		return nil, cerrors.ErrGenericBadRequest.WithCause(err)
	}

	n, err := svc.alerts.MarkRead(input.IDs)
	if err != nil {
		svc.logger.Error(err.Error())
		return nil, asAppError(err)
	}

	resp.Code = cerrors.OK.Code
	resp.Message = cerrors.OK.Message
	resp.Data = map[string]int64{"updated": n}
	return resp, nil
}

func (svc *AlertService) MarkAllRead(ctx *gin.Context, input *AlertActionInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "mark-all-alerts-read-handler")
	defer span.End()

	resp := &api_response.BaseOutput{}
	n, err := svc.alerts.MarkAllRead(ctx.Query("cat"))
	if err != nil {
		svc.logger.Error(err.Error())
		return nil, asAppError(err)
	}

	resp.Code = cerrors.OK.Code
	resp.Message = cerrors.OK.Message
	resp.Data = map[string]int64{"updated": n}
	return resp, nil
}

func (svc *AlertService) Archive(ctx *gin.Context, input *AlertIDsInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "archive-alerts-handler")
	defer span.End()

	resp := &api_response.BaseOutput{}
	if err := ctx.ShouldBindJSON(input); err != nil {
		return nil, cerrors.ErrGenericBadRequest.WithCause(err)
	}

	n, err := svc.alerts.Archive(input.IDs)
	if err != nil {
		svc.logger.Error(err.Error())
		return nil, asAppError(err)
	}

	resp.Code = cerrors.OK.Code
	resp.Message = cerrors.OK.Message
	resp.Data = map[string]int64{"updated": n}
	return resp, nil
}

func (svc *AlertService) IngestDaily(ctx *gin.Context, input *AlertIngestInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "ingest-daily-alerts-handler")
	defer span.End()

	resp := &api_response.BaseOutput{}
	if err := ctx.ShouldBindJSON(input); err != nil {
		return nil, cerrors.ErrGenericBadRequest.WithCause(err)
	}
	if input.Date == "" {
		return nil, cerrors.ErrInvalidDate
	}
	day, err := time.Parse(constants.DateLayout, input.Date)
	if err != nil {
		return nil, cerrors.ErrInvalidDate
	}

	rows, ingErr := svc.alerts.IngestDaily(day)
	if ingErr != nil {
		svc.logger.Error(ingErr.Error())
		return nil, asAppError(ingErr)
	}

	resp.Code = cerrors.OK.Code
	resp.Message = cerrors.OK.Message
	resp.Data = rows
	resp.Count = len(rows)
	return resp, nil
}

func (svc *AlertService) IngestRealtime(ctx *gin.Context, input *AlertActionInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "ingest-realtime-alerts-handler")
	defer span.End()

	resp := &api_response.BaseOutput{}
	rows, err := svc.alerts.IngestRealtimeAbsence(time.Now())
	if err != nil {
		svc.logger.Error(err.Error())
		return nil, asAppError(err)
	}

	resp.Code = cerrors.OK.Code
	resp.Message = cerrors.OK.Message
	resp.Data = rows
	resp.Count = len(rows)
	return resp, nil
}
