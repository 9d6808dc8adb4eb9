package restful

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/projectpsu986-droid/pet-monitoring/internal/api_response"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/tracer_client"
	"github.com/projectpsu986-droid/pet-monitoring/internal/server/rest_server/services/v1/restful"
)

type AlertRouter struct {
	svc    restful.IAlertService
	logger *log.Logger
	tracer trace.Tracer
}

func NewAlertRouter(svc restful.IAlertService) *AlertRouter {
	logger := log.MustNewECSLogger()
	return &AlertRouter{
		svc:    svc,
		logger: logger,
		tracer: tracer_client.Tracer("alert_router"),
	}
}

func (r *AlertRouter) Routes(engine *gin.RouterGroup) {
	routes := engine.Group("/alerts")
	routes.GET("", r.list)
	routes.POST("/read", r.markRead)
	routes.POST("/read-all", r.markAllRead)
	routes.POST("/archive", r.archive)
	routes.POST("/ingest/daily", r.ingestDaily)
	routes.POST("/ingest/realtime", r.ingestRealtime)
}

func (r *AlertRouter) list(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	).Debug("Received new alert list request")

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.List(ctx, &restful.AlertListInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *AlertRouter) markRead(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.MarkRead(ctx, &restful.AlertIDsInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *AlertRouter) markAllRead(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.MarkAllRead(ctx, &restful.AlertActionInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *AlertRouter) archive(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.Archive(ctx, &restful.AlertIDsInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *AlertRouter) ingestDaily(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	).Info("Received manual daily ingest request")

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.IngestDaily(ctx, &restful.AlertIngestInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *AlertRouter) ingestRealtime(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	).Info("Received manual realtime ingest request")

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.IngestRealtime(ctx, &restful.AlertActionInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}
