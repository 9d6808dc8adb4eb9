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

type SysConfigRouter struct {
	svc    restful.ISysConfigService
	logger *log.Logger
	tracer trace.Tracer
}

func NewSysConfigRouter(svc restful.ISysConfigService) *SysConfigRouter {
	logger := log.MustNewECSLogger()
	return &SysConfigRouter{
		svc:    svc,
		logger: logger,
		tracer: tracer_client.Tracer("sysconfig_router"),
	}
}

func (r *SysConfigRouter) Routes(engine *gin.RouterGroup) {
	routes := engine.Group("/config")
	routes.GET("", r.getGlobal)
	routes.PUT("", r.updateGlobal)
	routes.POST("/reset", r.resetGlobal)
	routes.GET("/cats/:color", r.getCat)
	routes.PUT("/cats/:color", r.updateCat)
	routes.POST("/cats/:color/reset", r.resetCat)
	routes.POST("/cats/:color/apply-summary", r.applySummary)
}

func (r *SysConfigRouter) getGlobal(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.GetGlobal(ctx, &restful.SysConfigInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *SysConfigRouter) updateGlobal(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	).Info("Received global config update request")

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.UpdateGlobal(ctx, &restful.SysConfigPatchInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *SysConfigRouter) resetGlobal(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	).Info("Received global config reset request")

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.ResetGlobal(ctx, &restful.SysConfigInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *SysConfigRouter) getCat(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.GetCat(ctx, &restful.SysConfigInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *SysConfigRouter) updateCat(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	).Info("Received per-cat config update request")

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.UpdateCat(ctx, &restful.SysConfigPatchInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *SysConfigRouter) resetCat(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	).Info("Received per-cat config reset request")

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.ResetCat(ctx, &restful.SysConfigInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *SysConfigRouter) applySummary(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	).Info("Received apply-summary request")

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.ApplySummary(ctx, &restful.ApplySummaryInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}
