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

type CatRouter struct {
	svc    restful.ICatService
	logger *log.Logger
	tracer trace.Tracer
}

func NewCatRouter(svc restful.ICatService) *CatRouter {
	logger := log.MustNewECSLogger()
	return &CatRouter{
		svc:    svc,
		logger: logger,
		tracer: tracer_client.Tracer("cat_router"),
	}
}

func (r *CatRouter) Routes(engine *gin.RouterGroup) {
	routes := engine.Group("/cats")
	routes.GET("", r.list)
	routes.POST("", r.create)
	routes.PUT("/display", r.setDisplay)
	routes.PUT("/:name/rename", r.rename)
	routes.DELETE("/:name", r.remove)
}

func (r *CatRouter) list(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.List(ctx, &restful.CatInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *CatRouter) create(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	).Info("Received cat registration request")

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.Create(ctx, &restful.CatCreateInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *CatRouter) setDisplay(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.SetDisplay(ctx, &restful.CatDisplayInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *CatRouter) rename(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	).Info("Received cat rename request")

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.Rename(ctx, &restful.CatRenameInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *CatRouter) remove(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	).Info("Received cat removal request")

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.Delete(ctx, &restful.CatInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}
