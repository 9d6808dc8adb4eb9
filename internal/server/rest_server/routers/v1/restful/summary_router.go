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

type SummaryRouter struct {
	svc    restful.ISummaryService
	logger *log.Logger
	tracer trace.Tracer
}

func NewSummaryRouter(svc restful.ISummaryService) *SummaryRouter {
	logger := log.MustNewECSLogger()
	return &SummaryRouter{
		svc:    svc,
		logger: logger,
		tracer: tracer_client.Tracer("summary_router"),
	}
}

func (r *SummaryRouter) Routes(engine *gin.RouterGroup) {
	routes := engine.Group("/summaries")
	routes.GET("", r.forMonth)
	routes.GET("/months", r.months)
	routes.POST("/run", r.run)
}

func (r *SummaryRouter) months(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.Months(ctx, &restful.SummaryInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *SummaryRouter) forMonth(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.ForMonth(ctx, &restful.SummaryInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}

func (r *SummaryRouter) run(ctx *gin.Context) {
	rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
		Key:   constants.APIFieldRequestID,
		Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
	}))
	defer span.End()

	resp := api_response.New[any](ctx)
	r.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	).Info("Received manual rollup request")

	_, cSpan := r.tracer.Start(rootCtx, "handler")
	result, appErr := r.svc.Run(ctx, &restful.SummaryRunInput{
		TracerCtx: rootCtx,
		Tracer:    r.tracer,
	})
	cSpan.End()

	finish(ctx, resp, result, appErr)
}
