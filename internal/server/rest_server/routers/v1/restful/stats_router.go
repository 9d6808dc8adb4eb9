package restful

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/projectpsu986-droid/pet-monitoring/internal/api_response"
	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/tracer_client"
	"github.com/projectpsu986-droid/pet-monitoring/internal/server/rest_server/services/v1/restful"
)

type StatsRouter struct {
	svc    restful.IStatsService
	logger *log.Logger
	tracer trace.Tracer
}

func NewStatsRouter(svc restful.IStatsService) *StatsRouter {
	logger := log.MustNewECSLogger()
	return &StatsRouter{
		svc:    svc,
		logger: logger,
		tracer: tracer_client.Tracer("stats_router"),
	}
}

func (r *StatsRouter) Routes(engine *gin.RouterGroup) {
	routes := engine.Group("/stats")
	routes.GET("/years", r.handle(r.svc.Years))
	routes.GET("/activities", r.handle(r.svc.Activities))
	routes.GET("/timeline", r.handle(r.svc.CatTimeline))
	routes.GET("/timeline-table", r.handle(r.svc.TimelineTable))
	routes.GET("/rooms", r.handle(r.svc.RoomTimeline))
	routes.GET("/daily", r.handle(r.svc.DailyStats))
	routes.GET("/range", r.handle(r.svc.RangeStats))
	routes.GET("/monthly", r.handle(r.svc.MonthlyStats))
	routes.GET("/yearly", r.handle(r.svc.YearlyStats))
}

// handle wraps a stats service call with the shared span and response plumbing.
// Every stats endpoint is a read with query-string inputs, so one adapter fits all.
func (r *StatsRouter) handle(
	call func(*gin.Context, *restful.StatsInput) (*api_response.BaseOutput, *cerrors.AppError),
) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rootCtx, span := r.tracer.Start(ctx, ctx.Request.URL.Path, trace.WithAttributes(attribute.KeyValue{
			Key:   constants.APIFieldRequestID,
			Value: attribute.StringValue(ctx.GetString(constants.APIFieldRequestID)),
		}))
		defer span.End()

		resp := api_response.New[any](ctx)

		_, cSpan := r.tracer.Start(rootCtx, "handler")
		result, appErr := call(ctx, &restful.StatsInput{
			TracerCtx: rootCtx,
			Tracer:    r.tracer,
		})
		cSpan.End()

		finish(ctx, resp, result, appErr)
	}
}
