package routers

import (
	"github.com/gin-gonic/gin"

	"github.com/projectpsu986-droid/pet-monitoring/internal/server/rest_server/routers/v1/restful"
	"github.com/projectpsu986-droid/pet-monitoring/internal/server/rest_server/routers/v1/ws"
)

type RootRouter struct {
	appState *AppState
}

func NewRootRouter(appState *AppState) *RootRouter {
	return &RootRouter{
		appState: appState,
	}
}

func (rr *RootRouter) InitRouters(engine *gin.Engine) {
	// http
	rootAPIRouter := engine.Group("/api")
	v1Router := rootAPIRouter.Group("/v1")
	{
		healthcheckRouter := restful.NewHealthcheckRouter(rr.appState.GetV1RestState().GetHealthcheckService())
		healthcheckRouter.Routes(v1Router)

		alertRouter := restful.NewAlertRouter(rr.appState.GetV1RestState().GetAlertService())
		alertRouter.Routes(v1Router)

		sysConfigRouter := restful.NewSysConfigRouter(rr.appState.GetV1RestState().GetSysConfigService())
		sysConfigRouter.Routes(v1Router)

		catRouter := restful.NewCatRouter(rr.appState.GetV1RestState().GetCatService())
		catRouter.Routes(v1Router)

		statsRouter := restful.NewStatsRouter(rr.appState.GetV1RestState().GetStatsService())
		statsRouter.Routes(v1Router)

		summaryRouter := restful.NewSummaryRouter(rr.appState.GetV1RestState().GetSummaryService())
		summaryRouter.Routes(v1Router)
	}

	// websocket
	{
		rootWSRouter := engine.Group("/ws")
		websocketRouter := ws.NewWebsocketRouter(rr.appState.GetWebsocketState().GetWebsocketService())
		websocketRouter.Routes(rootWSRouter)
	}
}
