package routers

import (
	"github.com/projectpsu986-droid/pet-monitoring/internal/server/rest_server/services/v1/restful"
	"github.com/projectpsu986-droid/pet-monitoring/internal/server/rest_server/services/v1/ws"
)

type V1Rest struct {
	healthcheck *restful.HealthcheckService
	alert       *restful.AlertService
	sysconfig   *restful.SysConfigService
	cat         *restful.CatService
	stats       *restful.StatsService
	summary     *restful.SummaryService
}

func NewV1RestState() *V1Rest {
	return &V1Rest{}
}

func (svc *V1Rest) SetHealthcheckService(healthcheck *restful.HealthcheckService) {
	svc.healthcheck = healthcheck
}

func (svc *V1Rest) GetHealthcheckService() *restful.HealthcheckService {
	return svc.healthcheck
}

func (svc *V1Rest) SetAlertService(alert *restful.AlertService) {
	svc.alert = alert
}

func (svc *V1Rest) GetAlertService() *restful.AlertService {
	return svc.alert
}

func (svc *V1Rest) SetSysConfigService(sysconfig *restful.SysConfigService) {
	svc.sysconfig = sysconfig
}

func (svc *V1Rest) GetSysConfigService() *restful.SysConfigService {
	return svc.sysconfig
}

func (svc *V1Rest) SetCatService(cat *restful.CatService) {
	svc.cat = cat
}

func (svc *V1Rest) GetCatService() *restful.CatService {
	return svc.cat
}

func (svc *V1Rest) SetStatsService(stats *restful.StatsService) {
	svc.stats = stats
}

func (svc *V1Rest) GetStatsService() *restful.StatsService {
	return svc.stats
}

func (svc *V1Rest) SetSummaryService(summary *restful.SummaryService) {
	svc.summary = summary
}

func (svc *V1Rest) GetSummaryService() *restful.SummaryService {
	return svc.summary
}

type Websocket struct {
	websocket *ws.WebsocketService
}

func NewWebsocketState() *Websocket {
	return &Websocket{}
}

func (svc *Websocket) SetWebsocketService(websocket *ws.WebsocketService) {
	svc.websocket = websocket
}

func (svc *Websocket) GetWebsocketService() *ws.WebsocketService {
	return svc.websocket
}

type AppState struct {
	v1Rest    *V1Rest
	websocket *Websocket
}

func NewAppState() *AppState {
	return &AppState{}
}

func (svc *AppState) SetV1RestState(v1Rest *V1Rest) {
	svc.v1Rest = v1Rest
}

func (svc *AppState) GetV1RestState() *V1Rest {
	return svc.v1Rest
}

func (svc *AppState) GetWebsocketState() *Websocket {
	return svc.websocket
}

func (svc *AppState) SetWebsocketState(ws *Websocket) {
	svc.websocket = ws
}
