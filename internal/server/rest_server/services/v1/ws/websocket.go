package ws

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/projectpsu986-droid/pet-monitoring/internal/api_response"
	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
	"github.com/projectpsu986-droid/pet-monitoring/internal/signaling"
)

type IWebsocketService interface {
	Subscribe(ctx *gin.Context, tracerCtx context.Context, tracer trace.Tracer) (*api_response.BaseOutput, *cerrors.AppError)
}

type WebsocketService struct {
	hub      *signaling.AlertHub
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewWebsocketService(options ...func(*WebsocketService)) *WebsocketService {
	var upgrader = websocket.Upgrader{
		HandshakeTimeout: 5 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	svc := &WebsocketService{}
	for _, opt := range options {
		opt(svc)
	}
	logger := log.MustNewECSLogger()
	svc.upgrader = upgrader
	svc.logger = logger

	return svc
}

func WithAlertHub(hub *signaling.AlertHub) func(*WebsocketService) {
	return func(c *WebsocketService) {
		c.hub = hub
	}
}

// Subscribe upgrades the connection and attaches it to the alert hub. The
// client receives every alert event pushed after the handshake.
func (svc *WebsocketService) Subscribe(
	ctx *gin.Context,
	tracerCtx context.Context,
	tracer trace.Tracer,
) (*api_response.BaseOutput, *cerrors.AppError) {
	rootCtx, span := tracer.Start(tracerCtx, "subscribe-alerts")
	defer span.End()

	resp := &api_response.BaseOutput{}
	svc.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)

	_, cSpan := tracer.Start(rootCtx, "upgrade-connection")
	connID := uuid.New()
	svc.logger.Info(fmt.Sprintf("New alert subscriber connected with ID: %s", connID.String()))
	conn, err := svc.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		svc.logger.Error(err.Error())
		cSpan.End()
		return nil, cerrors.ErrGenericBadRequest.WithCause(err)
	}
	cSpan.End()

	client := signaling.NewWebsocketClient(connID, conn, svc.hub)

	svc.hub.GetRegister() <- client
	go client.Write()
	go client.Read()

	resp.Code = cerrors.OK.Code
	resp.Message = cerrors.OK.Message
	return resp, nil
}
