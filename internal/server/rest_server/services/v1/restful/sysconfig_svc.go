package restful

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/projectpsu986-droid/pet-monitoring/internal/api_response"
	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
	"github.com/projectpsu986-droid/pet-monitoring/internal/sysconfig"
)

type ISysConfigService interface {
	GetGlobal(ctx *gin.Context, input *SysConfigInput) (*api_response.BaseOutput, *cerrors.AppError)
	UpdateGlobal(ctx *gin.Context, input *SysConfigPatchInput) (*api_response.BaseOutput, *cerrors.AppError)
	ResetGlobal(ctx *gin.Context, input *SysConfigInput) (*api_response.BaseOutput, *cerrors.AppError)
	GetCat(ctx *gin.Context, input *SysConfigInput) (*api_response.BaseOutput, *cerrors.AppError)
	UpdateCat(ctx *gin.Context, input *SysConfigPatchInput) (*api_response.BaseOutput, *cerrors.AppError)
	ResetCat(ctx *gin.Context, input *SysConfigInput) (*api_response.BaseOutput, *cerrors.AppError)
	ApplySummary(ctx *gin.Context, input *ApplySummaryInput) (*api_response.BaseOutput, *cerrors.AppError)
}

type SysConfigService struct {
	admin  *sysconfig.Admin
	logger *log.Logger
}

func NewSysConfigService(options ...func(*SysConfigService)) *SysConfigService {
	svc := &SysConfigService{}
	for _, opt := range options {
		opt(svc)
	}
	logger := log.MustNewECSLogger()
	svc.logger = logger
	return svc
}

func WithSysConfigAdmin(admin *sysconfig.Admin) func(*SysConfigService) {
	return func(svc *SysConfigService) {
		svc.admin = admin
	}
}

type SysConfigInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
}

type SysConfigPatchInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	Patch     sysconfig.Patch
}

type ApplySummaryInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	Month     string `json:"month"`
}

func (svc *SysConfigService) logRequest(ctx *gin.Context) *log.Logger {
	return svc.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)
}

func (svc *SysConfigService) GetGlobal(ctx *gin.Context, input *SysConfigInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "get-global-config-handler")
	defer span.End()

	view, err := svc.admin.Global()
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return &api_response.BaseOutput{
		Code:    cerrors.OK.Code,
		Message: cerrors.OK.Message,
		Data:    view,
	}, nil
}

func (svc *SysConfigService) UpdateGlobal(ctx *gin.Context, input *SysConfigPatchInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "update-global-config-handler")
	defer span.End()

	if err := ctx.ShouldBindJSON(&input.Patch); err != nil {
		return nil, cerrors.ErrInvalidThreshold.WithCause(err)
	}

	view, err := svc.admin.UpdateGlobal(input.Patch)
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return &api_response.BaseOutput{
		Code:    cerrors.OK.Code,
		Message: cerrors.OK.Message,
		Data:    view,
	}, nil
}

func (svc *SysConfigService) ResetGlobal(ctx *gin.Context, input *SysConfigInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "reset-global-config-handler")
	defer span.End()

	view, err := svc.admin.ResetGlobal()
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return &api_response.BaseOutput{
		Code:    cerrors.OK.Code,
		Message: cerrors.OK.Message,
		Data:    view,
	}, nil
}

func (svc *SysConfigService) GetCat(ctx *gin.Context, input *SysConfigInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "get-cat-config-handler")
	defer span.End()

	view, err := svc.admin.Cat(ctx.Param("color"))
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return &api_response.BaseOutput{
		Code:    cerrors.OK.Code,
		Message: cerrors.OK.Message,
		Data:    view,
	}, nil
}

func (svc *SysConfigService) UpdateCat(ctx *gin.Context, input *SysConfigPatchInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "update-cat-config-handler")
	defer span.End()

	if err := ctx.ShouldBindJSON(&input.Patch); err != nil {
		return nil, cerrors.ErrInvalidThreshold.WithCause(err)
	}

	view, err := svc.admin.UpdateCat(ctx.Param("color"), input.Patch)
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return &api_response.BaseOutput{
		Code:    cerrors.OK.Code,
		Message: cerrors.OK.Message,
		Data:    view,
	}, nil
}

func (svc *SysConfigService) ResetCat(ctx *gin.Context, input *SysConfigInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "reset-cat-config-handler")
	defer span.End()

	view, err := svc.admin.ResetCat(ctx.Param("color"))
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return &api_response.BaseOutput{
		Code:    cerrors.OK.Code,
		Message: cerrors.OK.Message,
		Data:    view,
	}, nil
}

func (svc *SysConfigService) ApplySummary(ctx *gin.Context, input *ApplySummaryInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "apply-summary-handler")
	defer span.End()

	if err := ctx.ShouldBindJSON(input); err != nil {
		return nil, cerrors.ErrGenericBadRequest.WithCause(err)
	}
	if input.Month == "" {
		return nil, cerrors.ErrInvalidMonth
	}

	view, err := svc.admin.ApplySummary(input.Month, ctx.Param("color"))
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return &api_response.BaseOutput{
		Code:    cerrors.OK.Code,
		Message: cerrors.OK.Message,
		Data:    view,
	}, nil
}
