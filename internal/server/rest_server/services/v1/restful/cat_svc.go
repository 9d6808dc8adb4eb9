package restful

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/projectpsu986-droid/pet-monitoring/internal/api_response"
	"github.com/projectpsu986-droid/pet-monitoring/internal/cats"
	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
	"github.com/projectpsu986-droid/pet-monitoring/internal/constants"
	"github.com/projectpsu986-droid/pet-monitoring/internal/infrastructure/log"
	"github.com/projectpsu986-droid/pet-monitoring/internal/models"
)

type ICatService interface {
	List(ctx *gin.Context, input *CatInput) (*api_response.BaseOutput, *cerrors.AppError)
	Create(ctx *gin.Context, input *CatCreateInput) (*api_response.BaseOutput, *cerrors.AppError)
	SetDisplay(ctx *gin.Context, input *CatDisplayInput) (*api_response.BaseOutput, *cerrors.AppError)
	Rename(ctx *gin.Context, input *CatRenameInput) (*api_response.BaseOutput, *cerrors.AppError)
	Delete(ctx *gin.Context, input *CatInput) (*api_response.BaseOutput, *cerrors.AppError)
}

type CatService struct {
	cats   *cats.Service
	logger *log.Logger
}

func NewCatService(options ...func(*CatService)) *CatService {
	svc := &CatService{}
	for _, opt := range options {
		opt(svc)
	}
	logger := log.MustNewECSLogger()
	svc.logger = logger
	return svc
}

func WithCatDomainService(domain *cats.Service) func(*CatService) {
	return func(svc *CatService) {
		svc.cats = domain
	}
}

type CatInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
}

type CatCreateInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	Cat       models.Cat
}

type CatDisplayInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	Updates   []cats.DisplayUpdate `json:"updates"`
}

type CatRenameInput struct {
	TracerCtx context.Context
	Tracer    trace.Tracer
	NewName   string `json:"new_name"`
}

func (svc *CatService) logRequest(ctx *gin.Context) *log.Logger {
	return svc.logger.With(
		zap.String(constants.APIFieldRequestID, ctx.GetString(constants.APIFieldRequestID)),
	)
}

func (svc *CatService) List(ctx *gin.Context, input *CatInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "list-cats-handler")
	defer span.End()

	views, err := svc.cats.List()
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return &api_response.BaseOutput{
		Code:    cerrors.OK.Code,
		Message: cerrors.OK.Message,
		Data:    views,
		Count:   len(views),
	}, nil
}

func (svc *CatService) Create(ctx *gin.Context, input *CatCreateInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "create-cat-handler")
	defer span.End()

	if err := ctx.ShouldBindJSON(&input.Cat); err != nil {
		return nil, cerrors.ErrGenericBadRequest.WithCause(err)
	}

	created, err := svc.cats.Create(input.Cat)
	if err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return &api_response.BaseOutput{
		Code:    cerrors.OK.Code,
		Message: cerrors.OK.Message,
		Data:    created,
	}, nil
}

func (svc *CatService) SetDisplay(ctx *gin.Context, input *CatDisplayInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "set-cat-display-handler")
	defer span.End()

	if err := ctx.ShouldBindJSON(input); err != nil {
		return nil, cerrors.ErrGenericBadRequest.WithCause(err)
	}

	if err := svc.cats.SetDisplay(input.Updates); err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return &api_response.BaseOutput{
		Code:    cerrors.OK.Code,
		Message: cerrors.OK.Message,
		Count:   len(input.Updates),
	}, nil
}

func (svc *CatService) Rename(ctx *gin.Context, input *CatRenameInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "rename-cat-handler")
	defer span.End()

	if err := ctx.ShouldBindJSON(input); err != nil {
		return nil, cerrors.ErrGenericBadRequest.WithCause(err)
	}

	if err := svc.cats.Rename(ctx.Param("name"), input.NewName); err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return &api_response.BaseOutput{
		Code:    cerrors.OK.Code,
		Message: cerrors.OK.Message,
	}, nil
}

func (svc *CatService) Delete(ctx *gin.Context, input *CatInput) (*api_response.BaseOutput, *cerrors.AppError) {
	_, span := input.Tracer.Start(input.TracerCtx, "delete-cat-handler")
	defer span.End()

	if err := svc.cats.Delete(ctx.Param("name")); err != nil {
		svc.logRequest(ctx).Error(err.Error())
		return nil, asAppError(err)
	}
	return &api_response.BaseOutput{
		Code:    cerrors.OK.Code,
		Message: cerrors.OK.Message,
	}, nil
}
