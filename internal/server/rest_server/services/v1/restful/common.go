package restful

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
)

const (
	defaultPerPage = 50
	maxPerPage     = 500
)

// asAppError coerces domain errors to the API error taxonomy. Anything not
// already an AppError maps to a generic 500.
func asAppError(err error) *cerrors.AppError {
	if err == nil {
		return nil
	}
	var appErr *cerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return cerrors.ErrGenericInternalServer.WithCause(err)
}

// parsePagination reads page/per_page query values with sane clamps.
func parsePagination(ctx *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(ctx.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
