package restful

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projectpsu986-droid/pet-monitoring/internal/api_response"
	"github.com/projectpsu986-droid/pet-monitoring/internal/cerrors"
)

// finish writes either the service error or the success payload.
func finish(ctx *gin.Context, resp *api_response.Response[any], result *api_response.BaseOutput, appErr *cerrors.AppError) {
	if appErr != nil {
		resp.Populate(appErr.Code, appErr.Message, nil, nil, nil)
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		ctx.JSON(status, resp)
		return
	}

	var count any
	if result.Count > 0 {
		count = result.Count
	}
	resp.Populate(result.Code, result.Message, result.Data, result.Meta, count)
	ctx.JSON(http.StatusOK, resp)
}
