package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	errx "github.com/skintellect/storefront/internal/core/error"
	"github.com/skintellect/storefront/internal/gateway"
	logx "github.com/skintellect/storefront/pkg/logger"
)

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details []errx.FieldError `json:"details,omitempty"`
}

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// fail writes the error envelope for err and stops the handler chain.
func fail(c *gin.Context, err error) {
	appErr := errx.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		logx.Error().Err(appErr).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(appErr.Status, envelope{Error: &errorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}})
}

// bindJSON decodes the body into dst, writing the error envelope when it cannot.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		fail(c, errx.New(err, http.StatusRequestEntityTooLarge, errx.CodeValidation, "Request body too large"))
		return false
	}
	fail(c, errx.Validation(gateway.FieldErrors(err)...))
	return false
}

func errMessage(err error) string {
	return errx.From(err).Message
}
