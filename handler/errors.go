package handler

import (
	"errors"
	"log"

	"notevault/usecase"
	"notevault/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto the wire envelope.
// Anything unclassified is logged server-side and reported generically.
func respondError(c *gin.Context, err error) {
	switch {
	case usecase.IsValidation(err):
		utils.BadRequest(c, err.Error())
	case usecase.IsNotFound(err):
		utils.NotFound(c, err.Error())
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrTwoFactorRequired):
		utils.Unauthorized(c, err.Error())
	case errors.Is(err, usecase.ErrEmailExists):
		utils.Conflict(c, err.Error())
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.InternalError(c, "An unexpected error occurred")
	}
}
