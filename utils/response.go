package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the wire envelope every endpoint returns. Operation
// specific payloads (note, notes, pagination, tags, ...) ride alongside
// via the Extra map.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func envelope(success bool, message string, extra gin.H) gin.H {
	body := gin.H{"success": success}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

// Success responses

func OK(c *gin.Context, message string, extra gin.H) {
	c.JSON(http.StatusOK, envelope(true, message, extra))
}

func Created(c *gin.Context, message string, extra gin.H) {
	c.JSON(http.StatusCreated, envelope(true, message, extra))
}

// Error responses

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope(false, message, nil))
}

func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, envelope(false, message, nil))
}

func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, envelope(false, message, nil))
}

func Conflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, envelope(false, message, nil))
}

func InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, envelope(false, message, nil))
}
