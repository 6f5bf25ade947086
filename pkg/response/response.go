package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/codeyatra/query-engine-api/pkg/errors"
)

// JSON sends a success payload exactly as the client expects it: a plain
// body with no envelope.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error translates any error into the structured body the client reads:
// a human-readable detail, a machine-checkable code, and at most one of
// the intake rejection flags.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	body := gin.H{
		"detail": appErr.Message,
		"code":   appErr.Code,
	}
	if appErr.Flag != "" {
		body[appErr.Flag] = true
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, body)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
