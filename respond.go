package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TurnIfCode/backend-gogo/pkg/apperr"
	"github.com/TurnIfCode/backend-gogo/pkg/imageingest"
	"github.com/TurnIfCode/backend-gogo/pkg/logger"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

// respondErr renders err with the status of its kind. Internal errors are
// logged and their details hidden from the client.
func respondErr(c *gin.Context, err error) {
	status := statusFor(err)
	body := envelope{Success: false, Message: err.Error(), Error: "internal"}
	if e, ok := apperr.As(err); ok {
		body.Error = e.Code
		body.Message = e.Message
	}
	if status == http.StatusInternalServerError {
		logger.WithField("path", c.FullPath()).Errorf("request failed: %v", err)
		body.Message = "internal server error"
		body.Error = "internal"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func statusFor(err error) int {
	// a too-large image stays 413 even when wrapped as an invalid proof
	if errors.Is(err, imageingest.ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch apperr.KindOf(err) {
	case apperr.Validation:
		return http.StatusBadRequest
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.InvalidImage:
		return http.StatusUnprocessableEntity
	case apperr.TooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
