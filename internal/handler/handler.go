package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/kbtrainer/internal/response"
	"github.com/stemsi/kbtrainer/internal/service"
)

// failService maps service errors onto the response envelope.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
