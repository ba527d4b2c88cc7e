package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/kbtrainer/internal/model"
	"github.com/stemsi/kbtrainer/internal/response"
	"github.com/stemsi/kbtrainer/internal/service"
	"github.com/stemsi/kbtrainer/internal/validator"
)

// ExerciseHandler handles untimed practice sessions.
type ExerciseHandler struct {
	exerciseService *service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService *service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// GetSettings godoc
// GET /api/v1/exercise
func (h *ExerciseHandler) GetSettings(c *gin.Context) {
	response.Success(c, http.StatusOK, h.exerciseService.Settings())
}

// UpdateSettings godoc
// PUT /api/v1/exercise/settings
// Non-numeric or non-positive sizes leave the setting unchanged.
func (h *ExerciseHandler) UpdateSettings(c *gin.Context) {
	var req model.UpdateExerciseSettingsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	response.Success(c, http.StatusOK, h.exerciseService.SetSessionSize(req.QuestionsPerSession))
}

// StartSession godoc
// POST /api/v1/exercise/session
func (h *ExerciseHandler) StartSession(c *gin.Context) {
	view, err := h.exerciseService.StartSession(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

// GetSession godoc
// GET /api/v1/exercise/session
func (h *ExerciseHandler) GetSession(c *gin.Context) {
	view := h.exerciseService.Current()
	if view == nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoSession)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Answer godoc
// POST /api/v1/exercise/session/answer
func (h *ExerciseHandler) Answer(c *gin.Context) {
	var req model.ExerciseAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view := h.exerciseService.Answer(c.Request.Context(), *req.AnswerIndex)
	if view == nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoSession)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Next godoc
// POST /api/v1/exercise/session/next
func (h *ExerciseHandler) Next(c *gin.Context) {
	step := h.exerciseService.Next()
	response.Success(c, http.StatusOK, gin.H{
		"finished": step.Finished,
		"session":  h.exerciseService.Current(),
	})
}

// AbandonSession godoc
// DELETE /api/v1/exercise/session
func (h *ExerciseHandler) AbandonSession(c *gin.Context) {
	h.exerciseService.Abandon()
	response.Success(c, http.StatusOK, h.exerciseService.Settings())
}

// ResetProgress godoc
// DELETE /api/v1/exercise/progress
func (h *ExerciseHandler) ResetProgress(c *gin.Context) {
	response.Success(c, http.StatusOK, h.exerciseService.ResetProgress(c.Request.Context()))
}
