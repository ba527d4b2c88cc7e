package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/kbtrainer/internal/response"
	"github.com/stemsi/kbtrainer/internal/service"
)

// StudyHandler handles the sequential study walk.
type StudyHandler struct {
	studyService *service.StudyService
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(studyService *service.StudyService) *StudyHandler {
	return &StudyHandler{studyService: studyService}
}

// GetCurrent godoc
// GET /api/v1/study
func (h *StudyHandler) GetCurrent(c *gin.Context) {
	view, err := h.studyService.Current()
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Reveal godoc
// POST /api/v1/study/reveal
func (h *StudyHandler) Reveal(c *gin.Context) {
	view, err := h.studyService.Reveal(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Next godoc
// POST /api/v1/study/next
func (h *StudyHandler) Next(c *gin.Context) {
	step, err := h.studyService.Next()
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, step)
}

// Prev godoc
// POST /api/v1/study/prev
func (h *StudyHandler) Prev(c *gin.Context) {
	view, err := h.studyService.Prev()
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// ResetProgress godoc
// DELETE /api/v1/study/progress
func (h *StudyHandler) ResetProgress(c *gin.Context) {
	h.studyService.ResetProgress(c.Request.Context())
	response.Message(c, http.StatusOK, "study progress reset")
}
