package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/kbtrainer/internal/model"
	"github.com/stemsi/kbtrainer/internal/response"
	"github.com/stemsi/kbtrainer/internal/service"
	"github.com/stemsi/kbtrainer/internal/validator"
)

// ExamHandler handles the timed exam.
type ExamHandler struct {
	examService *service.ExamSessionService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamSessionService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// GetExam godoc
// GET /api/v1/exam
// Resumes the current exam, or starts one when there is none.
func (h *ExamHandler) GetExam(c *gin.Context) {
	view, err := h.examService.Begin(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// NewExam godoc
// POST /api/v1/exam/new
func (h *ExamHandler) NewExam(c *gin.Context) {
	view, err := h.examService.NewExam(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	response.Success(c, http.StatusCreated, view)
}

// SubmitAnswer godoc
// PUT /api/v1/exam/answers/:position
// Answers outside IN_PROGRESS are ignored; the returned view shows the
// state the answer was applied against.
func (h *ExamHandler) SubmitAnswer(c *gin.Context) {
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidIndex)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view := h.examService.SubmitAnswer(c.Request.Context(), position, *req.AnswerIndex)
	response.Success(c, http.StatusOK, view)
}

// CompleteExam godoc
// POST /api/v1/exam/complete
func (h *ExamHandler) CompleteExam(c *gin.Context) {
	results := h.examService.Finish(c.Request.Context())
	if results == nil {
		response.Fail(c, http.StatusConflict, response.ErrNoSession)
		return
	}
	response.Success(c, http.StatusOK, results)
}

// ResetExam godoc
// DELETE /api/v1/exam
func (h *ExamHandler) ResetExam(c *gin.Context) {
	h.examService.Reset(c.Request.Context())
	response.Success(c, http.StatusOK, h.examService.View())
}
