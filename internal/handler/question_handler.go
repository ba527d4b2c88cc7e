package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/kbtrainer/internal/importer"
	"github.com/stemsi/kbtrainer/internal/response"
	"github.com/stemsi/kbtrainer/internal/service"
	"github.com/stemsi/kbtrainer/internal/store"
)

// multipartOverhead leaves room for boundaries and part headers around the file.
const multipartOverhead = 64 << 10

// QuestionHandler handles the question set: spreadsheet import and listing.
type QuestionHandler struct {
	importService  *service.ImportService
	store          *store.QuestionStore
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(importService *service.ImportService, st *store.QuestionStore, maxUploadBytes int64, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		importService:  importService,
		store:          st,
		maxUploadBytes: maxUploadBytes,
		log:            log.With().Str("component", "question_handler").Logger(),
	}
}

// ImportQuestions godoc
// POST /api/v1/questions/import
// Replaces the question set with the rows of an uploaded .xlsx or .csv file.
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.log.Warn().Int64("limit", h.maxUploadBytes).Msg("Upload body exceeds limit")
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		h.log.Warn().Str("file", header.Filename).Int64("size", header.Size).Msg("Upload exceeds limit")
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	report, err := h.importService.Import(c.Request.Context(), header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrUnsupportedFormat):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, importer.ErrEmptyFile):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrEmptyFile)
		case errors.Is(err, importer.ErrNoQuestions):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
		default:
			response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrImportFailed,
				map[string]string{"detail": err.Error()})
		}
		return
	}

	response.Success(c, http.StatusCreated, report)
}

// ListQuestions godoc
// GET /api/v1/questions
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	questions := h.store.Questions()
	response.Success(c, http.StatusOK, gin.H{
		"questions": questions,
		"total":     len(questions),
	})
}

// GetQuestion godoc
// GET /api/v1/questions/:index
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidIndex)
		return
	}

	q, ok := h.store.Question(index)
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, q)
}
