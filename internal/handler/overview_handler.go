package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/kbtrainer/internal/response"
	"github.com/stemsi/kbtrainer/internal/service"
)

// OverviewHandler serves the home screen.
type OverviewHandler struct {
	overviewService *service.OverviewService
}

func NewOverviewHandler(overviewService *service.OverviewService) *OverviewHandler {
	return &OverviewHandler{overviewService: overviewService}
}

// GetOverview godoc
// GET /api/v1/overview
func (h *OverviewHandler) GetOverview(c *gin.Context) {
	response.Success(c, http.StatusOK, h.overviewService.Get())
}
