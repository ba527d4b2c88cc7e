package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/kbtrainer/internal/config"
	"github.com/stemsi/kbtrainer/internal/handler"
	"github.com/stemsi/kbtrainer/internal/middleware"
	"github.com/stemsi/kbtrainer/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Overview *handler.OverviewHandler
	Question *handler.QuestionHandler
	Exam     *handler.ExamHandler
	Exercise *handler.ExerciseHandler
	Study    *handler.StudyHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// An empty AllowedOrigins allows all (*) so a dev frontend works
	// without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Compress())

	if cfg.MaxUploadBytes > 0 {
		// multipart parts beyond this spill to temp files instead of memory
		router.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/overview", handlers.Overview.GetOverview)

		// ─── Question set ──────────────────────────────────────────────
		api.POST("/questions/import", handlers.Question.ImportQuestions)
		api.GET("/questions", handlers.Question.ListQuestions)
		api.GET("/questions/:index", handlers.Question.GetQuestion)

		// ─── Exam ──────────────────────────────────────────────────────
		exam := api.Group("/exam")
		{
			exam.GET("", handlers.Exam.GetExam)
			exam.POST("/new", handlers.Exam.NewExam)
			exam.PUT("/answers/:position", handlers.Exam.SubmitAnswer)
			exam.POST("/complete", handlers.Exam.CompleteExam)
			exam.DELETE("", handlers.Exam.ResetExam)
		}

		// ─── Exercise ──────────────────────────────────────────────────
		exercise := api.Group("/exercise")
		{
			exercise.GET("", handlers.Exercise.GetSettings)
			exercise.PUT("/settings", handlers.Exercise.UpdateSettings)
			exercise.POST("/session", handlers.Exercise.StartSession)
			exercise.GET("/session", handlers.Exercise.GetSession)
			exercise.POST("/session/answer", handlers.Exercise.Answer)
			exercise.POST("/session/next", handlers.Exercise.Next)
			exercise.DELETE("/session", handlers.Exercise.AbandonSession)
			exercise.DELETE("/progress", handlers.Exercise.ResetProgress)
		}

		// ─── Study ─────────────────────────────────────────────────────
		study := api.Group("/study")
		{
			study.GET("", handlers.Study.GetCurrent)
			study.POST("/reveal", handlers.Study.Reveal)
			study.POST("/next", handlers.Study.Next)
			study.POST("/prev", handlers.Study.Prev)
			study.DELETE("/progress", handlers.Study.ResetProgress)
		}
	}

	ws := router.Group("/ws/v1")
	{
		ws.GET("/exam/countdown", handlers.WS.ExamCountdownStream)
	}

	return router
}
