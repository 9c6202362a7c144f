package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bruno-ai/bruno-be/internal/api/dto"
	"github.com/bruno-ai/bruno-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.HealthResponse{
			Status:  "healthy",
			Service: "bruno-api",
		})
	})

	generateHandler := handler.NewGenerateHandler(deps)

	// Submission endpoints share one budget; debug endpoints get their own.
	submitLimit := RateLimitMiddleware(deps.Limiter, "generate", deps.Limits.MaxRequests, deps.Logger)
	debugLimit := RateLimitMiddleware(deps.Limiter, "debug", deps.Limits.DebugRequests, deps.Logger)

	api := r.Group("/api")
	{
		// POST /api/generate - run the pipeline and return the combined video
		api.POST("/generate", submitLimit, generateHandler.Generate)

		// POST /api/generate-stream - run the pipeline with SSE progress
		api.POST("/generate-stream", submitLimit, generateHandler.GenerateStream)

		// POST /api/analyze-only - video analysis without generation
		api.POST("/analyze-only", debugLimit, generateHandler.AnalyzeOnly)

		// POST /api/prompt-only - analysis plus prompt, no generation
		api.POST("/prompt-only", debugLimit, generateHandler.PromptOnly)

		// GET /api/outputs/:filename - retrieve a generated video
		api.GET("/outputs/:filename", generateHandler.Output)
	}

	return r
}
