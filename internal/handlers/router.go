package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/logic-quiz-service/internal/metrics"
	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/services"
	"github.com/SAP-F-2025/logic-quiz-service/internal/utils"
	"github.com/SAP-F-2025/logic-quiz-service/internal/validator"
)

// HandlerConfig carries the HTTP-only knobs of the router
type HandlerConfig struct {
	SubmitRateLimitPerMinute int
	Metrics                  *metrics.Metrics
}

type HandlerManager struct {
	quizHandler    *QuizHandler
	adminHandler   *AdminHandler
	userHandler    *UserHandler
	authMiddleware *CasdoorAuthMiddleware
	serviceManager services.ServiceManager
	logger         utils.Logger
	config         HandlerConfig
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	authMiddleware *CasdoorAuthMiddleware,
	config HandlerConfig,
) *HandlerManager {
	return &HandlerManager{
		quizHandler: NewQuizHandler(
			serviceManager.QuestionBank(),
			serviceManager.Session(),
			serviceManager.Scoring(),
			serviceManager.Result(),
			validator,
			logger,
		),
		adminHandler:   NewAdminHandler(serviceManager.Admin(), serviceManager.Result(), serviceManager.Export(), validator, logger),
		userHandler:    NewUserHandler(serviceManager.Admin(), logger),
		authMiddleware: authMiddleware,
		serviceManager: serviceManager,
		logger:         logger,
		config:         config,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Test taker routes - Students and Admins
		test := v1.Group("/test")
		test.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
		{
			test.GET("/questions/:level", hm.quizHandler.ListQuestions)
			test.POST("/sessions", hm.quizHandler.StartSession)
			test.POST("/submit", RateLimitMiddleware(hm.config.SubmitRateLimitPerMinute), hm.quizHandler.Submit)
			test.GET("/settings/:level", hm.quizHandler.GetSettings)
			test.GET("/status", hm.quizHandler.Status)
		}

		results := v1.Group("/results")
		results.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
		{
			results.GET("/me", hm.quizHandler.MyResults)
			results.GET("/:id", hm.quizHandler.GetResult)
		}

		// Admin routes - Admins only
		admin := v1.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			questions := admin.Group("/questions")
			{
				questions.GET("", hm.adminHandler.ListQuestions)
				questions.POST("", hm.adminHandler.CreateQuestion)
				questions.GET("/:id", hm.adminHandler.GetQuestion)
				questions.PUT("/:id", hm.adminHandler.UpdateQuestion)
				questions.DELETE("/:id", hm.adminHandler.DeleteQuestion)
				questions.PUT("/:id/active", hm.adminHandler.SetQuestionActive)
			}

			settings := admin.Group("/settings")
			{
				settings.GET("", hm.adminHandler.ListSettings)
				settings.PUT("", hm.adminHandler.UpdateSettingsBatch)
				settings.PUT("/:level", hm.adminHandler.UpdateSettings)
			}

			adminResults := admin.Group("/results")
			{
				adminResults.GET("", hm.adminHandler.ListResults)
				adminResults.GET("/export", hm.adminHandler.ExportResults)
			}

			users := admin.Group("/users")
			{
				users.GET("", hm.userHandler.ListUsers)
				users.GET("/:id/results", hm.adminHandler.ListUserResults)
			}
		}
	}

	// Health check endpoint
	router.GET("/health", hm.health)

	if hm.config.Metrics != nil {
		router.GET("/metrics", hm.config.Metrics.Handler())
	}
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.GetLogger(c, hm.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": "logic-quiz-service",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "logic-quiz-service",
	})
}
