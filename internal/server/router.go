package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/edupilot/edupilot-backend/internal/handlers"
	"github.com/edupilot/edupilot-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	UserHandler        *handlers.UserHandler
	SubjectHandler     *handlers.SubjectHandler
	SkillHandler       *handlers.SkillHandler
	RoadmapHandler     *handlers.RoadmapHandler
	ProjectHandler     *handlers.ProjectHandler
	CVHandler          *handlers.CVHandler
	OpportunityHandler *handlers.OpportunityHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/auth/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/auth/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	protected.PUT("/user", cfg.UserHandler.UpdateMe)
	protected.POST("/user/avatar", cfg.UserHandler.UploadAvatar)
	// Academic
	academic := protected.Group("/academic")
	{
		academic.GET("/subjects", cfg.SubjectHandler.List)
		academic.POST("/subjects", cfg.SubjectHandler.Create)
		academic.GET("/subjects/:id", cfg.SubjectHandler.Get)
		academic.PUT("/subjects/:id", cfg.SubjectHandler.Update)
		academic.DELETE("/subjects/:id", cfg.SubjectHandler.Delete)
		academic.GET("/subjects/:id/concepts", cfg.SubjectHandler.ListConcepts)
		academic.POST("/subjects/:id/concepts", cfg.SubjectHandler.GenerateConcepts)
		academic.POST("/subjects/:id/concepts/:conceptID/toggle", cfg.SubjectHandler.ToggleConcept)
		academic.POST("/subjects/:id/task", cfg.SubjectHandler.GenerateTask)
		academic.POST("/subjects/:id/submit", cfg.SubjectHandler.SubmitProject)
		academic.GET("/skills", cfg.SkillHandler.List)
		academic.POST("/skills", cfg.SkillHandler.Create)
		academic.PUT("/skills/:id/progress", cfg.SkillHandler.UpdateProgress)
		academic.DELETE("/skills/:id", cfg.SkillHandler.Delete)
		academic.GET("/roadmap", cfg.RoadmapHandler.Generate)
	}
	// Projects
	projects := protected.Group("/projects")
	{
		projects.GET("", cfg.ProjectHandler.List)
		projects.POST("", cfg.ProjectHandler.Create)
		projects.POST("/generate", cfg.ProjectHandler.Generate)
		projects.GET("/:id", cfg.ProjectHandler.Get)
		projects.PUT("/:id", cfg.ProjectHandler.Update)
		projects.DELETE("/:id", cfg.ProjectHandler.Delete)
		projects.GET("/:id/milestones", cfg.ProjectHandler.ListMilestones)
		projects.POST("/:id/milestones", cfg.ProjectHandler.CreateMilestone)
		projects.PUT("/milestones/:milestoneID/complete", cfg.ProjectHandler.CompleteMilestone)
	}
	// CV
	cv := protected.Group("/cv")
	{
		cv.POST("/generate", cfg.CVHandler.Generate)
		cv.GET("/current", cfg.CVHandler.Current)
		cv.POST("/format", cfg.CVHandler.Format)
	}
	// Opportunities
	opportunities := protected.Group("/opportunities")
	{
		opportunities.GET("", cfg.OpportunityHandler.List)
		opportunities.POST("/match", cfg.OpportunityHandler.Match)
		opportunities.PUT("/:id/apply", cfg.OpportunityHandler.Apply)
	}

	return router
}
