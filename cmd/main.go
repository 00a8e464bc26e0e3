package main

import (
	"fmt"
	"os"
	"time"

	"github.com/edupilot/edupilot-backend/internal/clients/gcp"
	"github.com/edupilot/edupilot-backend/internal/clients/redisx"
	"github.com/edupilot/edupilot-backend/internal/db"
	"github.com/edupilot/edupilot-backend/internal/handlers"
	"github.com/edupilot/edupilot-backend/internal/logger"
	"github.com/edupilot/edupilot-backend/internal/middleware"
	"github.com/edupilot/edupilot-backend/internal/repos"
	"github.com/edupilot/edupilot-backend/internal/server"
	"github.com/edupilot/edupilot-backend/internal/services"
	"github.com/edupilot/edupilot-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	subjectRepo := repos.NewSubjectRepo(thePG, log)
	conceptRepo := repos.NewConceptRepo(thePG, log)
	submissionRepo := repos.NewSubmissionRepo(thePG, log)
	skillRepo := repos.NewSkillRepo(thePG, log)
	projectRepo := repos.NewProjectRepo(thePG, log)
	milestoneRepo := repos.NewMilestoneRepo(thePG, log)
	cvRepo := repos.NewCVRepo(thePG, log)
	opportunityRepo := repos.NewOpportunityRepo(thePG, log)

	// Clients
	log.Info("Setting up Clients from main...")
	bucketService, err := gcp.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService", "error", err)
	}
	roadmapCache, err := redisx.New(log)
	if err != nil {
		log.Warn("Could not init Redis cache", "error", err)
	}
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up Services from main...")
	avatarService, err := services.NewAvatarService(thePG, log, userRepo, bucketService)
	if err != nil {
		log.Warn("Could not init AvatarService, avatars disabled", "error", err)
		avatarService = nil
	}
	authService := services.NewAuthService(thePG, log, userRepo, avatarService, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo, avatarService)
	subjectService := services.NewSubjectService(thePG, log, subjectRepo, conceptRepo, openaiClient)
	conceptService := services.NewConceptService(thePG, log, subjectRepo, conceptRepo, openaiClient)
	roadmapService := services.NewRoadmapService(thePG, log, userRepo, subjectRepo, skillRepo, openaiClient, roadmapCache)
	skillService := services.NewSkillService(thePG, log, skillRepo)
	submissionService := services.NewSubmissionService(thePG, log, subjectRepo, submissionRepo, projectRepo, bucketService)
	cvService := services.NewCVService(thePG, log, userRepo, projectRepo, skillRepo, cvRepo, openaiClient)
	projectService := services.NewProjectService(thePG, log, projectRepo, subjectRepo, milestoneRepo, cvService, openaiClient)
	opportunityService := services.NewOpportunityService(thePG, log, opportunityRepo, skillRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	subjectHandler := handlers.NewSubjectHandler(subjectService, conceptService, submissionService)
	skillHandler := handlers.NewSkillHandler(skillService)
	roadmapHandler := handlers.NewRoadmapHandler(roadmapService)
	projectHandler := handlers.NewProjectHandler(projectService)
	cvHandler := handlers.NewCVHandler(cvService)
	opportunityHandler := handlers.NewOpportunityHandler(opportunityService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:        authHandler,
		AuthMiddleware:     authMiddleware,
		UserHandler:        userHandler,
		SubjectHandler:     subjectHandler,
		SkillHandler:       skillHandler,
		RoadmapHandler:     roadmapHandler,
		ProjectHandler:     projectHandler,
		CVHandler:          cvHandler,
		OpportunityHandler: opportunityHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
