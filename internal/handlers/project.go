package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edupilot/edupilot-backend/internal/services"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type ProjectHandler struct {
	projectService services.ProjectService
}

func NewProjectHandler(projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (ph *ProjectHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projects, err := ph.projectService.GetProjects(c.Request.Context(), nil, userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, projects)
}

func (ph *ProjectHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Title            string `json:"title"`
		Description      string `json:"description"`
		ProblemStatement string `json:"problem_statement"`
		Status           string `json:"status"`
		GithubURL        string `json:"github_url"`
		DifficultyLevel  string `json:"difficulty_level"`
		EstimatedHours   int    `json:"estimated_hours"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	project := &types.Project{
		Title:            req.Title,
		Description:      req.Description,
		ProblemStatement: req.ProblemStatement,
		Status:           req.Status,
		GithubURL:        req.GithubURL,
		DifficultyLevel:  req.DifficultyLevel,
		EstimatedHours:   req.EstimatedHours,
	}
	created, err := ph.projectService.CreateProject(c.Request.Context(), nil, userID, project)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, created)
}

func (ph *ProjectHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		SubjectID string `json:"subject_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	subjectID, err := parseUUIDField(c, req.SubjectID, "subject_id")
	if err != nil {
		return
	}
	project, err := ph.projectService.GenerateProject(c.Request.Context(), userID, subjectID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, project)
}

func (ph *ProjectHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	project, err := ph.projectService.GetProject(c.Request.Context(), nil, userID, projectID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, project)
}

func (ph *ProjectHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	project, err := ph.projectService.UpdateProject(c.Request.Context(), userID, projectID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, project)
}

func (ph *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := ph.projectService.DeleteProject(c.Request.Context(), nil, userID, projectID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ph *ProjectHandler) ListMilestones(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	milestones, err := ph.projectService.GetMilestones(c.Request.Context(), nil, userID, projectID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, milestones)
}

func (ph *ProjectHandler) CreateMilestone(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		TargetDate  *time.Time `json:"target_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	milestone := &types.Milestone{
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
	}
	created, err := ph.projectService.CreateMilestone(c.Request.Context(), nil, userID, projectID, milestone)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, created)
}

func (ph *ProjectHandler) CompleteMilestone(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	milestoneID, ok := pathUUID(c, "milestoneID")
	if !ok {
		return
	}
	milestone, err := ph.projectService.CompleteMilestone(c.Request.Context(), nil, userID, milestoneID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, milestone)
}
