package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edupilot/edupilot-backend/internal/requestdata"
	"github.com/edupilot/edupilot-backend/internal/services"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type SubjectHandler struct {
	subjectService    services.SubjectService
	conceptService    services.ConceptService
	submissionService services.SubmissionService
}

func NewSubjectHandler(
	subjectService services.SubjectService,
	conceptService services.ConceptService,
	submissionService services.SubmissionService,
) *SubjectHandler {
	return &SubjectHandler{
		subjectService:    subjectService,
		conceptService:    conceptService,
		submissionService: submissionService,
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("no authenticated user in context"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func parseUUIDField(c *gin.Context, value, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid %s", name))
		return uuid.Nil, err
	}
	return id, nil
}

func (sh *SubjectHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Name        string `json:"name"`
		Code        string `json:"code"`
		Semester    int    `json:"semester"`
		Year        int    `json:"year"`
		Credits     int    `json:"credits"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	subject := &types.Subject{
		Name:        req.Name,
		Code:        req.Code,
		Semester:    req.Semester,
		Year:        req.Year,
		Credits:     req.Credits,
		Description: req.Description,
	}
	created, err := sh.subjectService.CreateSubject(c.Request.Context(), nil, userID, subject)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, created)
}

func (sh *SubjectHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subjects, err := sh.subjectService.GetSubjects(c.Request.Context(), nil, userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, subjects)
}

func (sh *SubjectHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subjectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	subject, err := sh.subjectService.GetSubject(c.Request.Context(), nil, userID, subjectID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, subject)
}

func (sh *SubjectHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subjectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	subject, err := sh.subjectService.UpdateSubject(c.Request.Context(), nil, userID, subjectID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, subject)
}

func (sh *SubjectHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subjectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := sh.subjectService.DeleteSubject(c.Request.Context(), nil, userID, subjectID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (sh *SubjectHandler) GenerateConcepts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subjectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	concepts, err := sh.conceptService.GenerateConcepts(c.Request.Context(), nil, userID, subjectID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"concepts": concepts})
}

func (sh *SubjectHandler) ListConcepts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subjectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	concepts, err := sh.conceptService.GetConcepts(c.Request.Context(), nil, userID, subjectID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"concepts": concepts})
}

func (sh *SubjectHandler) ToggleConcept(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subjectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	conceptID, err := strconv.Atoi(c.Param("conceptID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid conceptID"))
		return
	}
	result, err := sh.conceptService.ToggleConcept(c.Request.Context(), nil, userID, subjectID, conceptID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

func (sh *SubjectHandler) GenerateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subjectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	task, err := sh.subjectService.GenerateTask(c.Request.Context(), nil, userID, subjectID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"task": task})
}

func (sh *SubjectHandler) SubmitProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	subjectID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	task := c.PostForm("task")
	repositoryLink := c.PostForm("repository_link")

	fileHeader, err := c.FormFile("documentation")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "documentation file is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open documentation file"})
		return
	}
	defer f.Close()

	input := &services.SubmissionInput{
		Task:           task,
		RepositoryLink: repositoryLink,
		Filename:       fileHeader.Filename,
		ContentType:    fileHeader.Header.Get("Content-Type"),
		File:           f,
	}
	result, err := sh.submissionService.FinalizeSubmission(c.Request.Context(), userID, subjectID, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
