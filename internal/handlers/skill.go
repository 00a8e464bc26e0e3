package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edupilot/edupilot-backend/internal/services"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type SkillHandler struct {
	skillService services.SkillService
}

func NewSkillHandler(skillService services.SkillService) *SkillHandler {
	return &SkillHandler{skillService: skillService}
}

func (sh *SkillHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	skills, err := sh.skillService.GetSkills(c.Request.Context(), nil, userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, skills)
}

func (sh *SkillHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		Name             string     `json:"name"`
		Category         string     `json:"category"`
		SubjectID        *uuid.UUID `json:"subject_id"`
		ProficiencyLevel float64    `json:"proficiency_level"`
		TargetLevel      float64    `json:"target_level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	skill := &types.Skill{
		Name:             req.Name,
		Category:         req.Category,
		SubjectID:        req.SubjectID,
		ProficiencyLevel: req.ProficiencyLevel,
		TargetLevel:      req.TargetLevel,
	}
	created, err := sh.skillService.CreateSkill(c.Request.Context(), nil, userID, skill)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, created)
}

func (sh *SkillHandler) UpdateProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	skillID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		ProficiencyLevel float64 `json:"proficiency_level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	skill, err := sh.skillService.UpdateProficiency(c.Request.Context(), nil, userID, skillID, req.ProficiencyLevel)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, skill)
}

func (sh *SkillHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	skillID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := sh.skillService.DeleteSkill(c.Request.Context(), nil, userID, skillID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
