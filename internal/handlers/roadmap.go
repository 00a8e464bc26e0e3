package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/edupilot/edupilot-backend/internal/services"
)

type RoadmapHandler struct {
	roadmapService services.RoadmapService
}

func NewRoadmapHandler(roadmapService services.RoadmapService) *RoadmapHandler {
	return &RoadmapHandler{roadmapService: roadmapService}
}

func (rh *RoadmapHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	result, err := rh.roadmapService.GenerateRoadmap(c.Request.Context(), nil, userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
