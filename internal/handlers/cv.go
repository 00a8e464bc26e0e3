package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupilot/edupilot-backend/internal/services"
)

type CVHandler struct {
	cvService services.CVService
}

func NewCVHandler(cvService services.CVService) *CVHandler {
	return &CVHandler{cvService: cvService}
}

func (ch *CVHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cv, err := ch.cvService.GenerateCV(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, cv)
}

func (ch *CVHandler) Current(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cv, err := ch.cvService.GetCurrentCV(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, cv)
}

func (ch *CVHandler) Format(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req struct {
		FormatType string `json:"format_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cv, err := ch.cvService.FormatCV(c.Request.Context(), userID, req.FormatType)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, cv)
}
