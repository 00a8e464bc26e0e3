package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/edupilot/edupilot-backend/internal/services"
)

type OpportunityHandler struct {
	opportunityService services.OpportunityService
}

func NewOpportunityHandler(opportunityService services.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{opportunityService: opportunityService}
}

func (oh *OpportunityHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	opportunities, err := oh.opportunityService.GetOpportunities(c.Request.Context(), nil, userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, opportunities)
}

func (oh *OpportunityHandler) Match(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	result, err := oh.opportunityService.MatchOpportunities(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

func (oh *OpportunityHandler) Apply(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	opportunityID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	opportunity, err := oh.opportunityService.MarkApplied(c.Request.Context(), nil, userID, opportunityID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, opportunity)
}
