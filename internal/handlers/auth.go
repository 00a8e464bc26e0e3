package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupilot/edupilot-backend/internal/services"
	"github.com/edupilot/edupilot-backend/internal/types"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email           string `json:"email"`
		Username        string `json:"username"`
		FullName        string `json:"full_name"`
		Password        string `json:"password"`
		DegreeProgram   string `json:"degree_program"`
		CurrentYear     int    `json:"current_year"`
		CurrentSemester int    `json:"current_semester"`
		CareerGoal      string `json:"career_goal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user := types.User{
		Email:           req.Email,
		Username:        req.Username,
		FullName:        req.FullName,
		Password:        req.Password,
		DegreeProgram:   req.DegreeProgram,
		CurrentYear:     req.CurrentYear,
		CurrentSemester: req.CurrentSemester,
		CareerGoal:      req.CareerGoal,
		IsActive:        true,
	}
	if err := ah.authService.RegisterUser(c.Request.Context(), &user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": "true"})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	accessToken, refreshToken, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	accessTTL := ah.authService.GetAccessTTL()
	expiresIn := int(accessTTL.Seconds())
	c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	accessToken, refreshToken, err := ah.authService.RefreshUser(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	accessTTL := ah.authService.GetAccessTTL()
	expiresIn := int(accessTTL.Seconds())
	c.JSON(http.StatusOK, gin.H{"access_token": accessToken, "refresh_token": refreshToken, "expires_in": expiresIn})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}
