package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupilot/edupilot-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	user, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

func (uh *UserHandler) UpdateMe(c *gin.Context) {
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := uh.userService.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

func (uh *UserHandler) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open avatar file"})
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read avatar file"})
		return
	}

	user, err := uh.userService.UploadAvatarImage(c.Request.Context(), raw)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}
