package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"coursehub/internal/models"
	"coursehub/internal/service"
)

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName" binding:"required"`
	Role        string `json:"role" binding:"required,oneof=learner instructor"`
}

type userResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	Role          string `json:"role"`
	ProfileStatus string `json:"profileStatus"`
}

type authResponse struct {
	Success     bool         `json:"success"`
	AccessToken string       `json:"accessToken"`
	User        userResponse `json:"user"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		Role:          string(u.Role),
		ProfileStatus: string(u.ProfileStatus),
	}
}

func (h HandlerSet) RegisterAccount(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        models.UserRole(req.Role),
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Success:     true,
		AccessToken: result.AccessToken,
		User:        toUserResponse(result.User),
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, service.ErrAccountInactive):
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": err.Error()})
		default:
			fail(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Success:     true,
		AccessToken: result.AccessToken,
		User:        toUserResponse(result.User),
	})
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": toUserResponse(user)})
}
