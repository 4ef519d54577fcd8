package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"macrolog/logger"
	"macrolog/services"
)

type credentialsInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	Auth *services.AuthService
	Log  *logger.Logger
}

func NewAuthController(auth *services.AuthService, log *logger.Logger) *AuthController {
	return &AuthController{Auth: auth, Log: log}
}

func (ac *AuthController) Register(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	token, err := ac.Auth.Register(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, ac.Log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	token, err := ac.Auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, ac.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
