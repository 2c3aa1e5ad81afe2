package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/homehelp/homehelp-api/apperror"
	"github.com/homehelp/homehelp-api/middleware"
	"github.com/homehelp/homehelp-api/services"
)

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest is the body of PUT /users/me
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthController registers accounts, logs them in and manages profiles
type AuthController struct {
	identities *services.IdentityService
}

// NewAuthController creates an auth controller
func NewAuthController(identities *services.IdentityService) *AuthController {
	return &AuthController{identities: identities}
}

// Register handles POST /auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}

	user, token, err := ac.identities.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// Login handles POST /auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}

	user, token, err := ac.identities.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// GetMe handles GET /users/me
func (ac *AuthController) GetMe(c *gin.Context) {
	caller, err := middleware.GetVerifiedCaller(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	user, err := ac.identities.Get(c.Request.Context(), caller)
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateMe handles PUT /users/me
func (ac *AuthController) UpdateMe(c *gin.Context) {
	caller, err := middleware.GetVerifiedCaller(c)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	var req UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		apperror.Respond(c, err)
		return
	}

	user, err := ac.identities.UpdateProfile(c.Request.Context(), caller, services.ProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
