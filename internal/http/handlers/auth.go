package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/simplelender/backend/internal/apperror"
	"github.com/simplelender/backend/internal/auth"
	"github.com/simplelender/backend/internal/db"
)

type AuthService interface {
	SignUp(ctx context.Context, in auth.SignUpInput) error
	SignIn(ctx context.Context, email, password string) (*auth.SignInResult, error)
	UpdateProfile(ctx context.Context, email string, in db.ProfileUpdate) (*db.User, error)
}

type AuthHandler struct {
	authService AuthService
}

type signUpRequest struct {
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	err := h.authService.SignUp(c.Request.Context(), auth.SignUpInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "User created successfully", nil)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	result, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Sign in successfully", gin.H{
		"token":      result.Token,
		"token_type": "bearer",
		"expires_in": int64(result.ExpiresIn.Seconds()),
	})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	v, ok := c.Get("user")
	user, isUser := v.(*db.User)
	if !ok || !isUser {
		respondError(c, apperror.Auth("unauthorized", "Could not validate credentials"))
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), c.GetString("user_email"), db.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
