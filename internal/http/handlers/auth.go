package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripplanner/internal/http/middleware"
	"tripplanner/internal/services"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) authService(c *gin.Context) services.AuthService {
	return services.AuthService{
		Users:     a.Users,
		Secret:    a.JWTSecret,
		RequestID: middleware.GetRequestID(c),
	}
}

// POST /api/auth/login
func (a *API) Login(c *gin.Context) {
	if !a.requireStorage(c) {
		return
	}
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	token, user, err := a.authService(c).Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user.ToPublic(),
	})
}

// POST /api/auth/register
func (a *API) Register(c *gin.Context) {
	if !a.requireStorage(c) {
		return
	}
	var req services.RegisterInput
	if !BindJSONOrError(c, &req) {
		return
	}

	user, err := a.authService(c).Register(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "registration successful",
		"user":    user.ToPublic(),
	})
}
