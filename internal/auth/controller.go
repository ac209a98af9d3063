package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"concertly/internal/shared/utils/response"
	"concertly/pkg/logger"
)

type Controller interface {
	Login(c *gin.Context)
	VerifyGoogleToken(c *gin.Context)
}

type controller struct {
	service Service
	log     *logger.Logger
}

func NewController(service Service, log *logger.Logger) Controller {
	return &controller{service: service, log: log}
}

func (ctrl *controller) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	result, err := ctrl.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			ctrl.log.LogAuthFailure(c.Request.Context(), "invalid_credentials", c.ClientIP())
			response.Error(c, http.StatusUnauthorized, "Invalid username or password", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Login failed", nil)
		return
	}

	response.Success(c, http.StatusOK, "Login successful", result)
}

func (ctrl *controller) VerifyGoogleToken(c *gin.Context) {
	var req VerifyGoogleTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	result, err := ctrl.service.VerifyGoogleToken(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, ErrInvalidGoogleToken) {
			ctrl.log.LogAuthFailure(c.Request.Context(), "invalid_google_token", c.ClientIP())
			response.Error(c, http.StatusUnauthorized, "Invalid Google token", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "Token verification failed", nil)
		return
	}

	response.Success(c, http.StatusOK, "Token verified", result)
}
