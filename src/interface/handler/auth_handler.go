package handler

import (
	"errors"
	"net/http"

	"ria-board/src/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	auth   service.AuthService
	logger *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth service.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Login verifies credentials and issues an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"username":  req.Username,
			"client_ip": c.ClientIP(),
		}).Warn("ログインに失敗")

		status := http.StatusUnauthorized
		if errors.Is(err, service.ErrAuthNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, ErrorResponseDTO{
			Error: "Invalid credentials",
		})
		return
	}

	h.logger.WithField("username", req.Username).Info("ログインしました")
	c.JSON(http.StatusOK, LoginResponseDTO{Token: token})
}
