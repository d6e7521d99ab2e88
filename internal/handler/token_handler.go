package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medimind/reminder-dispatch/internal/domain"
	"github.com/medimind/reminder-dispatch/internal/identity"
	"github.com/medimind/reminder-dispatch/internal/service/token"
)

type TokenHandler struct {
	tokenService *token.Service
}

func NewTokenHandler(tokenService *token.Service) *TokenHandler {
	return &TokenHandler{
		tokenService: tokenService,
	}
}

type saveTokenRequest struct {
	Token string `json:"token"`
}

// HandleSaveToken registers a device push token for the resolved user.
func (h *TokenHandler) HandleSaveToken(c *gin.Context) {
	ctx := c.Request.Context()
	userID := identity.UserID(c)

	var req saveTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "save token binding failed",
			slog.String("error", err.Error()),
		)
		c.String(http.StatusBadRequest, "Invalid request")
		return
	}

	if err := h.tokenService.Register(ctx, userID, req.Token); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.String(http.StatusBadRequest, "Invalid request")
			return
		}
		c.String(http.StatusInternalServerError, "Error saving token")
		return
	}

	c.String(http.StatusOK, "Token saved")
}
