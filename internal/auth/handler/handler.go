package handler

import (
	"net/http"

	"github.com/Awarix/Farc-mini-app-auth/internal/auth/service"
	"github.com/Awarix/Farc-mini-app-auth/internal/auth/transport"
	"github.com/Awarix/Farc-mini-app-auth/platform/httpkit"
	"github.com/Awarix/Farc-mini-app-auth/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Authenticate)
}

// Authenticate verifies the presented Quick Auth token and refreshes the
// caller's user record. The response carries only a success flag: failure
// details stay server-side.
func (h *Handler) Authenticate(c *gin.Context) {
	var req transport.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil || h.val.Struct(req) != nil {
		httpkit.JSON(c, http.StatusBadRequest, transport.TokenMissingResponse{
			Message: "Token not provided",
		})
		return
	}

	if _, err := h.svc.Authenticate(c.Request.Context(), req.Token); err != nil {
		httpkit.JSON(c, http.StatusUnauthorized, transport.AuthResponse{
			Success: false,
			Message: "Authentication failed",
		})
		return
	}

	httpkit.JSON(c, http.StatusOK, transport.AuthResponse{
		Success: true,
		Message: "Authentication successful",
	})
}
