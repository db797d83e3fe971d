package handler

import (
	"strconv"

	"github.com/Awarix/Farc-mini-app-auth/internal/users/service"
	"github.com/Awarix/Farc-mini-app-auth/internal/users/transport"
	"github.com/Awarix/Farc-mini-app-auth/platform/apperr"
	"github.com/Awarix/Farc-mini-app-auth/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/user", h.GetUser)
}

// GetUser is the unauthenticated bootstrap read: the client fetches (or lazily
// creates) its user record by fid before completing full authentication.
func (h *Handler) GetUser(c *gin.Context) {
	fidParam := c.Query("fid")
	if fidParam == "" {
		httpkit.HandleError(c, apperr.BadRequest("fid is required"))
		return
	}

	fid, err := strconv.ParseInt(fidParam, 10, 64)
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("Invalid fid format"))
		return
	}

	user, err := h.svc.FetchOrCreate(c.Request.Context(), fid)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromUser(user))
}
