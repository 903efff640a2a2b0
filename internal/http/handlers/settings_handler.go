// README: Settings handlers for current snapshot, updates, and audit history.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"loadapp/internal/modules/settings"
)

type SettingsHandler struct {
	settings *settings.Service
}

func NewSettingsHandler(svc *settings.Service) *SettingsHandler {
	return &SettingsHandler{settings: svc}
}

func (h *SettingsHandler) Current(c *gin.Context) {
	snap, err := h.settings.Current(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *SettingsHandler) Defaults(c *gin.Context) {
	c.JSON(http.StatusOK, settings.Defaults())
}

type updateSettingsReq struct {
	Settings *settings.RateSettings `json:"settings"`
	Reason   string                 `json:"reason"`
	Actor    string                 `json:"actor,omitempty"`
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req updateSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Settings == nil {
		writeError(c, http.StatusBadRequest, "settings payload is required")
		return
	}

	saved, err := h.settings.Update(c.Request.Context(), settings.UpdateCommand{
		Settings: req.Settings,
		Reason:   req.Reason,
		Actor:    req.Actor,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *SettingsHandler) History(c *gin.Context) {
	history, err := h.settings.History(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h *SettingsHandler) ByVersion(c *gin.Context) {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "version must be an integer")
		return
	}
	snap, err := h.settings.ByVersion(c.Request.Context(), version)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
