// README: SOS handler; records the alert and notifies emergency contacts.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripmate/internal/http/middleware"
	"tripmate/internal/modules/sos"
	"tripmate/internal/types"
)

type SOSHandler struct {
	sos *sos.Service
}

func NewSOSHandler(svc *sos.Service) *SOSHandler {
	return &SOSHandler{sos: svc}
}

type triggerSOSReq struct {
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

func (h *SOSHandler) Trigger(c *gin.Context) {
	var req triggerSOSReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	var position *types.Point
	if req.Lat != nil && req.Lng != nil {
		position = &types.Point{Lat: *req.Lat, Lng: *req.Lng}
	}
	alert, report, err := h.sos.Trigger(c.Request.Context(), middleware.UserID(c), req.Message, position)
	if err != nil {
		switch {
		case errors.Is(err, sos.ErrBadRequest):
			writeError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, sos.ErrNoContacts):
			writeError(c, http.StatusConflict, err.Error())
		default:
			writeError(c, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"alert_id": alert.ID,
		"report":   report,
	})
}
