// README: Group chat handlers; poll-based history over Redis.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tripmate/internal/http/middleware"
	"tripmate/internal/modules/chat"
	"tripmate/internal/modules/group"
	"tripmate/internal/types"
)

type ChatHandler struct {
	chat *chat.Service
}

func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{chat: svc}
}

type postMessageReq struct {
	Text string `json:"text"`
}

func (h *ChatHandler) Post(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid group id")
		return
	}
	var req postMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	msg, err := h.chat.Post(c.Request.Context(), types.ID(id), middleware.UserID(c), req.Text)
	if err != nil {
		writeChatError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"message": msg})
}

// List returns messages after the given sequence number. Clients poll with
// ?after=<seq of last seen message>; omitting it returns full history.
func (h *ChatHandler) List(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid group id")
		return
	}
	after := int64(-1)
	if raw := c.Query("after"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "invalid after parameter")
			return
		}
		after = n
	}
	msgs, err := h.chat.ListSince(c.Request.Context(), types.ID(id), middleware.UserID(c), after)
	if err != nil {
		writeChatError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"messages": msgs})
}

func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrForbidden), errors.Is(err, group.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, group.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
