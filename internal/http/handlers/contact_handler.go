// README: Emergency contact handlers.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripmate/internal/http/middleware"
	"tripmate/internal/modules/contact"
	"tripmate/internal/types"
)

type ContactHandler struct {
	contacts *contact.Service
}

func NewContactHandler(svc *contact.Service) *ContactHandler {
	return &ContactHandler{contacts: svc}
}

type createContactReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type contactView struct {
	ID        types.ID  `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *ContactHandler) Create(c *gin.Context) {
	var req createContactReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	ct, err := h.contacts.Create(c.Request.Context(), middleware.UserID(c), req.Name, req.Phone)
	if err != nil {
		writeContactError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"contact": contactView{
		ID:        ct.ID,
		Name:      ct.Name,
		Phone:     ct.Phone,
		CreatedAt: ct.CreatedAt,
	}})
}

func (h *ContactHandler) List(c *gin.Context) {
	contacts, err := h.contacts.ListByOwner(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeContactError(c, err)
		return
	}
	views := make([]contactView, 0, len(contacts))
	for _, ct := range contacts {
		views = append(views, contactView{
			ID:        ct.ID,
			Name:      ct.Name,
			Phone:     ct.Phone,
			CreatedAt: ct.CreatedAt,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"contacts": views})
}

func (h *ContactHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid contact id")
		return
	}
	if err := h.contacts.Delete(c.Request.Context(), types.ID(id), middleware.UserID(c)); err != nil {
		writeContactError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeContactError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, contact.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, contact.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, contact.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
