// README: Group handlers for create/join and the combined group route.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripmate/internal/http/middleware"
	"tripmate/internal/modules/group"
	"tripmate/internal/modules/grouproute"
	"tripmate/internal/modules/trip"
	"tripmate/internal/types"
)

type GroupHandler struct {
	groups *group.Service
	routes *grouproute.Builder
	trips  *trip.Service
}

func NewGroupHandler(groups *group.Service, routes *grouproute.Builder, trips *trip.Service) *GroupHandler {
	return &GroupHandler{groups: groups, routes: routes, trips: trips}
}

type createGroupReq struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

type groupView struct {
	ID        types.ID  `json:"id"`
	Name      string    `json:"name"`
	CreatorID types.ID  `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *GroupHandler) Create(c *gin.Context) {
	var req createGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	members := make([]types.ID, 0, len(req.MemberIDs))
	for _, m := range req.MemberIDs {
		members = append(members, types.ID(m))
	}
	g, err := h.groups.Create(c.Request.Context(), req.Name, middleware.UserID(c), members)
	if err != nil {
		writeGroupError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"group": groupView{
		ID:        g.ID,
		Name:      g.Name,
		CreatorID: g.CreatorID,
		CreatedAt: g.CreatedAt,
	}})
}

func (h *GroupHandler) Join(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid group id")
		return
	}
	if err := h.groups.Join(c.Request.Context(), types.ID(id), middleware.UserID(c)); err != nil {
		writeGroupError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"joined": true})
}

// CombinedRoute builds one shared route through every member's active trip.
func (h *GroupHandler) CombinedRoute(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid group id")
		return
	}
	groupID := types.ID(id)
	userID := middleware.UserID(c)
	if err := h.groups.RequireMember(c.Request.Context(), groupID, userID); err != nil {
		writeGroupError(c, err)
		return
	}
	memberIDs, err := h.groups.MemberIDs(c.Request.Context(), groupID)
	if err != nil {
		writeGroupError(c, err)
		return
	}

	var memberTrips []grouproute.MemberTrip
	for _, mid := range memberIDs {
		t := h.activeTrip(c, mid)
		if t == nil {
			continue
		}
		memberTrips = append(memberTrips, grouproute.MemberTrip{
			UserID:          t.UserID,
			SourceName:      t.SourceName,
			DestinationName: t.DestinationName,
			Source:          t.Source,
			Destination:     t.Destination,
			Mode:            t.Mode,
		})
	}

	route, err := h.routes.Build(c.Request.Context(), memberTrips)
	if err != nil {
		if errors.Is(err, grouproute.ErrNoRoute) {
			writeError(c, http.StatusBadGateway, err.Error())
			return
		}
		writeGroupError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"route": route})
}

// activeTrip returns the member's most recent active trip, or nil.
func (h *GroupHandler) activeTrip(c *gin.Context, userID types.ID) *trip.Trip {
	trips, err := h.trips.ListByUser(c.Request.Context(), userID)
	if err != nil {
		return nil
	}
	for i := range trips {
		if trips[i].Status == trip.StatusActive {
			return &trips[i]
		}
	}
	return nil
}

func writeGroupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, group.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, group.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, group.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
