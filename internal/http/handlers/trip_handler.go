// README: Trip handlers for create/list/get/status/delete and match listing.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripmate/internal/http/middleware"
	"tripmate/internal/modules/matching"
	"tripmate/internal/modules/routing"
	"tripmate/internal/modules/trip"
	"tripmate/internal/types"
)

// MatchReader lists recorded matches for a trip.
type MatchReader interface {
	ListForTrip(ctx context.Context, tripID types.ID) ([]matching.TripMatch, error)
}

type TripHandler struct {
	trips   *trip.Service
	matches MatchReader
}

func NewTripHandler(trips *trip.Service, matches MatchReader) *TripHandler {
	return &TripHandler{trips: trips, matches: matches}
}

type createTripReq struct {
	Source        string `json:"source"`
	Destination   string `json:"destination"`
	TravelDate    string `json:"travel_date"`
	TravelTime    string `json:"travel_time"`
	Mode          string `json:"mode"`
	Preference    string `json:"preference"`
	MatchRadiusKm int    `json:"match_radius_km"`
}

type tripView struct {
	ID              types.ID     `json:"id"`
	UserID          types.ID     `json:"user_id"`
	SourceName      string       `json:"source_name"`
	DestinationName string       `json:"destination_name"`
	Source          *types.Point `json:"source,omitempty"`
	Destination     *types.Point `json:"destination,omitempty"`
	TravelDate      string       `json:"travel_date"`
	TravelTime      string       `json:"travel_time,omitempty"`
	Mode            string       `json:"mode"`
	Preference      string       `json:"preference"`
	Status          string       `json:"status"`
	MatchRadiusKm   int          `json:"match_radius_km"`
	CreatedAt       time.Time    `json:"created_at"`
}

func toTripView(t *trip.Trip) tripView {
	return tripView{
		ID:              t.ID,
		UserID:          t.UserID,
		SourceName:      t.SourceName,
		DestinationName: t.DestinationName,
		Source:          t.Source,
		Destination:     t.Destination,
		TravelDate:      t.TravelDate,
		TravelTime:      t.TravelTime,
		Mode:            string(t.Mode),
		Preference:      string(t.Preference),
		Status:          string(t.Status),
		MatchRadiusKm:   t.MatchRadiusKm,
		CreatedAt:       t.CreatedAt,
	}
}

func (h *TripHandler) Create(c *gin.Context) {
	var req createTripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.trips.Create(c.Request.Context(), trip.CreateCommand{
		UserID:        middleware.UserID(c),
		SourceName:    req.Source,
		Destination:   req.Destination,
		TravelDate:    req.TravelDate,
		TravelTime:    req.TravelTime,
		Mode:          req.Mode,
		Preference:    req.Preference,
		MatchRadiusKm: req.MatchRadiusKm,
	})
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"trip":   toTripView(res.Trip),
		"routes": routeViews(res.Routes),
	})
}

func routeViews(ranked []routing.Ranked) []routing.Ranked {
	if ranked == nil {
		return []routing.Ranked{}
	}
	return ranked
}

func (h *TripHandler) List(c *gin.Context) {
	trips, err := h.trips.ListByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeTripError(c, err)
		return
	}
	views := make([]tripView, 0, len(trips))
	for i := range trips {
		views = append(views, toTripView(&trips[i]))
	}
	writeJSON(c, http.StatusOK, gin.H{"trips": views})
}

func (h *TripHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	t, err := h.trips.Get(c.Request.Context(), types.ID(id), middleware.UserID(c))
	if err != nil {
		writeTripError(c, err)
		return
	}
	view := toTripView(t)
	writeJSON(c, http.StatusOK, gin.H{"trip": view, "geometry": t.Geometry})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *TripHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.trips.UpdateStatus(c.Request.Context(), types.ID(id), middleware.UserID(c), trip.Status(req.Status))
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": req.Status})
}

func (h *TripHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	if err := h.trips.Delete(c.Request.Context(), types.ID(id), middleware.UserID(c)); err != nil {
		writeTripError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type matchView struct {
	ID            types.ID  `json:"id"`
	TripID        types.ID  `json:"trip_id"`
	MatchedTripID types.ID  `json:"matched_trip_id"`
	Score         int       `json:"score"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func (h *TripHandler) Matches(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return
	}
	// Ownership check happens via Get before exposing another user's matches.
	if _, err := h.trips.Get(c.Request.Context(), types.ID(id), middleware.UserID(c)); err != nil {
		writeTripError(c, err)
		return
	}
	records, err := h.matches.ListForTrip(c.Request.Context(), types.ID(id))
	if err != nil {
		writeTripError(c, err)
		return
	}
	views := make([]matchView, 0, len(records))
	for _, m := range records {
		views = append(views, matchView{
			ID:            m.ID,
			TripID:        m.TripID,
			MatchedTripID: m.MatchedTripID,
			Score:         m.Score,
			Status:        string(m.Status),
			CreatedAt:     m.CreatedAt,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"matches": views})
}

func writeTripError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, trip.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, trip.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, trip.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, trip.ErrInvalidState):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, trip.ErrGeocodeFailed):
		writeError(c, http.StatusBadGateway, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
