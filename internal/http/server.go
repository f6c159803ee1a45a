// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tripmate/internal/http/handlers"
	"tripmate/internal/http/middleware"
	"tripmate/internal/modules/chat"
	"tripmate/internal/modules/contact"
	"tripmate/internal/modules/group"
	"tripmate/internal/modules/grouproute"
	"tripmate/internal/modules/matching"
	"tripmate/internal/modules/sos"
	"tripmate/internal/modules/trip"
)

type ServerDeps struct {
	Trip       *trip.Service
	Matches    *matching.PGStore
	Group      *group.Service
	GroupRoute *grouproute.Builder
	Chat       *chat.Service
	Contact    *contact.Service
	SOS        *sos.Service
	Log        *slog.Logger
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	return &Server{deps: deps}
}

func (s *Server) Routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(s.deps.Log))
	r.Use(middleware.Logging(s.deps.Log))
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.Auth())

	tripHandler := handlers.NewTripHandler(s.deps.Trip, s.deps.Matches)
	api.POST("/trips", tripHandler.Create)
	api.GET("/trips", tripHandler.List)
	api.GET("/trips/:id", tripHandler.Get)
	api.PATCH("/trips/:id/status", tripHandler.UpdateStatus)
	api.DELETE("/trips/:id", tripHandler.Delete)
	api.GET("/trips/:id/matches", tripHandler.Matches)

	groupHandler := handlers.NewGroupHandler(s.deps.Group, s.deps.GroupRoute, s.deps.Trip)
	api.POST("/groups", groupHandler.Create)
	api.POST("/groups/:id/join", groupHandler.Join)
	api.GET("/groups/:id/route", groupHandler.CombinedRoute)

	chatHandler := handlers.NewChatHandler(s.deps.Chat)
	api.POST("/groups/:id/messages", chatHandler.Post)
	api.GET("/groups/:id/messages", chatHandler.List)

	contactHandler := handlers.NewContactHandler(s.deps.Contact)
	api.POST("/contacts", contactHandler.Create)
	api.GET("/contacts", contactHandler.List)
	api.DELETE("/contacts/:id", contactHandler.Delete)

	sosHandler := handlers.NewSOSHandler(s.deps.SOS)
	api.POST("/sos", sosHandler.Trigger)

	return r
}
