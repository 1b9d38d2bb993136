package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smartcv/searchpanel/internal/config"
	"github.com/smartcv/searchpanel/internal/services"
)

const sessionCookie = "panel_session"

// Server is the browser-facing HTTP surface of the control panel.
type Server struct {
	engine *gin.Engine
	http   *http.Server
}

func NewServer(cfg config.ServerConfig, flow *services.Flow, poller *services.Poller) *Server {

	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware(cfg.CorsOrigin))
	engine.Use(sessionMiddleware(cfg.SessionTTL))

	h := &handlers{flow: flow, poller: poller}

	api := engine.Group("/api")
	{
		api.POST("/search", h.submitSearch)
		api.GET("/status", h.checkStatus)
		api.POST("/auto-refresh", h.setAutoRefresh)
		api.GET("/session", h.getSession)
		api.GET("/results", h.getResults)
		api.GET("/results/csv", h.downloadCSV)
		api.POST("/handoff", h.handoff)
	}

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: engine,
		},
	}
}

func corsMiddleware(origin string) gin.HandlerFunc {

	corsConfig := cors.DefaultConfig()
	if origin == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{origin}
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")

	return cors.New(corsConfig)
}

// sessionMiddleware pins every browser to a session cookie so the flow state
// survives page reloads for the cookie's lifetime.
func sessionMiddleware(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {

		id, err := c.Cookie(sessionCookie)
		if err != nil || id == "" {
			id = uuid.NewString()
		}
		c.SetCookie(sessionCookie, id, int(ttl.Seconds()), "/", "", false, true)

		c.Set("sessionID", id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString("sessionID")
}

func (s *Server) Run() error {

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
