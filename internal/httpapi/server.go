// Package httpapi serves projects, renders, exports and font uploads over
// HTTP with gin.
//
// Every JSON response uses one envelope: {"ok": bool} plus either "error"
// or the payload ("project", "family").
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/gogpu/artboard/render"
	"github.com/gogpu/artboard/store"
	"github.com/gogpu/artboard/text"
)

// Defaults for Deps fields left zero.
const (
	DefaultRenderSize     = 1024
	DefaultMaxRenderSize  = 4096
	DefaultMaxUploadBytes = 16 << 20
	ServiceName           = "artboard"
)

// Deps configures a Server.
type Deps struct {
	Store    store.Store
	Renderer *render.Renderer
	Fonts    *text.Registry

	// ExportRate limits archive exports per second across all clients.
	// Zero disables limiting.
	ExportRate  rate.Limit
	ExportBurst int

	// RenderRate limits previews the same way, on a separate budget.
	RenderRate  rate.Limit
	RenderBurst int
	// MaxRenderSize caps the preview size, at most render.MaxSize.
	MaxRenderSize int

	// AllowOrigins lists CORS origins. Empty allows all origins.
	AllowOrigins []string

	MaxUploadBytes int64
	Version        string
}

// Server is the HTTP API.
type Server struct {
	deps          Deps
	limiter       *rate.Limiter
	renderLimiter *rate.Limiter
	engine        *gin.Engine
}

// New builds a Server and its routes.
func New(deps Deps) *Server {
	if deps.Renderer == nil {
		deps.Renderer = render.New()
	}
	if deps.Fonts == nil {
		deps.Fonts = text.DefaultRegistry()
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if deps.MaxRenderSize <= 0 || deps.MaxRenderSize > render.MaxSize {
		deps.MaxRenderSize = DefaultMaxRenderSize
	}
	s := &Server{deps: deps}
	if deps.ExportRate > 0 {
		s.limiter = rate.NewLimiter(deps.ExportRate, max(deps.ExportBurst, 1))
	}
	if deps.RenderRate > 0 {
		s.renderLimiter = rate.NewLimiter(deps.RenderRate, max(deps.RenderBurst, 1))
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), corsMiddleware(deps.AllowOrigins))
	s.Register(r)
	s.engine = r
	return s
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler { return s.engine }

// Register adds the routes to r.
func (s *Server) Register(r gin.IRouter) {
	r.GET("/health", s.health)

	api := r.Group("/api/v1")
	projects := api.Group("/projects")
	projects.POST("", s.createProject)
	projects.POST("/new", s.createProject)
	projects.GET("/:id", s.getProject)
	projects.PUT("/:id", s.updateProject)
	projects.GET("/:id/render", s.renderProject)
	projects.POST("/:id/export", s.exportProject)

	api.POST("/fonts", s.uploadFont)
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK        bool      `json:"ok"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version,omitempty"`
	Fonts     int       `json:"fonts"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		OK:        true,
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   ServiceName,
		Version:   s.deps.Version,
		Fonts:     len(s.deps.Fonts.Families()),
	})
}
