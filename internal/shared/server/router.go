package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"keyword-history/internal/analyses"
	"keyword-history/internal/services/health"
	"keyword-history/internal/shared/config"
	"keyword-history/internal/shared/metrics"
	"keyword-history/internal/shared/server/middleware"
	"keyword-history/internal/shared/server/respond"
)

// RouterDeps carries the handlers and shared services the router mounts.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analyses.Handler
	Health          *health.Service
	Metrics         *metrics.Collector
	RateLimiter     *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: deps.RateLimiter,
		Rules: map[string]middleware.RateLimitRule{
			middleware.RateGroupSave: {Rate: deps.Config.SaveRateLimit.RPS, Burst: deps.Config.SaveRateLimit.Burst},
			middleware.RateGroupRead: {Rate: deps.Config.ReadRateLimit.RPS, Burst: deps.Config.ReadRateLimit.Burst},
		},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		body, ok := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, body)
	})
	if deps.Metrics != nil {
		r.GET("/metrics", deps.Metrics.Handler())
	}

	api := r.Group("/api")
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}

	registerFrontend(r, deps.Config.FrontendDir)
	return r
}

// registerFrontend serves index.html at the root and any other existing file
// under dir for unmatched GET requests.
func registerFrontend(r *gin.Engine, dir string) {
	dir = strings.TrimSpace(dir)
	r.GET("/", func(c *gin.Context) {
		if dir == "" {
			respond.Error(c, http.StatusNotFound, "NOT_FOUND", "not found")
			return
		}
		serveFile(c, filepath.Join(dir, "index.html"))
	})
	r.NoRoute(func(c *gin.Context) {
		method := c.Request.Method
		if dir == "" || strings.HasPrefix(c.Request.URL.Path, "/api/") || (method != http.MethodGet && method != http.MethodHead) {
			respond.Error(c, http.StatusNotFound, "NOT_FOUND", "not found")
			return
		}
		clean := path.Clean("/" + c.Request.URL.Path)
		if clean == "/" {
			clean = "/index.html"
		}
		serveFile(c, filepath.Join(dir, filepath.FromSlash(clean)))
	})
}

func serveFile(c *gin.Context, name string) {
	info, err := os.Stat(name)
	if err != nil || info.IsDir() {
		respond.Error(c, http.StatusNotFound, "NOT_FOUND", "not found")
		return
	}
	c.File(name)
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
