package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	googleauth "resume-review/internal/auth"
	"resume-review/internal/maintenance"
	"resume-review/internal/platform"
	"resume-review/internal/review"
	"resume-review/internal/shared/auth"
	"resume-review/internal/shared/config"
	"resume-review/internal/shared/metrics"
	"resume-review/internal/shared/server/middleware"
	"resume-review/internal/shared/server/respond"
)

const pollingRateLimitGroup = "POLLING"

// RouterDeps are the handlers and shared services the router mounts.
type RouterDeps struct {
	Config             config.Config
	Platform           *platform.Client
	Denylist           auth.Denylist
	ReviewHandler      *review.Handler
	MaintenanceHandler *maintenance.Handler
	GoogleAuth         *googleauth.GoogleService
	Limiter            *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env, deps.Denylist),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: "DEFAULT",
			GroupFor:     rateLimitGroup,
			Limiter:      limiter,
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT":             {Rate: 5, Burst: 20},
				pollingRateLimitGroup: {Rate: 10, Burst: 40},
			},
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"ok": true}
		if deps.Platform != nil {
			body["platform"] = deps.Platform.State()
			if err := deps.Platform.Ready(); err != nil {
				status = http.StatusServiceUnavailable
				body["ok"] = false
			}
		}
		respond.JSON(c, status, body)
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	registerMeRoutes(api)

	ready := api.Group("")
	if deps.Platform != nil {
		ready.Use(platform.RequireReady(deps.Platform))
	}
	if deps.ReviewHandler != nil {
		deps.ReviewHandler.RegisterRoutes(ready, middleware.SubmitRateLimit(deps.Config.SubmitRatePerMin, limiter))
	}
	if deps.MaintenanceHandler != nil {
		deps.MaintenanceHandler.RegisterRoutes(ready)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodGet {
		return "DEFAULT"
	}
	switch c.FullPath() {
	case "/api/v1/resumes/progress", "/api/v1/resumes/:id":
		return pollingRateLimitGroup
	}
	return "DEFAULT"
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
