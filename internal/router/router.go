package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the anonymous surface: event browsing,
// registration and the registration/certificate lookups.  The
// registration endpoint sits behind the Redis token bucket; when rdb
// is nil the limiter is skipped and registration is unthrottled.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, rdb *redis.Client) {
	g := e.Group("/v1")
	g.GET("/events", p.ListEvents)
	g.GET("/events/:id", p.GetEvent)
	g.GET("/registrations/:ref", p.GetRegistration)
	g.GET("/certificates/:serial", p.GetCertificate)

	register := g.Group("")
	if rdb != nil {
		register.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}
	register.POST("/events/:id/register", p.Register)
}

// RegisterAdmin registers the staff surface behind JWT auth and role
// enforcement.  Tokens are minted by the organization's identity
// service; this API only verifies them.  The revenue leaderboard
// additionally sits behind the Redis response cache.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, r *handler.ReportsHandler, jwtSecret string, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "ORGANIZER"))

	// Catalog management.
	g.POST("/events", a.CreateEvent)
	g.PATCH("/events/:id", a.UpdateEvent)
	g.DELETE("/events/:id", a.DeleteEvent)
	g.POST("/events/:id/tiers", a.AddTier)
	g.PATCH("/events/:id/tiers/:tier_id", a.EditTier)
	g.POST("/events/:id/tiers/:tier_id/retire", a.RetireTier)

	// Ledger and attendance actions on individual entries.
	g.POST("/entries/:id/verify", a.VerifyEntry)
	g.POST("/entries/:id/unverify", a.UnverifyEntry)
	g.POST("/entries/:id/checkin", a.CheckIn)
	g.POST("/entries/:id/checkout", a.CheckOut)
	g.POST("/entries/:id/cancel", a.CancelEntry)
	g.POST("/entries/:id/certificate", a.IssueCertificate)
	g.DELETE("/entries/:id/certificate", a.RevokeCertificate)

	// Reports.  Per-event views are cheap enough to compute on each
	// request; the cross-event leaderboard is cached.
	g.GET("/events/:id/revenue", r.EventRevenue)
	g.GET("/events/:id/roster", r.Roster)
	if rdb != nil {
		g.GET("/reports/revenue", r.Leaderboard, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	} else {
		g.GET("/reports/revenue", r.Leaderboard)
	}
}
