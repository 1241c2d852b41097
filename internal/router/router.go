package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/brotherhood/platform/internal/config"
	"github.com/brotherhood/platform/internal/handler"
	"github.com/brotherhood/platform/internal/hub"
	"github.com/brotherhood/platform/internal/identity"
	"github.com/brotherhood/platform/internal/middleware"
	"github.com/brotherhood/platform/internal/repository"
)

// Handlers collects every handler the router wires up.  main constructs
// them once and hands the bundle over.
type Handlers struct {
	Users    *handler.UserHandler
	Posts    *handler.PostHandler
	Comments *handler.CommentHandler
	Chat     *handler.ChatHandler
	DMs      *handler.DMHandler
	Files    *handler.FileHandler
	Admin    *handler.AdminHandler
}

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance: the health check and the WebSocket path.
// The socket performs its own authentication through the in-band auth
// handshake, so it is registered outside the identity middleware.
func RegisterRoutes(e *echo.Echo, ws *hub.Hub) {
	// This endpoint can be used by load balancers or monitoring systems to
	// verify that the service is up and running.
	e.GET("/healthz", handler.Health)
	e.GET("/ws", hub.ServeWS(ws))
}

// RegisterAPI registers every authenticated endpoint under /v1.  The
// identity middleware resolves and syncs the acting user before any
// handler runs; the rate limiter sits in front of it so unauthenticated
// floods are shed first.
func RegisterAPI(e *echo.Echo, h Handlers, verifier identity.TokenVerifier, users *repository.UserRepo, cfg config.Config, rdb *redis.Client) {
	v1 := e.Group("/v1")
	v1.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))
	v1.Use(middleware.Authenticate(verifier, users, cfg))

	// Current user and user listing.
	v1.GET("/me", h.Users.Me)
	v1.GET("/users", h.Users.List)

	// Feed and announcements.
	v1.GET("/posts", h.Posts.List)
	v1.POST("/posts", h.Posts.Create)
	v1.DELETE("/posts/:id", h.Posts.Delete)
	v1.POST("/posts/:id/like", h.Posts.ToggleLike)

	// Comments.
	v1.GET("/posts/:id/comments", h.Comments.List)
	v1.POST("/posts/:id/comments", h.Comments.Create)
	v1.DELETE("/comments/:id", h.Comments.Delete)

	// Shared chat room.
	v1.GET("/chat/messages", h.Chat.List)
	v1.POST("/chat/messages", h.Chat.Create)
	v1.DELETE("/chat/messages/:id", h.Chat.Delete)

	// Direct messages.
	v1.GET("/dm/:userID", h.DMs.Conversation)
	v1.POST("/dm/:userID", h.DMs.Send)
	v1.DELETE("/dm/messages/:id", h.DMs.Delete)

	// Uploads.
	v1.POST("/files", h.Files.Upload)
	v1.GET("/files/:id", h.Files.Download)
	v1.DELETE("/files/:id", h.Files.Delete)

	// Moderation surface: shared password, ranks, webhook configuration.
	v1.PUT("/admin/password", h.Admin.SetPassword)
	v1.POST("/admin/unlock", h.Admin.Unlock)
	v1.PUT("/users/:id/role", h.Admin.SetRole)
	v1.DELETE("/users/:id/role", h.Admin.ClearRole)
	v1.GET("/admin/webhooks", h.Admin.GetWebhooks)
	v1.PUT("/admin/webhooks", h.Admin.SetWebhooks)
}
