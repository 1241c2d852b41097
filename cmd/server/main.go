package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/brotherhood/platform/internal/config"
	"github.com/brotherhood/platform/internal/database"
	"github.com/brotherhood/platform/internal/handler"
	"github.com/brotherhood/platform/internal/hub"
	"github.com/brotherhood/platform/internal/identity"
	"github.com/brotherhood/platform/internal/maintenance"
	"github.com/brotherhood/platform/internal/notify"
	"github.com/brotherhood/platform/internal/queue"
	"github.com/brotherhood/platform/internal/repository"
	"github.com/brotherhood/platform/internal/router"
)

func main() {
	// A local .env is optional; real deployments set the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	cancel()

	// Repositories.
	users := repository.NewUserRepo(db)
	posts := repository.NewPostRepo(db)
	comments := repository.NewCommentRepo(db)
	chat := repository.NewChatRepo(db)
	dms := repository.NewDMRepo(db)
	settings := repository.NewSettingRepo(db)
	files := repository.NewFileRepo(db)

	// Identity strategy is selected once at startup: a configured secret
	// means verified tokens, an empty one means trusted headers (dev only).
	var verifier identity.TokenVerifier
	if cfg.IdentitySecret != "" {
		verifier = identity.NewJWTVerifier(cfg.IdentitySecret)
	}

	// Real-time registry and side channels.
	ws := hub.New(verifier)
	go ws.Run()
	notifier := notify.New(settings)

	// Activity audit consumer keeps retrying its broker connection in the
	// background; a missing broker never blocks the server.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	// Recurring cleanup.
	maintenance.StartChatRetention(chat, cfg.ChatPurgeHour, cfg.Timezone)
	maintenance.StartFilePurge(files, time.Hour)

	// Redis backs the rate limiter; nil degrades it to a no-op.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	}

	e := echo.New()
	router.RegisterRoutes(e, ws)
	router.RegisterAPI(e, router.Handlers{
		Users:    handler.NewUserHandler(users),
		Posts:    handler.NewPostHandler(posts, notifier),
		Comments: handler.NewCommentHandler(posts, comments),
		Chat:     handler.NewChatHandler(chat, ws, notifier),
		DMs:      handler.NewDMHandler(dms, users),
		Files:    handler.NewFileHandler(files),
		Admin:    handler.NewAdminHandler(cfg, users, settings),
	}, verifier, users, cfg, rdb)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
