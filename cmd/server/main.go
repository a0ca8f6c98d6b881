package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env file loading
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/fadl/dashboard-api/internal/config"
	"github.com/fadl/dashboard-api/internal/database"
	"github.com/fadl/dashboard-api/internal/handler"
	"github.com/fadl/dashboard-api/internal/limiter"
	"github.com/fadl/dashboard-api/internal/queue"
	"github.com/fadl/dashboard-api/internal/repository"
	"github.com/fadl/dashboard-api/internal/router"
	"github.com/fadl/dashboard-api/internal/service"
	"github.com/fadl/dashboard-api/internal/token"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg.DSN())
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()

	issuer := token.NewIssuer(cfg.AccessSecret, cfg.RefreshSecret, cfg.Issuer, cfg.Audience,
		cfg.AccessTTL(), cfg.RefreshTTL())

	// shared limiter state when Redis is configured, in-process otherwise
	var lim limiter.Limiter = limiter.NewMemory()
	if rdb := config.NewRedisClient(); rdb != nil {
		lim = limiter.NewRedis(rdb, "rl")
		log.Printf("rate limiter backed by redis")
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)

	a := handler.NewAuthHandler(cfg, rlCfg, users, sessions, issuer, lim)
	a.Events = &service.Publisher{}

	// background audit consumer; degrades to reconnect loop without a broker
	go func() {
		if err := queue.StartAuthConsumer(); err != nil {
			log.Printf("auth consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, a, issuer)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
