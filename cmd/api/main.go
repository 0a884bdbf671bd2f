package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/meetstack/event-rsvp-api/internal/adapters/eventsettings"
	"github.com/meetstack/event-rsvp-api/internal/adapters/httpapi"
	memaggcache "github.com/meetstack/event-rsvp-api/internal/adapters/memory/aggcache"
	memeventrepo "github.com/meetstack/event-rsvp-api/internal/adapters/memory/eventrepo"
	memresponserepo "github.com/meetstack/event-rsvp-api/internal/adapters/memory/responserepo"
	memroles "github.com/meetstack/event-rsvp-api/internal/adapters/memory/roles"
	memuserdir "github.com/meetstack/event-rsvp-api/internal/adapters/memory/userdir"
	"github.com/meetstack/event-rsvp-api/internal/adapters/postgres"
	pgeventrepo "github.com/meetstack/event-rsvp-api/internal/adapters/postgres/eventrepo"
	pgresponserepo "github.com/meetstack/event-rsvp-api/internal/adapters/postgres/responserepo"
	pguserdir "github.com/meetstack/event-rsvp-api/internal/adapters/postgres/userdir"
	redisaggcache "github.com/meetstack/event-rsvp-api/internal/adapters/redis/aggcache"
	"github.com/meetstack/event-rsvp-api/internal/app/events"
	"github.com/meetstack/event-rsvp-api/internal/app/rsvp"
	"github.com/meetstack/event-rsvp-api/internal/domain"
	platformclock "github.com/meetstack/event-rsvp-api/internal/platform/clock"
	"github.com/meetstack/event-rsvp-api/internal/platform/config"
	"github.com/meetstack/event-rsvp-api/internal/platform/logger"
	aggcacheport "github.com/meetstack/event-rsvp-api/internal/ports/out/aggcache"
	eventrepoport "github.com/meetstack/event-rsvp-api/internal/ports/out/eventrepo"
	responserepoport "github.com/meetstack/event-rsvp-api/internal/ports/out/responserepo"
	userdirport "github.com/meetstack/event-rsvp-api/internal/ports/out/userdir"
)

// privilegedRoles lists leadership roles in display-precedence order. Members
// holding any of these see anonymous responders unmasked.
var privilegedRoles = []string{"Organizer", "Assistant Organizer", "Event Organizer", "Event Assistant"}

func main() {
	// Local convenience only; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Auth configuration:
	// - Production: require JWT_SECRET and enforce bearer auth
	// - Local dev: set AUTH_MODE=dev to bypass JWT verification and use X-Debug-User
	var authMW func(http.Handler) http.Handler
	switch cfg.AuthMode {
	case "dev":
		authMW = httpapi.NewDevAuthMiddleware(domain.UserID(cfg.DevUserID))
	default:
		authMW = httpapi.NewAuthMiddleware(cfg.JWTSecret)
	}

	clk := platformclock.NewSystemClock()

	var (
		responseRepo responserepoport.Repository
		eventRepo    eventrepoport.Repository
		users        userdirport.Directory
		cleanup      func()
	)

	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			zlog.Fatal("postgres", zap.Error(err))
		}
		cleanup = pool.Close

		responseRepo = pgresponserepo.NewRepo(pool)
		eventRepo = pgeventrepo.NewRepo(pool)
		users = pguserdir.NewDirectory(pool)
	default:
		responseRepo = memresponserepo.NewRepo()
		eventRepo = memeventrepo.NewRepo()
		users = memuserdir.NewDirectory()
	}

	if cleanup != nil {
		defer cleanup()
	}

	var cache aggcacheport.Cache
	switch cfg.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = client.Close() }()
		cache = redisaggcache.NewCache(client)
	default:
		cache = memaggcache.NewCache(clk)
	}

	rolesResolver := memroles.NewResolver(privilegedRoles)
	stg := eventsettings.NewProvider(eventRepo, cfg.MaxAttendingLimit)

	eventSvc := events.NewService(eventRepo, clk)
	rsvpSvc := rsvp.NewService(responseRepo, eventRepo, cache, stg, rolesResolver, users, clk)
	rsvpSvc.SetCacheTTL(cfg.CacheTTL)

	api := httpapi.NewServer(eventSvc, rsvpSvc, rolesResolver, zlog)
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{AuthMiddleware: authMW})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zlog.Info("api listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
