package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	httpapi "point-weather/internal/api/http"
	"point-weather/internal/config"
	"point-weather/internal/interp"
	"point-weather/internal/scheduler"
	"point-weather/internal/stations"
	"point-weather/internal/store"
	"point-weather/internal/weather"
	"point-weather/internal/weather/providers"
)

func main() {
	// Load configuration (.env is picked up inside Load).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Station catalog.
	index, err := stations.OpenSQLite(cfg.StationsDBPath)
	if err != nil {
		log.Fatalf("failed to load station catalog: %v", err)
	}
	log.Printf("INFO: loaded %d stations from %s", index.Len(), cfg.StationsDBPath)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Providers with resilience (backoff + circuit breaker). Order matters:
	// the first provider that succeeds for a granularity wins.
	provs := []weather.Provider{
		providers.NewBulkProvider(httpClient),
		providers.NewOpenMeteoProvider(httpClient),
	}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}

	// In-memory series cache with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxAge)

	// Interpolation engine.
	params := interp.DefaultConfig()
	params.Power = cfg.IDWPower
	engine := interp.New(params)

	// Core service orchestrating catalog, providers, cache and engine.
	service := weather.NewPointService(index, provs, memStore, engine, cfg.NearbyLimit, cfg.NearbyRadius)

	// Scheduler that periodically warms the cache and purges stale entries.
	sched := scheduler.New(cfg.PrefetchPoints, cfg.PrefetchInterval, service, memStore)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "point-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(requestID())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "point-weather",
			"stations": index.Len(),
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, httpapi.Options{
		Params:        params,
		DefaultMethod: cfg.Method,
		GeocoderKey:   cfg.GeocoderAPIKey,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// requestID tags every request with an id for log correlation, honoring an
// incoming X-Request-ID header when present.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("requestid", id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}
