package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/fleet-booking/internal/cache"
	"github.com/iliyamo/fleet-booking/internal/config"
	"github.com/iliyamo/fleet-booking/internal/database"
	"github.com/iliyamo/fleet-booking/internal/handler"
	"github.com/iliyamo/fleet-booking/internal/middleware"
	"github.com/iliyamo/fleet-booking/internal/queue"
	"github.com/iliyamo/fleet-booking/internal/repository"
	"github.com/iliyamo/fleet-booking/internal/router"
	queue_publisher "github.com/iliyamo/fleet-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()
	cacheCfg := config.LoadAvailabilityCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// A nil Redis client degrades the cache and the limiter gracefully;
	// the token blacklist fails closed on protected routes.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: cache and rate limiting disabled, protected routes will reject until it returns")
	}

	users := repository.NewUserRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	trips := repository.NewTripRepo(db)
	blacklist := &repository.TokenBlacklist{RDB: rdb}

	var availability handler.AvailabilityCache = cache.NewVehicleCache(nil, cacheCfg.TTL)
	if cacheCfg.Enabled {
		availability = cache.NewVehicleCache(rdb, cacheCfg.TTL)
	}

	authH := handler.NewAuthHandler(cfg, users, blacklist)
	vehicleH := handler.NewVehicleHandler(vehicles, trips, availability)
	driverH := handler.NewDriverHandler(vehicles, availability)
	tripH := handler.NewTripHandler(trips, vehicles, users, queue_publisher.AMQPNotifier{})
	adminH := handler.NewAdminHandler(users, vehicles, trips)

	gate := middleware.Protect(cfg.AccessSecret, users, blacklist)
	limiter := middleware.NewTokenBucket(rlCfg, rdb)

	e := echo.New()
	router.RegisterRoutes(e, vehicleH)
	router.RegisterAuth(e, authH, gate, limiter)
	router.RegisterOwner(e, vehicleH, gate)
	router.RegisterDriver(e, driverH, gate)
	router.RegisterTrips(e, tripH, gate)
	router.RegisterAdmin(e, adminH, vehicleH, gate)

	// Email notifications are consumed in the background; the consumer
	// reconnects on its own and never takes the server down.
	go func() {
		if err := queue.StartEmailConsumer(); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
