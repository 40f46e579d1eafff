package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"route-planner-service/internal/adapters/cache"
	"route-planner-service/internal/adapters/nominatim"
	"route-planner-service/internal/adapters/osrm"
	"route-planner-service/internal/adapters/repositories"
	"route-planner-service/internal/adapters/vroom"
	"route-planner-service/internal/api"
	"route-planner-service/internal/config"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/geocoding"
	"route-planner-service/internal/platform/db"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"route-planner-service/internal/services"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const version = "2.3.0"

// main is the application composition root.
// It wires concrete adapters (Nominatim, VROOM, OSRM, override storage)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting route planner", zap.String("version", version), zap.Stringer("config", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var conn *sql.DB
	if cfg.DatabaseURL != "" {
		c, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer c.Close()
		conn = c

		if err := repositories.InitSchema(ctx, c); err != nil {
			return err
		}
	}

	store := overrideStore(cfg, conn, logger)

	shared, closeShared, err := sharedCache(ctx, cfg, conn, logger)
	if err != nil {
		return err
	}
	defer closeShared()

	viewbox, err := cfg.ParsedViewbox()
	if err != nil {
		return err
	}

	geocoder, err := nominatim.New(nominatim.Config{
		SearchURL:   cfg.NominatimURL,
		UserAgent:   cfg.NominatimUserAgent,
		CountryCode: cfg.CountryCode,
		Viewbox:     viewbox,
		Timeout:     cfg.GeocodeTimeout,
		MaxAttempts: cfg.GeocodeMaxAttempts,
		MinInterval: cfg.NominatimInterval,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	solver, err := vroom.New(vroom.Config{URL: cfg.VROOMURL, Timeout: cfg.VROOMTimeout, Logger: logger})
	if err != nil {
		return err
	}

	center := cfg.TownCenter()
	roadRouter, err := osrm.New(osrm.Config{
		BaseURL: cfg.OSRMURL,
		Profile: cfg.OSRMProfile,
		Timeout: cfg.OSRMTimeout,
		Probe:   [2]domain.Coordinates{center, {Lat: center.Lat - 0.002, Lon: center.Lon - 0.005}},
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	resolver, err := geocoding.NewResolver(ctx, geocoding.Options{
		Provider: geocoder,
		Shared:   shared,
		Store:    store,
		Town: geocoding.Town{
			City:    cfg.TownCity,
			Region:  cfg.TownRegion,
			Country: cfg.TownCountry,
		},
		Center:        center,
		Tolerance:     cfg.TownTolerance,
		Viewbox:       viewbox,
		Delay:         cfg.GeocodeDelay,
		RetryDelay:    cfg.GeocodeRetryDelay,
		Concurrency:   cfg.GeocodeConcurrency,
		LookupTimeout: cfg.GeocodeLookup,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	segments, err := services.NewSegmentService(roadRouter, cfg.SegmentCacheSize, logger)
	if err != nil {
		return err
	}

	planner := services.NewPlanner(
		resolver,
		services.NewOptimizer(solver, logger),
		services.NewAssembler(roadRouter, logger),
		services.PlannerConfig{
			StartAddress:      cfg.StartAddress,
			MaxStops:          cfg.MaxStops,
			MaxVehicles:       cfg.MaxVehicles,
			TownCenter:        center,
			DetailConcurrency: cfg.DetailConcurrency,
		},
		logger,
	)

	router := api.NewRouter(api.Deps{
		Planner:   planner,
		Validator: services.NewValidator(resolver, logger),
		Segments:  segments,
		Status:    services.NewStatusChecker(0, logger, roadRouter, solver),
		Geocode:   resolver,
		Version:   version,
		Logger:    logger,
	})

	// Timeouts are tuned for cold-cache planning: a full batch geocode plus
	// the solver can take minutes.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// overrideStore picks Postgres when a database is configured, the JSON file
// otherwise.
func overrideStore(cfg *config.Config, conn *sql.DB, logger *zap.Logger) ports.OverrideStore {
	if conn == nil {
		logger.Info("override store: file", zap.String("path", cfg.OverridesFile))
		return repositories.NewFileOverrideStore(cfg.OverridesFile)
	}
	logger.Info("override store: postgres")
	return repositories.NewSQLOverrideStore(conn)
}

// sharedCache prefers Redis, then Postgres; with neither, only the process
// cache is used.
func sharedCache(ctx context.Context, cfg *config.Config, conn *sql.DB, logger *zap.Logger) (ports.GeocodeCache, func(), error) {
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("shared geocode cache: redis")
		return cache.NewRedisGeocodeCache(client, "", logger), func() { _ = client.Close() }, nil
	}
	if conn != nil {
		logger.Info("shared geocode cache: postgres")
		return cache.NewSQLGeocodeCache(conn, logger), func() {}, nil
	}
	return nil, func() {}, nil
}
