package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"route-planner-service/internal/adapters/cache"
	"route-planner-service/internal/adapters/repositories"
	"route-planner-service/internal/config"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/db"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const usage = `usage: overridetool <command>

commands:
  init                         create the geocode_overrides table
  seed <file>                  load overrides from a JSON file
  add <address> <lat> <lon>    add or replace one override
  clear-cache                  drop every entry of the shared geocode caches`

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "init", "seed", "add":
		return runDB(ctx, cmd, args)
	case "clear-cache":
		return clearCache(ctx)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func runDB(ctx context.Context, cmd string, args []string) error {
	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")

	store := repositories.NewSQLOverrideStore(conn)

	switch cmd {
	case "seed":
		path := config.Get("OVERRIDES_FILE", "data/geocode_overrides.json")
		if len(args) > 0 {
			path = args[0]
		}
		log.Printf("Seeding overrides from %s...", path)
		n, err := repositories.SeedOverridesFromJSON(ctx, store, path)
		if err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		log.Printf("Seeding complete: %d overrides.", n)

	case "add":
		if len(args) != 3 {
			return fmt.Errorf("add needs <address> <lat> <lon>")
		}
		lat, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("parse lat %q: %w", args[1], err)
		}
		lon, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("parse lon %q: %w", args[2], err)
		}
		if err := store.Upsert(ctx, args[0], domain.Coordinates{Lat: lat, Lon: lon}); err != nil {
			return err
		}
		log.Printf("Override saved: %q -> %v,%v", args[0], lat, lon)
	}

	return nil
}

// clearCache empties whichever shared geocode caches are configured.
func clearCache(ctx context.Context) error {
	redisURL := strings.TrimSpace(config.Get("REDIS_URL", ""))
	databaseURL := strings.TrimSpace(config.Get("DATABASE_URL", ""))
	if redisURL == "" && databaseURL == "" {
		return fmt.Errorf("REDIS_URL or DATABASE_URL is required")
	}

	if redisURL != "" {
		client, err := cache.Connect(ctx, redisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := cache.NewRedisGeocodeCache(client, "", nil).Clear(ctx); err != nil {
			return err
		}
		log.Println("Redis geocode cache cleared.")
	}

	if databaseURL != "" {
		conn, err := db.Open(ctx, databaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := repositories.InitSchema(ctx, conn); err != nil {
			return err
		}
		if err := cache.NewSQLGeocodeCache(conn, nil).Clear(ctx); err != nil {
			return err
		}
		log.Println("Postgres geocode cache cleared.")
	}

	return nil
}
