package main

import (
	"context"
	"errors"
	"fmt"
	"freight-match-service/internal/adapters/cache"
	"freight-match-service/internal/adapters/distance"
	"freight-match-service/internal/adapters/events"
	"freight-match-service/internal/adapters/repositories"
	"freight-match-service/internal/api"
	"freight-match-service/internal/config"
	"freight-match-service/internal/platform/db"
	"freight-match-service/internal/ports"
	"freight-match-service/internal/services"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Postgres/SQLite/memory, Redis, ORS, Kafka/RabbitMQ)
// behind ports and starts the HTTP server.
func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	ctx := context.Background()

	store, database, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	if database != nil {
		defer database.Close()
	}

	var cities ports.CityDistanceStore
	if database != nil {
		cities = cache.NewSQLCityDistanceStore(database)
	}

	// Seed demo data on startup for local runs.
	if cfg.SeedPath != "" {
		counts, err := repositories.SeedFromJSON(ctx, store, cities, cfg.SeedPath)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("seeded carriers=%d trips=%d shipments=%d city_distances=%d",
			counts.Carriers, counts.Trips, counts.Shipments, counts.CityDistances)
	}

	table := distance.NewDefaultCityTable()
	if cities != nil {
		pairs, err := cities.ListCityDistances(ctx)
		if err != nil {
			log.Fatal(err)
		}
		table.Put(pairs...)
	}

	geocodeCache, closeCache, err := openGeocodeCache(ctx, cfg, database)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	var geocoder ports.Geocoder
	if cfg.ORSAPIKey != "" {
		g, err := distance.NewORSGeocoder(cfg.ORSAPIKey, geocodeCache,
			distance.WithBaseURL(cfg.ORSBaseURL),
			distance.WithCountry(cfg.GeocodeCountry),
		)
		if err != nil {
			log.Fatal(err)
		}
		geocoder = g
	} else {
		log.Println("ORS_API_KEY not set (locations without coordinates use the city table)")
	}

	publisher, err := events.New(events.SinkConfig{
		Sink:           cfg.EventsSink,
		KafkaBrokers:   cfg.KafkaBrokers,
		KafkaTopic:     cfg.KafkaTopic,
		RabbitURL:      cfg.RabbitURL,
		RabbitExchange: cfg.RabbitExchange,
	})
	if err != nil {
		log.Fatal(err)
	}

	market := services.NewMarketplace(services.MarketplaceDeps{
		Store:               store,
		Geo:                 services.NewGeo(table),
		Pricing:             services.NewPricingEngine(services.DefaultPricingConfig(), services.Season(strings.ToLower(cfg.PricingSeason))),
		Geocoder:            geocoder,
		Events:              publisher,
		DefaultMaxShipments: cfg.DefaultMaxShipments,
		GeocodeConcurrency:  cfg.GeocodeConcurrency,
	})
	if err := market.Load(ctx); err != nil {
		log.Fatal(err)
	}

	app := api.NewRouter(market)

	go func() {
		log.Printf("Server listening addr=:%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Printf("close event publisher: %v", err)
		}
	}
	log.Println("Server exited")
}

// openStore picks Postgres when DATABASE_URL is set, SQLite when DB_PATH is
// set, and an in-memory store otherwise. The returned *db.DB is nil for memory.
func openStore(ctx context.Context, cfg config.Config) (ports.Store, *db.DB, error) {
	var (
		database *db.DB
		err      error
	)
	switch {
	case cfg.DatabaseURL != "":
		database, err = db.Open(cfg.DatabaseURL)
	case cfg.DBPath != "":
		database, err = db.OpenSQLite(cfg.DBPath)
	default:
		log.Println("No DATABASE_URL or DB_PATH (using in-memory store)")
		return repositories.NewMemoryStore(), nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	if err := repositories.InitSchema(ctx, database); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return repositories.NewSQLStore(database), database, nil
}

// openGeocodeCache prefers Redis, then the database, then no cache.
func openGeocodeCache(ctx context.Context, cfg config.Config, database *db.DB) (ports.GeocodeCache, func(), error) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, func() {}, fmt.Errorf("open geocode cache: ping redis %s: %w", cfg.RedisAddr, err)
		}
		closeFn := func() {
			if err := client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
				log.Printf("close redis: %v", err)
			}
		}
		return cache.NewRedisGeocodeCache(client, cache.DefaultGeocodeTTL), closeFn, nil
	}
	if database != nil {
		return cache.NewSQLGeocodeCache(database), func() {}, nil
	}
	return nil, func() {}, nil
}
