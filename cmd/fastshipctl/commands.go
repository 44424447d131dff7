package main

import (
	"context"
	"errors"
	"fmt"
	"freight-match-service/internal/adapters/cache"
	"freight-match-service/internal/adapters/distance"
	"freight-match-service/internal/adapters/repositories"
	"freight-match-service/internal/config"
	"freight-match-service/internal/domain"
	"freight-match-service/internal/platform/db"
	"freight-match-service/internal/ports"
	"freight-match-service/internal/services"
	"strings"

	"github.com/urfave/cli/v2"
)

var dbFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "database-url",
		EnvVars: []string{"DATABASE_URL"},
		Usage:   "specify the Postgres connection string",
	},
	&cli.StringFlag{
		Name:    "db-path",
		EnvVars: []string{"DB_PATH"},
		Usage:   "specify the SQLite file (used when no database url is set)",
	},
}

// openDB opens Postgres or SQLite from the flags and makes sure the schema exists.
func openDB(c *cli.Context) (*db.DB, error) {
	var (
		database *db.DB
		err      error
	)
	switch {
	case c.String("database-url") != "":
		database, err = db.Open(c.String("database-url"))
	case c.String("db-path") != "":
		database, err = db.OpenSQLite(c.String("db-path"))
	default:
		return nil, errors.New("one of --database-url or --db-path is required")
	}
	if err != nil {
		return nil, err
	}

	if err := repositories.InitSchema(c.Context, database); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "Create the database schema",
	Flags: dbFlags,
	Action: func(c *cli.Context) error {
		database, err := openDB(c)
		if err != nil {
			return err
		}
		defer database.Close()

		fmt.Printf("schema ready dialect=%s\n", database.Dialect)
		return nil
	},
}

var seedCmd = &cli.Command{
	Name:  "seed",
	Usage: "Load carriers, trips, shipments and city distances from a JSON file",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			EnvVars: []string{"SEED_PATH"},
			Value:   "data/seeds/marketplace.json",
			Usage:   "specify the seed file",
		},
	}, dbFlags...),
	Action: func(c *cli.Context) error {
		database, err := openDB(c)
		if err != nil {
			return err
		}
		defer database.Close()

		counts, err := repositories.SeedFromJSON(c.Context,
			repositories.NewSQLStore(database),
			cache.NewSQLCityDistanceStore(database),
			c.String("file"),
		)
		if err != nil {
			return err
		}
		fmt.Printf("seeded carriers=%d trips=%d shipments=%d city_distances=%d\n",
			counts.Carriers, counts.Trips, counts.Shipments, counts.CityDistances)
		return nil
	},
}

var classifyCmd = &cli.Command{
	Name:    "classify",
	Usage:   "Print the tier of a weight and the carrier types that can carry it",
	Aliases: []string{"c"},
	Flags: []cli.Flag{
		&cli.Float64Flag{
			Name:     "weight",
			Required: true,
			Usage:    "specify the shipment weight (kg)",
		},
	},
	Action: func(c *cli.Context) error {
		weight := c.Float64("weight")
		if weight <= 0 {
			return errors.New("invalid weight")
		}

		tier := domain.ClassifyByWeight(weight)
		types := domain.CompatibleCarrierTypes(tier)
		names := make([]string, 0, len(types))
		for _, t := range types {
			names = append(names, string(t))
		}
		fmt.Printf("weight=%.2f tier=%s carrier_types=%s\n", weight, tier, strings.Join(names, ","))
		return nil
	},
}

var quoteCmd = &cli.Command{
	Name:    "quote",
	Usage:   "Estimate a price between two cities without a stored shipment",
	Aliases: []string{"q"},
	Flags: append([]cli.Flag{
		&cli.Float64Flag{
			Name:     "weight",
			Required: true,
			Usage:    "specify the shipment weight (kg)",
		},
		&cli.StringFlag{
			Name:     "from",
			Required: true,
			Usage:    "specify the pickup city",
		},
		&cli.StringFlag{
			Name:     "to",
			Required: true,
			Usage:    "specify the delivery city",
		},
		&cli.StringFlag{
			Name:  "carrier-type",
			Usage: "specify the carrier type (defaults to the first compatible one)",
		},
		&cli.StringFlag{
			Name:    "season",
			EnvVars: []string{"PRICING_SEASON"},
			Value:   string(services.SeasonNormal),
			Usage:   "specify the pricing season (peak, normal, low)",
		},
	}, dbFlags...),
	Action: func(c *cli.Context) error {
		weight := c.Float64("weight")
		if weight <= 0 {
			return errors.New("invalid weight")
		}
		ct := domain.CarrierType(strings.ToLower(strings.TrimSpace(c.String("carrier-type"))))
		if ct == "" {
			ct = domain.CompatibleCarrierTypes(domain.ClassifyByWeight(weight))[0]
		}
		if _, ok := domain.LookupCarrierType(ct); !ok {
			return fmt.Errorf("unknown carrier type %q", ct)
		}

		table := distance.NewDefaultCityTable()
		if c.String("database-url") != "" || c.String("db-path") != "" {
			if err := loadCityTable(c, table); err != nil {
				return err
			}
		}

		market := services.NewMarketplace(services.MarketplaceDeps{
			Store:   repositories.NewMemoryStore(),
			Geo:     services.NewGeo(table),
			Pricing: services.NewPricingEngine(services.DefaultPricingConfig(), services.Season(c.String("season"))),
		})
		price, km := market.QuickEstimate(weight,
			domain.Location{City: c.String("from")},
			domain.Location{City: c.String("to")},
			ct,
		)
		fmt.Printf("from=%s to=%s carrier_type=%s distance_km=%.1f price=%.0f\n",
			c.String("from"), c.String("to"), ct, km, price)
		return nil
	},
}

func loadCityTable(c *cli.Context, table *distance.StaticCityTable) error {
	database, err := openDB(c)
	if err != nil {
		return err
	}
	defer database.Close()

	pairs, err := cache.NewSQLCityDistanceStore(database).ListCityDistances(c.Context)
	if err != nil {
		return err
	}
	table.Put(pairs...)
	return nil
}

var cityDistanceCmd = &cli.Command{
	Name:  "city-distance",
	Usage: "Look up the road distance between two cities with ORS and store it",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:     "from",
			Required: true,
			Usage:    "specify the first city",
		},
		&cli.StringFlag{
			Name:     "to",
			Required: true,
			Usage:    "specify the second city",
		},
		&cli.StringFlag{
			Name:    "ors-api-key",
			EnvVars: []string{"ORS_API_KEY"},
			Usage:   "specify the openrouteservice API key",
		},
	}, dbFlags...),
	Action: func(c *cli.Context) error {
		from, to := strings.TrimSpace(c.String("from")), strings.TrimSpace(c.String("to"))
		if strings.EqualFold(from, to) {
			return errors.New("from and to must differ")
		}

		database, err := openDB(c)
		if err != nil {
			return err
		}
		defer database.Close()

		geocoder, err := distance.NewORSGeocoder(c.String("ors-api-key"),
			cache.NewSQLGeocodeCache(database),
			distance.WithBaseURL(config.Get("ORS_BASE_URL", distance.DefaultORSBaseURL)),
			distance.WithCountry(config.Get("GEOCODE_COUNTRY", "SA")),
		)
		if err != nil {
			return err
		}

		km, err := storeRoadDistance(c.Context, geocoder, cache.NewSQLCityDistanceStore(database), from, to)
		if err != nil {
			return err
		}
		fmt.Printf("city_a=%s city_b=%s km=%.1f\n", from, to, km)
		return nil
	},
}

type roadDistancer interface {
	RoadDistanceKm(ctx context.Context, from, to domain.Location) (float64, error)
}

func storeRoadDistance(ctx context.Context, r roadDistancer, cities ports.CityDistanceStore, from, to string) (float64, error) {
	km, err := r.RoadDistanceKm(ctx, domain.Location{City: from}, domain.Location{City: to})
	if err != nil {
		return 0, fmt.Errorf("city distance %s-%s: %w", from, to, err)
	}
	if err := cities.PutCityDistances(ctx, []ports.CityPair{{CityA: from, CityB: to, Km: km}}); err != nil {
		return 0, fmt.Errorf("city distance %s-%s: %w", from, to, err)
	}
	return km, nil
}
