package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Domenick1991/skysailor/internal/cache"
	"github.com/Domenick1991/skysailor/internal/changefeed"
	"github.com/Domenick1991/skysailor/internal/domain"
	"github.com/Domenick1991/skysailor/internal/repository"
	"github.com/Domenick1991/skysailor/internal/validator"
)

var importFlightsCmd = &cobra.Command{
	Use:   "import-flights <file.yaml>",
	Short: "Insert or update flights from an inventory file",
	Long: `Upsert every flight listed in the file and notify running services.

The file holds a "flights" list:

  flights:
    - id: f1
      origin: NYC
      destination: LAX
      departure_date: 2024-05-20
      price: 300
      passenger_count: 10
      trip_type: One Way`,
	Args: cobra.ExactArgs(1),
	RunE: runImportFlights,
}

type inventoryFile struct {
	Flights []inventoryFlight `yaml:"flights"`
}

type inventoryFlight struct {
	ID             string          `yaml:"id" json:"id" validate:"notblank"`
	Origin         string          `yaml:"origin" json:"origin" validate:"notblank"`
	Destination    string          `yaml:"destination" json:"destination" validate:"notblank"`
	DepartureDate  domain.Date     `yaml:"departure_date" json:"departure_date"`
	ReturnDate     *domain.Date    `yaml:"return_date" json:"return_date"`
	Price          float64         `yaml:"price" json:"price" validate:"gte=0"`
	PassengerCount int             `yaml:"passenger_count" json:"passenger_count" validate:"gte=0"`
	TripType       domain.TripType `yaml:"trip_type" json:"trip_type" validate:"triptype"`
	Archived       bool            `yaml:"archived" json:"archived"`
}

func parseInventory(data []byte) ([]domain.Flight, error) {
	var file inventoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}

	flights := make([]domain.Flight, 0, len(file.Flights))
	for i, row := range file.Flights {
		if err := validator.Struct(row); err != nil {
			return nil, fmt.Errorf("flight #%d: %w", i+1, err)
		}
		if row.DepartureDate.IsZero() {
			return nil, fmt.Errorf("flight #%d: departure_date is required", i+1)
		}
		if row.ReturnDate != nil && row.ReturnDate.Before(row.DepartureDate) {
			return nil, fmt.Errorf("flight #%d: return_date is before departure_date", i+1)
		}
		flights = append(flights, domain.Flight{
			ID:             row.ID,
			Origin:         row.Origin,
			Destination:    row.Destination,
			DepartureDate:  row.DepartureDate,
			ReturnDate:     row.ReturnDate,
			Price:          row.Price,
			PassengerCount: row.PassengerCount,
			TripType:       row.TripType,
			Archived:       row.Archived,
		})
	}
	return flights, nil
}

func runImportFlights(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read inventory: %w", err)
	}
	flights, err := parseInventory(data)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	repo := repository.NewFlightRepository(pool)
	for i := range flights {
		if err := repo.Upsert(ctx, &flights[i]); err != nil {
			return fmt.Errorf("upsert flight %s: %w", flights[i].ID, err)
		}
	}
	log.Info().Int("flights", len(flights)).Str("file", args[0]).Msg("inventory imported")

	invalidateFlightCache(ctx, cache.NewRedisCache(cfg.Redis, cfg.FlightsCacheTTL()))

	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("skysailorctl"))
	if err != nil {
		log.Warn().Err(err).Msg("flights imported but running services were not notified")
		return nil
	}
	defer nc.Close()
	if err := changefeed.NewPublisher(nc, cfg.NATS.SubjectPrefix).FlightsChanged(); err != nil {
		return fmt.Errorf("publish flights change: %w", err)
	}
	return nc.Flush()
}

type flightCache interface {
	InvalidateFlights(ctx context.Context) error
	Close() error
}

// invalidateFlightCache drops the cached flight list so searches see the new
// inventory before its TTL runs out. A Redis failure only warns.
func invalidateFlightCache(ctx context.Context, c flightCache) {
	defer func() { _ = c.Close() }()
	if err := c.InvalidateFlights(ctx); err != nil {
		log.Warn().Err(err).Msg("flights imported but the cached flight list was not invalidated")
	}
}
