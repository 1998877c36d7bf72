package config

import (
	"errors"
	"fmt"
	"os"
	"route-pool-service/internal/domain"
	"route-pool-service/internal/services"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DBSettings struct {
	Driver string
	Path   string
	URL    string
}

type ORSSettings struct {
	APIKey     string
	RatePerSec float64
}

type DataSettings struct {
	TravelTimesCSV string
	LocationsCSV   string
	DemandCSV      string
	DepotName      string
}

type GASettings struct {
	PopulationSize int
	EliteCount     int
	MutationRate   float64
	Generations    int
}

type PoolSettings struct {
	MinCapacity   int
	MaxCapacity   int
	NeighborDepth int
	Workers       int
	Seed          int64
	Distinct      bool
}

type CostSettings struct {
	FleetSize             int
	ServiceSecondsPerUnit float64
	ShiftHours            float64
	HourlyRate            float64
	ShiftBlockCost        float64
	RentedRouteCost       float64
	ForbiddenRouteCost    float64
}

// Settings is the full process configuration.
type Settings struct {
	Port     string
	LogLevel string
	LogDev   bool
	RedisURL string

	DB   DBSettings
	ORS  ORSSettings
	Data DataSettings
	GA   GASettings
	Pool PoolSettings
	Cost CostSettings

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool
}

var defaults = map[string]any{
	"PORT":                     "8080",
	"LOG_LEVEL":                "info",
	"LOG_DEVELOPMENT":          false,
	"DB_DRIVER":                "sqlite",
	"DB_PATH":                  "data/app.db",
	"DATABASE_URL":             "",
	"REDIS_URL":                "",
	"ORS_API_KEY":              "",
	"ORS_RATE_PER_SEC":         1.0,
	"TRAVEL_TIMES_CSV":         "data/FoodstuffTravelTimes.csv",
	"LOCATIONS_CSV":            "data/FoodstuffLocations.csv",
	"DEMAND_CSV":               "data/weekdaydemand.csv",
	"DEPOT_NAME":               "Warehouse",
	"GA_POPULATION_SIZE":       20,
	"GA_ELITE_COUNT":           5,
	"GA_MUTATION_RATE":         0.05,
	"GA_GENERATIONS":           25,
	"POOL_MIN_CAPACITY":        1,
	"POOL_MAX_CAPACITY":        12,
	"POOL_NEIGHBOR_DEPTH":      4,
	"POOL_WORKERS":             0,
	"POOL_SEED":                0,
	"POOL_DISTINCT":            false,
	"FLEET_SIZE":               20,
	"SERVICE_SECONDS_PER_UNIT": 300.0,
	"SHIFT_HOURS":              4.0,
	"HOURLY_RATE":              150.0,
	"SHIFT_BLOCK_COST":         1200.0,
	"RENTED_ROUTE_COST":        1200.0,
	"FORBIDDEN_ROUTE_COST":     1_000_000.0,
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the
// environment. Later sources win.
func Load() (*Settings, error) {
	envErr := godotenv.Load()

	v := viper.New()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("load config: read %q: %w", path, err)
		}
	}

	s, err := FromViper(v)
	if err != nil {
		return nil, err
	}
	s.EnvFileLoaded = envErr == nil
	return s, nil
}

// FromViper applies defaults and environment binding to v and decodes it.
func FromViper(v *viper.Viper) (*Settings, error) {
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	s := &Settings{
		Port:     v.GetString("PORT"),
		LogLevel: v.GetString("LOG_LEVEL"),
		LogDev:   v.GetBool("LOG_DEVELOPMENT"),
		RedisURL: v.GetString("REDIS_URL"),
		DB: DBSettings{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			Path:   v.GetString("DB_PATH"),
			URL:    v.GetString("DATABASE_URL"),
		},
		ORS: ORSSettings{
			APIKey:     v.GetString("ORS_API_KEY"),
			RatePerSec: v.GetFloat64("ORS_RATE_PER_SEC"),
		},
		Data: DataSettings{
			TravelTimesCSV: v.GetString("TRAVEL_TIMES_CSV"),
			LocationsCSV:   v.GetString("LOCATIONS_CSV"),
			DemandCSV:      v.GetString("DEMAND_CSV"),
			DepotName:      v.GetString("DEPOT_NAME"),
		},
		GA: GASettings{
			PopulationSize: v.GetInt("GA_POPULATION_SIZE"),
			EliteCount:     v.GetInt("GA_ELITE_COUNT"),
			MutationRate:   v.GetFloat64("GA_MUTATION_RATE"),
			Generations:    v.GetInt("GA_GENERATIONS"),
		},
		Pool: PoolSettings{
			MinCapacity:   v.GetInt("POOL_MIN_CAPACITY"),
			MaxCapacity:   v.GetInt("POOL_MAX_CAPACITY"),
			NeighborDepth: v.GetInt("POOL_NEIGHBOR_DEPTH"),
			Workers:       v.GetInt("POOL_WORKERS"),
			Seed:          v.GetInt64("POOL_SEED"),
			Distinct:      v.GetBool("POOL_DISTINCT"),
		},
		Cost: CostSettings{
			FleetSize:             v.GetInt("FLEET_SIZE"),
			ServiceSecondsPerUnit: v.GetFloat64("SERVICE_SECONDS_PER_UNIT"),
			ShiftHours:            v.GetFloat64("SHIFT_HOURS"),
			HourlyRate:            v.GetFloat64("HOURLY_RATE"),
			ShiftBlockCost:        v.GetFloat64("SHIFT_BLOCK_COST"),
			RentedRouteCost:       v.GetFloat64("RENTED_ROUTE_COST"),
			ForbiddenRouteCost:    v.GetFloat64("FORBIDDEN_ROUTE_COST"),
		},
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return s, nil
}

func (s *Settings) Validate() error {
	switch s.DB.Driver {
	case "sqlite":
		if s.DB.Path == "" {
			return &domain.ConfigurationError{Field: "DB_PATH", Reason: "required for sqlite"}
		}
	case "postgres":
		if s.DB.URL == "" {
			return &domain.ConfigurationError{Field: "DATABASE_URL", Reason: "required for postgres"}
		}
	default:
		return &domain.ConfigurationError{Field: "DB_DRIVER", Reason: fmt.Sprintf("unknown driver %q", s.DB.Driver)}
	}
	if strings.TrimSpace(s.Data.DepotName) == "" {
		return &domain.ConfigurationError{Field: "DEPOT_NAME", Reason: "must be non-empty"}
	}
	if s.ORS.RatePerSec < 0 {
		return &domain.ConfigurationError{Field: "ORS_RATE_PER_SEC", Reason: "must not be negative"}
	}
	if s.Cost.FleetSize <= 0 {
		return &domain.ConfigurationError{Field: "FLEET_SIZE", Reason: "must be positive"}
	}
	return s.Pool.Validate()
}

func (p PoolSettings) Validate() error {
	var errs []error
	if p.MinCapacity < 1 {
		errs = append(errs, &domain.ConfigurationError{Field: "POOL_MIN_CAPACITY", Reason: "must be at least 1"})
	}
	if p.MaxCapacity < p.MinCapacity {
		errs = append(errs, &domain.ConfigurationError{Field: "POOL_MAX_CAPACITY", Reason: "must be at least POOL_MIN_CAPACITY"})
	}
	if p.MaxCapacity > services.MaxPlanCapacity {
		errs = append(errs, &domain.ConfigurationError{
			Field:  "POOL_MAX_CAPACITY",
			Reason: fmt.Sprintf("must be at most %d", services.MaxPlanCapacity),
		})
	}
	if p.NeighborDepth < 0 || p.NeighborDepth > services.MaxNeighborDepth {
		errs = append(errs, &domain.ConfigurationError{
			Field:  "POOL_NEIGHBOR_DEPTH",
			Reason: fmt.Sprintf("must be in [0, %d]", services.MaxNeighborDepth),
		})
	}
	if p.Workers < 0 {
		errs = append(errs, &domain.ConfigurationError{Field: "POOL_WORKERS", Reason: "must not be negative"})
	}
	return errors.Join(errs...)
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
