package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "config/tripplanner.yaml"

// Config is the planner configuration file. Every field has a default, so a
// missing file is a valid configuration.
type Config struct {
	Sources    []string       `yaml:"sources"`
	Weights    WeightsConfig  `yaml:"weights"`
	Defaults   TripDefaults   `yaml:"defaults"`
	Fetch      FetchConfig    `yaml:"fetch"`
	Activities ActivityLimits `yaml:"activities"`
	Currency   string         `yaml:"currency"`
	OutputFile string         `yaml:"output_file"`
}

// WeightsConfig holds the default cost/time trade-off. FlightTime and
// HotelQuality are optional overrides of Time.
type WeightsConfig struct {
	Cost         float64  `yaml:"cost" json:"cost"`
	Time         float64  `yaml:"time" json:"time"`
	FlightTime   *float64 `yaml:"flight_time,omitempty" json:"flight_time,omitempty"`
	HotelQuality *float64 `yaml:"hotel_quality,omitempty" json:"hotel_quality,omitempty"`
}

type TripDefaults struct {
	Origin              string `yaml:"origin"`
	Destination         string `yaml:"destination"`
	Travelers           int    `yaml:"travelers"`
	DepartureOffsetDays int    `yaml:"departure_offset_days"`
	TripLengthDays      int    `yaml:"trip_length_days"`
	MaxTripDays         int    `yaml:"max_trip_days"`
}

// FetchConfig governs how candidate sources are called.
type FetchConfig struct {
	RequestTimeout       time.Duration `yaml:"request_timeout"`
	MaxRetries           int           `yaml:"max_retries"`
	DelayBetweenRequests time.Duration `yaml:"delay_between_requests"`
	BreakerFailures      int           `yaml:"breaker_failures"`
	BreakerCooldown      time.Duration `yaml:"breaker_cooldown"`
	CacheTTL             time.Duration `yaml:"cache_ttl"`
	MaxConcurrentDays    int           `yaml:"max_concurrent_days"`
}

type ActivityLimits struct {
	MaxPerDay      int     `yaml:"max_per_day"`
	MaxHoursPerDay float64 `yaml:"max_hours_per_day"`
}

func Default() Config {
	return Config{
		Sources: []string{
			"expedia", "booking", "kayak", "skyscanner", "tripadvisor",
			"agoda", "hotels", "priceline", "orbitz", "travelocity",
		},
		Weights: WeightsConfig{Cost: 0.6, Time: 0.4},
		Defaults: TripDefaults{
			Origin:              "New York",
			Destination:         "Paris",
			Travelers:           2,
			DepartureOffsetDays: 30,
			TripLengthDays:      7,
			MaxTripDays:         60,
		},
		Fetch: FetchConfig{
			RequestTimeout:       30 * time.Second,
			MaxRetries:           3,
			DelayBetweenRequests: time.Second,
			BreakerFailures:      5,
			BreakerCooldown:      30 * time.Second,
			CacheTTL:             15 * time.Minute,
			MaxConcurrentDays:    4,
		},
		Activities: ActivityLimits{MaxPerDay: 3, MaxHoursPerDay: 8},
		Currency:   "USD",
		OutputFile: "itinerary.json",
	}
}

// Load reads path over the defaults. A missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values the optimizer and gatherer cannot work without.
func (c Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("sources cannot be empty")
	}
	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if s == "" {
			return fmt.Errorf("sources cannot contain an empty name")
		}
		if seen[s] {
			return fmt.Errorf("source %q listed twice", s)
		}
		seen[s] = true
	}

	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	if c.Defaults.Travelers < 1 {
		return fmt.Errorf("defaults.travelers must be positive, got %d", c.Defaults.Travelers)
	}
	if c.Defaults.TripLengthDays < 1 {
		return fmt.Errorf("defaults.trip_length_days must be positive, got %d", c.Defaults.TripLengthDays)
	}
	if c.Defaults.MaxTripDays < c.Defaults.TripLengthDays {
		return fmt.Errorf("defaults.max_trip_days must be at least trip_length_days (%d), got %d",
			c.Defaults.TripLengthDays, c.Defaults.MaxTripDays)
	}
	if c.Fetch.RequestTimeout <= 0 {
		return fmt.Errorf("fetch.request_timeout must be positive")
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("fetch.max_retries cannot be negative, got %d", c.Fetch.MaxRetries)
	}
	if c.Fetch.MaxConcurrentDays < 1 {
		return fmt.Errorf("fetch.max_concurrent_days must be positive, got %d", c.Fetch.MaxConcurrentDays)
	}
	if c.Fetch.DelayBetweenRequests < 0 || c.Fetch.CacheTTL < 0 || c.Fetch.BreakerCooldown < 0 {
		return fmt.Errorf("fetch durations cannot be negative")
	}
	if c.Activities.MaxPerDay < 1 {
		return fmt.Errorf("activities.max_per_day must be positive, got %d", c.Activities.MaxPerDay)
	}
	if c.Activities.MaxHoursPerDay <= 0 {
		return fmt.Errorf("activities.max_hours_per_day must be positive, got %v", c.Activities.MaxHoursPerDay)
	}
	return nil
}

func (w WeightsConfig) Validate() error {
	pairs := map[string]float64{"time": w.Time}
	if w.FlightTime != nil {
		pairs["flight_time"] = *w.FlightTime
	}
	if w.HotelQuality != nil {
		pairs["hotel_quality"] = *w.HotelQuality
	}
	for name, v := range pairs {
		if sum := w.Cost + v; math.Abs(sum-1) > 0.01 {
			return fmt.Errorf("cost + %s must equal 1.0, got %.3f", name, sum)
		}
	}
	return nil
}
