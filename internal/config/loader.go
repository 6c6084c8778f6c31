// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// StoreDriver selects the booking store backend.
type StoreDriver string

const (
	// StoreJSON persists bookings to a flat JSON file.
	StoreJSON StoreDriver = "json"
	// StoreSQLite persists bookings to a SQLite database.
	StoreSQLite StoreDriver = "sqlite"
)

// Config captures environment driven configuration values for the bot.
type Config struct {
	SlackAppToken  string
	SlackBotToken  string
	StoreDriver    StoreDriver
	DataFile       string
	SQLiteDSN      string
	RoomsFile      string
	Timezone       string
	DayStartHour   int
	DayEndHour     int
	MaxSuggestions int
	ListingTTL     time.Duration
}

// Load parses configuration values from the current process environment.
//
// The loader applies defaults for optional fields while validating required
// values, accumulating every missing or invalid entry into one error.
func Load() (Config, error) {
	cfg := Config{
		StoreDriver:    StoreJSON,
		DataFile:       "bookings.json",
		SQLiteDSN:      "file:bookings.db?_foreign_keys=on",
		Timezone:       "Local",
		DayStartHour:   9,
		DayEndHour:     17,
		MaxSuggestions: 3,
		ListingTTL:     5 * time.Minute,
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 2)

	if token := strings.TrimSpace(os.Getenv("ROOMBOT_SLACK_APP_TOKEN")); token == "" {
		missing = append(missing, "ROOMBOT_SLACK_APP_TOKEN")
	} else {
		cfg.SlackAppToken = token
	}

	if token := strings.TrimSpace(os.Getenv("ROOMBOT_SLACK_BOT_TOKEN")); token == "" {
		missing = append(missing, "ROOMBOT_SLACK_BOT_TOKEN")
	} else {
		cfg.SlackBotToken = token
	}

	if driver := strings.TrimSpace(os.Getenv("ROOMBOT_STORE_DRIVER")); driver != "" {
		switch StoreDriver(strings.ToLower(driver)) {
		case StoreJSON:
			cfg.StoreDriver = StoreJSON
		case StoreSQLite:
			cfg.StoreDriver = StoreSQLite
		default:
			invalid = append(invalid, "ROOMBOT_STORE_DRIVER")
		}
	}

	if path := strings.TrimSpace(os.Getenv("ROOMBOT_DATA_FILE")); path != "" {
		cfg.DataFile = path
	}

	if dsn := strings.TrimSpace(os.Getenv("ROOMBOT_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if path := strings.TrimSpace(os.Getenv("ROOMBOT_ROOMS_FILE")); path != "" {
		cfg.RoomsFile = path
	}

	if tz := strings.TrimSpace(os.Getenv("ROOMBOT_TIMEZONE")); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			invalid = append(invalid, "ROOMBOT_TIMEZONE")
		} else {
			cfg.Timezone = tz
		}
	}

	if value := strings.TrimSpace(os.Getenv("ROOMBOT_DAY_START_HOUR")); value != "" {
		hour, err := strconv.Atoi(value)
		if err != nil || hour < 0 || hour > 23 {
			invalid = append(invalid, "ROOMBOT_DAY_START_HOUR")
		} else {
			cfg.DayStartHour = hour
		}
	}

	if value := strings.TrimSpace(os.Getenv("ROOMBOT_DAY_END_HOUR")); value != "" {
		hour, err := strconv.Atoi(value)
		if err != nil || hour < 1 || hour > 24 {
			invalid = append(invalid, "ROOMBOT_DAY_END_HOUR")
		} else {
			cfg.DayEndHour = hour
		}
	}

	if cfg.DayEndHour <= cfg.DayStartHour {
		invalid = append(invalid, "ROOMBOT_DAY_END_HOUR")
	}

	if value := strings.TrimSpace(os.Getenv("ROOMBOT_MAX_SUGGESTIONS")); value != "" {
		max, err := strconv.Atoi(value)
		if err != nil || max <= 0 {
			invalid = append(invalid, "ROOMBOT_MAX_SUGGESTIONS")
		} else {
			cfg.MaxSuggestions = max
		}
	}

	if value := strings.TrimSpace(os.Getenv("ROOMBOT_LISTING_TTL")); value != "" {
		ttl, err := time.ParseDuration(value)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "ROOMBOT_LISTING_TTL")
		} else {
			cfg.ListingTTL = ttl
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
