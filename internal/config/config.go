package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"point-weather/internal/geo"
	"point-weather/internal/interp"
)

type AppConfig struct {
	// Station catalog.
	StationsDBPath string

	// Provider credentials. Empty keys disable the respective provider.
	WeatherAPIKey  string
	GeocoderAPIKey string

	// Interpolation defaults.
	Method       interp.Method
	IDWPower     float64
	NearbyLimit  int
	NearbyRadius float64 // meters, 0 = unlimited

	// Series cache retention.
	StoreMaxAge time.Duration

	// Prefetch job.
	PrefetchPoints   []geo.Point
	PrefetchInterval time.Duration

	HTTPTimeout time.Duration
	Port        string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.StationsDBPath = getenvDefault("STATIONS_DB_PATH", "stations.db")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	method, err := interp.ParseMethod(getenvDefault("INTERP_METHOD", "idw"))
	if err != nil {
		return nil, fmt.Errorf("invalid INTERP_METHOD: %w", err)
	}
	cfg.Method = method

	cfg.IDWPower = getenvFloat("IDW_POWER", 2.0)
	cfg.NearbyLimit = getenvInt("NEARBY_LIMIT", 4)
	cfg.NearbyRadius = getenvFloat("NEARBY_RADIUS", 100000)

	maxAgeStr := getenvDefault("STORE_MAX_AGE", "6h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge

	intervalStr := getenvDefault("PREFETCH_INTERVAL", "1h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PREFETCH_INTERVAL: %w", err)
	}
	cfg.PrefetchInterval = interval

	points, err := parsePrefetchPoints(os.Getenv("PREFETCH_POINTS"))
	if err != nil {
		return nil, err
	}
	cfg.PrefetchPoints = points

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// parsePrefetchPoints parses "lat,lon[,elevation]" entries separated by
// semicolons, e.g. "50.1155,8.6842,113;52.52,13.405".
func parsePrefetchPoints(raw string) ([]geo.Point, error) {
	if raw == "" {
		return nil, nil
	}

	var points []geo.Point
	for _, entry := range strings.Split(raw, ";") {
		parts := strings.Split(strings.TrimSpace(entry), ",")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid PREFETCH_POINTS entry %q", entry)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in PREFETCH_POINTS entry %q", entry)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in PREFETCH_POINTS entry %q", entry)
		}

		var p geo.Point
		if len(parts) == 3 {
			elevation, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid elevation in PREFETCH_POINTS entry %q", entry)
			}
			p, err = geo.NewPointWithElevation(lat, lon, elevation)
			if err != nil {
				return nil, fmt.Errorf("invalid PREFETCH_POINTS entry %q: %w", entry, err)
			}
		} else {
			p, err = geo.NewPoint(lat, lon)
			if err != nil {
				return nil, fmt.Errorf("invalid PREFETCH_POINTS entry %q: %w", entry, err)
			}
		}
		points = append(points, p)
	}

	return points, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
