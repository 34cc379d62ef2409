package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NewRelic  NewRelicConfig
	Maps      MapsConfig
	Messaging MessagingConfig
	Booking   BookingConfig
	Tariff    TariffConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// MapsConfig holds Google Maps configuration. An empty APIKey disables live routing.
type MapsConfig struct {
	APIKey   string
	Language string
	Region   string
	Timeout  time.Duration
}

// MessagingConfig holds outbound messaging configuration.
type MessagingConfig struct {
	AMQPURL       string
	Queue         string
	DriverContact string
	PublicBaseURL string
}

// BookingConfig holds scheduling and estimation parameters.
type BookingConfig struct {
	Timezone            string
	DefaultTripKm       float64
	DefaultPickupKm     float64
	AvgSpeedKmh         float64
	PickupTraffic       float64
	PickupFloorMinutes  int
	TravelFloorMinutes  int
	DefaultDriverOrigin string // "lat,lng"
	LockTTL             time.Duration
	LockWait            time.Duration
}

// TariffConfig holds the tariff used until settings are stored.
type TariffConfig struct {
	Currency              string
	BaseFare              float64
	PerKm                 float64
	WaitingPerMinute      float64
	WaitingFreeMinutes    float64
	ExtraPassengerFee     float64
	ExtraPassengerPercent float64
	IncludedPassengers    int
	MaxPassengers         int
	ReturnTripMultiplier  float64
	NightPercent          float64
	WeekendPercent        float64
	HolidayPercent        float64
	PeakWindows           string // "07:00-09:00,17:00-19:00"
	PeakPercent           float64
	Holidays              []string
	UnavailableStart      string
	UnavailableEnd        string
	Unavailable           bool
	CacheTTL              time.Duration
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level       string
	Development bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "shuttle"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "shuttle-booking"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Maps: MapsConfig{
			APIKey:   getEnv("GOOGLE_MAPS_API_KEY", ""),
			Language: getEnv("GOOGLE_MAPS_LANGUAGE", "en"),
			Region:   getEnv("GOOGLE_MAPS_REGION", "mu"),
			Timeout:  getDurationEnv("GOOGLE_MAPS_TIMEOUT", 4*time.Second),
		},
		Messaging: MessagingConfig{
			AMQPURL:       getEnv("AMQP_URL", ""),
			Queue:         getEnv("AMQP_OUTBOUND_QUEUE", "outbound_messages"),
			DriverContact: NormalizeContact(getEnv("DRIVER_CONTACT", "")),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),
		},
		Booking: BookingConfig{
			Timezone:            getEnv("BOOKING_TIMEZONE", "Indian/Mauritius"),
			DefaultTripKm:       getFloatEnv("DEFAULT_TRIP_DISTANCE_KM", 5),
			DefaultPickupKm:     getFloatEnv("DEFAULT_PICKUP_DISTANCE_KM", 5),
			AvgSpeedKmh:         getFloatEnv("AVG_SPEED_KMH", 25),
			PickupTraffic:       getFloatEnv("PICKUP_TRAFFIC_FACTOR", 1.2),
			PickupFloorMinutes:  getIntEnv("PICKUP_FLOOR_MINUTES", 3),
			TravelFloorMinutes:  getIntEnv("TRAVEL_FLOOR_MINUTES", 5),
			DefaultDriverOrigin: getEnv("DEFAULT_DRIVER_ORIGIN", ""),
			LockTTL:             getDurationEnv("BOOKING_LOCK_TTL", 15*time.Second),
			LockWait:            getDurationEnv("BOOKING_LOCK_WAIT", 5*time.Second),
		},
		Tariff: TariffConfig{
			Currency:              getEnv("TARIFF_CURRENCY", "MUR"),
			BaseFare:              getFloatEnv("TARIFF_BASE_FARE", 4),
			PerKm:                 getFloatEnv("TARIFF_PER_KM", 90),
			WaitingPerMinute:      getFloatEnv("TARIFF_WAITING_PER_MINUTE", 0.5),
			WaitingFreeMinutes:    getFloatEnv("TARIFF_WAITING_FREE_MINUTES", 3),
			ExtraPassengerFee:     getFloatEnv("TARIFF_EXTRA_PASSENGER_FEE", 2),
			ExtraPassengerPercent: getFloatEnv("TARIFF_EXTRA_PASSENGER_PERCENT", 0),
			IncludedPassengers:    getIntEnv("TARIFF_INCLUDED_PASSENGERS", 2),
			MaxPassengers:         getIntEnv("TARIFF_MAX_PASSENGERS", 4),
			ReturnTripMultiplier:  getFloatEnv("TARIFF_RETURN_TRIP_MULTIPLIER", 2),
			NightPercent:          getFloatEnv("TARIFF_NIGHT_PERCENT", 20),
			WeekendPercent:        getFloatEnv("TARIFF_WEEKEND_PERCENT", 10),
			HolidayPercent:        getFloatEnv("TARIFF_HOLIDAY_PERCENT", 25),
			PeakWindows:           getEnv("TARIFF_PEAK_WINDOWS", "07:00-09:00,17:00-19:00"),
			PeakPercent:           getFloatEnv("TARIFF_PEAK_PERCENT", 15),
			Holidays:              getListEnv("TARIFF_HOLIDAYS", []string{"2026-01-01", "2026-12-25"}),
			UnavailableStart:      getEnv("TARIFF_UNAVAILABLE_START", "20:00"),
			UnavailableEnd:        getEnv("TARIFF_UNAVAILABLE_END", "06:00"),
			Unavailable:           getBoolEnv("TARIFF_UNAVAILABLE", false),
			CacheTTL:              getDurationEnv("TARIFF_CACHE_TTL", 30*time.Second),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getBoolEnv("LOG_DEVELOPMENT", false),
		},
	}
}

// NormalizeContact strips channel prefixes and whitespace from a contact address.
func NormalizeContact(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "whatsapp:")
	return strings.ReplaceAll(s, " ", "")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
