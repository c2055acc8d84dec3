package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type GoogleOAuthConfig struct {
	ClientID        string
	ClientSecret    string
	ExchangeTimeout time.Duration
}

type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type KafkaConfig struct {
	KafkaURL        string
	UserEventsTopic string
	TripEventsTopic string
}

type RateLimitConfig struct {
	RPS   int
	Burst int
}

type Config struct {
	DB          DBConfig
	JWT         JWTConfig
	Google      GoogleOAuthConfig
	Server      ServerConfig
	Kafka       KafkaConfig
	RateLimit   RateLimitConfig
	AppPort     string
	FrontendURL string
	PlacesKey   string
	LogLevel    string
}

func Load() (*Config, error) {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	jwtExpiration, err := time.ParseDuration(getEnvDefault("JWT_EXPIRATION", "24h"))
	if err != nil {
		return nil, err
	}
	exchangeTimeout, err := time.ParseDuration(getEnvDefault("OAUTH_EXCHANGE_TIMEOUT", "10s"))
	if err != nil {
		return nil, err
	}

	return &Config{
		DB: DBConfig{
			Host:     getEnvDefault("DB_HOST", "localhost"),
			Port:     getEnvDefault("DB_PORT", "5432"),
			User:     getEnv("DB_USER"),
			Password: getEnv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME"),
			SSLMode:  getEnvDefault("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET"),
			Expiration: jwtExpiration,
		},
		Google: GoogleOAuthConfig{
			ClientID:        getEnv("GOOGLE_CLIENT_ID"),
			ClientSecret:    getEnv("GOOGLE_CLIENT_SECRET"),
			ExchangeTimeout: exchangeTimeout,
		},
		Server: ServerConfig{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  15 * time.Second,
		},
		Kafka: KafkaConfig{
			KafkaURL:        getEnv("KAFKA_URL"),
			UserEventsTopic: getEnvDefault("USER_EVENTS_TOPIC", "tripcrew.user.events"),
			TripEventsTopic: getEnvDefault("TRIP_EVENTS_TOPIC", "tripcrew.trip.events"),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvInt("RATE_LIMIT_RPS", 100),
			Burst: getEnvInt("RATE_LIMIT_BURST", 200),
		},
		AppPort:     getEnvDefault("PORT", "8000"),
		FrontendURL: getEnvDefault("FRONTEND_URL", "http://localhost:5173"),
		PlacesKey:   getEnv("GOOGLE_PLACES_API_KEY"),
		LogLevel:    getEnvDefault("LOG_LEVEL", "info"),
	}, nil
}

// GetDSN returns the database connection string
func (c *DBConfig) GetDSN() string {
	return "postgres://" +
		c.User + ":" +
		c.Password + "@" +
		c.Host + ":" +
		c.Port + "/" +
		c.Name + "?sslmode=" +
		c.SSLMode
}

// getEnv gets an environment variable or returns an empty string
func getEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return ""
}

func getEnvDefault(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
