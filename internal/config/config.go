package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Port        string
	LogLevel    slog.Level

	// Database
	DatabaseDriver string // postgres or memory
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	AutoMigrate    bool

	RedisURL string

	JWT        JWTConfig
	Casdoor    CasdoorConfig
	Google     GoogleConfig
	TMDB       TMDBConfig
	Events     EventsConfig
	SignInLink SignInLinkConfig

	AdminEmails        []string
	SupportedLanguages []string
	CORSOrigins        []string
	RateLimitPerMin    int

	MetadataRefreshCron string
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
	RedirectURI  string
}

// Enabled reports whether Casdoor single sign-on is configured.
func (c CasdoorConfig) Enabled() bool {
	return c.Endpoint != "" && c.ClientID != ""
}

type GoogleConfig struct {
	ClientID string
}

type TMDBConfig struct {
	BaseURL   string
	ImageBase string
	APIKey    string
	ReadToken string
	Language  string
	Timeout   time.Duration
	CacheTTL  time.Duration
}

type EventsConfig struct {
	Backend       string // memory or kafka
	KafkaBrokers  []string
	ConsumerGroup string
	BufferSize    int64
}

type SignInLinkConfig struct {
	BaseURL string
	TTL     time.Duration
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		DatabaseDriver: strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL:    getEnv("DATABASE_URL", buildDatabaseURL()),
		DBMaxOpenConns: intEnv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: intEnv("DB_MAX_IDLE_CONNS", 5),
		AutoMigrate:    boolEnv("DB_AUTO_MIGRATE", true),

		RedisURL: getEnv("REDIS_URL", ""),

		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Issuer:     getEnv("JWT_ISSUER", "cinema-service"),
			AccessTTL:  durationEnv("JWT_ACCESS_TTL", 15*time.Minute),
			RefreshTTL: durationEnv("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Casdoor: CasdoorConfig{
			Endpoint:     getEnv("CASDOOR_ENDPOINT", ""),
			ClientID:     getEnv("CASDOOR_CLIENT_ID", ""),
			ClientSecret: getEnv("CASDOOR_CLIENT_SECRET", ""),
			Cert:         getEnv("CASDOOR_CERTIFICATE", ""),
			Organization: getEnv("CASDOOR_ORGANIZATION", ""),
			Application:  getEnv("CASDOOR_APPLICATION", ""),
			RedirectURI:  getEnv("CASDOOR_REDIRECT_URI", ""),
		},
		Google: GoogleConfig{
			ClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		},
		TMDB: TMDBConfig{
			BaseURL:   getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			ImageBase: getEnv("TMDB_IMAGE_BASE", "https://image.tmdb.org/t/p/w500"),
			APIKey:    getEnv("TMDB_API_KEY", ""),
			ReadToken: getEnv("TMDB_READ_TOKEN", ""),
			Language:  getEnv("TMDB_LANGUAGE", "en-US"),
			Timeout:   durationEnv("TMDB_TIMEOUT", 10*time.Second),
			CacheTTL:  durationEnv("TMDB_CACHE_TTL", 10*time.Minute),
		},
		Events: EventsConfig{
			Backend:       strings.ToLower(getEnv("EVENTS_BACKEND", "memory")),
			KafkaBrokers:  listEnv("KAFKA_BROKERS", nil),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", ""),
			BufferSize:    int64(intEnv("EVENTS_BUFFER_SIZE", 64)),
		},
		SignInLink: SignInLinkConfig{
			BaseURL: getEnv("SIGN_IN_LINK_BASE_URL", "http://localhost:3000/finish-sign-in"),
			TTL:     durationEnv("SIGN_IN_LINK_TTL", 15*time.Minute),
		},

		AdminEmails:        lowerAll(listEnv("ADMIN_EMAILS", nil)),
		SupportedLanguages: listEnv("SUPPORTED_LANGUAGES", []string{"en", "he"}),
		CORSOrigins:        listEnv("CORS_ORIGINS", []string{"*"}),
		RateLimitPerMin:    intEnv("RATE_LIMIT_PER_MIN", 120),

		MetadataRefreshCron: getEnv("METADATA_REFRESH_CRON", "0 3 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "memory" {
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DatabaseDriver)
	}
	if c.Events.Backend != "memory" && c.Events.Backend != "kafka" {
		return fmt.Errorf("unsupported EVENTS_BACKEND %q", c.Events.Backend)
	}
	if c.Events.Backend == "kafka" && len(c.Events.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_BACKEND=kafka")
	}
	if c.IsProduction() {
		if c.JWT.Secret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DatabaseDriver == "postgres" && c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
	}
	if c.JWT.Secret == "" {
		c.JWT.Secret = "dev-signing-secret-change-me"
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsAdminEmail reports whether the email bootstraps an admin account.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

func buildDatabaseURL() string {
	host := getEnv("DB_HOST", "")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		host,
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", ""),
		getEnv("DB_NAME", "cinema"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			log.Printf("invalid int for %s: %v, using fallback %d", key, err, fallback)
			return fallback
		}
		return n
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			log.Printf("invalid bool for %s: %v, using fallback %t", key, err, fallback)
			return fallback
		}
		return b
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func listEnv(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
