package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every configuration parameter the build reads from the
// environment. Provider credentials are optional: a provider with no
// configured key is skipped with a logged warning rather than failing the
// run, per the price engine's non-fatal fetch policy.
type Config struct {
	Debug       bool   `envconfig:"MTGJSON_DEBUG" default:"false"`
	OutputPath  string `envconfig:"MTGJSON_OUTPUT_PATH" default:"./cache"`
	OfflineMode bool   `envconfig:"MTGJSON_OFFLINE_MODE" default:"false"`

	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 4 * * *"`

	// SourceDataBaseURL is the base endpoint the source cache's 19 named
	// fetchers request against, one path per source name (e.g.
	// <base>/primary_card_bulk). A single first-party data service
	// publishing multiple bulk endpoints, the same way Scryfall's own bulk
	// data API does.
	SourceDataBaseURL string `envconfig:"SOURCE_DATA_BASE_URL" default:"https://api.mtgjson-source.example/v1"`

	// DBHost etc. configure the optional PostgreSQL relational output
	// target (assembly.WritePostgres). Left empty, that writer is skipped.
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`

	ObjectStoreKey    string `envconfig:"OBJECT_STORE_KEY"`
	ObjectStoreSecret string `envconfig:"OBJECT_STORE_SECRET"`
	ObjectStoreURL    string `envconfig:"OBJECT_STORE_URL"`
	ObjectStoreRegion string `envconfig:"OBJECT_STORE_REGION" default:"us-east-1"`
	ObjectStoreBucket string `envconfig:"OBJECT_STORE_BUCKET"`

	// Provider 1: largest retailer, paper/USD, async-streaming with a
	// checkpoint file so an interrupted fetch resumes.
	P1BaseURL string `envconfig:"P1_BASE_URL" default:"https://api.p1-prices.example/v2"`
	P1APIKey  string `envconfig:"P1_API_KEY"`

	// Provider 2: MTGO-only, bulk TSV download.
	P2BaseURL string `envconfig:"P2_BASE_URL" default:"https://api.p2-prices.example"`
	P2APIKey  string `envconfig:"P2_API_KEY"`

	// Provider 3: single bulk endpoint, prices quoted in cents.
	P3BaseURL string `envconfig:"P3_BASE_URL" default:"https://api.p3-prices.example"`
	P3APIKey  string `envconfig:"P3_API_KEY"`

	// Provider 4: EU/EUR, sequential and rate-limited.
	P4BaseURL         string  `envconfig:"P4_BASE_URL" default:"https://api.p4-prices.example"`
	P4APIKey          string  `envconfig:"P4_API_KEY"`
	P4RateLimitSeconds float64 `envconfig:"P4_RATE_LIMIT_SECONDS" default:"1.5"`

	// Provider 5: async with local columnar caching.
	P5BaseURL string `envconfig:"P5_BASE_URL" default:"https://api.p5-prices.example"`
	P5APIKey  string `envconfig:"P5_API_KEY"`

	// Referral hashing salts, one per purchase-URL provider (§4.F).
	ReferralSaltCardmarket  string `envconfig:"REFERRAL_SALT_CARDMARKET"`
	ReferralSaltTcgplayer   string `envconfig:"REFERRAL_SALT_TCGPLAYER"`
	ReferralSaltCardKingdom string `envconfig:"REFERRAL_SALT_CARD_KINGDOM"`
}

// DSN returns the PostgreSQL data source name for the relational output
// writer. Only meaningful when DBHost is set.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// HasPostgresTarget reports whether enough configuration was supplied to
// open a PostgreSQL connection.
func (c *Config) HasPostgresTarget() bool {
	return c.DBHost != "" && c.DBName != ""
}

// HasObjectStore reports whether object-store credentials were supplied.
func (c *Config) HasObjectStore() bool {
	return c.ObjectStoreKey != "" && c.ObjectStoreBucket != ""
}

// Load reads configuration from a local .env file (if present) and then
// from the process environment, the latter taking precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
