package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"paperman"`
	ServerPort  int    `envconfig:"SERVER_PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile     string `envconfig:"LOG_FILE"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"pgx"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTSecret        string        `envconfig:"JWT_SECRET" required:"true"`
	JWTRefreshSecret string        `envconfig:"JWT_REFRESH_SECRET" required:"true"`
	AccessTTL        time.Duration `envconfig:"ACCESS_TTL" default:"15m"`
	RefreshTTL       time.Duration `envconfig:"REFRESH_TTL" default:"168h"`
	CookieSecure     bool          `envconfig:"COOKIE_SECURE" default:"true"`
	CSRFEnabled      bool          `envconfig:"CSRF_ENABLED" default:"true"`
	CORSOrigins      []string      `envconfig:"CORS_ORIGINS"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	IdentityProvider string `envconfig:"IDENTITY_PROVIDER" default:"local"`
	FirebaseAPIKey   string `envconfig:"FIREBASE_API_KEY"`
	FirebaseURL      string `envconfig:"FIREBASE_URL" default:"https://identitytoolkit.googleapis.com"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"crm_events"`

	ESURL      string `envconfig:"ES_URL"`
	ESUser     string `envconfig:"ES_USER"`
	ESPassword string `envconfig:"ES_PASSWORD"`
	ESIndex    string `envconfig:"ES_INDEX" default:"products"`

	Redis         RedisConfig   `envconfig:"REDIS"`
	StockCacheTTL time.Duration `envconfig:"STOCK_CACHE_TTL" default:"1m"`

	SMTP     SMTPConfig `envconfig:"SMTP"`
	MailFrom string     `envconfig:"MAIL_FROM"`
	MailTo   []string   `envconfig:"MAIL_TO"`

	LowStockThreshold int    `envconfig:"LOW_STOCK_THRESHOLD" default:"50"`
	CronLowStock      string `envconfig:"CRON_LOW_STOCK" default:"@daily"`
	CronTokenPurge    string `envconfig:"CRON_TOKEN_PURGE" default:"@every 1h"`
	Timezone          string `envconfig:"TZ_NAME" default:"UTC"`

	OTLPEndpoint  string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	NodeID        int64  `envconfig:"NODE_ID" default:"1"`
	NotifyWorkers int    `envconfig:"NOTIFY_WORKERS" default:"4"`
	NotifyQueue   int    `envconfig:"NOTIFY_QUEUE" default:"256"`
}

type RedisConfig struct {
	URL          string `envconfig:"URL"`
	ReadTimeout  int    `envconfig:"READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"WRITE_TIMEOUT" default:"3"`
	DialTimeout  int    `envconfig:"DIAL_TIMEOUT" default:"5"`
}

type SMTPConfig struct {
	Host     string `envconfig:"HOST"`
	Port     int    `envconfig:"PORT" default:"587"`
	User     string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func (c *Config) validate() error {
	var errs []error
	for key, v := range map[string]string{
		"DATABASE_URL":       c.DatabaseURL,
		"JWT_SECRET":         c.JWTSecret,
		"JWT_REFRESH_SECRET": c.JWTRefreshSecret,
	} {
		if v == "" {
			errs = append(errs, fmt.Errorf("missing required env %s", key))
		}
	}
	switch c.IdentityProvider {
	case "local":
	case "firebase":
		if c.FirebaseAPIKey == "" {
			errs = append(errs, errors.New("FIREBASE_API_KEY is required when IDENTITY_PROVIDER=firebase"))
		}
	default:
		errs = append(errs, fmt.Errorf("IDENTITY_PROVIDER must be local or firebase, got %q", c.IdentityProvider))
	}
	if c.NodeID < 0 || c.NodeID > 1023 {
		errs = append(errs, fmt.Errorf("NODE_ID must be in 0..1023, got %d", c.NodeID))
	}
	if c.LowStockThreshold < 1 {
		errs = append(errs, errors.New("LOW_STOCK_THRESHOLD must be positive"))
	}
	if c.NotifyWorkers < 1 {
		errs = append(errs, errors.New("NOTIFY_WORKERS must be positive"))
	}
	if c.NotifyQueue < 1 {
		errs = append(errs, errors.New("NOTIFY_QUEUE must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) SMTPEnabled() bool { return c.SMTP.Host != "" && len(c.MailTo) > 0 }

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// New returns nil, nil when no URL is configured.
func (r *RedisConfig) New(ctx context.Context) (*redis.Client, error) {
	if r.URL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(r.URL)
	if err != nil {
		return nil, err
	}

	opts.ReadTimeout = time.Duration(r.ReadTimeout) * time.Second
	opts.WriteTimeout = time.Duration(r.WriteTimeout) * time.Second
	opts.DialTimeout = time.Duration(r.DialTimeout) * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
