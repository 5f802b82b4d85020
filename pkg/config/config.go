package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	MercadoPago MercadoPagoConfig
	SMTP        SMTPConfig
	Pricing     PricingConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Log         LogConfig
}

type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
	MaxOpenConns  int
	MaxIdleConns  int
	MigrationsDir string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// MercadoPagoConfig holds credentials for the payment processor.
type MercadoPagoConfig struct {
	AccessToken string
	Timeout     time.Duration
}

// SMTPConfig configures the confirmation mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// TierPrices holds the with/without material prices for one tier.
type TierPrices struct {
	WithMaterial    float64
	WithoutMaterial float64
}

// PricingConfig drives the three-tier pricing rule and coupon discount.
type PricingConfig struct {
	EarlyBirdLimit int
	PromoCutoff    time.Time
	Tier1          TierPrices
	Tier2          TierPrices
	Tier3          TierPrices
	CouponCodes    []string
	CouponDiscount float64
	PaidCountTTL   time.Duration
}

// AuthConfig configures the admin JWT surface.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// RateLimitConfig bounds the public checkout endpoints per client IP.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:          v.GetString("DB_HOST"),
		Port:          v.GetInt("DB_PORT"),
		User:          v.GetString("DB_USER"),
		Password:      v.GetString("DB_PASSWORD"),
		Name:          v.GetString("DB_NAME"),
		SSLMode:       v.GetString("DB_SSL_MODE"),
		MaxOpenConns:  v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:  v.GetInt("DB_MAX_IDLE_CONNS"),
		MigrationsDir: v.GetString("DB_MIGRATIONS_DIR"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.MercadoPago = MercadoPagoConfig{
		AccessToken: v.GetString("MP_ACCESS_TOKEN"),
		Timeout:     parseDuration(v.GetString("MP_TIMEOUT"), 5*time.Second),
	}

	cfg.SMTP = SMTPConfig{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		User:     v.GetString("SMTP_USER"),
		Password: v.GetString("SMTP_PASSWORD"),
		From:     v.GetString("SMTP_FROM"),
	}

	cfg.Pricing = PricingConfig{
		EarlyBirdLimit: v.GetInt("PRICING_EARLY_BIRD_LIMIT"),
		PromoCutoff:    parseTime(v.GetString("PRICING_PROMO_CUTOFF"), defaultPromoCutoff()),
		Tier1: TierPrices{
			WithMaterial:    v.GetFloat64("PRICING_TIER1_WITH"),
			WithoutMaterial: v.GetFloat64("PRICING_TIER1_WITHOUT"),
		},
		Tier2: TierPrices{
			WithMaterial:    v.GetFloat64("PRICING_TIER2_WITH"),
			WithoutMaterial: v.GetFloat64("PRICING_TIER2_WITHOUT"),
		},
		Tier3: TierPrices{
			WithMaterial:    v.GetFloat64("PRICING_TIER3_WITH"),
			WithoutMaterial: v.GetFloat64("PRICING_TIER3_WITHOUT"),
		},
		CouponCodes:    splitAndTrim(v.GetString("PRICING_COUPON_CODES")),
		CouponDiscount: v.GetFloat64("PRICING_COUPON_DISCOUNT"),
		PaidCountTTL:   parseDuration(v.GetString("PRICING_PAID_COUNT_TTL"), 30*time.Second),
	}

	cfg.Auth = AuthConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.RateLimit = RateLimitConfig{
		RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		Burst: v.GetInt("RATE_LIMIT_BURST"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "matricula")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_MIGRATIONS_DIR", "migrations")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("MP_ACCESS_TOKEN", "")
	v.SetDefault("MP_TIMEOUT", "5s")

	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "Curso de Matemática <no-reply@mlimacursos.com.br>")

	v.SetDefault("PRICING_EARLY_BIRD_LIMIT", 20)
	v.SetDefault("PRICING_PROMO_CUTOFF", "2025-12-17T23:59:59-03:00")
	v.SetDefault("PRICING_TIER1_WITH", 799.00)
	v.SetDefault("PRICING_TIER1_WITHOUT", 599.00)
	v.SetDefault("PRICING_TIER2_WITH", 1000.00)
	v.SetDefault("PRICING_TIER2_WITHOUT", 700.00)
	v.SetDefault("PRICING_TIER3_WITH", 1920.00)
	v.SetDefault("PRICING_TIER3_WITHOUT", 1520.00)
	v.SetDefault("PRICING_COUPON_CODES", "MARIANALIMA")
	v.SetDefault("PRICING_COUPON_DISCOUNT", 10.0)
	v.SetDefault("PRICING_PAID_COUNT_TTL", "30s")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "matricula-api")

	v.SetDefault("RATE_LIMIT_RPS", 5.0)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// defaultPromoCutoff is the end of the time-boxed promotion in Brasília time.
func defaultPromoCutoff() time.Time {
	brt := time.FixedZone("-03:00", -3*60*60)
	return time.Date(2025, time.December, 17, 23, 59, 59, 0, brt)
}

func parseTime(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fallback
	}

	return t
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
