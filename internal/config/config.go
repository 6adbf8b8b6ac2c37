package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App     AppConfig
	Gemini  GeminiConfig
	Order   OrderConfig
	Loyalty LoyaltyConfig
	Support SupportConfig
	Redis   RedisConfig
	DB      DBConfig
	Auth    AuthConfig
}

type AppConfig struct {
	Env  string
	Port int
}

// GeminiConfig configures the generation provider.
// A missing APIKey disables every generation branch with a configuration error.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OrderConfig configures the order-summary provider.
type OrderConfig struct {
	BaseURL   string
	AuthToken string
	Timeout   time.Duration
}

// LoyaltyConfig configures the customer/loyalty provider.
// Both APIKey and AccessToken are required headers on every call.
type LoyaltyConfig struct {
	BaseURL     string
	APIKey      string
	AccessToken string
	Timeout     time.Duration
}

// SupportConfig holds policy knobs for the /support endpoint.
type SupportConfig struct {
	// NotFoundStatus is the HTTP status served with the friendly
	// "couldn't find" message: 200 or 404.
	NotFoundStatus int
}

// RedisConfig is optional; an empty Host disables the enrichment cache.
type RedisConfig struct {
	Host     string
	Port     int
	CacheTTL time.Duration
}

// DBConfig is optional; an empty Host keeps the audit log in memory.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AuthConfig is optional; an empty JWTSecret disables the admin surface.
type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	AccessTokenTTL time.Duration
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.Gemini.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	c.Gemini.Model = strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	c.Gemini.BaseURL = strings.TrimSpace(os.Getenv("GEMINI_BASE_URL"))
	c.Gemini.Timeout = mustDuration("GEMINI_TIMEOUT")

	c.Order.BaseURL = strings.TrimSpace(os.Getenv("ORDER_API_BASE_URL"))
	c.Order.AuthToken = os.Getenv("ORDER_API_TOKEN")
	c.Order.Timeout = mustDuration("ORDER_API_TIMEOUT")

	c.Loyalty.BaseURL = strings.TrimSpace(os.Getenv("LOYALTY_API_BASE_URL"))
	c.Loyalty.APIKey = os.Getenv("LOYALTY_API_KEY")
	c.Loyalty.AccessToken = os.Getenv("LOYALTY_ACCESS_TOKEN")
	c.Loyalty.Timeout = mustDuration("LOYALTY_API_TIMEOUT")

	c.Support.NotFoundStatus = optionalInt("SUPPORT_NOT_FOUND_STATUS", 200)

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	c.Redis.Port = optionalInt("REDIS_PORT", 6379)
	c.Redis.CacheTTL = mustDuration("ENRICH_CACHE_TTL")

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	c.DB.Port = optionalInt("DB_PORT", 5432)
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))
	c.Auth.AccessTokenTTL = mustDuration("JWT_ACCESS_TTL")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-pro"
	}
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.Gemini.Timeout <= 0 {
		c.Gemini.Timeout = 30 * time.Second
	}
	if c.Order.Timeout <= 0 {
		c.Order.Timeout = 8 * time.Second
	}
	if c.Loyalty.Timeout <= 0 {
		c.Loyalty.Timeout = 8 * time.Second
	}
	if c.Redis.CacheTTL <= 0 {
		c.Redis.CacheTTL = 60 * time.Second
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.DB.SSLMode == "" && !c.IsProduction() {
		c.DB.SSLMode = "disable"
	}
}

func (c Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.Support.NotFoundStatus != 200 && c.Support.NotFoundStatus != 404 {
		errs = append(errs, fmt.Errorf("SUPPORT_NOT_FOUND_STATUS must be 200 or 404, got %d", c.Support.NotFoundStatus))
	}

	// An absent order token disables the lookup branch, but a token with
	// embedded whitespace is always a deployment mistake.
	if tok := strings.TrimSpace(c.Order.AuthToken); tok != "" && strings.ContainsAny(tok, " \t") {
		errs = append(errs, errors.New("ORDER_API_TOKEN must not contain whitespace"))
	}

	if c.HasDB() {
		if c.DB.User == "" {
			errs = append(errs, errors.New("DB_USER is required when DB_HOST is set"))
		}
		if c.DB.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required when DB_HOST is set"))
		}
		if c.DB.SSLMode == "" && c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		}
		if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
			errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
		}
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

// HasGeminiKey reports whether generation branches are enabled.
func (c Config) HasGeminiKey() bool { return c.Gemini.APIKey != "" }

// HasOrderToken reports whether the order-summary lookup branch is enabled.
func (c Config) HasOrderToken() bool { return strings.TrimSpace(c.Order.AuthToken) != "" }

// HasLoyaltyCredentials reports whether the customer lookup branch is enabled.
func (c Config) HasLoyaltyCredentials() bool {
	return strings.TrimSpace(c.Loyalty.APIKey) != "" && strings.TrimSpace(c.Loyalty.AccessToken) != ""
}

func (c Config) HasRedis() bool { return c.Redis.Host != "" }
func (c Config) HasDB() bool    { return c.DB.Host != "" }
func (c Config) HasAuth() bool  { return c.Auth.JWTSecret != "" }

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optionalInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
