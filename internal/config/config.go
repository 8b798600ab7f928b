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
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Provider ProviderConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

// TokenConfig is one JWT signing domain. The admin console and the client
// dashboard each get their own secret and expiry; a token signed for one
// domain is never valid on the other's routes.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

type AuthConfig struct {
	Issuer string
	Admin  TokenConfig
	Client TokenConfig
}

// ProviderConfig configures the third-party calling provider and its
// operational limits.
type ProviderConfig struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string

	// MaxCallDurationSeconds caps a single outbound call.
	MaxCallDurationSeconds int
	// MaxConcurrentCalls caps simultaneous dials per client.
	MaxConcurrentCalls int
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

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Auth.Issuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.Admin.Secret = os.Getenv("ADMIN_JWT_SECRET")
	c.Auth.Admin.TTL = mustDuration("ADMIN_JWT_TTL")
	c.Auth.Client.Secret = os.Getenv("CLIENT_JWT_SECRET")
	c.Auth.Client.TTL = mustDuration("CLIENT_JWT_TTL")

	c.Provider.BaseURL = strings.TrimSpace(os.Getenv("PROVIDER_BASE_URL"))
	c.Provider.APIKey = os.Getenv("PROVIDER_API_KEY")
	c.Provider.WebhookSecret = os.Getenv("PROVIDER_WEBHOOK_SECRET")
	c.Provider.MaxCallDurationSeconds = optInt("PROVIDER_MAX_CALL_DURATION_SECONDS")
	c.Provider.MaxConcurrentCalls = optInt("PROVIDER_MAX_CONCURRENT_CALLS")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.DB.SSLMode == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.Admin.Secret == "" {
		errs = append(errs, errors.New("ADMIN_JWT_SECRET is required"))
	}
	if c.Auth.Client.Secret == "" {
		errs = append(errs, errors.New("CLIENT_JWT_SECRET is required"))
	}
	if c.Auth.Admin.Secret != "" && c.Auth.Admin.Secret == c.Auth.Client.Secret {
		// Same secret would collapse the two signing domains into one.
		errs = append(errs, errors.New("ADMIN_JWT_SECRET and CLIENT_JWT_SECRET must differ"))
	}
	if c.IsProduction() && c.Auth.Issuer == "" {
		errs = append(errs, errors.New("JWT_ISSUER is required in production"))
	}
	if c.Auth.Admin.TTL <= 0 {
		c.Auth.Admin.TTL = 24 * time.Hour
	}
	if c.Auth.Client.TTL <= 0 {
		c.Auth.Client.TTL = 72 * time.Hour
	}

	if c.Provider.BaseURL == "" {
		errs = append(errs, errors.New("PROVIDER_BASE_URL is required"))
	}
	if c.Provider.APIKey == "" {
		errs = append(errs, errors.New("PROVIDER_API_KEY is required"))
	}
	if c.IsProduction() && c.Provider.WebhookSecret == "" {
		errs = append(errs, errors.New("PROVIDER_WEBHOOK_SECRET is required in production"))
	}
	if c.Provider.MaxCallDurationSeconds <= 0 {
		c.Provider.MaxCallDurationSeconds = 1800
	}
	if c.Provider.MaxConcurrentCalls <= 0 {
		c.Provider.MaxConcurrentCalls = 10
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

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

// optInt returns 0 for missing or malformed values; Validate applies defaults.
func optInt(key string) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
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
