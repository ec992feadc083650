package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// insecureDefaultSecret is the placeholder shipped in sample env files. It
// is refused so a deployment cannot run with it by accident.
const insecureDefaultSecret = "supersecretkey"

type Config struct {
	Port         int    `envconfig:"PORT" default:"3318"`
	DatabaseURL  string `envconfig:"DATABASE_URL"`
	DatabaseType string `envconfig:"DATABASE_TYPE" default:"sqlite"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"168h"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	BootstrapAdminEmail    string `envconfig:"BOOTSTRAP_ADMIN_EMAIL"`
	BootstrapAdminPassword string `envconfig:"BOOTSTRAP_ADMIN_PASSWORD"`

	// Transient storage failures while casting a vote are retried with
	// exponential backoff starting at VoteRetryBase.
	VoteRetries   uint64        `envconfig:"VOTE_RETRIES" default:"3"`
	VoteRetryBase time.Duration `envconfig:"VOTE_RETRY_BASE" default:"50ms"`

	// Login attempts allowed per client IP within LoginRateWindow.
	LoginRateLimit  int           `envconfig:"LOGIN_RATE_LIMIT" default:"20"`
	LoginRateWindow time.Duration `envconfig:"LOGIN_RATE_WINDOW" default:"15m"`

	// Peers (IPs or CIDR prefixes) whose X-Forwarded-For is believed.
	// Empty means the socket address always identifies the client.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
}

// ParseFlags loads configuration from a .env file, the environment and
// command-line flags, in increasing order of precedence.
func ParseFlags(args []string) (Config, error) {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	fs := flag.NewFlagSet("votesecure", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Token signing secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if c.DatabaseType != "sqlite" && c.DatabaseType != "postgres" {
		return fmt.Errorf("unsupported database type %q (use sqlite or postgres)", c.DatabaseType)
	}

	// Secrets - MUST be provided
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET required")
	}
	if c.JWTSecret == insecureDefaultSecret {
		return errors.New("JWT_SECRET must not be the sample value")
	}

	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if (c.BootstrapAdminEmail == "") != (c.BootstrapAdminPassword == "") {
		return errors.New("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}
	if c.VoteRetryBase <= 0 {
		return errors.New("VOTE_RETRY_BASE must be positive")
	}
	if c.LoginRateLimit <= 0 || c.LoginRateWindow <= 0 {
		return errors.New("login rate limit and window must be positive")
	}
	for _, proxy := range c.TrustedProxies {
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			return fmt.Errorf("invalid trusted proxy %q (use an IP or CIDR)", proxy)
		}
	}
	return nil
}
