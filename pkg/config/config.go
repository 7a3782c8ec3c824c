// Package config loads the control plane's runtime configuration from the
// environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all environment-driven settings for the control plane
// process, independent of the database connection settings (see
// database.LoadConfigFromEnv, which is loaded separately).
type Config struct {
	// ServerAddr is the address the HTTP API listens on.
	ServerAddr string `envconfig:"SERVER_ADDR" default:":8080"`

	// GithubClientID/Secret/RedirectURI configure the GitHub OAuth login
	// flow. When ClientID is empty, auth falls back to the deterministic
	// test identity used in local development and CI.
	GithubClientID     string `envconfig:"GITHUB_CLIENT_ID"`
	GithubClientSecret string `envconfig:"GITHUB_CLIENT_SECRET"`
	GithubRedirectURI  string `envconfig:"GITHUB_REDIRECT_URI"`

	// SignupAllowlist restricts which GitHub logins may self-register a
	// User record on first login. Empty means allow any login.
	SignupAllowlist []string `envconfig:"SIGNUP_ALLOWLIST"`

	// AdminLogins lists GitHub logins granted the admin role on creation.
	AdminLogins []string `envconfig:"ADMIN_LOGINS"`

	// LaunchDate and EndDate bound the window during which competitor
	// (non-admin) job submissions are accepted. EndDate may be the zero
	// value, meaning there is no defined end.
	LaunchDate time.Time `envconfig:"LAUNCH_DATE"`
	EndDate    time.Time `envconfig:"END_DATE"`

	// DefaultRateLimitSustained/Burst/Total seed new teams' rate limit
	// fields when not explicitly set by an administrator.
	DefaultRateLimitSustained float64 `envconfig:"DEFAULT_RATE_LIMIT_SUSTAINED" default:"1.0"`
	DefaultRateLimitBurst     int     `envconfig:"DEFAULT_RATE_LIMIT_BURST" default:"10"`
	DefaultRateLimitTotal     int     `envconfig:"DEFAULT_RATE_LIMIT_TOTAL" default:"60000"`

	// LeaderboardRefreshInterval controls how often the leaderboard
	// builder recomputes standings.
	LeaderboardRefreshInterval time.Duration `envconfig:"LEADERBOARD_REFRESH_INTERVAL" default:"30s"`

	// QueueVisibilityTimeout is the default visibility timeout applied
	// when a consumer receives a message without specifying its own.
	QueueVisibilityTimeout time.Duration `envconfig:"QUEUE_VISIBILITY_TIMEOUT" default:"5m"`

	// MaxDequeueCount is the number of receives a message tolerates
	// before a consumer routes it to the dead-letter queue.
	MaxDequeueCount int `envconfig:"MAX_DEQUEUE_COUNT" default:"3"`

	// CompetitionPhase selects which scenario catalog generation and
	// leaderboard row competitors see: 1 or 2. This is the single,
	// correctly-spelled source of truth for the value the original
	// service read from two differently-spelled environment variables
	// depending on call site.
	CompetitionPhase int `envconfig:"COMPETITION_PHASE" default:"2"`
}

// Load reads Config from the environment, applying defaults declared via
// struct tags and failing if a value does not parse or Validate rejects
// the result.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks invariants envconfig's tag parsing cannot express.
func (c Config) Validate() error {
	if !c.EndDate.IsZero() && !c.LaunchDate.IsZero() && c.EndDate.Before(c.LaunchDate) {
		return NewValidationError("END_DATE", fmt.Errorf("must not be before LAUNCH_DATE"))
	}
	if c.DefaultRateLimitBurst < 1 {
		return NewValidationError("DEFAULT_RATE_LIMIT_BURST", fmt.Errorf("must be at least 1"))
	}
	if c.MaxDequeueCount < 1 {
		return NewValidationError("MAX_DEQUEUE_COUNT", fmt.Errorf("must be at least 1"))
	}
	if c.CompetitionPhase != 1 && c.CompetitionPhase != 2 {
		return NewValidationError("COMPETITION_PHASE", fmt.Errorf("must be 1 or 2"))
	}
	return nil
}
