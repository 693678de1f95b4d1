package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"portal_automation/domain/entities"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
)

// Portal holds where a portal lives and who logs in to it
type Portal struct {
	BaseURL  string
	Username string
	Password string
}

// Configured reports whether the portal can be exercised at all
func (p Portal) Configured() bool {
	return p.BaseURL != ""
}

// HasCredentials reports whether a login can be performed
func (p Portal) HasCredentials() bool {
	return p.Username != "" && p.Password != ""
}

// Config is everything a run needs, read from the environment
type Config struct {
	AdminBaseURL     string `envconfig:"ADMIN_BASE_URL" validate:"omitempty,url"`
	AdminUsername    string `envconfig:"ADMIN_USERNAME"`
	AdminPassword    string `envconfig:"ADMIN_PASSWORD"`
	CustomerBaseURL  string `envconfig:"CUSTOMER_BASE_URL" validate:"omitempty,url"`
	CustomerUsername string `envconfig:"CUSTOMER_USERNAME"`
	CustomerPassword string `envconfig:"CUSTOMER_PASSWORD"`

	BrowserName     string `envconfig:"BROWSER_NAME" default:"chromium" validate:"oneof=chromium firefox webkit"`
	BrowserHeadless bool   `envconfig:"BROWSER_HEADLESS" default:"true"`
	BrowserSlowMoMS int    `envconfig:"BROWSER_SLOWMO_MS" default:"0" validate:"gte=0"`
	InstallBrowsers bool   `envconfig:"BROWSER_INSTALL" default:"false"`

	LookupTimeout     time.Duration `envconfig:"LOOKUP_TIMEOUT" default:"10s" validate:"gt=0"`
	PollInterval      time.Duration `envconfig:"POLL_INTERVAL" default:"250ms" validate:"gt=0"`
	ActionTimeout     time.Duration `envconfig:"ACTION_TIMEOUT" default:"10s" validate:"gt=0"`
	NavigationTimeout time.Duration `envconfig:"NAVIGATION_TIMEOUT" default:"30s" validate:"gt=0"`
	SettleAnimation   time.Duration `envconfig:"SETTLE_ANIMATION" default:"300ms" validate:"gte=0"`
	SettleDebounce    time.Duration `envconfig:"SETTLE_DEBOUNCE" default:"500ms" validate:"gte=0"`

	ArtifactsDir     string `envconfig:"ARTIFACTS_DIR" default:"artifacts"`
	AllowDestructive bool   `envconfig:"ALLOW_DESTRUCTIVE" default:"false"`

	UploadMaxFiles int   `envconfig:"UPLOAD_MAX_FILES" default:"3" validate:"gte=1"`
	UploadMaxBytes int64 `envconfig:"UPLOAD_MAX_BYTES" default:"2097152" validate:"gte=1"`

	ScenarioServer            string `envconfig:"SCENARIO_SERVER"`
	ScenarioInterval          string `envconfig:"SCENARIO_INTERVAL" default:"week" validate:"required"`
	ScenarioDashboardInterval string `envconfig:"SCENARIO_DASHBOARD_INTERVAL" default:"Week" validate:"required"`
	ScenarioCategory          string `envconfig:"SCENARIO_CATEGORY" default:"Technical Support"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
}

// Load reads an optional .env file and then the process environment
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds the configuration from an arbitrary variable source
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg, lookup); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and the wait policy invariant
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return c.WaitPolicy().Validate()
}

func (c Config) Admin() Portal {
	return Portal{BaseURL: c.AdminBaseURL, Username: c.AdminUsername, Password: c.AdminPassword}
}

func (c Config) Customer() Portal {
	return Portal{BaseURL: c.CustomerBaseURL, Username: c.CustomerUsername, Password: c.CustomerPassword}
}

// WaitPolicy is the lookup policy shared by resolver and verifier
func (c Config) WaitPolicy() entities.WaitPolicy {
	return entities.WaitPolicy{Timeout: c.LookupTimeout, PollInterval: c.PollInterval}
}

func (c Config) SettleDelays() entities.SettleDelays {
	return entities.SettleDelays{Animation: c.SettleAnimation, Debounce: c.SettleDebounce}
}

func (c Config) SlowMo() time.Duration {
	return time.Duration(c.BrowserSlowMoMS) * time.Millisecond
}

// Logger builds the run logger at the configured level
func (c Config) Logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
