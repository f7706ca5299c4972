package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lethanhan97/cursor-hackathon-hcmc-2025-cuso-cru/mood"
)

const envPrefix = "MOODBOOTH"

type Service struct {
	URL string `mapstructure:"url"`
}

type Scribe struct {
	APIURL      string `mapstructure:"api_url"`
	RealtimeURL string `mapstructure:"realtime_url"`
	ModelID     string `mapstructure:"model_id"`
	APIKey      string `mapstructure:"api_key"`
}

type Services struct {
	Detector  Service `mapstructure:"detector"`
	Sentiment Service `mapstructure:"sentiment"`
	Scribe    Scribe  `mapstructure:"scribe"`
}

type Mood struct {
	WindowSize int           `mapstructure:"window_size"`
	Threshold  int           `mapstructure:"threshold"`
	Interval   time.Duration `mapstructure:"interval"`
	SfxWords   int           `mapstructure:"sfx_words"`
}

type Server struct {
	Addr            string   `mapstructure:"addr"`
	CORSOrigins     []string `mapstructure:"cors_origins"`
	TokenRatePerMin int      `mapstructure:"token_rate_per_min"`
	TokenBurst      int      `mapstructure:"token_burst"`
}

type Root struct {
	Pipeline struct {
		Name      string `mapstructure:"name"`
		Version   string `mapstructure:"version"`
		LogLvl    string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
	} `mapstructure:"pipeline"`
	Mood     Mood     `mapstructure:"mood"`
	Services Services `mapstructure:"services"`
	Server   Server   `mapstructure:"server"`
	Sounds   struct {
		BasePath string `mapstructure:"base_path"`
	} `mapstructure:"sounds"`
	Paths struct {
		Outputs string `mapstructure:"outputs"`
		Lexicon string `mapstructure:"lexicon"`
	} `mapstructure:"paths"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "moodbooth")
	v.SetDefault("pipeline.version", "dev")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "text")

	v.SetDefault("mood.window_size", 3)
	v.SetDefault("mood.threshold", 2)
	v.SetDefault("mood.interval", time.Second)
	v.SetDefault("mood.sfx_words", mood.DefaultSfxWords)

	v.SetDefault("services.detector.url", "")
	v.SetDefault("services.sentiment.url", "")
	v.SetDefault("services.scribe.api_url", "https://api.elevenlabs.io")
	v.SetDefault("services.scribe.realtime_url", "wss://api.elevenlabs.io/v1/speech-to-text/realtime")
	v.SetDefault("services.scribe.model_id", "scribe_v2_realtime")
	v.SetDefault("services.scribe.api_key", "")

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.token_rate_per_min", 30)
	v.SetDefault("server.token_burst", 5)

	v.SetDefault("sounds.base_path", "/sounds")
	v.SetDefault("paths.outputs", "outputs")
	v.SetDefault("paths.lexicon", "")
	v.SetDefault("metrics.enabled", true)
}

// Load reads configuration from path, or from the first file found under
// config/<CONFIG_ENV>/config.yaml and config.yaml. A missing file is not an
// error; defaults and MOODBOOTH_* environment variables still apply.
func Load(path string) (*Root, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = guess()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config decode: %w", err)
	}
	if cfg.Services.Scribe.APIKey == "" {
		cfg.Services.Scribe.APIKey = os.Getenv("ELEVENLABS_API_KEY")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	candidates := []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Validate rejects settings the mood engine and runner cannot work with.
func (c *Root) Validate() error {
	var errs []error
	if err := c.MoodOptions().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Mood.Interval <= 0 {
		errs = append(errs, fmt.Errorf("mood.interval must be positive, got %s", c.Mood.Interval))
	}
	if c.Server.TokenRatePerMin < 0 || c.Server.TokenBurst < 0 {
		errs = append(errs, errors.New("server token rate limits must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	return nil
}

// MoodOptions maps the mood section onto engine options.
func (c *Root) MoodOptions() mood.Options {
	return mood.Options{
		WindowSize: c.Mood.WindowSize,
		Threshold:  c.Mood.Threshold,
		SfxWords:   c.Mood.SfxWords,
	}
}
