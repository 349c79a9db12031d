package site

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"showcase/asset"
)

// Config holds site server configuration.
type Config struct {
	HTTPAddr        string        `env:"SHOWCASE_HTTP_ADDR" envDefault:"localhost:8080"`
	ShutdownTimeout time.Duration `env:"SHOWCASE_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	AssetPath  string `env:"SHOWCASE_ASSET"`
	Stylized   bool   `env:"SHOWCASE_STYLIZED" envDefault:"true"`
	HeroWidth  int    `env:"SHOWCASE_HERO_WIDTH" envDefault:"640"`
	HeroHeight int    `env:"SHOWCASE_HERO_HEIGHT" envDefault:"360"`
	HeroHz     int    `env:"SHOWCASE_HERO_HZ" envDefault:"60"`

	ResendAPIKey string   `env:"RESEND_API_KEY"`
	AlertEmail   []string `env:"ALERT_EMAIL" envSeparator:","`
	MailFrom     string   `env:"SHOWCASE_MAIL_FROM"`

	SchedulingURL string `env:"SCHEDULING_URL"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	if fs == nil {
		return Config{}, errors.New("flag parser is required")
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.AssetPath == "" {
		cfg.AssetPath = asset.DefaultPath
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.AssetPath, "asset", cfg.AssetPath, "hero model path or URL (sdf:<name> for procedural)")
	fs.BoolVar(&cfg.Stylized, "stylized", cfg.Stylized, "render the hero as text")
	fs.IntVar(&cfg.HeroWidth, "hero-width", cfg.HeroWidth, "hero viewport width")
	fs.IntVar(&cfg.HeroHeight, "hero-height", cfg.HeroHeight, "hero viewport height")
	fs.IntVar(&cfg.HeroHz, "hero-hz", cfg.HeroHz, "hero host tick rate")
	fs.StringVar(&cfg.SchedulingURL, "scheduling-url", cfg.SchedulingURL, "scheduling widget URL")
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.HeroWidth <= 0 || c.HeroHeight <= 0 {
		return fmt.Errorf("hero size must be positive: %dx%d", c.HeroWidth, c.HeroHeight)
	}
	if c.HeroHz <= 0 {
		return fmt.Errorf("hero hz must be positive: %d", c.HeroHz)
	}
	if c.ResendAPIKey != "" && len(c.AlertEmail) == 0 {
		return errors.New("ALERT_EMAIL is required when RESEND_API_KEY is set")
	}
	return nil
}
