package config

import (
	"context"
	"slices"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/sandevgo/snipbot/pkg/log"
)

const (
	DetectorCodeBlock = "codeblock"
	DetectorFile      = "file"
	DetectorGitHub    = "github"
	DetectorCalc      = "calc"
)

type AppConfig struct {
	RuntimePath string `env:"SNIP_RUNTIME_PATH" envDefault:".snipbot"`

	// Transport Flags
	EnableTelegram bool `env:"SNIP_ENABLE_TELEGRAM" envDefault:"true"`
	EnableCLI      bool `env:"SNIP_ENABLE_CLI" envDefault:"false"`

	// Detection
	DisabledDetectors []string      `env:"SNIP_DISABLED_DETECTORS" envSeparator:","`
	PacingDelay       time.Duration `env:"SNIP_PACING_DELAY" envDefault:"2s"`
	ControlTimeout    time.Duration `env:"SNIP_CONTROL_TIMEOUT" envDefault:"15s"`
	InspectTimeout    time.Duration `env:"SNIP_INSPECT_TIMEOUT" envDefault:"10m"`
	MaxAttachmentSize int64         `env:"SNIP_MAX_ATTACHMENT_SIZE" envDefault:"1048576"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}

func (c AppConfig) IsCLISelected() bool {
	return c.EnableCLI
}

func (c AppConfig) IsDetectorEnabled(name string) bool {
	return !slices.Contains(c.DisabledDetectors, name)
}
