package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/snipbot/pkg/log"
)

type GitHubConfig struct {
	Token   string        `env:"SNIP_GITHUB_TOKEN"`
	APIURL  string        `env:"SNIP_GITHUB_API_URL" envDefault:"https://api.github.com"`
	RawURL  string        `env:"SNIP_GITHUB_RAW_URL" envDefault:"https://raw.githubusercontent.com"`
	Timeout time.Duration `env:"SNIP_GITHUB_TIMEOUT" envDefault:"15s"`
}

func NewGitHubConfig(ctx context.Context) *GitHubConfig {
	cfg := &GitHubConfig{}
	if err := env.Parse(cfg); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse GitHub config")
	}
	return cfg
}
