package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/snipbot/pkg/log"
)

type TelegramConfig struct {
	Token string `env:"SNIP_TELEGRAM_TOKEN,required,notEmpty"`
	// Empty means every chat is served
	AllowedChats []int64 `env:"SNIP_TELEGRAM_ALLOWED_CHATS" envSeparator:","`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}
