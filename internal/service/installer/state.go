package installer

import "strings"

// Settings is what the wizard collects, laid out as the .env file it becomes.
type Settings struct {
	EnableTelegram    string `env:"SNIP_ENABLE_TELEGRAM"`
	TelegramToken     string `env:"SNIP_TELEGRAM_TOKEN"`
	AllowedChats      string `env:"SNIP_TELEGRAM_ALLOWED_CHATS"`
	GitHubToken       string `env:"SNIP_GITHUB_TOKEN"`
	DisabledDetectors string `env:"SNIP_DISABLED_DETECTORS"`
	Debug             string `env:"SNIP_DEBUG"`
}

type InstallState struct {
	Settings Settings
	// Detectors maps a detector name to whether it stays enabled.
	Detectors map[string]bool
}

func NewInstallState() *InstallState {
	return &InstallState{
		Detectors: make(map[string]bool),
	}
}

func normalizeList(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
	return strings.Join(fields, ",")
}
