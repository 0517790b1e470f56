package installer

import (
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// FinalizationStep computes derived values and final env var formatting
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	finalize(state)
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}

func finalize(state *InstallState) {
	if state.Settings.TelegramToken != "" {
		state.Settings.EnableTelegram = "true"
	} else {
		state.Settings.EnableTelegram = "false"
	}

	var disabled []string
	for name, on := range state.Detectors {
		if !on {
			disabled = append(disabled, name)
		}
	}
	sort.Strings(disabled)
	state.Settings.DisabledDetectors = strings.Join(disabled, ",")

	if state.Settings.Debug == "" {
		state.Settings.Debug = "0"
	}
}
