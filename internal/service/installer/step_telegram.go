package installer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputStep collects a single line of text and stores it through apply.
type InputStep struct {
	prompt   string
	input    textinput.Model
	validate func(string) error
	apply    func(state *InstallState, value string)
	err      error
}

func newInputStep(prompt, placeholder string, secret bool, apply func(*InstallState, string)) *InputStep {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 40
	ti.Placeholder = placeholder
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}

	return &InputStep{
		prompt: prompt,
		input:  ti,
		apply:  apply,
	}
}

func NewTelegramTokenStep() Step {
	s := newInputStep("Enter your Telegram Bot Token:", "123456789:ABCDEF...", true, func(state *InstallState, v string) {
		state.Settings.TelegramToken = v
	})
	s.validate = func(v string) error {
		if v != "" && !strings.Contains(v, ":") {
			return errors.New("a bot token looks like <id>:<secret>")
		}
		return nil
	}
	return s
}

func NewAllowedChatsStep() Step {
	s := newInputStep("Restrict to chat IDs (comma separated, empty for all):", "-1001234567890", false, func(state *InstallState, v string) {
		state.Settings.AllowedChats = normalizeList(v)
	})
	s.validate = func(v string) error {
		for _, id := range strings.Split(normalizeList(v), ",") {
			if id == "" {
				continue
			}
			if _, err := strconv.ParseInt(id, 10, 64); err != nil {
				return fmt.Errorf("%q is not a chat ID", id)
			}
		}
		return nil
	}
	return s
}

func NewGitHubTokenStep() Step {
	return newInputStep("Enter a GitHub token for private repos and higher rate limits (optional):", "ghp_...", true, func(state *InstallState, v string) {
		state.Settings.GitHubToken = v
	})
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			value := strings.TrimSpace(s.input.Value())
			if s.validate != nil {
				if s.err = s.validate(value); s.err != nil {
					return s, nil
				}
			}
			s.apply(state, value)
			return nil, nil
		}
	}
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	view := s.prompt + "\n\n" + s.input.View() + "\n\n"
	if s.err != nil {
		view += errorStyle.Render(s.err.Error()) + "\n\n"
	}
	return view + "(press enter to confirm)\n"
}
