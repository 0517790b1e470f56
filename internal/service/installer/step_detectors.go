package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/snipbot/internal/config"
)

// DetectorsStep toggles which detectors stay enabled
type DetectorsStep struct {
	choices []string
	enabled map[string]bool
	cursor  int
}

func NewDetectorsStep() Step {
	choices := []string{
		config.DetectorCodeBlock,
		config.DetectorFile,
		config.DetectorGitHub,
		config.DetectorCalc,
	}
	enabled := make(map[string]bool, len(choices))
	for _, c := range choices {
		enabled[c] = true
	}

	return &DetectorsStep{
		choices: choices,
		enabled: enabled,
	}
}

func (s *DetectorsStep) Init() tea.Cmd {
	return nil
}

func (s *DetectorsStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case " ", "x":
			name := s.choices[s.cursor]
			s.enabled[name] = !s.enabled[name]
		case "enter":
			for _, c := range s.choices {
				state.Detectors[c] = s.enabled[c]
			}
			return nil, nil
		}
	}
	return s, nil
}

func (s *DetectorsStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString("Select detectors to enable:\n\n")
	for i, choice := range s.choices {
		mark := "[ ]"
		if s.enabled[choice] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, choice)
		if s.cursor == i {
			b.WriteString(selStyle.Render("❯ "+line) + "\n")
		} else {
			b.WriteString(itemStyle.Render("  "+line) + "\n")
		}
	}
	b.WriteString("\n(space to toggle, enter to confirm, ctrl+c to quit)\n")
	return b.String()
}
