package command

import (
	"github.com/sandevgo/snipbot/internal/core"
)

func NewCommands(
	detectors []string,
	guard core.SessionGuard,
	pending Counter,
) []core.Command {
	help := NewHelpCommand(detectors)
	commands := []core.Command{
		help,
		NewStatusCommand(guard, pending),
	}
	help.commands = commands
	return commands
}
