package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/snipbot/internal/core"
)

type HelpCommand struct {
	detectors []string
	commands  []core.Command
	formatter *ResponseFormatter
}

func NewHelpCommand(detectors []string) *HelpCommand {
	return &HelpCommand{
		detectors: detectors,
		formatter: NewResponseFormatter(),
	}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "Show what the bot detects"
}

func (c *HelpCommand) Execute(ctx context.Context, key core.SessionKey, args []string) (string, error) {
	detectors := c.detectors
	if len(detectors) == 0 {
		detectors = []string{"none"}
	}

	commands := make([]string, 0, len(c.commands))
	for _, cmd := range c.commands {
		commands = append(commands, fmt.Sprintf("`/%s` %s", cmd.Name(), cmd.Description()))
	}

	return c.formatter.Combine(
		c.formatter.Info(core.SnipName+" "+core.SnipVersion),
		c.formatter.Section("🔎", "Detectors", c.formatter.List(detectors)),
		c.formatter.Section("⌨️", "Commands", c.formatter.List(commands)),
		c.formatter.Tip("paste a fenced code block, attach a text file or share a GitHub file link"),
	), nil
}
