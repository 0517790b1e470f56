package command

import (
	"context"
	"strconv"

	"github.com/sandevgo/snipbot/internal/core"
)

// Counter reports how many controls are currently armed.
type Counter interface {
	Len() int
}

type StatusCommand struct {
	guard     core.SessionGuard
	pending   Counter
	formatter *ResponseFormatter
}

func NewStatusCommand(guard core.SessionGuard, pending Counter) *StatusCommand {
	return &StatusCommand{
		guard:     guard,
		pending:   pending,
		formatter: NewResponseFormatter(),
	}
}

func (c *StatusCommand) Name() string {
	return "status"
}

func (c *StatusCommand) Description() string {
	return "Show your session and pending controls"
}

func (c *StatusCommand) Execute(ctx context.Context, key core.SessionKey, args []string) (string, error) {
	session := "none"
	if c.guard.IsLocked(key) {
		session = "open"
	}

	return c.formatter.Combine(
		c.formatter.Info("Status"),
		c.formatter.Label("Your session", session),
		c.formatter.Label("Pending controls", strconv.Itoa(c.pending.Len())),
	), nil
}
