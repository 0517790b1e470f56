package core

import "context"

type CmdRouter interface {
	Execute(ctx context.Context, key SessionKey, input string) (string, bool)
	ListCommands() []Command
}

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, key SessionKey, args []string) (string, error)
}
