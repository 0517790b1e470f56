package command

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/snipbot/internal/core"
	"github.com/sandevgo/snipbot/internal/service/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCounter int

func (c fixedCounter) Len() int {
	return int(c)
}

type failingCommand struct{}

func (failingCommand) Name() string        { return "fail" }
func (failingCommand) Description() string { return "always fails" }
func (failingCommand) Execute(ctx context.Context, key core.SessionKey, args []string) (string, error) {
	return "", errors.New("nope")
}

func TestRouter_Execute(t *testing.T) {
	g := guard.New()
	key := core.SessionKey{ChannelID: 1, AuthorID: 2}
	commands := append(NewCommands([]string{"codeblock", "file"}, g, fixedCounter(3)), failingCommand{})
	router := New(commands)

	tests := []struct {
		name        string
		input       string
		wantHandled bool
		contains    []string
	}{
		{name: "plain text", input: "hello", wantHandled: false},
		{name: "code block", input: "```go\nx\n```", wantHandled: false},
		{name: "unknown", input: "/nope", wantHandled: true, contains: []string{"Unknown command: /nope"}},
		{name: "help", input: "/help", wantHandled: true, contains: []string{"codeblock", "file", "`/status`", "`/help`"}},
		{name: "help addressed to bot", input: "/help@snip_bot", wantHandled: true, contains: []string{"Detectors"}},
		{name: "status", input: "/status", wantHandled: true, contains: []string{"`none`", "`3`"}},
		{name: "command error", input: "/fail now", wantHandled: true, contains: []string{"Error: nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, handled := router.Execute(t.Context(), key, tt.input)
			assert.Equal(t, tt.wantHandled, handled)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestStatusCommand_OpenSession(t *testing.T) {
	g := guard.New()
	key := core.SessionKey{ChannelID: 1, AuthorID: 2}
	require.True(t, g.Lock(key, core.MessageRef{ChannelID: 1, MessageID: "5"}))

	out, err := NewStatusCommand(g, fixedCounter(0)).Execute(t.Context(), key, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "**Your session**  ›  `open`")

	other, err := NewStatusCommand(g, fixedCounter(0)).Execute(t.Context(), core.SessionKey{ChannelID: 2, AuthorID: 2}, nil)
	require.NoError(t, err)
	assert.Contains(t, other, "**Your session**  ›  `none`")
}

func TestRouter_ListCommandsSorted(t *testing.T) {
	router := New(NewCommands(nil, guard.New(), fixedCounter(0)))

	names := make([]string, 0)
	for _, cmd := range router.ListCommands() {
		names = append(names, cmd.Name())
	}
	assert.Equal(t, []string{"help", "status"}, names)
}

func TestResponseFormatter_Code(t *testing.T) {
	f := NewResponseFormatter()

	assert.Equal(t, "```go\nx := 1\n```\n", f.Code("go", "x := 1"))
	assert.Equal(t, "```\na `"+zeroWidthSpace+"`` b\n```\n", f.Code("", "a ``` b"))
}
