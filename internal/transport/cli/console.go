package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/sandevgo/snipbot/internal/core"
	"github.com/sandevgo/snipbot/internal/service/ui"
	"github.com/sandevgo/snipbot/pkg/log"
)

const (
	ChannelID = 0
	AuthorID  = 1

	fence = "```"
)

var _ core.Messenger = (*Console)(nil)

type dispatcher interface {
	Dispatch(ctx context.Context, msg core.Message)
	Wait()
}

type activator interface {
	Activate(ctx context.Context, id string, by core.SessionKey) error
}

type closer interface {
	Close(ctx context.Context, id string, by core.SessionKey) error
}

type Handlers struct {
	Dispatcher dispatcher
	Router     core.CmdRouter
	Controls   activator
	Views      closer
}

// Console is a single-user chat on the terminal, used to try detectors
// without a chat platform. Every line is a message from the same author in
// channel 0; multi-line fenced blocks are collected until the closing fence.
type Console struct {
	rl       *readline.Instance
	out      io.Writer
	maxFile  int64
	handlers Handlers

	mu     sync.Mutex
	nextID int
}

func NewConsole(runtimePath string, maxFile int64) (*Console, error) {
	if err := os.MkdirAll(runtimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(runtimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	c := newConsole(rl.Stdout(), maxFile)
	c.rl = rl
	return c, nil
}

func newConsole(out io.Writer, maxFile int64) *Console {
	return &Console{out: out, maxFile: maxFile}
}

// Attach sets the handlers once the pipeline on top of the console is built.
func (c *Console) Attach(h Handlers) {
	c.handlers = h
}

func (c *Console) Start(ctx context.Context) error {
	ctx = log.With(ctx, "transport", "cli")
	logger := log.FromCtx(ctx)
	logger.Info().Msg("console started. Paste code, '/file <path>' or type 'exit' to quit.")

	var block []string
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if block != nil {
			block = append(block, line)
			if strings.HasSuffix(strings.TrimSpace(line), fence) {
				c.handle(ctx, strings.Join(block, "\n"))
				block = nil
				c.rl.SetPrompt(">>> ")
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "exit":
			return nil
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, fence) && (trimmed == fence || !strings.HasSuffix(trimmed[len(fence):], fence)):
			block = []string{line}
			c.rl.SetPrompt("... ")
			continue
		}
		c.handle(ctx, trimmed)
	}
}

func (c *Console) Shutdown(ctx context.Context) error {
	if c.handlers.Dispatcher != nil {
		c.handlers.Dispatcher.Wait()
	}
	if c.rl != nil {
		return c.rl.Close()
	}
	return nil
}

func (c *Console) handle(ctx context.Context, input string) {
	key := core.SessionKey{ChannelID: ChannelID, AuthorID: AuthorID}
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/open":
		c.report(c.handlers.Controls.Activate(ctx, arg, key))
		return
	case "/close":
		c.report(c.handlers.Views.Close(ctx, arg, key))
		return
	case "/file":
		c.handlers.Dispatcher.Dispatch(ctx, c.fileMessage(arg))
		return
	}

	if reply, ok := c.handlers.Router.Execute(ctx, key, input); ok {
		_, _ = c.Send(ctx, ChannelID, reply)
		return
	}

	c.handlers.Dispatcher.Dispatch(ctx, core.Message{
		ID:        c.newID(),
		ChannelID: ChannelID,
		AuthorID:  AuthorID,
		Content:   input,
	})
}

func (c *Console) fileMessage(path string) core.Message {
	msg := core.Message{ID: c.newID(), ChannelID: ChannelID, AuthorID: AuthorID}
	info, err := os.Stat(path)
	if err != nil {
		c.printf("%s\n", ui.DescStyle.Render(err.Error()))
		return msg
	}
	msg.Attachments = []core.Attachment{{FileID: path, Filename: filepath.Base(path), Size: info.Size()}}
	return msg
}

func (c *Console) report(err error) {
	if err != nil {
		c.printf("%s\n", ui.DescStyle.Render(err.Error()))
	}
}

func (c *Console) Send(ctx context.Context, channelID int64, text string) (core.MessageRef, error) {
	ref := core.MessageRef{ChannelID: channelID, MessageID: c.newID()}
	c.printf("%s %s\n", ui.TitleStyle.Render("#"+ref.MessageID), text)
	return ref, nil
}

func (c *Console) Edit(ctx context.Context, ref core.MessageRef, text string, buttons ...core.Button) error {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("#"+ref.MessageID+" (edited)") + " " + text + "\n")
	for _, btn := range buttons {
		b.WriteString(ui.UsageStyle.Render(fmt.Sprintf("  [%s] /%s %s", btn.Label, btn.Action, btn.Payload)) + "\n")
	}
	c.printf("%s", b.String())
	return nil
}

func (c *Console) Delete(ctx context.Context, ref core.MessageRef) error {
	c.printf("%s\n", ui.DescStyle.Render("#"+ref.MessageID+" deleted"))
	return nil
}

func (c *Console) SuppressPreview(ctx context.Context, msg core.Message) error {
	return core.ErrUnsupported
}

// ReadAttachment reads a local file; the attachment id is its path.
func (c *Console) ReadAttachment(ctx context.Context, att core.Attachment) ([]byte, error) {
	f, err := os.Open(att.FileID)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	limit := c.maxFile
	if limit <= 0 {
		limit = 1 << 20
	}
	return io.ReadAll(io.LimitReader(f, limit+1))
}

func (c *Console) newID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	return strconv.Itoa(c.nextID)
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}
