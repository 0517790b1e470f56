package inspect

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sandevgo/snipbot/internal/core"
	"github.com/sandevgo/snipbot/internal/service/command"
	"github.com/sandevgo/snipbot/pkg/conv"
	"github.com/sandevgo/snipbot/pkg/log"
)

const (
	CloseButtonLabel = "Close"
	ClosedText       = "🗂 **Inspection closed**"

	DefaultIdleTimeout = 10 * time.Minute
	previewLines       = 40
	maxLineWidth       = 160
)

var (
	ErrViewClosed   = errors.New("inspection view is already closed")
	ErrForeignClose = errors.New("inspection view belongs to another user")
)

var _ core.InspectionView = (*View)(nil)

type editor interface {
	Edit(ctx context.Context, ref core.MessageRef, text string, buttons ...core.Button) error
}

type card struct {
	id     string
	owner  core.SessionKey
	notice core.MessageRef
	timer  *time.Timer
}

// View renders an activated snippet as a file card in place of its notice.
// The owner's guard entry is held until the card is closed by the owner or
// left idle past the timeout.
type View struct {
	guard     core.SessionGuard
	editor    editor
	formatter *command.ResponseFormatter
	timeout   time.Duration
	newID     func() string

	mu    sync.Mutex
	cards map[string]*card
}

func NewView(guard core.SessionGuard, editor editor, timeout time.Duration) *View {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	return &View{
		guard:     guard,
		editor:    editor,
		formatter: command.NewResponseFormatter(),
		timeout:   timeout,
		newID:     uuid.NewString,
		cards:     make(map[string]*card),
	}
}

func (v *View) Open(ctx context.Context, owner core.SessionKey, snippet core.Snippet, notice core.MessageRef) error {
	c := &card{
		id:     v.newID(),
		owner:  owner,
		notice: notice,
	}

	v.mu.Lock()
	v.cards[c.id] = c
	v.mu.Unlock()

	button := core.Button{Label: CloseButtonLabel, Action: core.ActionClose, Payload: c.id}
	if err := v.editor.Edit(ctx, notice, v.Render(snippet), button); err != nil {
		v.release(c.id)
		return fmt.Errorf("failed to render inspection view: %w", err)
	}

	idleCtx := context.WithoutCancel(ctx)
	v.mu.Lock()
	if _, ok := v.cards[c.id]; ok {
		c.timer = time.AfterFunc(v.timeout, func() {
			if v.release(c.id) {
				log.FromCtx(idleCtx).Debug().Str("view", c.id).Msg("inspection view idled out")
				_ = v.editor.Edit(idleCtx, c.notice, ClosedText)
			}
		})
	}
	v.mu.Unlock()

	log.FromCtx(ctx).Debug().
		Str("view", c.id).
		Str("file", snippet.Filename).
		Int64("chat", owner.ChannelID).
		Msg("inspection view opened")
	return nil
}

// Close ends the view with the given id on behalf of by.
func (v *View) Close(ctx context.Context, id string, by core.SessionKey) error {
	v.mu.Lock()
	c, ok := v.cards[id]
	v.mu.Unlock()
	if !ok {
		return ErrViewClosed
	}
	if c.owner != by {
		return ErrForeignClose
	}
	if !v.release(id) {
		return ErrViewClosed
	}

	if err := v.editor.Edit(ctx, c.notice, ClosedText); err != nil {
		log.FromCtx(ctx).Debug().Err(err).Str("view", id).Msg("failed to mark view closed")
	}
	return nil
}

// CloseAll releases every open view without touching the chat.
func (v *View) CloseAll() int {
	v.mu.Lock()
	ids := make([]string, 0, len(v.cards))
	for id := range v.cards {
		ids = append(ids, id)
	}
	v.mu.Unlock()

	n := 0
	for _, id := range ids {
		if v.release(id) {
			n++
		}
	}
	return n
}

func (v *View) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.cards)
}

// release drops the card and unlocks its owner. It reports false when the
// card was already gone.
func (v *View) release(id string) bool {
	v.mu.Lock()
	c, ok := v.cards[id]
	if ok {
		delete(v.cards, id)
		if c.timer != nil {
			c.timer.Stop()
		}
	}
	v.mu.Unlock()

	if ok {
		v.guard.Unlock(c.owner)
	}
	return ok
}

// Render builds the file card for snippet. The preview is shortened until the
// card fits in a single chat message.
func (v *View) Render(snippet core.Snippet) string {
	lines := strings.Split(strings.TrimRight(snippet.Text(), "\n"), "\n")
	total := snippet.Lines()

	shown := min(len(lines), previewLines)
	preview := make([]string, shown)
	for i := range preview {
		preview[i] = clipLine(lines[i])
	}

	for {
		out := v.renderCard(snippet, preview[:shown], total)
		if shown == 0 || len(conv.MarkdownToTelegramHTML([]byte(out))) <= conv.MaxTelegramMessageLen {
			return out
		}
		shown--
	}
}

func (v *View) renderCard(snippet core.Snippet, preview []string, total int) string {
	details := v.formatter.Label("Extension", snippet.Extension()) +
		v.formatter.Label("Lines", strconv.Itoa(total)) +
		v.formatter.Label("Size", humanize.Bytes(uint64(len(snippet.Content))))

	sections := []string{
		v.formatter.Section("📄", snippet.Filename, details),
		v.formatter.Code(snippet.Extension(), strings.Join(preview, "\n")),
	}
	if total > len(preview) {
		sections = append(sections, v.formatter.Tip(fmt.Sprintf("showing %d of %d lines", len(preview), total)))
	}
	return v.formatter.Combine(sections...)
}

func clipLine(line string) string {
	if utf8.RuneCountInString(line) <= maxLineWidth {
		return line
	}
	return string([]rune(line)[:maxLineWidth]) + "…"
}
