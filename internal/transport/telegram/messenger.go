package telegram

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sandevgo/snipbot/internal/core"
	"github.com/sandevgo/snipbot/pkg/conv"
	"github.com/sandevgo/snipbot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

var _ core.Messenger = (*Messenger)(nil)

// api is the subset of *tele.Bot the messenger drives.
type api interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
	File(file *tele.File) (io.ReadCloser, error)
}

// Messenger renders markdown as Telegram HTML and maps buttons to inline keyboards.
type Messenger struct {
	api     api
	maxFile int64
}

func NewMessenger(api api, maxFile int64) *Messenger {
	return &Messenger{api: api, maxFile: maxFile}
}

// Send posts md to the chat, split over several messages when too long.
// The returned reference points at the first one.
func (m *Messenger) Send(ctx context.Context, channelID int64, md string) (core.MessageRef, error) {
	logger := log.FromCtx(ctx)
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))

	var first core.MessageRef
	for i, chunk := range conv.SplitHTML(html, conv.MaxTelegramMessageLen) {
		sent, err := m.api.Send(tele.ChatID(channelID), chunk, tele.ModeHTML, tele.NoPreview)
		if err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return first, err
		}
		if i == 0 {
			first = core.MessageRef{ChannelID: channelID, MessageID: strconv.Itoa(sent.ID)}
		}
	}
	return first, nil
}

// Edit replaces the message text. Without buttons the inline keyboard is removed.
func (m *Messenger) Edit(ctx context.Context, ref core.MessageRef, md string, buttons ...core.Button) error {
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	// An edit cannot grow into several messages.
	html = conv.SplitHTML(html, conv.MaxTelegramMessageLen)[0]

	opts := []interface{}{tele.ModeHTML, tele.NoPreview}
	if len(buttons) > 0 {
		opts = append(opts, keyboard(buttons))
	}

	if _, err := m.api.Edit(ref, html, opts...); err != nil {
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return err
	}
	return nil
}

func (m *Messenger) Delete(ctx context.Context, ref core.MessageRef) error {
	return m.api.Delete(ref)
}

// SuppressPreview is not available to bots on messages they did not send.
func (m *Messenger) SuppressPreview(ctx context.Context, msg core.Message) error {
	return core.ErrUnsupported
}

func (m *Messenger) ReadAttachment(ctx context.Context, att core.Attachment) ([]byte, error) {
	rc, err := m.api.File(&tele.File{FileID: att.FileID})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", att.Filename, err)
	}
	defer rc.Close()

	limit := m.maxFile
	if limit <= 0 {
		limit = 1 << 20
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", att.Filename, err)
	}
	return data, nil
}

func keyboard(buttons []core.Button) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	row := make([]tele.Btn, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, markup.Data(b.Label, b.Action, b.Payload))
	}
	markup.Inline(markup.Row(row...))
	return markup
}
