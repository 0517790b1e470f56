package telegram

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sandevgo/snipbot/internal/core"
	"github.com/sandevgo/snipbot/internal/service/inspect"
	"github.com/sandevgo/snipbot/internal/service/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

func TestToMessage(t *testing.T) {
	tests := []struct {
		name string
		in   *tele.Message
		want core.Message
	}{
		{
			name: "plain text",
			in: &tele.Message{
				ID:     7,
				Chat:   &tele.Chat{ID: -100},
				Sender: &tele.User{ID: 42},
				Text:   "hello",
			},
			want: core.Message{ID: "7", ChannelID: -100, AuthorID: 42, Content: "hello"},
		},
		{
			name: "whole message pre block gets its fence back",
			in: &tele.Message{
				ID:       8,
				Chat:     &tele.Chat{ID: 1},
				Sender:   &tele.User{ID: 2},
				Text:     "print(1)",
				Entities: tele.Entities{{Type: tele.EntityCodeBlock, Offset: 0, Length: 8, Language: "py"}},
			},
			want: core.Message{ID: "8", ChannelID: 1, AuthorID: 2, Content: "```py\nprint(1)\n```"},
		},
		{
			name: "pre block with multibyte text",
			in: &tele.Message{
				ID:       9,
				Chat:     &tele.Chat{ID: 1},
				Sender:   &tele.User{ID: 2},
				Text:     "s = \"😀\"",
				Entities: tele.Entities{{Type: tele.EntityCodeBlock, Offset: 0, Length: 8}},
			},
			want: core.Message{ID: "9", ChannelID: 1, AuthorID: 2, Content: "```\ns = \"😀\"\n```"},
		},
		{
			name: "partial pre block untouched",
			in: &tele.Message{
				ID:       10,
				Chat:     &tele.Chat{ID: 1},
				Sender:   &tele.User{ID: 2},
				Text:     "look: x := 1",
				Entities: tele.Entities{{Type: tele.EntityCodeBlock, Offset: 6, Length: 6}},
			},
			want: core.Message{ID: "10", ChannelID: 1, AuthorID: 2, Content: "look: x := 1"},
		},
		{
			name: "document with caption from a bot",
			in: &tele.Message{
				ID:      11,
				Chat:    &tele.Chat{ID: 1},
				Sender:  &tele.User{ID: 3, IsBot: true},
				Caption: "see file",
				Document: &tele.Document{
					File:     tele.File{FileID: "f1", FileSize: 12},
					FileName: "main.go",
				},
			},
			want: core.Message{
				ID: "11", ChannelID: 1, AuthorID: 3, AuthorIsBot: true, Content: "see file",
				Attachments: []core.Attachment{{FileID: "f1", Filename: "main.go", Size: 12}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toMessage(tt.in))
		})
	}
}

type fakeAPI struct {
	mu      sync.Mutex
	nextID  int
	sent    []string
	edited  []string
	opts    [][]interface{}
	deleted []tele.Editable
	files   map[string]string
	editErr error
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, what.(string))
	return &tele.Message{ID: f.nextID}, nil
}

func (f *fakeAPI) Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return nil, f.editErr
	}
	f.edited = append(f.edited, what.(string))
	f.opts = append(f.opts, opts)
	return &tele.Message{}, nil
}

func (f *fakeAPI) Delete(msg tele.Editable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, msg)
	return nil
}

func (f *fakeAPI) File(file *tele.File) (io.ReadCloser, error) {
	data, ok := f.files[file.FileID]
	if !ok {
		return nil, errors.New("file not found")
	}
	return io.NopCloser(bytes.NewBufferString(data)), nil
}

func TestMessenger_Send(t *testing.T) {
	api := &fakeAPI{}
	m := NewMessenger(api, 0)

	ref, err := m.Send(context.Background(), 5, "**hi**")
	require.NoError(t, err)
	assert.Equal(t, core.MessageRef{ChannelID: 5, MessageID: "1"}, ref)
	assert.Equal(t, []string{"<strong>hi</strong>"}, api.sent)

	long := strings.Repeat("word\n\n", 1500)
	ref, err = m.Send(context.Background(), 5, long)
	require.NoError(t, err)
	assert.Equal(t, "2", ref.MessageID)
	assert.Greater(t, len(api.sent), 2)
}

func TestMessenger_EditButtons(t *testing.T) {
	api := &fakeAPI{}
	m := NewMessenger(api, 0)
	ref := core.MessageRef{ChannelID: 1, MessageID: "3"}

	require.NoError(t, m.Edit(context.Background(), ref, "ready", core.Button{Label: "Open in IDE", Action: core.ActionOpen, Payload: "abc"}))
	require.NoError(t, m.Edit(context.Background(), ref, "closed"))

	require.Len(t, api.opts, 2)

	var markup *tele.ReplyMarkup
	for _, o := range api.opts[0] {
		if rm, ok := o.(*tele.ReplyMarkup); ok {
			markup = rm
		}
	}
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 1)
	assert.Equal(t, "Open in IDE", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, core.ActionOpen, markup.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "abc", markup.InlineKeyboard[0][0].Data)

	for _, o := range api.opts[1] {
		_, isMarkup := o.(*tele.ReplyMarkup)
		assert.False(t, isMarkup)
	}
}

func TestMessenger_EditNotModifiedIgnored(t *testing.T) {
	api := &fakeAPI{editErr: errors.New("telegram: Bad Request: message is not modified (400)")}
	m := NewMessenger(api, 0)

	assert.NoError(t, m.Edit(context.Background(), core.MessageRef{ChannelID: 1, MessageID: "1"}, "same"))

	api.editErr = errors.New("telegram: Forbidden (403)")
	assert.Error(t, m.Edit(context.Background(), core.MessageRef{ChannelID: 1, MessageID: "1"}, "x"))
}

func TestMessenger_ReadAttachment(t *testing.T) {
	api := &fakeAPI{files: map[string]string{"f1": "package main\n", "big": strings.Repeat("x", 32)}}
	m := NewMessenger(api, 16)

	data, err := m.ReadAttachment(context.Background(), core.Attachment{FileID: "f1", Filename: "main.go"})
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(data))

	data, err = m.ReadAttachment(context.Background(), core.Attachment{FileID: "big", Filename: "big.txt"})
	require.NoError(t, err)
	assert.Len(t, data, 17)

	_, err = m.ReadAttachment(context.Background(), core.Attachment{FileID: "nope", Filename: "x.txt"})
	assert.ErrorContains(t, err, "x.txt")
}

func TestMessenger_SuppressPreviewUnsupported(t *testing.T) {
	m := NewMessenger(&fakeAPI{}, 0)
	assert.ErrorIs(t, m.SuppressPreview(context.Background(), core.Message{}), core.ErrUnsupported)
}

func TestToasts(t *testing.T) {
	assert.Equal(t, toastOpened, openToast(nil))
	assert.Equal(t, toastNotYours, openToast(session.ErrForeignActivation))
	assert.Equal(t, toastExpired, openToast(session.ErrNotArmed))
	assert.Equal(t, toastSessionActive, openToast(session.ErrSessionActive))
	assert.Equal(t, toastFailed, openToast(errors.New("x")))

	assert.Equal(t, toastClosed, closeToast(nil))
	assert.Equal(t, toastNotYours, closeToast(inspect.ErrForeignClose))
	assert.Equal(t, toastExpired, closeToast(inspect.ErrViewClosed))
}
