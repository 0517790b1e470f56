package test

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/sandevgo/snipbot/internal/core"
)

var ErrPlatform = errors.New("platform unavailable")

type Sent struct {
	ChannelID int64
	Text      string
	Ref       core.MessageRef
}

type Edited struct {
	Ref     core.MessageRef
	Text    string
	Buttons []core.Button
}

// Messenger is an in-memory core.Messenger recording every call.
type Messenger struct {
	mu sync.Mutex

	Sent       []Sent
	Edited     []Edited
	Deleted    []core.MessageRef
	Suppressed []core.Message

	Attachments map[string][]byte

	SendErr     error
	EditErr     error
	DeleteErr   error
	SuppressErr error

	nextID int
}

var _ core.Messenger = (*Messenger)(nil)

func NewMessenger() *Messenger {
	return &Messenger{Attachments: make(map[string][]byte)}
}

func (m *Messenger) Send(ctx context.Context, channelID int64, text string) (core.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SendErr != nil {
		return core.MessageRef{}, m.SendErr
	}
	m.nextID++
	ref := core.MessageRef{ChannelID: channelID, MessageID: strconv.Itoa(m.nextID)}
	m.Sent = append(m.Sent, Sent{ChannelID: channelID, Text: text, Ref: ref})
	return ref, nil
}

func (m *Messenger) Edit(ctx context.Context, ref core.MessageRef, text string, buttons ...core.Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EditErr != nil {
		return m.EditErr
	}
	m.Edited = append(m.Edited, Edited{Ref: ref, Text: text, Buttons: buttons})
	return nil
}

func (m *Messenger) Delete(ctx context.Context, ref core.MessageRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Deleted = append(m.Deleted, ref)
	return nil
}

func (m *Messenger) SuppressPreview(ctx context.Context, msg core.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Suppressed = append(m.Suppressed, msg)
	return m.SuppressErr
}

func (m *Messenger) ReadAttachment(ctx context.Context, att core.Attachment) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.Attachments[att.FileID]
	if !ok {
		return nil, ErrPlatform
	}
	return data, nil
}

func (m *Messenger) SentMessages() []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Sent(nil), m.Sent...)
}

func (m *Messenger) EditedMessages() []Edited {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Edited(nil), m.Edited...)
}

func (m *Messenger) DeletedMessages() []core.MessageRef {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.MessageRef(nil), m.Deleted...)
}
