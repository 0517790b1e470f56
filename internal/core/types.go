package core

import (
	"path"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	SnipName          = "SnipBot"
	SnipUserAgent     = "SnipBot/0.1"
	SnipRepositoryURL = "https://github.com/sandevgo/snipbot"
	SnipVersion       = "0.1.0"
)

const (
	defaultBaseName  = "unnamed"
	defaultExtension = "txt"
)

// Snippet is a normalized unit of detected source code.
type Snippet struct {
	Content  []byte
	Filename string
}

// NewSnippet validates content as text and normalizes the filename so that
// it always carries an extension.
func NewSnippet(content []byte, filename string) (Snippet, error) {
	if !utf8.Valid(content) {
		return Snippet{}, ErrUndecodable
	}
	return Snippet{Content: content, Filename: normalizeFilename(filename)}, nil
}

// UnnamedFilename builds the placeholder name used when only a language tag is known.
func UnnamedFilename(ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = defaultExtension
	}
	return defaultBaseName + "." + ext
}

func normalizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return UnnamedFilename("")
	}
	if ext := path.Ext(name); ext == "" || ext == "." {
		return strings.TrimSuffix(name, ".") + "." + defaultExtension
	}
	return name
}

func (s Snippet) Text() string {
	return string(s.Content)
}

// Extension returns the filename extension without the leading dot.
func (s Snippet) Extension() string {
	return strings.TrimPrefix(path.Ext(s.Filename), ".")
}

func (s Snippet) Lines() int {
	if len(s.Content) == 0 {
		return 0
	}
	n := strings.Count(s.Text(), "\n")
	if !strings.HasSuffix(s.Text(), "\n") {
		n++
	}
	return n
}

// SessionKey identifies one author's slot for one interactive session in a channel.
type SessionKey struct {
	ChannelID int64
	AuthorID  int64
}

// MessageRef is an opaque handle to a message posted on the chat platform.
type MessageRef struct {
	ChannelID int64
	MessageID string
}

// MessageSig satisfies telebot's Editable so a ref can be edited or deleted directly.
func (r MessageRef) MessageSig() (string, int64) {
	return r.MessageID, r.ChannelID
}

func (r MessageRef) IsZero() bool {
	return r.MessageID == ""
}

type Attachment struct {
	FileID   string
	Filename string
	Size     int64
}

// Message is a platform-neutral incoming chat message.
type Message struct {
	ID          string
	ChannelID   int64
	AuthorID    int64
	AuthorIsBot bool
	Content     string
	Attachments []Attachment
}

func (m Message) Key() SessionKey {
	return SessionKey{ChannelID: m.ChannelID, AuthorID: m.AuthorID}
}

func (m Message) Ref() MessageRef {
	return MessageRef{ChannelID: m.ChannelID, MessageID: m.ID}
}

// Button is a single callback button rendered under a bot message.
type Button struct {
	Label   string
	Action  string
	Payload string
}

const (
	ActionOpen  = "open"
	ActionClose = "close"
)

// BlobRef points to a single file on a remote repository host.
type BlobRef struct {
	Repo   string
	Branch string
	Path   string
}

func (b BlobRef) String() string {
	return b.Repo + "@" + b.Branch + ":" + b.Path
}

// LineRange is an optional 1-indexed inclusive line selection. Zero means unset.
type LineRange struct {
	Start int
	End   int
}

func (r LineRange) String() string {
	switch {
	case r.Start == 0:
		return ""
	case r.End == 0:
		return "L" + strconv.Itoa(r.Start)
	default:
		return "L" + strconv.Itoa(r.Start) + "-L" + strconv.Itoa(r.End)
	}
}
