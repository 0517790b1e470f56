package resolver

import (
	"context"
	"fmt"

	"github.com/sandevgo/snipbot/internal/core"
)

const DefaultMaxAttachmentSize = 1 << 20

type attachmentReader interface {
	ReadAttachment(ctx context.Context, att core.Attachment) ([]byte, error)
}

// Attachment reads the first file attached to a message as text.
type Attachment struct {
	reader  attachmentReader
	maxSize int64
}

func NewAttachment(reader attachmentReader, maxSize int64) *Attachment {
	if maxSize <= 0 {
		maxSize = DefaultMaxAttachmentSize
	}
	return &Attachment{
		reader:  reader,
		maxSize: maxSize,
	}
}

func (r *Attachment) Name() string {
	return "file"
}

func (r *Attachment) Resolve(ctx context.Context, msg core.Message) (*core.Snippet, error) {
	if len(msg.Attachments) == 0 {
		return nil, nil
	}

	att := msg.Attachments[0]
	if att.Size > r.maxSize {
		return nil, fmt.Errorf("attachment %q too large: %d bytes", att.Filename, att.Size)
	}

	data, err := r.reader.ReadAttachment(ctx, att)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	if int64(len(data)) > r.maxSize {
		return nil, fmt.Errorf("attachment %q too large: %d bytes", att.Filename, len(data))
	}

	s, err := core.NewSnippet(data, att.Filename)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
