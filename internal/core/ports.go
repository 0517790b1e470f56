package core

import "context"

// Messenger is the chat platform as seen by the services. Text arguments are markdown.
type Messenger interface {
	Send(ctx context.Context, channelID int64, text string) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, text string, buttons ...Button) error
	Delete(ctx context.Context, ref MessageRef) error
	SuppressPreview(ctx context.Context, msg Message) error
	ReadAttachment(ctx context.Context, att Attachment) ([]byte, error)
}

// ContentResolver turns a raw message into an optional Snippet.
// A nil Snippet with a nil error means the message did not match.
type ContentResolver interface {
	Name() string
	Resolve(ctx context.Context, msg Message) (*Snippet, error)
}

type BlobFetcher interface {
	FetchBlob(ctx context.Context, ref BlobRef) ([]byte, error)
}

// Evaluator evaluates arithmetic only. Failures are reported as ErrDivisionByZero,
// ErrUnsupportedFeature or ErrInvalidExpression.
type Evaluator interface {
	Evaluate(expr string) (float64, error)
}

// InspectionView takes ownership of a snippet once its control was activated.
// It must release the owner's guard entry when the view ends.
type InspectionView interface {
	Open(ctx context.Context, owner SessionKey, snippet Snippet, notice MessageRef) error
}

type SessionGuard interface {
	IsLocked(key SessionKey) bool
	Lock(key SessionKey, handle MessageRef) bool
	Unlock(key SessionKey)
}
