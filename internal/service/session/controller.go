package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/snipbot/internal/core"
	"github.com/sandevgo/snipbot/pkg/log"
)

const (
	DefaultPacingDelay    = 2 * time.Second
	DefaultControlTimeout = 15 * time.Second
)

type Options struct {
	PacingDelay    time.Duration
	ControlTimeout time.Duration
}

// Controller runs one detector against one message and, on a match, arms an
// open control bound to the snippet and its author.
type Controller struct {
	guard     core.SessionGuard
	messenger core.Messenger
	view      core.InspectionView
	registry  *Registry

	pacing  time.Duration
	timeout time.Duration
	newID   func() string
}

func NewController(
	guard core.SessionGuard,
	messenger core.Messenger,
	view core.InspectionView,
	registry *Registry,
	opts Options,
) *Controller {
	if opts.PacingDelay < 0 {
		opts.PacingDelay = DefaultPacingDelay
	}
	if opts.ControlTimeout <= 0 {
		opts.ControlTimeout = DefaultControlTimeout
	}

	return &Controller{
		guard:     guard,
		messenger: messenger,
		view:      view,
		registry:  registry,
		pacing:    opts.PacingDelay,
		timeout:   opts.ControlTimeout,
		newID:     uuid.NewString,
	}
}

func (c *Controller) Registry() *Registry {
	return c.registry
}

// Run returns the armed control, or nil when the message did not match, the
// author already owns a session, or the attempt aborted before arming.
// The returned state is where the attempt stopped.
func (c *Controller) Run(ctx context.Context, msg core.Message, d Detector) (*Control, State, error) {
	key := msg.Key()
	if c.guard.IsLocked(key) {
		return nil, StateIdle, nil
	}

	logger := log.FromCtx(ctx).With().
		Str("detector", d.Name).
		Int64("chat", key.ChannelID).
		Int64("author", key.AuthorID).
		Logger()

	snippet, err := d.Resolver.Resolve(ctx, msg)
	if err != nil {
		logger.Debug().Err(err).Msg("candidate aborted")
		return nil, StateAborted, err
	}
	if snippet == nil {
		return nil, StateIdle, nil
	}
	logger.Debug().Str("file", snippet.Filename).Msg("content detected")

	notice, err := c.messenger.Send(ctx, key.ChannelID, d.PendingText)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to send notice")
		return nil, StateAborted, fmt.Errorf("failed to send notice: %w", err)
	}

	select {
	case <-ctx.Done():
		_ = c.messenger.Delete(context.WithoutCancel(ctx), notice)
		return nil, StateAborted, ctx.Err()
	case <-time.After(c.pacing):
	}

	ctrl := &Control{
		id:       c.newID(),
		owner:    key,
		snippet:  *snippet,
		notice:   notice,
		deadline: time.Now().Add(c.timeout),
		guard:    c.guard,
		view:     c.view,
		notifier: c.messenger,
		registry: c.registry,
		state:    StateArmed,
		done:     make(chan struct{}),
	}

	// Registered before the button is visible so an immediate click finds it.
	c.registry.Add(ctrl)

	button := core.Button{Label: OpenButtonLabel, Action: core.ActionOpen, Payload: ctrl.id}
	if err := c.messenger.Edit(ctx, notice, d.ReadyText, button); err != nil {
		c.registry.Remove(ctrl.id)
		_ = c.messenger.Delete(ctx, notice)
		logger.Warn().Err(err).Msg("failed to arm control")
		return nil, StateAborted, fmt.Errorf("failed to arm control: %w", err)
	}

	go ctrl.wait(ctx)

	logger.Debug().Str("control", ctrl.id).Time("deadline", ctrl.deadline).Msg("control armed")
	return ctrl, StateArmed, nil
}
