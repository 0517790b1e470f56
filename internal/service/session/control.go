package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sandevgo/snipbot/internal/core"
	"github.com/sandevgo/snipbot/pkg/log"
)

const (
	OpenButtonLabel = "Open in IDE"
	UnavailableText = "⚠️ **This snippet could not be opened**"

	retractTimeout = 5 * time.Second
)

var (
	ErrForeignActivation = errors.New("control belongs to another user")
	ErrNotArmed          = errors.New("control is no longer armed")
	ErrSessionActive     = errors.New("user already has an open session")
)

type notifier interface {
	Edit(ctx context.Context, ref core.MessageRef, text string, buttons ...core.Button) error
	Delete(ctx context.Context, ref core.MessageRef) error
}

// Control is a single-use, owner-bound, time-boxed "open" button.
// Exactly one of activation or expiry completes it.
type Control struct {
	id       string
	owner    core.SessionKey
	snippet  core.Snippet
	notice   core.MessageRef
	deadline time.Time

	guard    core.SessionGuard
	view     core.InspectionView
	notifier notifier
	registry *Registry

	mu    sync.Mutex
	state State
	done  chan struct{}
}

func (c *Control) ID() string {
	return c.id
}

func (c *Control) Owner() core.SessionKey {
	return c.owner
}

func (c *Control) Notice() core.MessageRef {
	return c.notice
}

func (c *Control) Deadline() time.Time {
	return c.deadline
}

func (c *Control) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed once the control is consumed or expired.
func (c *Control) Done() <-chan struct{} {
	return c.done
}

// Activate consumes the control on behalf of by. Clicks from anyone but the
// owner in the origin channel are rejected and leave the control armed.
func (c *Control) Activate(ctx context.Context, by core.SessionKey) error {
	if by != c.owner {
		return ErrForeignActivation
	}

	c.mu.Lock()
	if c.state != StateArmed {
		c.mu.Unlock()
		return ErrNotArmed
	}
	if !c.guard.Lock(c.owner, c.notice) {
		c.mu.Unlock()
		return ErrSessionActive
	}
	c.state = StateConsumed
	close(c.done)
	c.mu.Unlock()

	c.registry.Remove(c.id)

	logger := log.FromCtx(ctx)
	logger.Debug().Str("control", c.id).Int64("chat", c.owner.ChannelID).Msg("control consumed")

	if err := c.view.Open(ctx, c.owner, c.snippet, c.notice); err != nil {
		logger.Warn().Err(err).Str("control", c.id).Msg("inspection view failed to open")
		// The button is spent; leave a final notice without it.
		editCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), retractTimeout)
		defer cancel()
		if err := c.notifier.Edit(editCtx, c.notice, UnavailableText); err != nil {
			logger.Debug().Err(err).Str("control", c.id).Msg("failed to finalize notice")
		}
	}
	return nil
}

// wait blocks until the control is activated, its deadline passes or ctx ends.
func (c *Control) wait(ctx context.Context) {
	timer := time.NewTimer(time.Until(c.deadline))
	defer timer.Stop()

	select {
	case <-c.done:
		return
	case <-timer.C:
	case <-ctx.Done():
	}
	c.expire(ctx)
}

func (c *Control) expire(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateArmed {
		c.mu.Unlock()
		return
	}
	c.state = StateExpired
	close(c.done)
	c.mu.Unlock()

	c.registry.Remove(c.id)

	// ctx may already be cancelled on shutdown; the notice is retracted regardless.
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), retractTimeout)
	defer cancel()
	if err := c.notifier.Delete(delCtx, c.notice); err != nil {
		log.FromCtx(ctx).Debug().Err(err).Str("control", c.id).Msg("failed to retract notice")
	}
	log.FromCtx(ctx).Debug().Str("control", c.id).Msg("control expired")
}
