package session

import (
	"context"
	"sync"

	"github.com/sandevgo/snipbot/internal/core"
	"github.com/sandevgo/snipbot/pkg/log"
)

type Responder interface {
	Name() string
	Respond(ctx context.Context, msg core.Message)
}

// Dispatcher fans one incoming message out to every detector and responder.
// Each runs in its own goroutine with no ordering between them, so two
// detectors matching the same message each post their own notice.
type Dispatcher struct {
	controller *Controller
	detectors  []Detector
	responders []Responder

	wg sync.WaitGroup
}

func NewDispatcher(controller *Controller, detectors []Detector, responders ...Responder) *Dispatcher {
	return &Dispatcher{
		controller: controller,
		detectors:  detectors,
		responders: responders,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, msg core.Message) {
	if msg.AuthorIsBot {
		return
	}

	for _, det := range d.detectors {
		d.wg.Go(func() {
			defer d.recoverPanic(ctx, det.Name)
			_, _, _ = d.controller.Run(ctx, msg, det)
		})
	}

	for _, r := range d.responders {
		d.wg.Go(func() {
			defer d.recoverPanic(ctx, r.Name())
			r.Respond(ctx, msg)
		})
	}
}

// Wait blocks until every in-flight dispatch has returned. Armed controls
// outlive their dispatch and are not waited for.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) Controller() *Controller {
	return d.controller
}

func (d *Dispatcher) recoverPanic(ctx context.Context, name string) {
	if r := recover(); r != nil {
		log.FromCtx(ctx).Error().Interface("panic", r).Str("handler", name).Msg("dispatch panicked")
	}
}
