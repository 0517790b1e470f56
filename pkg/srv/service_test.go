package srv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingService struct {
	name    string
	mu      *sync.Mutex
	order   *[]string
	started chan struct{}
}

func (s *recordingService) Start(ctx context.Context) error {
	close(s.started)
	return nil
}

func (s *recordingService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.order = append(*s.order, s.name)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

func TestServices_Lifecycle(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	a := &recordingService{name: "a", mu: &mu, order: &order, started: make(chan struct{})}
	b := &recordingService{name: "b", mu: &mu, order: &order, started: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	services := []Service{a, b}
	StartServices(ctx, services)

	for _, s := range []*recordingService{a, b} {
		select {
		case <-s.started:
		case <-time.After(time.Second):
			t.Fatalf("%s not started", s.name)
		}
	}

	cancel()
	ShutdownServices(ctx, services)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestNewCleanup(t *testing.T) {
	called := false
	svc := NewCleanup(func() error {
		called = true
		return errors.New("closed twice")
	})

	require.NoError(t, svc.Start(context.Background()))
	assert.EqualError(t, svc.Shutdown(context.Background()), "closed twice")
	assert.True(t, called)

	assert.NoError(t, NewCleanup(nil).Shutdown(context.Background()))
}
