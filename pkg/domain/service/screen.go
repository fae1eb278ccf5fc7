package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"storefront/pkg/domain/model"
)

var ErrScreenClosed = errors.New("screen is no longer mounted")

// Scope is the lifetime of one mounted screen instance. Async results are
// applied through Commit, which refuses once the screen has unmounted.
type Scope struct {
	id     uuid.UUID
	screen model.Screen
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
	logger logrus.FieldLogger

	mu     sync.Mutex
	active bool
}

func NewScope(parent context.Context, screen model.Screen, logger logrus.FieldLogger) *Scope {
	ctx, cancel := context.WithCancel(parent)
	id := uuid.New()
	return &Scope{
		id:     id,
		screen: screen,
		ctx:    ctx,
		cancel: cancel,
		active: true,
		logger: logger.WithFields(logrus.Fields{"screen": string(screen), "scope": id.String()}),
	}
}

func (s *Scope) ID() uuid.UUID { return s.id }

func (s *Scope) Screen() model.Screen { return s.screen }

// Context is cancelled on Unmount.
func (s *Scope) Context() context.Context { return s.ctx }

func (s *Scope) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Scope) Unmount() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.mu.Unlock()

	s.cancel()
}

// Commit runs apply only while the screen is mounted. apply must not call
// back into the scope.
func (s *Scope) Commit(apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false
	}
	apply()
	return true
}

// Wait blocks until every task launched on the scope has finished.
func (s *Scope) Wait() {
	_ = s.group.Wait()
}

// Launch runs fetch in the background and hands its result to apply if the
// screen is still mounted when fetch returns. Results for an unmounted screen
// are discarded.
func Launch[T any](s *Scope, op string, fetch func(ctx context.Context) (T, error), apply func(T, error)) {
	if !s.Active() {
		return
	}
	s.group.Go(func() error {
		result, err := fetch(s.ctx)
		if !s.Commit(func() { apply(result, err) }) {
			s.logger.WithField("op", op).Debug("discarding result for unmounted screen")
		}
		return nil
	})
}
