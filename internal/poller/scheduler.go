// Package poller runs the per-screen refresh controllers. A controller only
// ticks while its screen is active; deactivating it removes the cron entry so
// no tick fires after the screen has gone away.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownController   = errors.New("unknown controller")
	ErrDuplicateController = errors.New("controller already registered")
)

// Task is one refresh tick
type Task func(ctx context.Context) error

type controller struct {
	interval time.Duration
	task     Task
	entry    cron.EntryID
	active   bool
}

// Scheduler owns the cron instance behind every controller
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger

	mu          sync.Mutex
	controllers map[string]*controller
}

// NewScheduler creates a stopped scheduler. Call Start to begin ticking.
func NewScheduler(log zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		// a slow tick delays the next one instead of overlapping it
		cron:        cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:         ctx,
		cancel:      cancel,
		log:         log.With().Str("component", "poller").Logger(),
		controllers: make(map[string]*controller),
	}
}

// Register adds a named controller. It stays idle until activated.
func (s *Scheduler) Register(name string, interval time.Duration, task Task) error {
	if interval < time.Second {
		return fmt.Errorf("invalid interval %s for %s: must be at least 1s", interval, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.controllers[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateController, name)
	}
	s.controllers[name] = &controller{interval: interval, task: task}
	return nil
}

// Activate starts ticking name every interval. Activating an active
// controller is a no-op.
func (s *Scheduler) Activate(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.controllers[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownController, name)
	}
	if c.active {
		return nil
	}

	c.entry = s.cron.Schedule(cron.Every(c.interval), cron.FuncJob(func() { s.tick(name, c.task) }))
	c.active = true
	s.log.Debug().Str("controller", name).Dur("interval", c.interval).Msg("controller activated")
	return nil
}

// Deactivate stops ticking name. A tick already running finishes and its
// results are kept.
func (s *Scheduler) Deactivate(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.controllers[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownController, name)
	}
	if !c.active {
		return nil
	}

	s.cron.Remove(c.entry)
	c.active = false
	s.log.Debug().Str("controller", name).Msg("controller deactivated")
	return nil
}

// Active reports whether name is currently ticking
func (s *Scheduler) Active(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.controllers[name]
	return ok && c.active
}

// Trigger runs one tick of name immediately, outside the schedule
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	c, ok := s.controllers[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownController, name)
	}
	return c.task(ctx)
}

// Start begins running active controllers
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("poller started")
}

// Stop removes every schedule and waits for running ticks to finish
func (s *Scheduler) Stop() {
	s.log.Info().Msg("stopping poller")
	s.cancel()
	<-s.cron.Stop().Done()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.controllers {
		if c.active {
			s.cron.Remove(c.entry)
			c.active = false
		}
	}
	s.log.Info().Msg("poller stopped")
}

func (s *Scheduler) tick(name string, task Task) {
	start := time.Now()
	if err := task(s.ctx); err != nil {
		s.log.Error().Err(err).Str("controller", name).Msg("refresh tick failed")
		return
	}
	s.log.Debug().Str("controller", name).Dur("took", time.Since(start)).Msg("refresh tick")
}
