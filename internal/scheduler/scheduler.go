// Package scheduler runs the periodic refresh for watch mode and raises
// follow-up reminders for records that are due.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"jobmate/tracker/internal/application"
)

// Refresher is satisfied by *tracker.Controller.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Source is satisfied by *recordstore.Store.
type Source interface {
	Current() []application.Record
}

// Scheduler wraps robfig/cron and manages the refresh loop.
type Scheduler struct {
	cron      *cron.Cron
	spec      string // cron spec, e.g. "@every 1m"
	refresher Refresher
	log       *zap.Logger
	now       func() time.Time

	source Source
	remind func(application.Record)

	mu       sync.Mutex
	reminded map[application.ID]string // id -> day last reminded
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. cron's own messages go through it too.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// WithReminders calls fn for every record in src whose follow-up is due,
// at most once per record per calendar day.
func WithReminders(src Source, fn func(application.Record)) Option {
	return func(s *Scheduler) {
		s.source = src
		s.remind = fn
	}
}

// WithClock overrides time.Now for reminder checks.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// New creates a Scheduler that refreshes r on spec.
func New(spec string, r Refresher, opts ...Option) *Scheduler {
	s := &Scheduler{
		spec:      spec,
		refresher: r,
		log:       zap.NewNop(),
		now:       time.Now,
		reminded:  make(map[application.ID]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(cron.WithLogger(cronLogger{s.log.Sugar()}))
	return s
}

// Start registers the job and starts the scheduler. One refresh also runs
// immediately so the list is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("scheduler started", zap.String("spec", s.spec))

	go s.RunOnce(ctx)
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunOnce performs one refresh and, if it succeeded, one reminder pass.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.refresher.Refresh(ctx); err != nil {
		// Already surfaced through the controller's error slot.
		s.log.Debug("scheduled refresh failed", zap.Error(err))
		return
	}
	s.checkReminders()
}

func (s *Scheduler) checkReminders() {
	if s.source == nil || s.remind == nil {
		return
	}
	now := s.now()
	day := now.Format(application.DateLayout)

	var due []application.Record
	s.mu.Lock()
	for _, r := range s.source.Current() {
		if !r.FollowUpDue(now) || s.reminded[r.ID] == day {
			continue
		}
		s.reminded[r.ID] = day
		due = append(due, r)
	}
	s.mu.Unlock()

	for _, r := range due {
		s.log.Info("follow-up due", zap.String("id", string(r.ID)), zap.String("company", r.Company))
		s.remind(r)
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
