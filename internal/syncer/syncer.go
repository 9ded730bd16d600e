// Periodic remote mirror of the rover data log
package syncer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"roverd/internal/logging"
	"roverd/internal/telemetry"
)

// ResultWriter receives the outcome of every copy attempt.
type ResultWriter interface {
	WriteSync(telemetry.SyncRow) error
}

// Loop mirrors one remote file on a fixed cadence. Every tick issues
// exactly one copy attempt; the cadence never depends on the previous
// attempt's outcome, and a slow attempt is cut off by the per-attempt
// timeout instead of delaying the schedule.
type Loop struct {
	sessionID string
	source    string
	dest      string
	interval  time.Duration
	timeout   time.Duration
	copier    Copier
	writer    ResultWriter
	attempts  int
	now       func() time.Time
	ticks     <-chan time.Time
}

// Option configures a Loop.
type Option func(*Loop)

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Loop) { l.timeout = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// WithTicker overrides the interval ticker, so tests can drive ticks
// deterministically.
func WithTicker(ch <-chan time.Time) Option {
	return func(l *Loop) { l.ticks = ch }
}

// New creates a sync loop. The default per-attempt timeout is the
// interval minus a scheduling margin, but never below one second.
func New(source, dest string, interval time.Duration, copier Copier, writer ResultWriter, opts ...Option) *Loop {
	l := &Loop{
		sessionID: uuid.New().String(),
		source:    source,
		dest:      dest,
		interval:  interval,
		copier:    copier,
		writer:    writer,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.timeout <= 0 {
		l.timeout = interval - 500*time.Millisecond
		if l.timeout < time.Second {
			l.timeout = time.Second
		}
	}
	return l
}

// SessionID returns the identifier tagged onto every attempt row.
func (l *Loop) SessionID() string { return l.sessionID }

// Run drives the mirror loop and stops when the context is done.
func (l *Loop) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("starting sync loop",
		"source", l.source, "dest", l.dest, "interval", l.interval, "session", l.sessionID)
	ticks := l.ticks
	if ticks == nil {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for {
		select {
		case <-ticks:
			l.tick(ctx)
		case <-ctx.Done():
			log.Info("stopping sync loop", "attempts", l.attempts)
			return
		}
	}
}

// tick performs one copy attempt and reports its real outcome.
func (l *Loop) tick(ctx context.Context) telemetry.SyncRow {
	log := logging.FromContext(ctx)
	l.attempts++

	attemptCtx, cancel := context.WithTimeout(ctx, l.timeout)
	start := l.now()
	err := l.copier.Copy(attemptCtx, l.source, l.dest)
	cancel()

	row := telemetry.SyncRow{
		SessionID: l.sessionID,
		Attempt:   l.attempts,
		Source:    l.source,
		Dest:      l.dest,
		OK:        err == nil,
		Duration:  l.now().Sub(start),
		Timestamp: l.now().UTC(),
	}
	if err != nil {
		row.Error = err.Error()
	}

	if err != nil {
		log.Warn("sync attempt failed", "attempt", l.attempts, "err", err)
	} else {
		log.Info("synced", "attempt", l.attempts, "source", l.source, "took", row.Duration)
	}

	if l.writer != nil {
		if werr := l.writer.WriteSync(row); werr != nil {
			log.Error("sync result write failed", "err", werr)
		}
	}
	return row
}
