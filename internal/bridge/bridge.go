// Package bridge drives the poll → classify → deliver cycle and owns the
// shutdown discipline: whatever terminates the process, downstream consumers
// see exactly one final alive=0 record.
package bridge

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutbridge/nut-udp-bridge/internal/nut"
	"github.com/nutbridge/nut-udp-bridge/internal/record"
	"github.com/nutbridge/nut-udp-bridge/internal/status"
)

const (
	// defaultAnomalyInterval is the poll interval for every condition other
	// than Online, to tighten monitoring while something is wrong.
	defaultAnomalyInterval = 5 * time.Second
	// defaultErrorBackoff is the fixed wait after a failed source fetch.
	defaultErrorBackoff = 10 * time.Second
)

// Config holds the loop's timing knobs. Zero values fall back to defaults
// in New (Online interval 1s minimum, anomaly 5s, backoff 10s).
type Config struct {
	OnlineInterval  time.Duration
	AnomalyInterval time.Duration
	ErrorBackoff    time.Duration
}

// Bridge is the poll loop. A single goroutine runs Run; Stop may be called
// concurrently from the signal watcher. Last-known state is written only by
// the loop and read under lock by the dead-record constructor.
type Bridge struct {
	cfg      Config
	source   nut.Source
	sender   RecordSender
	builder  *record.Builder
	debounce *status.Debouncer
	log      zerolog.Logger

	running  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	guard    *ShutdownGuard

	mu       sync.Mutex
	lastCond status.Condition
	lastText string
}

// New assembles a Bridge from its collaborators. The shutdown guard is
// created here so every exit path shares one idempotent instance.
func New(cfg Config, source nut.Source, sender RecordSender, builder *record.Builder, debounce *status.Debouncer, log zerolog.Logger) *Bridge {
	if cfg.OnlineInterval <= 0 {
		cfg.OnlineInterval = time.Second
	}
	if cfg.AnomalyInterval <= 0 {
		cfg.AnomalyInterval = defaultAnomalyInterval
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = defaultErrorBackoff
	}

	b := &Bridge{
		cfg:      cfg,
		source:   source,
		sender:   sender,
		builder:  builder,
		debounce: debounce,
		log:      log,
		stopCh:   make(chan struct{}),
		lastCond: status.Unknown,
		lastText: status.Unknown.String(),
	}
	b.running.Store(true)
	b.guard = NewShutdownGuard(sender, b.deadRecord, log)
	return b
}

// Guard exposes the shutdown guard for the deferred last-resort call in
// main.
func (b *Bridge) Guard() *ShutdownGuard {
	return b.guard
}

// Stop halts the loop and fires the shutdown guard immediately, so the dead
// record goes out even while the loop is still blocked in a fetch or sleep.
// Safe to call from any goroutine, any number of times.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		b.running.Store(false)
		close(b.stopCh)
	})
	b.guard.Shutdown()
}

// Run executes poll cycles until Stop is called, then fires the shutdown
// guard (a no-op if Stop already did).
func (b *Bridge) Run(ctx context.Context) {
	for b.running.Load() {
		sample, err := b.source.Fetch(ctx)
		if err != nil {
			b.log.Warn().Err(err).Msg("UPS source unreachable")
			b.deliver(b.builder.CommsError(err))
			b.sleep(b.cfg.ErrorBackoff)
			continue
		}

		selfTest := status.SelfTestActive(sample["ups.test.result"])
		effective := b.debounce.Observe(sample["ups.status"], selfTest)

		cond, label := status.Classify(effective)
		mains := status.ClassifyMains(effective)
		charge := status.ClassifyCharge(effective)

		b.mu.Lock()
		b.lastCond = cond
		b.lastText = strings.ToLower(strings.TrimSpace(label))
		b.mu.Unlock()

		b.deliver(b.builder.Alive(cond, label, mains, charge, sample))

		interval := b.sleepInterval(cond)
		b.log.Debug().Dur("interval", interval).Str("status", label).Msg("cycle complete")
		b.sleep(interval)
	}

	b.guard.Shutdown()
	b.log.Info().Msg("poll loop stopped")
}

// deadRecord builds the terminal record from the last successful
// classification, or Unknown if no cycle ever succeeded.
func (b *Bridge) deadRecord() *record.Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.builder.Dead(b.lastCond, b.lastText)
}

// sleepInterval picks the post-cycle sleep: the configured interval while
// Online, the short anomaly interval for everything else.
func (b *Bridge) sleepInterval(cond status.Condition) time.Duration {
	if cond == status.Online {
		return b.cfg.OnlineInterval
	}
	return b.cfg.AnomalyInterval
}

// sleep waits for d or until Stop fires, whichever comes first.
func (b *Bridge) sleep(d time.Duration) {
	select {
	case <-time.After(d):
	case <-b.stopCh:
	}
}

// deliver sends one record; failures are logged and swallowed so delivery
// problems never interrupt the loop.
func (b *Bridge) deliver(rec *record.Record) {
	if err := b.sender.Send(rec); err != nil {
		b.log.Error().Err(err).Msg("UDP send failed")
	}
}
