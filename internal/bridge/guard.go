package bridge

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutbridge/nut-udp-bridge/internal/record"
)

// deadRecordGrace gives the kernel a moment to flush the final datagram
// before the socket is torn down.
const deadRecordGrace = 50 * time.Millisecond

// ShutdownGuard guarantees that exactly one terminal alive=0 record leaves
// the process, no matter which exit path fires first: the signal watcher,
// normal loop exit, or the deferred last-resort call in main. Subsequent
// invocations are no-ops. A failed send is logged and the socket is still
// closed; Shutdown never panics.
type ShutdownGuard struct {
	once       sync.Once
	sender     RecordSender
	deadRecord func() *record.Record
	log        zerolog.Logger
}

// NewShutdownGuard returns a guard that obtains the terminal record from
// deadRecord at shutdown time, so it carries the loop's last known state.
func NewShutdownGuard(sender RecordSender, deadRecord func() *record.Record, log zerolog.Logger) *ShutdownGuard {
	return &ShutdownGuard{sender: sender, deadRecord: deadRecord, log: log}
}

// Shutdown sends the dead record and closes the outbound socket. Idempotent
// and safe to call from any goroutine.
func (g *ShutdownGuard) Shutdown() {
	g.once.Do(func() {
		if err := g.sender.Send(g.deadRecord()); err != nil {
			g.log.Error().Err(err).Msg("failed to send dead record")
		}
		time.Sleep(deadRecordGrace)
		if err := g.sender.Close(); err != nil {
			g.log.Error().Err(err).Msg("failed to close outbound socket")
		}
		g.log.Info().Msg("dead record delivered, outbound socket closed")
	})
}
