// SPDX-License-Identifier: MIT
package transport

import (
	"sync"
	"time"

	applog "dspengine/internal/log"
	"dspengine/internal/telemetry"
)

// LoggingTransport writes telemetry.Surface snapshots to the structured
// logger at debug level, once per tick. It exists mainly for local
// debugging: unlike WebSocket/UDP it has no external consumer, only a log
// line.
type LoggingTransport struct {
	tick    time.Duration
	surface *telemetry.Surface

	ticker   *time.Ticker
	doneChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// NewLoggingTransport returns a transport that logs surface snapshots every
// tick once Start is called. A non-positive tick defaults to 1 second,
// far coarser than the WebSocket/UDP transports since this is for a human
// to read, not a consumer to poll.
func NewLoggingTransport(tick time.Duration, surface *telemetry.Surface) *LoggingTransport {
	if tick <= 0 {
		tick = time.Second
	}
	return &LoggingTransport{tick: tick, surface: surface}
}

// Start launches the logging ticker. A no-op if already running.
func (l *LoggingTransport) Start() error {
	l.mu.Lock()
	if l.ticker != nil {
		l.mu.Unlock()
		return nil
	}
	l.ticker = time.NewTicker(l.tick)
	l.doneChan = make(chan struct{})
	ticker := l.ticker
	doneChan := l.doneChan
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			select {
			case <-ticker.C:
				snapshot := l.surface.Snapshot()
				applog.Debugf("transport: telemetry rms=%.4f mediaTime=%.2f subtitleIndex=%d",
					snapshot.RMS, snapshot.MediaTime, snapshot.SubtitleIndex)
			case <-doneChan:
				return
			}
		}
	}()
	return nil
}

// Stop halts the logging ticker and waits for it to exit. A no-op if not
// running.
func (l *LoggingTransport) Stop() error {
	l.mu.Lock()
	if l.ticker == nil {
		l.mu.Unlock()
		return nil
	}
	l.ticker.Stop()
	close(l.doneChan)
	l.ticker = nil
	l.mu.Unlock()

	l.wg.Wait()
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
