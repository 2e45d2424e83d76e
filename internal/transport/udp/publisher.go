// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	applog "dspengine/internal/log"
	"dspengine/internal/telemetry"
)

// Publisher periodically samples a telemetry.Surface and sends it over UDP
// as a fixed binary frame via a Sender.
//
// Frame layout (BigEndian):
//
//	Sequence Number   uint32     4 bytes
//	Timestamp         int64      8 bytes   (UnixNano)
//	RMS               float32    4 bytes
//	Magnitude Count   uint16     2 bytes   (N)
//	Magnitudes        []float32  N*4 bytes
type Publisher struct {
	sender  *Sender
	surface *telemetry.Surface

	interval time.Duration
	ticker   *time.Ticker
	doneChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex

	sequenceNum uint32
	packetBuf   *bytes.Buffer
}

// NewPublisher returns a publisher that sends surface snapshots to sender
// every interval. A non-positive interval defaults to 16ms (~60Hz).
func NewPublisher(interval time.Duration, sender *Sender, surface *telemetry.Surface) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("udp: publisher: sender cannot be nil")
	}
	if surface == nil {
		return nil, fmt.Errorf("udp: publisher: telemetry surface cannot be nil")
	}
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}

	return &Publisher{
		sender:    sender,
		surface:   surface,
		interval:  interval,
		packetBuf: new(bytes.Buffer),
	}, nil
}

// Start begins the periodic send loop. A no-op if already running.
func (p *Publisher) Start() error {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		return nil
	}
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-ticker.C:
				p.sendFrame()
			case <-doneChan:
				return
			}
		}
	}()
	return nil
}

// Stop ends the send loop and waits for it to exit. A no-op if idle.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}
	p.ticker.Stop()
	close(p.doneChan)
	p.ticker = nil
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *Publisher) sendFrame() {
	snapshot := p.surface.Snapshot()

	p.sequenceNum++
	p.packetBuf.Reset()

	err := binary.Write(p.packetBuf, binary.BigEndian, p.sequenceNum)
	if err == nil {
		err = binary.Write(p.packetBuf, binary.BigEndian, time.Now().UnixNano())
	}
	if err == nil {
		err = binary.Write(p.packetBuf, binary.BigEndian, snapshot.RMS)
	}
	if err == nil {
		err = binary.Write(p.packetBuf, binary.BigEndian, uint16(len(snapshot.Magnitudes)))
	}
	if err == nil {
		err = binary.Write(p.packetBuf, binary.BigEndian, snapshot.Magnitudes)
	}
	if err != nil {
		applog.Errorf("udp: publisher: packing frame: %v", err)
		return
	}

	if err := p.sender.Send(p.packetBuf.Bytes()); err != nil {
		applog.Debugf("udp: publisher: send failed: %v", err)
	}
}
