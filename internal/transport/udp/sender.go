// SPDX-License-Identifier: MIT

// Package udp sends telemetry.Surface snapshots as a fixed binary frame to
// a configured UDP target, for consumers that want lower overhead than the
// JSON WebSocket transport.
package udp

import (
	"fmt"
	"net"
	"sync"

	applog "dspengine/internal/log"
)

// Sender owns a connected UDP socket and writes pre-packed frames to it.
type Sender struct {
	conn *net.UDPConn

	mu     sync.Mutex
	closed bool
}

// NewSender dials targetAddr ("host:port") over UDP. Dialing a UDP socket
// does not itself contact the remote host; a closed or unreachable target
// only surfaces as failed Writes.
func NewSender(targetAddr string) (*Sender, error) {
	addr, err := net.ResolveUDPAddr("udp", targetAddr)
	if err != nil {
		return nil, fmt.Errorf("udp: resolving target %q: %w", targetAddr, err)
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("udp: dialing target %q: %w", targetAddr, err)
	}

	applog.Infof("udp: sender connected to %s", conn.RemoteAddr())
	return &Sender{conn: conn}, nil
}

// Send writes frame as a single UDP datagram.
func (s *Sender) Send(frame []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("udp: sender is closed")
	}
	_, err := s.conn.Write(frame)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("udp: sending frame: %w", err)
	}
	return nil
}

// Close closes the underlying socket. Safe to call more than once.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("udp: closing sender: %w", err)
	}
	return nil
}
