// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	applog "dspengine/internal/log"
	"dspengine/internal/telemetry"
)

// WebSocket broadcasts telemetry.Surface snapshots as JSON to every
// connected client at addr's "/telemetry" endpoint, once per tick.
type WebSocket struct {
	addr     string
	tick     time.Duration
	surface  *telemetry.Surface
	upgrader websocket.Upgrader

	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex

	server   *http.Server
	ticker   *time.Ticker
	doneChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// NewWebSocket returns a transport that serves addr once Start is called.
// A non-positive tick defaults to 16ms (~60Hz), matching the UDP publisher's
// default.
func NewWebSocket(addr string, tick time.Duration, surface *telemetry.Surface) *WebSocket {
	if tick <= 0 {
		tick = 16 * time.Millisecond
	}
	return &WebSocket{
		addr:    addr,
		tick:    tick,
		surface: surface,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// Start launches the HTTP server and the broadcast ticker. A no-op if
// already running.
func (w *WebSocket) Start() error {
	w.mu.Lock()
	if w.ticker != nil {
		w.mu.Unlock()
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/telemetry", w.handleConn)
	w.server = &http.Server{Addr: w.addr, Handler: mux}
	w.ticker = time.NewTicker(w.tick)
	w.doneChan = make(chan struct{})

	ticker := w.ticker
	doneChan := w.doneChan
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		applog.Infof("transport: WebSocket telemetry server starting on %s/telemetry", w.addr)
		if err := w.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("transport: WebSocket server error: %v", err)
		}
	}()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ticker.C:
				w.broadcast()
			case <-doneChan:
				return
			}
		}
	}()

	return nil
}

// Stop shuts the server and broadcast loop down and waits for both to
// exit. A no-op if not running.
func (w *WebSocket) Stop() error {
	w.mu.Lock()
	if w.ticker == nil {
		w.mu.Unlock()
		return nil
	}
	w.ticker.Stop()
	close(w.doneChan)
	w.ticker = nil
	server := w.server
	w.mu.Unlock()

	w.clientsMu.Lock()
	for client := range w.clients {
		client.Close()
	}
	w.clients = make(map[*websocket.Conn]bool)
	w.clientsMu.Unlock()

	var err error
	if server != nil {
		err = server.Close()
	}
	w.wg.Wait()
	return err
}

func (w *WebSocket) handleConn(rw http.ResponseWriter, r *http.Request) {
	conn, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		applog.Errorf("transport: WebSocket upgrade error: %v", err)
		return
	}

	w.clientsMu.Lock()
	w.clients[conn] = true
	w.clientsMu.Unlock()

	go func() {
		// Block on a read solely to detect client disconnect; the
		// telemetry endpoint never expects incoming messages.
		if _, _, err := conn.ReadMessage(); err != nil {
			w.clientsMu.Lock()
			delete(w.clients, conn)
			w.clientsMu.Unlock()
			conn.Close()
		}
	}()
}

func (w *WebSocket) broadcast() {
	snapshot := w.surface.Snapshot()

	w.clientsMu.Lock()
	defer w.clientsMu.Unlock()
	for client := range w.clients {
		if err := client.WriteJSON(snapshot); err != nil {
			applog.Debugf("transport: WebSocket write error, dropping client: %v", err)
			client.Close()
			delete(w.clients, client)
		}
	}
}

var _ Transport = (*WebSocket)(nil)
