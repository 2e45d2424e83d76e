// SPDX-License-Identifier: MIT

// Package transport broadcasts telemetry.Surface snapshots to external
// consumers. Transports are a convenience layer on top of the always-
// available atomics in internal/telemetry: a transport failing to start
// never blocks or fails engine startup, and the engine runs exactly the
// same with every transport disabled.
package transport

// Transport periodically samples a telemetry surface and publishes the
// result to some external sink. Start and Stop must be safe to call more
// than once; a second Start while running and a Stop while idle are both
// no-ops.
type Transport interface {
	Start() error
	Stop() error
}
