// Package devtools is a read-only debug channel over the application store.
//
// A Recorder subscribes to the store and keeps a bounded history of every
// transition together with the state it produced. Server exposes that
// history, the current state, the latest health snapshot and a Prometheus
// text exposition over HTTP under /debug, and streams new transitions to
// WebSocket clients on /debug/ws. Nothing here dispatches actions.
package devtools
