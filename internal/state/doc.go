// Package state holds the process-wide application state for folio.
//
// # Overview
//
// State is a plain struct. Every change goes through an Action value and the
// pure Reduce function, so a transition can be tested without a Store:
//
//	next := state.Reduce(prev, state.UpdateAPIStatus{ID: "1", Status: state.StatusOffline})
//
// The Store wraps the current State with a readers-writer lock and fans each
// transition out to observers. Persistence (package persist) and the debug
// recorder (package devtools) are both observers; neither is known to the
// Store itself.
//
// # Actions
//
//   - SetLoading, SetError, SetTheme, SetAPIs, SetSelectedAPI: overwrite one field
//   - UpdateAPIStatus: replace Status on the descriptor with a matching ID;
//     a no-op for unknown IDs
//
// SetSelectedAPI does not validate the ID against APIs. Callers select from
// what they rendered.
//
// # Concurrency Model
//
// Dispatch is serialized: the reduce step and the observer notifications for
// one action finish before the next action is reduced, so observers see
// transitions in order. Observers run on the dispatching goroutine without the
// state lock held and must not call Dispatch themselves.
//
// Snapshot returns a deep copy; callers may mutate it freely.
//
// # Zero Value
//
// A zero Store is usable. NewStore is preferred because it seeds the initial
// state, typically from persist.Rehydrate.
package state
