// Package ui is folio's Bubble Tea terminal interface.
//
// The UI holds no control logic of its own. Every change it makes goes
// through the store (theme, selection, loading) or through the health poller
// and catalog source, and it re-reads the store and the latest health
// snapshot on a fixed tick. Three views are cycled with tab: the project
// cards, the selected project's detail, and the tail of folio's log file.
package ui
