// Package logtail reads the tail of folio's log file for the logs view.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// proportional to the window rather than the file. A missing file is not an
// error; the log may simply not exist yet.
//
// Parse understands the JSON records written by slog's JSON handler and
// splits out time, level and message. Anything else is kept verbatim in
// Entry.Raw.
package logtail
