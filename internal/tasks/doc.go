// Package tasks runs the long-lived practice operations with progress reporting.
//
// # Metronome
//
// [Metronome.Run] emits a [Tick] per beat on a channel until its context ends.
// The first beat of every bar is accented. Ticks are sent with a select on the
// context so a stalled consumer never outlives cancellation.
//
// # Practice Timer
//
// [RunPractice] drives a metronome for a planned duration, reports each tick and
// bar as a [ProgressUpdate], and optionally records the finished run through a
// [SessionRecorder] (repositories.SessionRepository).
//
// # Click Track
//
// [ClickTrack] synthesises the same beat pattern as a beep streamer and
// [RenderClickTrack] encodes it to WAV.
//
// # Bulk Export
//
// [Exporter.BulkExport] writes many exercises concurrently with a worker pool and
// a rate limiter, then writes an export_manifest.json summary.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
