// Package repositories implements persistence for practice exercises.
//
// Two [models.ExerciseStore] implementations are provided:
//   - [ExerciseRepository] : SQLite storage with soft deletes and a partial unique index on live names
//   - [FileStore] : one JSON document per exercise in a directory, for setups without a database
//
// [SessionRepository] records practice sessions timed by the metronome.
//
// Sequence numbers provide stable ordering independent of IDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
