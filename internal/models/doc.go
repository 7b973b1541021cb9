// Package models defines practice exercises and the persistence port used by the HTTP service and CLI.
//
// The package contains:
//
//   - [Exercise] : a named practice item with an optional description
//   - [ExerciseType] : the tagged union of Scale, Triad, Technique and Song variants
//   - [ScaleSpec] : root, scale type and fret range for the Scale and Triad variants
//   - [ExerciseStore] : the storage interface, implemented by the repositories package
//
// JSON uses external tagging so that documents written by earlier clients load unchanged:
//
//	{"id":"ex_1","name":"C major","description":null,
//	 "exercise_type":{"Scale":{"root_note":"C","scale_type":{"Heptatonic":"Major"},"fret_range":[3,7]}}}
package models
