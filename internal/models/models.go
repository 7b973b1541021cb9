// package models defines the practice exercise entity and its persistence port
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/fretx/internal/music"
)

var (
	ErrInvalidExercise = fmt.Errorf("invalid exercise")
	ErrNoScale         = fmt.Errorf("exercise type has no scale")
)

// Kind names an [ExerciseType] variant. The values are the JSON tags.
type Kind string

const (
	KindScale     Kind = "Scale"
	KindTriad     Kind = "Triad"
	KindTechnique Kind = "Technique"
	KindSong      Kind = "Song"
)

// Kinds lists the variants in display order.
func Kinds() []Kind {
	return []Kind{KindScale, KindTriad, KindTechnique, KindSong}
}

// ParseKind matches a variant name case-insensitively.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown exercise type %q", ErrInvalidExercise, s)
}

// FretRange is an inclusive (min, max) range, serialised as a two-element array.
type FretRange [2]int

func (r FretRange) Min() int { return r[0] }
func (r FretRange) Max() int { return r[1] }

func (r FretRange) String() string {
	return fmt.Sprintf("%d-%d", r[0], r[1])
}

// ScaleSpec configures scale and triad exercises.
type ScaleSpec struct {
	RootNote  music.Note      `json:"root_note"`
	ScaleType music.ScaleType `json:"scale_type"`
	FretRange FretRange       `json:"fret_range"`
}

// ExerciseType is the tagged union of exercise variants.
//
// Scale and Triad carry a [ScaleSpec]; Technique and Song carry nothing.
// The JSON form is externally tagged: {"Scale":{...}} or "Technique".
type ExerciseType struct {
	Kind Kind
	Spec *ScaleSpec
}

// ScaleExercise builds a Scale variant.
func ScaleExercise(root music.Note, st music.ScaleType, lo, hi int) ExerciseType {
	return ExerciseType{Kind: KindScale, Spec: &ScaleSpec{RootNote: root, ScaleType: st, FretRange: FretRange{lo, hi}}}
}

// TriadExercise builds a Triad variant.
func TriadExercise(root music.Note, st music.ScaleType, lo, hi int) ExerciseType {
	return ExerciseType{Kind: KindTriad, Spec: &ScaleSpec{RootNote: root, ScaleType: st, FretRange: FretRange{lo, hi}}}
}

func Technique() ExerciseType { return ExerciseType{Kind: KindTechnique} }
func Song() ExerciseType { return ExerciseType{Kind: KindSong} }

// HasScale reports whether the variant carries a scale configuration.
func (t ExerciseType) HasScale() bool {
	return (t.Kind == KindScale || t.Kind == KindTriad) && t.Spec != nil
}

// Scale materialises the configured scale.
func (t ExerciseType) Scale() (music.Scale, error) {
	if !t.HasScale() {
		return music.Scale{}, ErrNoScale
	}
	return music.NewScale(t.Spec.RootNote, t.Spec.ScaleType)
}

// FretRange returns the configured range, if the variant has one.
func (t ExerciseType) FretRange() (FretRange, bool) {
	if !t.HasScale() {
		return FretRange{}, false
	}
	return t.Spec.FretRange, true
}

// WithRoot returns a copy with the root note replaced. Variants without a scale are unchanged.
func (t ExerciseType) WithRoot(n music.Note) ExerciseType {
	if !t.HasScale() {
		return t
	}
	spec := *t.Spec
	spec.RootNote = n
	return ExerciseType{Kind: t.Kind, Spec: &spec}
}

// WithScaleType returns a copy with the scale type replaced.
func (t ExerciseType) WithScaleType(st music.ScaleType) ExerciseType {
	if !t.HasScale() {
		return t
	}
	spec := *t.Spec
	spec.ScaleType = st
	return ExerciseType{Kind: t.Kind, Spec: &spec}
}

// WithFretRange returns a copy with the fret range replaced.
func (t ExerciseType) WithFretRange(lo, hi int) ExerciseType {
	if !t.HasScale() {
		return t
	}
	spec := *t.Spec
	spec.FretRange = FretRange{lo, hi}
	return ExerciseType{Kind: t.Kind, Spec: &spec}
}

// String renders e.g. "C Major (frets 3-7)" or "A Minor Pentatonic Triad (frets 5-8)".
func (t ExerciseType) String() string {
	switch t.Kind {
	case KindScale, KindTriad:
		if t.Spec == nil {
			return string(t.Kind)
		}
		suffix := ""
		if t.Kind == KindTriad {
			suffix = " Triad"
		}
		return fmt.Sprintf("%s %s%s (frets %s)", t.Spec.RootNote, t.Spec.ScaleType, suffix, t.Spec.FretRange)
	default:
		return string(t.Kind)
	}
}

// Validate checks the variant tag, the scale and the fret range.
func (t ExerciseType) Validate() error {
	switch t.Kind {
	case KindTechnique, KindSong:
		return nil
	case KindScale, KindTriad:
	default:
		return fmt.Errorf("%w: unknown exercise type %q", ErrInvalidExercise, t.Kind)
	}

	if t.Spec == nil {
		return fmt.Errorf("%w: %s exercise requires root_note, scale_type and fret_range", ErrInvalidExercise, t.Kind)
	}
	if !t.Spec.RootNote.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidExercise, music.ErrInvalidNote)
	}
	if _, err := t.Spec.ScaleType.Intervals(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExercise, err)
	}
	lo, hi := t.Spec.FretRange.Min(), t.Spec.FretRange.Max()
	if lo < 0 || hi > 24 || lo > hi {
		return fmt.Errorf("%w: fret range %d-%d must satisfy 0 <= min <= max <= 24", ErrInvalidExercise, lo, hi)
	}
	return nil
}

func (t ExerciseType) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case KindScale, KindTriad:
		if t.Spec == nil {
			return nil, fmt.Errorf("%w: %s exercise has no configuration", ErrInvalidExercise, t.Kind)
		}
		return json.Marshal(map[Kind]*ScaleSpec{t.Kind: t.Spec})
	case KindTechnique, KindSong:
		return json.Marshal(string(t.Kind))
	default:
		return nil, fmt.Errorf("%w: unknown exercise type %q", ErrInvalidExercise, t.Kind)
	}
}

func (t *ExerciseType) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return err
		}
		switch Kind(tag) {
		case KindTechnique, KindSong:
			*t = ExerciseType{Kind: Kind(tag)}
			return nil
		default:
			return fmt.Errorf("%w: unknown unit variant %q", ErrInvalidExercise, tag)
		}
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExercise, err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("%w: expected a single variant tag", ErrInvalidExercise)
	}
	for tag, raw := range tagged {
		kind := Kind(tag)
		if kind != KindScale && kind != KindTriad {
			return fmt.Errorf("%w: unknown variant %q", ErrInvalidExercise, tag)
		}
		var spec ScaleSpec
		if err := json.Unmarshal(raw, &spec); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidExercise, err)
		}
		*t = ExerciseType{Kind: kind, Spec: &spec}
	}
	return nil
}

// Exercise is one stored practice item.
type Exercise struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  *string      `json:"description"`
	ExerciseType ExerciseType `json:"exercise_type"`
}

// NewExercise returns an unsaved exercise. The store assigns the ID.
func NewExercise(name string, t ExerciseType) *Exercise {
	return &Exercise{Name: name, ExerciseType: t}
}

// WithDescription sets the optional description. An empty string clears it.
func (e *Exercise) WithDescription(d string) *Exercise {
	if d == "" {
		e.Description = nil
		return e
	}
	e.Description = &d
	return e
}

// DescriptionOr returns the description or fallback when there is none.
func (e *Exercise) DescriptionOr(fallback string) string {
	if e.Description == nil {
		return fallback
	}
	return *e.Description
}

// Validate trims the name and checks it and the exercise type.
func (e *Exercise) Validate() error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidExercise)
	}
	return e.ExerciseType.Validate()
}

// Clone returns a deep copy.
func (e *Exercise) Clone() *Exercise {
	out := *e
	if e.Description != nil {
		d := *e.Description
		out.Description = &d
	}
	if e.ExerciseType.Spec != nil {
		spec := *e.ExerciseType.Spec
		out.ExerciseType.Spec = &spec
	}
	return &out
}

// ExerciseStore persists exercises. Implementations return errors wrapping
// shared.ErrExerciseNotFound and shared.ErrDuplicateName.
type ExerciseStore interface {
	// FindAll returns every exercise, oldest first.
	FindAll() ([]*Exercise, error)
	FindByID(id string) (*Exercise, error)
	// Save inserts e, assigning an ID when it has none.
	Save(e *Exercise) error
	Update(e *Exercise) error
	Delete(id string) error
	// NameExists reports whether another exercise, other than excludeID, uses name.
	NameExists(name, excludeID string) (bool, error)
}
