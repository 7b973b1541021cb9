package tasks

import (
	"fmt"
	"time"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when open-ended
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	MetronomeTick Phase = iota
	PracticeBar
	PracticeDone
	ExportExercise
)

func (p Phase) String() string {
	switch p {
	case MetronomeTick:
		return "metronome_tick"
	case PracticeBar:
		return "practice_bar"
	case PracticeDone:
		return "practice_done"
	case ExportExercise:
		return "export_exercise"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func tickUpdate(t Tick) ProgressUpdate {
	accent := ""
	if t.Accent {
		accent = " (accent)"
	}
	return ProgressUpdate{
		Phase:   MetronomeTick,
		Step:    t.Beat,
		Total:   t.BeatsPerBar,
		Message: fmt.Sprintf("bar %d beat %d%s", t.Bar, t.Beat, accent),
		Data:    t,
	}
}

func barUpdate(bar int, elapsed, planned time.Duration) ProgressUpdate {
	msg := fmt.Sprintf("bar %d, %s elapsed", bar, elapsed.Round(time.Second))
	total := 0
	step := int(elapsed / time.Second)
	if planned > 0 {
		total = int(planned / time.Second)
		msg = fmt.Sprintf("bar %d, %s remaining", bar, (planned - elapsed).Round(time.Second))
	}
	return ProgressUpdate{
		Phase:   PracticeBar,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}

func practiceDoneUpdate(elapsed time.Duration, completed bool) ProgressUpdate {
	msg := fmt.Sprintf("Practice stopped after %s", elapsed.Round(time.Second))
	if completed {
		msg = fmt.Sprintf("Practice complete: %s", elapsed.Round(time.Second))
	}
	return ProgressUpdate{
		Phase:   PracticeDone,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    completed,
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportExercise,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportExercise,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
