package server

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/fretx/internal/formatter"
	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/shared"
)

const (
	routeListExercises  = "GET /api/exercises"
	routeCreateExercise = "POST /api/exercises"
	routeGetExercise    = "GET /api/exercises/{id}"
	routeUpdateExercise = "PUT /api/exercises/{id}"
	routeDeleteExercise = "DELETE /api/exercises/{id}"
	routeExerciseSVG    = "GET /api/exercises/{id}/fretboard.svg"
	routeExerciseNames  = "GET /api/exercise-names"
)

// ExerciseHandler serves the exercise collection backed by a [models.ExerciseStore].
type ExerciseHandler struct {
	store    models.ExerciseStore
	defaults shared.FretboardConfig
	logger   *log.Logger
}

func NewExerciseHandler(store models.ExerciseStore, defaults shared.FretboardConfig, logger *log.Logger) *ExerciseHandler {
	return &ExerciseHandler{store: store, defaults: defaults, logger: logger}
}

func (h *ExerciseHandler) Routes() []string {
	return []string{
		routeListExercises,
		routeCreateExercise,
		routeGetExercise,
		routeUpdateExercise,
		routeDeleteExercise,
		routeExerciseSVG,
		routeExerciseNames,
	}
}

func (h *ExerciseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeListExercises:
		h.list(w, r)
	case routeCreateExercise:
		h.create(w, r)
	case routeGetExercise:
		h.get(w, r)
	case routeUpdateExercise:
		h.update(w, r)
	case routeDeleteExercise:
		h.delete(w, r)
	case routeExerciseSVG:
		h.svg(w, r)
	case routeExerciseNames:
		h.nameAvailable(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *ExerciseHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status := fail(w, err); status == http.StatusInternalServerError {
		h.logger.Error("exercise request failed", "path", r.URL.Path, "error", err, "request_id", RequestIDFrom(r.Context()))
	}
}

func (h *ExerciseHandler) list(w http.ResponseWriter, r *http.Request) {
	exercises, err := h.store.FindAll()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

// create always assigns a fresh ID; any ID in the body is ignored.
func (h *ExerciseHandler) create(w http.ResponseWriter, r *http.Request) {
	var e models.Exercise
	if err := decodeJSON(w, r, &e); err != nil {
		h.fail(w, r, err)
		return
	}
	e.ID = ""
	if err := h.store.Save(&e); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("exercise created", "id", e.ID, "name", e.Name)
	writeJSON(w, http.StatusCreated, &e)
}

func (h *ExerciseHandler) get(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.FindByID(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// update replaces the exercise at the path ID; the body ID is ignored.
func (h *ExerciseHandler) update(w http.ResponseWriter, r *http.Request) {
	var e models.Exercise
	if err := decodeJSON(w, r, &e); err != nil {
		h.fail(w, r, err)
		return
	}
	e.ID = r.PathValue("id")
	if err := h.store.Update(&e); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &e)
}

func (h *ExerciseHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.Delete(id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("exercise deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// svg draws the exercise's scale over its fret range. Query parameters
// preset, extra and aspect may override the board defaults.
func (h *ExerciseHandler) svg(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.FindByID(r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	for _, key := range []string{"root", "scale", "start", "end"} {
		q.Del(key)
	}
	opts, err := boardOptions(q, h.defaults)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := formatter.ExerciseSVG(e, opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeSVGBytes(w, data)
}

// NameAvailability answers the name collision check.
type NameAvailability struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

func (h *ExerciseHandler) nameAvailable(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	exists, err := h.store.NameExists(name, r.URL.Query().Get("exclude_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NameAvailability{Name: name, Available: !exists})
}
