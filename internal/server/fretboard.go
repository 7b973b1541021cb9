package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/fretx/internal/fretboard"
	"github.com/desertthunder/fretx/internal/layout"
	"github.com/desertthunder/fretx/internal/music"
	"github.com/desertthunder/fretx/internal/render"
	"github.com/desertthunder/fretx/internal/shared"
)

const (
	routePresets   = "GET /api/presets"
	routePositions = "GET /api/positions"
	routeScales    = "GET /api/scales"
	routeBoardSVG  = "GET /api/fretboard.svg"
	routeLayout    = "GET /api/fretboard/layout"
)

// FretboardHandler renders stateless boards described entirely by the query string.
//
// Query parameters: preset, root, scale, start, end, extra, aspect. Missing
// values fall back to the configured defaults. A scale without a root uses C.
type FretboardHandler struct {
	defaults shared.FretboardConfig
}

func NewFretboardHandler(defaults shared.FretboardConfig) *FretboardHandler {
	return &FretboardHandler{defaults: defaults}
}

func (h *FretboardHandler) Routes() []string {
	return []string{routePresets, routePositions, routeScales, routeBoardSVG, routeLayout}
}

func (h *FretboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routePresets:
		writeJSON(w, http.StatusOK, fretboard.Presets())
	case routePositions:
		writeJSON(w, http.StatusOK, fretboard.PositionPresets())
	case routeScales:
		writeJSON(w, http.StatusOK, scaleTypes())
	case routeBoardSVG:
		h.svg(w, r)
	case routeLayout:
		h.layout(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *FretboardHandler) svg(w http.ResponseWriter, r *http.Request) {
	opts, err := boardOptions(r.URL.Query(), h.defaults)
	if err != nil {
		fail(w, err)
		return
	}
	m, err := opts.Build()
	if err != nil {
		fail(w, err)
		return
	}
	writeSVG(w, m)
}

// LayoutResponse is the geometry of a board plus its visible cells.
type LayoutResponse struct {
	Layout layout.Snapshot `json:"layout"`
	Cells  []CellResponse  `json:"cells"`
}

// CellResponse is one visible cell.
type CellResponse struct {
	String int     `json:"string"`
	Fret   int     `json:"fret"`
	Note   string  `json:"note"`
	Color  string  `json:"color"`
	Hex    string  `json:"hex"`
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func (h *FretboardHandler) layout(w http.ResponseWriter, r *http.Request) {
	opts, err := boardOptions(r.URL.Query(), h.defaults)
	if err != nil {
		fail(w, err)
		return
	}
	m, err := opts.Build()
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newLayoutResponse(m))
}

func newLayoutResponse(m *fretboard.Model) LayoutResponse {
	snapshot := layout.NewEngine().ForModel(m)
	resp := LayoutResponse{Layout: snapshot, Cells: []CellResponse{}}
	for s := range m.NumStrings() {
		for f := m.MinFret(); f <= m.MaxFret(); f++ {
			c := fretboard.FretCoord{String: s, Fret: f}
			st := m.State(c)
			if !st.Visible {
				continue
			}
			x, y, ok := snapshot.NotePosition(c)
			if !ok {
				continue
			}
			resp.Cells = append(resp.Cells, CellResponse{
				String: s,
				Fret:   f,
				Note:   m.NoteAt(c).String(),
				Color:  st.Color.String(),
				Hex:    st.Color.Hex(),
				Label:  st.Label,
				X:      x,
				Y:      y,
			})
		}
	}
	return resp
}

type scaleTypeResponse struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func scaleTypes() []scaleTypeResponse {
	out := []scaleTypeResponse{}
	for _, st := range music.AllScaleTypes() {
		out = append(out, scaleTypeResponse{Slug: st.Slug(), Name: st.String()})
	}
	return out
}

// writeSVG buffers the document so a render failure can still become a 500.
func writeSVG(w http.ResponseWriter, m *fretboard.Model) {
	var buf bytes.Buffer
	if err := render.WriteBoardSVG(&buf, m); err != nil {
		fail(w, err)
		return
	}
	writeSVGBytes(w, buf.Bytes())
}

func writeSVGBytes(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// boardOptions reads the board query parameters over the configured defaults.
func boardOptions(q url.Values, defaults shared.FretboardConfig) (render.BoardOptions, error) {
	opts := render.BoardOptions{
		Preset:     defaults.Preset,
		StartFret:  defaults.StartFret,
		EndFret:    defaults.EndFret,
		ExtraFrets: defaults.ExtraFrets,
	}
	if v := q.Get("preset"); v != "" {
		opts.Preset = v
	}

	var err error
	if opts.StartFret, err = intParam(q, "start", opts.StartFret); err != nil {
		return opts, err
	}
	if opts.EndFret, err = intParam(q, "end", opts.EndFret); err != nil {
		return opts, err
	}
	if opts.ExtraFrets, err = intParam(q, "extra", opts.ExtraFrets); err != nil {
		return opts, err
	}
	if v := q.Get("aspect"); v != "" {
		if opts.AspectRatio, err = strconv.ParseFloat(v, 64); err != nil || opts.AspectRatio <= 0 {
			return opts, fmt.Errorf("%w: aspect %q", shared.ErrInvalidInput, v)
		}
	}

	root, scale := q.Get("root"), q.Get("scale")
	if root == "" && scale == "" {
		return opts, nil
	}
	note := music.C
	if root != "" {
		if note, err = music.ParseNote(root); err != nil {
			return opts, err
		}
	}
	st := music.HeptatonicScale(music.Major)
	if scale != "" {
		if st, err = music.ParseScaleType(scale); err != nil {
			return opts, err
		}
	}
	s, err := music.NewScale(note, st)
	if err != nil {
		return opts, err
	}
	opts.Scale = &s
	return opts, nil
}

func intParam(q url.Values, key string, fallback int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", shared.ErrInvalidInput, key, v)
	}
	return n, nil
}
