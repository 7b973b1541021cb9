package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/fretx/internal/fretboard"
	"github.com/desertthunder/fretx/internal/models"
	"github.com/desertthunder/fretx/internal/music"
	"github.com/desertthunder/fretx/internal/shared"
	tu "github.com/desertthunder/fretx/internal/testing"
)

const scaleBody = `{"name":"C major","description":null,"exercise_type":{"Scale":{"root_note":"C","scale_type":{"Heptatonic":"Major"},"fret_range":[3,7]}}}`

func newTestServer(t *testing.T, store models.ExerciseStore) http.Handler {
	t.Helper()
	cfg := shared.DefaultConfig()
	cfg.Server.RateLimit = 0
	return New(cfg.Server, cfg.Fretboard, store, shared.NewLogger(io.Discard)).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestExerciseHandler(t *testing.T) {
	t.Run("CRUD round trip", func(t *testing.T) {
		h := newTestServer(t, tu.NewMemoryStore())

		rec := do(t, h, http.MethodPost, "/api/exercises", scaleBody)
		if rec.Code != http.StatusCreated {
			t.Fatalf("POST status = %d: %s", rec.Code, rec.Body)
		}
		created := decode[models.Exercise](t, rec)
		if !strings.HasPrefix(created.ID, "ex_") {
			t.Errorf("ID = %q", created.ID)
		}
		if created.Description != nil {
			t.Errorf("description = %v, want null", *created.Description)
		}

		rec = do(t, h, http.MethodGet, "/api/exercises", "")
		if list := decode[[]models.Exercise](t, rec); len(list) != 1 || list[0].ID != created.ID {
			t.Errorf("list = %+v", list)
		}

		rec = do(t, h, http.MethodGet, "/api/exercises/"+created.ID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("GET status = %d", rec.Code)
		}
		if got := decode[models.Exercise](t, rec); got.ExerciseType.Spec.FretRange != (models.FretRange{3, 7}) {
			t.Errorf("fret range = %v", got.ExerciseType.Spec.FretRange)
		}

		updated := strings.Replace(scaleBody, "C major", "C major, box one", 1)
		rec = do(t, h, http.MethodPut, "/api/exercises/"+created.ID, updated)
		if rec.Code != http.StatusOK {
			t.Fatalf("PUT status = %d: %s", rec.Code, rec.Body)
		}
		if got := decode[models.Exercise](t, rec); got.Name != "C major, box one" || got.ID != created.ID {
			t.Errorf("updated = %+v", got)
		}

		if rec = do(t, h, http.MethodDelete, "/api/exercises/"+created.ID, ""); rec.Code != http.StatusNoContent {
			t.Errorf("DELETE status = %d", rec.Code)
		}
		if rec = do(t, h, http.MethodGet, "/api/exercises/"+created.ID, ""); rec.Code != http.StatusNotFound {
			t.Errorf("GET after delete status = %d", rec.Code)
		}
		if rec = do(t, h, http.MethodDelete, "/api/exercises/"+created.ID, ""); rec.Code != http.StatusNotFound {
			t.Errorf("second DELETE status = %d", rec.Code)
		}
	})

	t.Run("empty list is an array", func(t *testing.T) {
		h := newTestServer(t, tu.NewMemoryStore())
		rec := do(t, h, http.MethodGet, "/api/exercises", "")
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("body = %q", rec.Body)
		}
	})

	t.Run("create ignores a client ID", func(t *testing.T) {
		h := newTestServer(t, tu.NewMemoryStore())
		body := strings.Replace(scaleBody, `{"name"`, `{"id":"mine","name"`, 1)
		rec := do(t, h, http.MethodPost, "/api/exercises", body)
		if got := decode[models.Exercise](t, rec); got.ID == "mine" {
			t.Error("client ID was kept")
		}
	})

	t.Run("errors", func(t *testing.T) {
		store := tu.NewMemoryStore(models.NewExercise("C major", models.Technique()))
		h := newTestServer(t, store)

		tests := []struct {
			name   string
			method string
			target string
			body   string
			want   int
		}{
			{"duplicate name", http.MethodPost, "/api/exercises", scaleBody, http.StatusConflict},
			{"malformed json", http.MethodPost, "/api/exercises", `{"name":`, http.StatusBadRequest},
			{"blank name", http.MethodPost, "/api/exercises", `{"name":"  ","exercise_type":"Song"}`, http.StatusBadRequest},
			{"unknown variant", http.MethodPost, "/api/exercises", `{"name":"x","exercise_type":"Arpeggio"}`, http.StatusBadRequest},
			{"bad fret range", http.MethodPost, "/api/exercises", strings.Replace(scaleBody, "[3,7]", "[7,3]", 1), http.StatusBadRequest},
			{"update missing", http.MethodPut, "/api/exercises/ex_0", `{"name":"y","exercise_type":"Song"}`, http.StatusNotFound},
			{"get missing", http.MethodGet, "/api/exercises/ex_0", "", http.StatusNotFound},
			{"method not allowed", http.MethodPatch, "/api/exercises", "", http.StatusMethodNotAllowed},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := do(t, h, tt.method, tt.target, tt.body)
				if rec.Code != tt.want {
					t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
				}
			})
		}
	})

	t.Run("store failures are 500 without detail", func(t *testing.T) {
		h := newTestServer(t, tu.FailingStore{Err: errors.New("disk on fire")})
		rec := do(t, h, http.MethodGet, "/api/exercises", "")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "disk on fire") {
			t.Error("internal error leaked to the client")
		}
	})

	t.Run("name availability", func(t *testing.T) {
		e := models.NewExercise("Spider walk", models.Technique())
		h := newTestServer(t, tu.NewMemoryStore(e))

		tests := []struct {
			query string
			want  bool
		}{
			{"name=Spider+walk", false},
			{"name=+Spider+walk+", false},
			{"name=spider+walk", true},
			{"name=Spider+walk&exclude_id=" + e.ID, true},
			{"name=Legato", true},
		}
		for _, tt := range tests {
			rec := do(t, h, http.MethodGet, "/api/exercise-names?"+tt.query, "")
			if got := decode[NameAvailability](t, rec); got.Available != tt.want {
				t.Errorf("%s: available = %v, want %v", tt.query, got.Available, tt.want)
			}
		}
		if rec := do(t, h, http.MethodGet, "/api/exercise-names", ""); rec.Code != http.StatusBadRequest {
			t.Errorf("missing name status = %d", rec.Code)
		}
	})

	t.Run("exercise fretboard svg", func(t *testing.T) {
		scale := models.NewExercise("A minor", models.ScaleExercise(music.A, music.PentatonicScale(music.Minor), 5, 8))
		technique := models.NewExercise("Trills", models.Technique())
		h := newTestServer(t, tu.NewMemoryStore(scale, technique))

		rec := do(t, h, http.MethodGet, "/api/exercises/"+scale.ID+"/fretboard.svg", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
			t.Errorf("content type = %q", ct)
		}
		if !strings.HasPrefix(rec.Body.String(), "<svg") || !strings.Contains(rec.Body.String(), "data-fret=\"5\"") {
			t.Error("unexpected svg body")
		}

		rec = do(t, h, http.MethodGet, "/api/exercises/"+technique.ID+"/fretboard.svg", "")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("technique status = %d", rec.Code)
		}
	})
}

func TestFretboardHandler(t *testing.T) {
	h := newTestServer(t, tu.NewMemoryStore())

	t.Run("presets", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/presets", "")
		if got := decode[[]map[string]any](t, rec); len(got) != len(fretboard.Presets()) {
			t.Errorf("got %d presets", len(got))
		}
		rec = do(t, h, http.MethodGet, "/api/scales", "")
		if got := decode[[]scaleTypeResponse](t, rec); len(got) != len(music.AllScaleTypes()) || got[0].Slug != "major" {
			t.Errorf("scales = %+v", got)
		}
		rec = do(t, h, http.MethodGet, "/api/positions", "")
		if got := decode[[]fretboard.Position](t, rec); len(got) != 5 {
			t.Errorf("positions = %+v", got)
		}
	})

	t.Run("svg", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/fretboard.svg?root=A&scale=minor-pentatonic&start=5&end=8", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body)
		}
		if !bytes.Contains(rec.Body.Bytes(), []byte(`<g class="notes">`)) {
			t.Error("svg missing notes layer")
		}
	})

	t.Run("layout", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/fretboard/layout?preset=bass&start=0&end=5&extra=0", "")
		got := decode[LayoutResponse](t, rec)
		if got.Layout.NumStrings != 4 || got.Layout.EndFret != 5 || got.Layout.MaxFret != 5 {
			t.Errorf("layout = %+v", got.Layout)
		}
		if len(got.Cells) != 0 {
			t.Errorf("cells without a scale: %+v", got.Cells)
		}

		rec = do(t, h, http.MethodGet, "/api/fretboard/layout?root=C&start=0&end=5&extra=0", "")
		got = decode[LayoutResponse](t, rec)
		if len(got.Cells) == 0 {
			t.Fatal("no cells for C major")
		}
		for _, c := range got.Cells {
			if c.Hex == "" || c.Label == "" {
				t.Errorf("cell %+v missing style", c)
			}
			if c.Fret < 0 || c.Fret > 5 {
				t.Errorf("cell %+v outside range", c)
			}
		}
	})

	t.Run("bad queries", func(t *testing.T) {
		for _, q := range []string{
			"root=Q",
			"scale=bebop",
			"preset=banjo",
			"start=9&end=3",
			"start=x",
			"aspect=-1",
			"extra=99",
		} {
			if rec := do(t, h, http.MethodGet, "/api/fretboard.svg?"+q, ""); rec.Code != http.StatusBadRequest {
				t.Errorf("%s: status = %d", q, rec.Code)
			}
		}
	})
}

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(RequestIDFrom(r.Context())))
	})

	t.Run("request id", func(t *testing.T) {
		h := RequestID()(ok)
		rec := do(t, h, http.MethodGet, "/", "")
		id := rec.Header().Get(RequestIDHeader)
		if id == "" || rec.Body.String() != id {
			t.Errorf("header %q, context %q", id, rec.Body)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc")
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Header().Get(RequestIDHeader) != "abc" {
			t.Error("incoming request id not reused")
		}
	})

	t.Run("logging", func(t *testing.T) {
		var buf bytes.Buffer
		h := RequestID()(Logging(shared.NewLogger(&buf))(http.NotFoundHandler()))
		do(t, h, http.MethodGet, "/missing", "")
		out := buf.String()
		for _, want := range []string{"method=GET", "path=/missing", "status=404", "request_id="} {
			if !strings.Contains(out, want) {
				t.Errorf("log %q missing %q", out, want)
			}
		}
	})

	t.Run("recover", func(t *testing.T) {
		var buf bytes.Buffer
		h := Recover(shared.NewLogger(&buf))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))
		rec := do(t, h, http.MethodGet, "/", "")
		if rec.Code != http.StatusInternalServerError || !strings.Contains(buf.String(), "boom") {
			t.Errorf("status = %d, log = %q", rec.Code, buf.String())
		}
	})

	t.Run("cors", func(t *testing.T) {
		h := newTestServer(t, tu.NewMemoryStore())
		rec := do(t, h, http.MethodGet, "/health", "")
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("missing allow origin")
		}
		rec = do(t, h, http.MethodOptions, "/api/exercises/ex_1", "")
		if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Methods") == "" {
			t.Errorf("preflight status = %d", rec.Code)
		}
	})

	t.Run("rate limit", func(t *testing.T) {
		h := RateLimit(1, 2)(ok)
		codes := []int{}
		for range 3 {
			codes = append(codes, do(t, h, http.MethodGet, "/", "").Code)
		}
		if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
			t.Errorf("codes = %v", codes)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Error("limit shared across clients")
		}
	})

	t.Run("idle clients are evicted", func(t *testing.T) {
		now := time.Unix(1_700_000_000, 0)
		clients := newClientLimiters(1, 2, func() time.Time { return now })
		h := rateLimit(clients)(ok)

		for i := range 50 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = fmt.Sprintf("198.51.100.%d:4000", i)
			h.ServeHTTP(httptest.NewRecorder(), req)
		}
		if clients.len() != 50 {
			t.Fatalf("tracked clients = %d, want 50", clients.len())
		}

		now = now.Add(limiterIdle / 2)
		do(t, h, http.MethodGet, "/", "")
		if clients.len() != 51 {
			t.Errorf("clients evicted early: %d", clients.len())
		}

		now = now.Add(limiterIdle)
		do(t, h, http.MethodGet, "/", "")
		if clients.len() != 1 {
			t.Errorf("tracked clients after idle sweep = %d, want 1", clients.len())
		}
	})

	t.Run("slow refill outlives the idle period", func(t *testing.T) {
		clients := newClientLimiters(rate.Every(time.Hour), 4, time.Now)
		if d := clients.idle - 4*time.Hour; d < -time.Second || d > time.Second {
			t.Errorf("idle = %v, want 4h", clients.idle)
		}
	})

	t.Run("rate limit disabled", func(t *testing.T) {
		h := RateLimit(0, 0)(ok)
		for range 10 {
			if rec := do(t, h, http.MethodGet, "/", ""); rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
		}
	})
}

func TestBasicRouter(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := NewBasicRouter()
	r.Use(mark("outer"), mark("inner"))
	r.Handle("get", "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	r.Handler(NewHealthHandler())

	do(t, r, http.MethodGet, "/ping", "")
	if strings.Join(order, ",") != "outer,inner,handler" {
		t.Errorf("order = %v", order)
	}
	if got := r.Routes(); len(got) != 2 || got[0] != "GET /ping" || got[1] != "GET /health" {
		t.Errorf("routes = %v", got)
	}
	if rec := do(t, r, http.MethodPost, "/ping", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d", rec.Code)
	}
}

func TestServerRun(t *testing.T) {
	cfg := shared.DefaultConfig()
	s := New(cfg.Server, cfg.Fretboard, tu.NewMemoryStore(), shared.NewLogger(io.Discard))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
