package display

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"LiveCounters/internal/model"
)

type fakeSink struct {
	name    string
	err     error
	updates int
	redraws int
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Update(context.Context, *model.Snapshot) error {
	f.updates++
	return f.err
}

func (f *fakeSink) Redraw() error {
	f.redraws++
	return nil
}

func testSnapshot() *model.Snapshot {
	win := func(vs ...float64) []model.Point {
		out := make([]model.Point, len(vs))
		for i, v := range vs {
			out[i] = model.Point{Label: "12:00:0" + string(rune('0'+i)), Value: v}
		}
		return out
	}
	return &model.Snapshot{
		Tick: 3,
		At:   time.Date(2024, 1, 1, 12, 0, 3, 0, time.UTC),
		Readings: []model.Reading{
			{Metric: model.MetricBirths, Value: 12, Display: "12", Series: win(0, 4, 8, 12)},
			{Metric: model.MetricPrice, Value: 0.81, Display: "$0.81", Series: win(0.8, 0.8, 0.8, 0.8)},
			{Metric: model.MetricPopulation, Value: 4077040003, Display: "4.08 B", Series: win(4077040000, 4077040001, 4077040002, 4077040003)},
		},
	}
}

func TestLayout_Validate(t *testing.T) {
	if err := DefaultLayout().Validate(model.Metrics); err != nil {
		t.Fatalf("default layout invalid: %v", err)
	}

	l := DefaultLayout()
	delete(l, model.MetricPrice)
	l[model.MetricBirths] = Handles{CounterID: "birthsCounter"}
	err := l.Validate(model.Metrics)
	if !errors.Is(err, ErrMissingHandle) {
		t.Fatalf("expected ErrMissingHandle, got %v", err)
	}
	for _, want := range []string{"price (counter, chart)", "births (chart)"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestNewHub_RequiresSink(t *testing.T) {
	if _, err := NewHub(nil); !errors.Is(err, ErrNoSinks) {
		t.Fatalf("expected ErrNoSinks, got %v", err)
	}
}

func TestHub_UpdateContinuesPastFailure(t *testing.T) {
	bad := &fakeSink{name: "bad", err: errors.New("boom")}
	good := &fakeSink{name: "good"}
	hub, err := NewHub(nil, bad, good)
	if err != nil {
		t.Fatal(err)
	}
	err = hub.Update(context.Background(), testSnapshot())
	if err == nil || !strings.Contains(err.Error(), "bad: boom") {
		t.Errorf("expected wrapped sink error, got %v", err)
	}
	if good.updates != 1 {
		t.Errorf("good sink updates = %d, want 1", good.updates)
	}
	hub.Redraw()
	if bad.redraws != 1 || good.redraws != 1 {
		t.Errorf("redraws = %d/%d, want 1/1", bad.redraws, good.redraws)
	}
}

func TestConsole_NonTerminalLogsOnly(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, DefaultLayout(), nil, nil)
	if err := c.Update(context.Background(), testSnapshot()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("non-terminal console wrote %q", buf.String())
	}
}

func TestConsole_Render(t *testing.T) {
	cards := []model.InfoCard{{Title: "Women worldwide", DisplayValue: "4.08 B", Note: "note"}}
	c := NewConsole(&bytes.Buffer{}, DefaultLayout(), cards, nil)
	out := c.Render(testSnapshot(), 120)
	for _, want := range []string{"Births", "$0.81", "4.08 B", "Women worldwide", "tick 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q", want)
		}
	}
}

func TestConsole_RenderFullWindowFitsCard(t *testing.T) {
	snap := testSnapshot()
	for i := range snap.Readings {
		pts := make([]model.Point, 60)
		for j := range pts {
			pts[j] = model.Point{Label: "12:00:00", Value: float64(j % 7)}
		}
		snap.Readings[i].Series = pts
	}
	c := NewConsole(&bytes.Buffer{}, DefaultLayout(), nil, nil)
	out := c.Render(snap, 80)
	lines := strings.Split(out, "\n")
	// border, title, value, sparkline, border, then the tick line
	if len(lines) != 6 {
		t.Fatalf("render has %d lines, want 6:\n%s", len(lines), out)
	}
	if h := lipgloss.Height(strings.Join(lines[:5], "\n")); h != 5 {
		t.Errorf("card row height = %d, want 5", h)
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w > 80 {
			t.Errorf("line %d width = %d, want <= 80", i, w)
		}
	}
}

// overlapWriter fails the test when two writes are in flight at once.
type overlapWriter struct {
	t        *testing.T
	inFlight atomic.Int32
	writes   atomic.Int32
}

func (w *overlapWriter) Write(p []byte) (int, error) {
	if w.inFlight.Add(1) > 1 {
		w.t.Error("concurrent write to console output")
	}
	time.Sleep(time.Millisecond)
	w.inFlight.Add(-1)
	w.writes.Add(1)
	return len(p), nil
}

func TestConsole_RedrawSerializesFrames(t *testing.T) {
	w := &overlapWriter{t: t}
	c := NewConsole(w, DefaultLayout(), nil, nil)
	c.interactive = true
	ctx := context.Background()
	if err := c.Update(ctx, testSnapshot()); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := c.Update(ctx, testSnapshot()); err != nil {
				t.Error(err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := c.Redraw(); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if got := w.writes.Load(); got != 17 {
		t.Errorf("writes = %d, want 17", got)
	}
}

func TestSparkline(t *testing.T) {
	pts := []model.Point{{Value: 0}, {Value: 7}, {Value: 14}}
	if got := Sparkline(pts, 10); got != "▁▄█" {
		t.Errorf("sparkline = %q, want ▁▄█", got)
	}
	if got := Sparkline(pts, 2); got != "▁█" {
		t.Errorf("truncated sparkline = %q, want ▁█", got)
	}
	flat := []model.Point{{Value: 1}, {Value: 1}}
	if got := Sparkline(flat, 10); got != "▁▁" {
		t.Errorf("flat sparkline = %q, want ▁▁", got)
	}
	if Sparkline(nil, 10) != "" {
		t.Error("empty window should render nothing")
	}
}

func TestWeb_SnapshotBeforeFirstTick(t *testing.T) {
	w := NewWeb(":0", DefaultLayout(), nil)
	rec := httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

type fakeHistory struct {
	metric model.Metric
	n      int
	points []model.Point
	err    error
}

func (f *fakeHistory) History(metric model.Metric, n int) ([]model.Point, error) {
	f.metric, f.n = metric, n
	return f.points, f.err
}

func TestWeb_History(t *testing.T) {
	src := &fakeHistory{points: []model.Point{{Label: "12:00:00", Value: 0.8}, {Label: "12:00:01", Value: 0.81}}}
	w := NewWeb(":0", DefaultLayout(), nil, WithHistory(src))

	rec := httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/price?n=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got historyJSON
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Metric != model.MetricPrice || len(got.Points) != 2 || got.Points[1].Value != 0.81 {
		t.Errorf("history = %+v", got)
	}
	if src.metric != model.MetricPrice || src.n != 2 {
		t.Errorf("source called with (%s, %d)", src.metric, src.n)
	}

	rec = httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/births?n=999999", nil))
	if rec.Code != http.StatusOK || src.n != maxHistoryPoints {
		t.Errorf("status = %d, n = %d, want 200 and %d", rec.Code, src.n, maxHistoryPoints)
	}

	rec = httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/population", nil))
	if src.n != defaultHistoryPoints {
		t.Errorf("default n = %d, want %d", src.n, defaultHistoryPoints)
	}

	rec = httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/price?n=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad n: status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/gold", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown metric: status = %d, want 404", rec.Code)
	}

	src.err = errors.New("db closed")
	rec = httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/price", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("source error: status = %d, want 500", rec.Code)
	}
}

func TestWeb_HistoryWithoutRecorder(t *testing.T) {
	w := NewWeb(":0", DefaultLayout(), nil)
	rec := httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/price", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestWeb_SnapshotJSON(t *testing.T) {
	cards := []model.InfoCard{{Title: "Global fertility rate", DisplayValue: "2.25"}}
	w := NewWeb(":0", DefaultLayout(), cards)
	if err := w.Update(context.Background(), testSnapshot()); err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	w.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got snapshotJSON
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Tick != 3 || len(got.Counters) != 3 || len(got.Cards) != 1 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	price := got.Counters[1]
	if price.CounterID != "priceCounter" || price.ChartID != "priceChart" || price.Display != "$0.81" {
		t.Errorf("price counter = %+v", price)
	}
	if len(price.Series) != 4 {
		t.Errorf("price series len = %d, want 4", len(price.Series))
	}
}

func TestWeb_Chart(t *testing.T) {
	w := NewWeb(":0", DefaultLayout(), nil)
	w.Update(context.Background(), testSnapshot())
	h := w.Handler()

	for _, m := range model.Metrics {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chart/"+string(m)+".png", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d body=%s", m, rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s: content type = %q", m, ct)
		}
		if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
			t.Errorf("%s: body is not a PNG", m)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chart/gdp.png", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown metric status = %d, want 404", rec.Code)
	}
}

func TestWeb_IndexAndHealth(t *testing.T) {
	w := NewWeb(":0", DefaultLayout(), []model.InfoCard{{Title: "Condom market"}})
	h := w.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()
	for _, want := range []string{`id="birthsCounter"`, `id="priceChart"`, "Condom market"} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRenderChart_TooFewPoints(t *testing.T) {
	var buf bytes.Buffer
	err := RenderChart(&buf, "x", []model.Point{{Value: 1}}, func(float64) string { return "" })
	if err == nil {
		t.Error("expected error for single point")
	}
}
