package display

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"LiveCounters/internal/format"
	"LiveCounters/internal/model"
)

// Web serves the dashboard over HTTP: a JSON API, PNG charts and a small
// page that polls them.
type Web struct {
	addr    string
	layout  Layout
	cards   []model.InfoCard
	logger  *slog.Logger
	server  *http.Server
	history HistorySource

	mu    sync.RWMutex
	state *model.Snapshot
}

// WebOption configures a Web sink.
type WebOption func(*Web)

// WithWebLogger sets the logger used for server errors.
func WithWebLogger(l *slog.Logger) WebOption {
	return func(w *Web) { w.logger = l }
}

// HistorySource supplies recorded samples beyond the live chart window.
type HistorySource interface {
	History(metric model.Metric, n int) ([]model.Point, error)
}

const (
	defaultHistoryPoints = 300
	maxHistoryPoints     = 3600
)

// WithHistory serves /api/history from src.
func WithHistory(src HistorySource) WebOption {
	return func(w *Web) { w.history = src }
}

// NewWeb creates a web sink that will listen on addr once started.
func NewWeb(addr string, layout Layout, cards []model.InfoCard, opts ...WebOption) *Web {
	w := &Web{addr: addr, layout: layout, cards: cards, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name implements Sink.
func (w *Web) Name() string { return fmt.Sprintf("web(%s)", w.addr) }

// Update implements Sink.
func (w *Web) Update(_ context.Context, snap *model.Snapshot) error {
	w.mu.Lock()
	w.state = snap
	w.mu.Unlock()
	return nil
}

// Start binds the listener and serves in the background.
func (w *Web) Start() error {
	ln, err := net.Listen("tcp", w.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", w.addr, err)
	}
	w.server = &http.Server{
		Handler:           w.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := w.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Error("web server stopped", "err", err)
		}
	}()
	w.logger.Info("web dashboard listening", "addr", ln.Addr().String())
	return nil
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (w *Web) Shutdown(ctx context.Context) error {
	if w.server == nil {
		return nil
	}
	return w.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for embedding in existing servers.
func (w *Web) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/snapshot", w.handleSnapshot)
	mux.HandleFunc("GET /api/cards", w.handleCards)
	mux.HandleFunc("GET /api/history/{metric}", w.handleHistory)
	mux.HandleFunc("GET /chart/{file}", w.handleChart)
	mux.HandleFunc("GET /health", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		rw.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /{$}", w.handleIndex)
	return mux
}

type counterJSON struct {
	Metric    model.Metric  `json:"metric"`
	Title     string        `json:"title"`
	CounterID string        `json:"counter_id"`
	ChartID   string        `json:"chart_id"`
	Value     float64       `json:"value"`
	Display   string        `json:"display"`
	Series    []model.Point `json:"series"`
}

type snapshotJSON struct {
	Tick     uint64           `json:"tick"`
	At       time.Time        `json:"at"`
	Counters []counterJSON    `json:"counters"`
	Cards    []model.InfoCard `json:"cards"`
}

func (w *Web) snapshot() *model.Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Web) handleSnapshot(rw http.ResponseWriter, _ *http.Request) {
	snap := w.snapshot()
	if snap == nil {
		http.Error(rw, "no data yet", http.StatusServiceUnavailable)
		return
	}
	out := snapshotJSON{Tick: snap.Tick, At: snap.At, Cards: w.cards}
	for _, r := range snap.Readings {
		h := w.layout[r.Metric]
		out.Counters = append(out.Counters, counterJSON{
			Metric:    r.Metric,
			Title:     w.layout.Title(r.Metric),
			CounterID: h.CounterID,
			ChartID:   h.ChartID,
			Value:     r.Value,
			Display:   r.Display,
			Series:    r.Series,
		})
	}
	writeJSON(rw, out)
}

func (w *Web) handleCards(rw http.ResponseWriter, _ *http.Request) {
	writeJSON(rw, w.cards)
}

type historyJSON struct {
	Metric model.Metric  `json:"metric"`
	Points []model.Point `json:"points"`
}

func (w *Web) handleHistory(rw http.ResponseWriter, r *http.Request) {
	metric := model.Metric(r.PathValue("metric"))
	if w.history == nil || !slices.Contains(model.Metrics, metric) {
		http.NotFound(rw, r)
		return
	}
	n := defaultHistoryPoints
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			http.Error(rw, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = min(v, maxHistoryPoints)
	}
	points, err := w.history.History(metric, n)
	if err != nil {
		w.logger.Warn("load history failed", "metric", metric, "err", err)
		http.Error(rw, "history unavailable", http.StatusInternalServerError)
		return
	}
	if points == nil {
		points = []model.Point{}
	}
	writeJSON(rw, historyJSON{Metric: metric, Points: points})
}

func (w *Web) handleChart(rw http.ResponseWriter, r *http.Request) {
	metric := model.Metric(strings.TrimSuffix(r.PathValue("file"), ".png"))
	snap := w.snapshot()
	if snap == nil {
		http.Error(rw, "no data yet", http.StatusServiceUnavailable)
		return
	}
	reading, ok := snap.Reading(metric)
	if !ok {
		http.NotFound(rw, r)
		return
	}
	var buf bytes.Buffer
	if err := RenderChart(&buf, w.layout.Title(metric), reading.Series, format.ForMetric(metric)); err != nil {
		w.logger.Warn("render chart failed", "metric", metric, "err", err)
		http.Error(rw, "render failed", http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "image/png")
	rw.Header().Set("Cache-Control", "no-store")
	rw.Write(buf.Bytes())
}

func (w *Web) handleIndex(rw http.ResponseWriter, _ *http.Request) {
	type row struct {
		Metric model.Metric
		Handles
	}
	var rows []row
	for _, m := range model.Metrics {
		if h, ok := w.layout[m]; ok {
			if h.Title == "" {
				h.Title = string(m)
			}
			rows = append(rows, row{Metric: m, Handles: h})
		}
	}
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(rw, struct {
		Counters []row
		Cards    []model.InfoCard
	}{rows, w.cards}); err != nil {
		w.logger.Warn("render index failed", "err", err)
	}
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
	}
}

var indexTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Live Counters</title>
<style>
body{font-family:sans-serif;background:#111;color:#eee;margin:2em}
.counters{display:flex;gap:1em;flex-wrap:wrap}
.counter{background:#1d1d28;border-radius:8px;padding:1em;min-width:300px}
.counter h2{margin:0;font-size:1em;color:#f5a}
.counter .value{font-size:2em;font-weight:bold}
.counter img{width:100%}
.cards{margin-top:2em;display:flex;gap:1em;flex-wrap:wrap}
.card{background:#1d1d28;border-radius:8px;padding:.8em}
.card .note{opacity:.6;font-size:.8em}
</style>
</head>
<body>
<div class="counters">
{{range .Counters}}<div class="counter">
<h2>{{.Title}}</h2>
<div class="value" id="{{.CounterID}}">-</div>
<img id="{{.ChartID}}" data-metric="{{.Metric}}" alt="{{.Title}} chart">
</div>
{{end}}</div>
<div class="cards">
{{range .Cards}}<div class="card"><b>{{.Title}}</b><div class="value">{{.DisplayValue}}</div><div class="note">{{.Note}}</div></div>
{{end}}</div>
<script>
async function refresh() {
  try {
    const res = await fetch("/api/snapshot");
    if (!res.ok) return;
    const snap = await res.json();
    for (const c of snap.counters) {
      const el = document.getElementById(c.counter_id);
      if (el) el.textContent = c.display;
      const img = document.getElementById(c.chart_id);
      if (img) img.src = "/chart/" + c.metric + ".png?t=" + snap.tick;
    }
  } catch (e) {}
}
refresh();
setInterval(refresh, 1000);
</script>
</body>
</html>
`))
