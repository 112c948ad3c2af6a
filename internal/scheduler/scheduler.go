package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/robfig/cron/v3"

	"LiveCounters/internal/calculator"
	"LiveCounters/internal/display"
	"LiveCounters/internal/model"
	"LiveCounters/internal/notifier"
	"LiveCounters/internal/recorder"
	"LiveCounters/internal/sim"
)

// TickSpec fires the simulation once per second.
const TickSpec = "@every 1s"

const rsiPeriod = 14

// Scheduler drives the simulation tick and the periodic summary.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   *sim.Engine
	Display  *display.Hub
	Notifier *notifier.TelegramNotifier
	Recorder recorder.Recorder
	Ctx      context.Context

	logger *slog.Logger
	now    func() time.Time

	statsMu   sync.Mutex
	latency   *hdrhistogram.Histogram
	priceDist *calculator.Distribution
}

// NewScheduler creates a new Scheduler. A nil notifier disables summaries
// and commands.
func NewScheduler(ctx context.Context, eng *sim.Engine, hub *display.Hub, tn *notifier.TelegramNotifier, rec recorder.Recorder, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dist, err := calculator.NewDistribution(0.01)
	if err != nil {
		return nil, fmt.Errorf("price distribution: %w", err)
	}
	cronLog := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		Engine:    eng,
		Display:   hub,
		Notifier:  tn,
		Recorder:  rec,
		Ctx:       ctx,
		logger:    logger,
		now:       time.Now,
		latency:   hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3),
		priceDist: dist,
	}, nil
}

// RegisterAll registers the tick and, when summaryCron is set, the summary job.
func (s *Scheduler) RegisterAll(summaryCron string) error {
	if _, err := s.Cron.AddFunc(TickSpec, func() { s.RunTickNow() }); err != nil {
		return fmt.Errorf("register tick: %w", err)
	}
	if summaryCron == "" {
		return nil
	}
	if _, err := s.Cron.AddFunc(summaryCron, s.summaryTask); err != nil {
		return fmt.Errorf("register summary task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// RunTickNow advances the simulation once and publishes the result.
func (s *Scheduler) RunTickNow() *model.Snapshot {
	started := time.Now()
	snap := s.Engine.Tick(s.now())

	if err := s.Display.Update(s.Ctx, snap); err != nil {
		s.logger.Warn("display update failed", "tick", snap.Tick, "err", err)
	}
	if err := s.Recorder.RecordTick(snap); err != nil {
		s.logger.Error("record tick failed", "tick", snap.Tick, "err", err)
	}

	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	if r, ok := snap.Reading(model.MetricPrice); ok {
		if err := s.priceDist.Add(r.Value); err != nil {
			s.logger.Warn("price distribution add failed", "err", err)
		}
	}
	elapsed := time.Since(started).Microseconds()
	if elapsed < 1 {
		elapsed = 1
	}
	if err := s.latency.RecordValue(elapsed); err != nil {
		s.logger.Warn("tick latency out of range", "us", elapsed)
	}
	return snap
}

// Summary builds the periodic report from the engine's current state.
func (s *Scheduler) Summary() *model.Summary {
	snap := s.Engine.Snapshot()
	sum := &model.Summary{Snapshot: snap, PriceRSI: 50}

	for _, r := range snap.Readings {
		ws := model.WindowStats{Metric: r.Metric}
		if v, err := calculator.WindowSMA(r.Series); err == nil {
			ws.SMA = v
		}
		if h, l, err := calculator.WindowRange(r.Series); err == nil {
			ws.High, ws.Low = h, l
			if pos, err := calculator.WindowPosition(r.Series[len(r.Series)-1].Value, h, l); err == nil {
				ws.Position = pos
			}
		}
		if v, err := calculator.CalculateRate(r.Series); err == nil {
			ws.Rate = v
		}
		sum.Windows = append(sum.Windows, ws)

		if r.Metric == model.MetricPrice {
			if rsi, err := calculator.CalculateRSI(r.Series, rsiPeriod); err == nil {
				sum.PriceRSI = rsi
			}
		}
	}

	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	if qs, err := s.priceDist.Quantiles(0.05, 0.5, 0.95); err == nil {
		sum.PriceQuantiles = qs
	}
	if s.latency.TotalCount() > 0 {
		sum.TickP50 = time.Duration(s.latency.ValueAtQuantile(50)) * time.Microsecond
		sum.TickP99 = time.Duration(s.latency.ValueAtQuantile(99)) * time.Microsecond
		sum.TickMax = time.Duration(s.latency.Max()) * time.Microsecond
	}
	return sum
}

func (s *Scheduler) summaryTask() {
	sum := s.Summary()
	s.logger.Info("run summary",
		"tick", sum.Snapshot.Tick,
		"price_rsi", fmt.Sprintf("%.1f", sum.PriceRSI),
		"tick_p50", sum.TickP50,
		"tick_p99", sum.TickP99)
	if s.Notifier.Enabled() {
		s.trySend(notifier.FormatSummary(sum))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/status", "/start":
		return notifier.FormatStatus(s.Engine.Snapshot())
	case "/births", "/price", "/population":
		snap := s.Engine.Snapshot()
		if r, ok := snap.Reading(model.Metric(command[1:])); ok {
			return notifier.FormatReading(r)
		}
		return "metric unavailable"
	case "/cards":
		return notifier.FormatCards(s.Engine.Cards())
	case "/summary":
		return notifier.FormatSummary(s.Summary())
	default:
		return "Commands:\n• /status\n• /births\n• /price\n• /population\n• /cards\n• /summary"
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error("send notification failed", "err", err)
	}
}
