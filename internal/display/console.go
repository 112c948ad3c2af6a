package display

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"LiveCounters/internal/calculator"
	"LiveCounters/internal/format"
	"LiveCounters/internal/model"
)

const clearScreen = "\x1b[H\x1b[2J"

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	noteStyle  = lipgloss.NewStyle().Faint(true)
)

// Console paints the counters in a terminal. When out is not a terminal it
// logs one line per tick instead.
type Console struct {
	out         io.Writer
	layout      Layout
	cards       []model.InfoCard
	logger      *slog.Logger
	interactive bool

	mu   sync.Mutex
	last *model.Snapshot
}

// NewConsole creates a console sink writing to out.
func NewConsole(out io.Writer, layout Layout, cards []model.InfoCard, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Console{out: out, layout: layout, cards: cards, logger: logger}
	if f, ok := out.(*os.File); ok {
		c.interactive = term.IsTerminal(int(f.Fd()))
	}
	return c
}

// Name implements Sink.
func (c *Console) Name() string { return "console" }

// Update implements Sink.
func (c *Console) Update(_ context.Context, snap *model.Snapshot) error {
	c.mu.Lock()
	c.last = snap
	c.mu.Unlock()

	if !c.interactive {
		attrs := []any{"tick", snap.Tick}
		for _, r := range snap.Readings {
			attrs = append(attrs, string(r.Metric), r.Display)
		}
		c.logger.Debug("tick", attrs...)
		return nil
	}
	return c.Redraw()
}

// Redraw implements Redrawer. Frames from ticks and resizes are written
// one at a time.
func (c *Console) Redraw() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil || !c.interactive {
		return nil
	}
	_, err := io.WriteString(c.out, clearScreen+c.Render(c.last, c.width())+"\n")
	return err
}

func (c *Console) width() int {
	if f, ok := c.out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			return w
		}
	}
	return 80
}

// Render lays out one card per counter followed by the info cards.
func (c *Console) Render(snap *model.Snapshot, width int) string {
	cols := len(snap.Readings)
	if cols == 0 {
		return ""
	}
	cardWidth := width/cols - 4
	if cardWidth < 20 {
		cardWidth = 20
	}

	blocks := make([]string, 0, cols)
	for _, r := range snap.Readings {
		body := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(c.layout.Title(r.Metric)),
			valueStyle.Render(r.Display),
			Sparkline(r.Series, cardWidth-cardStyle.GetHorizontalPadding()),
		)
		blocks = append(blocks, cardStyle.Width(cardWidth).Render(body))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
	b.WriteString("\n")
	for _, card := range c.cards {
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			titleStyle.Render(card.Title+":"), valueStyle.Render(card.DisplayValue), noteStyle.Render(card.Note)))
	}
	b.WriteString(noteStyle.Render(fmt.Sprintf("tick %s at %s", format.Count(float64(snap.Tick)), format.TimeLabel(snap.At))))
	return b.String()
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders the newest width points of a window as block characters.
func Sparkline(points []model.Point, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}
	if len(points) > width {
		points = points[len(points)-width:]
	}
	hi, lo, err := calculator.WindowRange(points)
	if err != nil {
		return ""
	}
	var b strings.Builder
	span := hi - lo
	for _, p := range points {
		idx := 0
		if span > 0 {
			idx = int((p.Value - lo) / span * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}
