// Package debug keeps a short, timestamped log of gallery events for on-screen inspection.
package debug

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// DefaultMaxLines bounds the panel when no limit is configured.
const DefaultMaxLines = 200

// TimeLayout prefixes each line.
const TimeLayout = "15:04:05"

// State is the gallery summary reported by [Panel.Snapshot].
type State interface {
	Len() int
	CurrentPage() int
	TotalPages() int
}

// Options configures a [Panel].
type Options struct {
	MaxLines int
	Visible  bool
	Logger   *log.Logger
	Now      func() time.Time
}

// Panel is a bounded list of debug lines. Every line is mirrored to the logger at debug level.
type Panel struct {
	lines   []string
	max     int
	visible bool
	logger  *log.Logger
	now     func() time.Time
}

// New creates a Panel.
func New(opts Options) *Panel {
	if opts.MaxLines <= 0 {
		opts.MaxLines = DefaultMaxLines
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Panel{max: opts.MaxLines, visible: opts.Visible, logger: opts.Logger, now: opts.Now}
}

// Add appends a line, dropping the oldest once the panel is full.
func (p *Panel) Add(msg string) {
	p.logger.Debug(msg)
	p.lines = append(p.lines, fmt.Sprintf("[%s] %s", p.now().Format(TimeLayout), msg))
	if over := len(p.lines) - p.max; over > 0 {
		p.lines = p.lines[over:]
	}
}

// Addf formats and appends a line.
func (p *Panel) Addf(format string, args ...any) {
	p.Add(fmt.Sprintf(format, args...))
}

// Snapshot records the image count and paging position of s.
func (p *Panel) Snapshot(s State) {
	if s == nil {
		p.Add("gallery not initialized")
		return
	}
	p.Addf("images: %d", s.Len())
	p.Addf("current page: %d", s.CurrentPage())
	p.Addf("total pages: %d", s.TotalPages())
}

func (p *Panel) Lines() []string { return p.lines }
func (p *Panel) Visible() bool   { return p.visible }
func (p *Panel) Clear()          { p.lines = nil }

// Toggle flips visibility and returns the new state.
func (p *Panel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

var (
	frame = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#555555")).
		Padding(0, 1)
	heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	body    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0"))
	hint    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#626262"))
)

// View renders the newest height lines inside a bordered box of the given width.
// A hidden panel renders as the empty string.
func (p *Panel) View(width, height int) string {
	if !p.visible {
		return ""
	}

	lines := p.lines
	if height > 0 && len(lines) > height {
		lines = lines[len(lines)-height:]
	}

	inner := max(width-4, 10)
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = body.Render(truncate(line, inner))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		heading.Render("Debug"),
		strings.Join(rendered, "\n"),
		hint.Render("D hide · X clear"),
	)
	return frame.Width(inner + 2).Render(content)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
