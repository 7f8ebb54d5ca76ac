package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"upside-down-research.com/oss/goap/internal/goap"
)

var (
	phaseStyle   = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	actionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	setStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	clearedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

// Indicator prints progress for planning and simulation runs
type Indicator struct {
	enabled bool
	out     io.Writer
	mu      sync.Mutex
	start   time.Time
}

// NewIndicator creates a new progress indicator writing to stdout
func NewIndicator(enabled bool) *Indicator {
	return NewIndicatorTo(os.Stdout, enabled)
}

// NewIndicatorTo creates a progress indicator writing to w
func NewIndicatorTo(w io.Writer, enabled bool) *Indicator {
	return &Indicator{
		enabled: enabled,
		out:     w,
		start:   time.Now(),
	}
}

func (p *Indicator) printf(format string, args ...interface{}) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

// Phase sets the current phase
func (p *Indicator) Phase(name string) {
	p.printf("\n%s\n", phaseStyle.Render("📋 "+name))
}

// Step shows a step within a phase
func (p *Indicator) Step(name string) {
	p.printf("  ├─ %s\n", name)
}

// Success marks a step as successful
func (p *Indicator) Success(name string) {
	p.printf("  └─ %s\n", okStyle.Render("✓ "+name))
}

// Error shows an error
func (p *Indicator) Error(name string, err error) {
	p.printf("  └─ %s\n", failStyle.Render(fmt.Sprintf("✗ %s: %v", name, err)))
}

// Info shows informational message
func (p *Indicator) Info(msg string) {
	p.printf("  │  %s\n", mutedStyle.Render(msg))
}

// Plan prints a plan's actions in execution order with their running cost
func (p *Indicator) Plan(plan *goap.Plan) {
	if plan == nil {
		p.Info("no plan")
		return
	}
	p.printf("  ├─ goal %s (cost %d, %d expansions)\n",
		phaseStyle.Render(plan.Goal.Name()), plan.Cost, plan.Expansions)
	if plan.IsEmpty() {
		p.Info("already satisfied")
		return
	}
	var running int64
	for i, action := range plan.Actions {
		running += action.Cost()
		p.printf("  │  %d. %s %s\n", i+1, actionStyle.Render(action.Name()),
			mutedStyle.Render(fmt.Sprintf("+%d = %d", action.Cost(), running)))
	}
}

// Changes prints the predicates that differ between before and after
func (p *Indicator) Changes(before, after goap.State) {
	for _, name := range before.Diff(after) {
		if after.Get(name) {
			p.printf("  │  %s\n", setStyle.Render("+ "+name))
		} else {
			p.printf("  │  %s\n", clearedStyle.Render("- "+name))
		}
	}
}

// Elapsed returns time since start
func (p *Indicator) Elapsed() time.Duration {
	return time.Since(p.start)
}

// Summary prints final summary
func (p *Indicator) Summary(success bool, details string) {
	symbol := okStyle.Render("✓")
	if !success {
		symbol = failStyle.Render("✗")
	}

	p.printf("\n%s Complete in %s\n", symbol, formatDuration(p.Elapsed()))
	if details != "" {
		p.printf("  %s\n", details)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}
