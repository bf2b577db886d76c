package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kbukum/voxscribe/component"
)

// Summary prints what started, where it listens and which routes it serves.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary printer. A nil out writes to stdout.
func NewSummary(serviceName, version string, out io.Writer) *Summary {
	if out == nil {
		out = os.Stdout
	}
	return &Summary{serviceName: serviceName, version: version, out: out}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display collects descriptions, routes and live health from the registry.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	w := s.out
	fmt.Fprintf(w, "\n%s %s started in %.2fs\n\n", s.serviceName, s.version, s.startupDuration.Seconds())

	health := make(map[string]component.Health)
	for _, h := range registry.HealthAll(ctx) {
		health[h.Name] = h
	}

	comps := registry.All()
	if len(comps) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n")
		return
	}

	fmt.Fprintf(w, "Infrastructure\n")
	var routes []component.Route
	for i, c := range comps {
		name, details := c.Name(), ""
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			if desc.Name != "" {
				name = desc.Name
			}
			details = desc.Details
			if desc.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, desc.Port)
			}
		}
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
		fmt.Fprintf(w, "   %s %s %s: %s\n", branch(i, len(comps)), statusIcon(health[c.Name()].Status), name, details)
	}

	if len(routes) > 0 {
		fmt.Fprintf(w, "\nRoutes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s -> %s\n", branch(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}
	fmt.Fprintln(w)
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func statusIcon(s component.HealthStatus) string {
	switch s {
	case component.StatusHealthy:
		return "[ok]"
	case component.StatusDegraded:
		return "[!!]"
	default:
		return "[xx]"
	}
}
