// pkg/preflight/render.go

package preflight

import (
	"fmt"
	"strings"
)

// Render formats the report for the operator.
func Render(r *ReadinessReport) string {
	var sb strings.Builder

	sb.WriteString("Tools:\n")
	for _, t := range r.Tools {
		mark := "✓"
		if !t.Present {
			mark = "✗"
			if t.Severity == Required {
				mark = "✗ (required)"
			}
		}
		version := t.Version
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(&sb, "  %-10s %-14s %s\n", t.Name, version, mark)
	}

	sb.WriteString("Ports:\n")
	for _, p := range r.Ports {
		state := "free"
		if !p.Available {
			state = "in use (may be a previous session)"
		}
		fmt.Fprintf(&sb, "  %-10d %s\n", p.Port, state)
	}

	if r.Disk.Known {
		fmt.Fprintf(&sb, "Disk: %.1f GiB free\n", float64(r.Disk.FreeBytes)/(1<<30))
	} else {
		sb.WriteString("Disk: unknown\n")
	}

	return sb.String()
}
