package dist

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cruciblehq/monopack/internal/fingerprint"
)

// Outcome of one (package, target) unit.
type Status int

const (
	StatusMatch Status = iota
	StatusFirstRun
	StatusMismatch
	StatusBuilt
	StatusPushed
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusMatch:
		return "match"
	case StatusFirstRun:
		return "first-run"
	case StatusMismatch:
		return "mismatch"
	case StatusBuilt:
		return "built"
	case StatusPushed:
		return "pushed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Recorded outcome of one unit of work.
type Result struct {
	Package string
	Target  string // Empty for package-level (check) results.
	Kind    string // Target kind, empty for package-level results.

	Status  Status
	Outcome fingerprint.Outcome

	// Rendered push action for dry-run results.
	Planned string

	Err error
}

// Aggregated outcomes of one pipeline invocation.
//
// Results are written once per unit, in dispatch order, and never
// mutated afterwards.
type Summary struct {
	Results []Result
}

// Whether every unit succeeded. A skip with an attached error (e.g. a
// push conflict) counts as a failure; a plain skip does not.
func (s *Summary) OK() bool {
	for _, r := range s.Results {
		if r.Err != nil || r.Status == StatusFailed || r.Status == StatusMismatch {
			return false
		}
	}
	return true
}

// Writes a per-target outcome table.
func (s *Summary) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, r := range s.Results {
		name := r.Package
		if r.Target != "" {
			name += "/" + r.Target
		}

		// A forced run proceeds past a drifted gate; the drift still
		// has to be visible in the row, not only in the logs.
		status := r.Status.String()
		if r.Outcome == fingerprint.Mismatch && r.Status != StatusMismatch && r.Status != StatusFailed {
			status += " (mismatch)"
		}

		detail := ""
		switch {
		case r.Err != nil:
			detail = r.Err.Error()
		case r.Planned != "":
			detail = r.Planned
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, r.Kind, status, detail)
	}

	return tw.Flush()
}
