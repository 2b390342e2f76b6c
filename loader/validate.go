package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/boltcore/engine/script"
)

// ValidationError collects every problem found while compiling a script,
// so authors see all of them in one run.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("script validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// validate cross-checks the compiled entries: reel names against the
// catalog, puzzles against hub dispatch, and structural smells the
// compiler cannot see per-entry.
func validate(entries []script.Entry, cat Catalog, ve *ValidationError) {
	dispatched := map[int]bool{}
	for _, e := range entries {
		if e.Hub == nil {
			continue
		}
		for _, it := range e.Hub.Items {
			if it.Branch >= 1 && it.Branch < len(e.Branches) {
				dispatched[e.Branches[it.Branch]] = true
			}
		}
	}

	for i, e := range entries {
		if cat != nil {
			if e.Movie != "" && !cat.Has(e.Movie) {
				ve.warnf("entry %q: movie %q is not in the catalog", e.Label, e.Movie)
			}
			if e.WinMovie != "" && !cat.Has(e.WinMovie) {
				ve.warnf("entry %q: win movie %q is not in the catalog", e.Label, e.WinMovie)
			}
		}
		if e.Op == script.OpMovie && len(e.Branches) > 0 && e.Branches[0] == i {
			ve.warnf("movie entry %q loops to itself", e.Label)
		}
		if e.Op == script.OpPuzzle && !dispatched[i] {
			ve.warnf("puzzle %q is not dispatched by any hub", e.Label)
		}
	}
}
