package bench

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// FilterShells keeps the shells matching at least one glob pattern, in their original order.
// No patterns keeps every shell.
func FilterShells(shells, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return shells, nil
	}

	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid shell pattern %q", p)
		}
	}

	var kept []string
	for _, shell := range shells {
		for _, p := range patterns {
			if matched, _ := doublestar.Match(p, shell); matched {
				kept = append(kept, shell)
				break
			}
		}
	}

	if len(kept) == 0 {
		return nil, fmt.Errorf("no shells match %v", patterns)
	}
	return kept, nil
}
