package planner

import (
	"strings"

	"github.com/themuku/RailwayVision/internal/lookup"
)

// ResolveMatch deterministically picks the cached candidate that best
// corresponds to the typed text. Matching is case-insensitive and tiered;
// the first tier producing a candidate wins:
//
//  1. exact display name match
//  2. exact alternate-name tag match (name:* tags)
//  3. substring match in either direction, first in list order
//
// Returns nil when no tier matches. Pure; performs no I/O.
func ResolveMatch(typed string, candidates []lookup.PopulationCenter) *lookup.PopulationCenter {
	term := strings.ToLower(strings.TrimSpace(typed))
	if term == "" {
		return nil
	}

	for i := range candidates {
		if strings.ToLower(candidates[i].Name) == term {
			c := candidates[i]
			return &c
		}
	}

	for i := range candidates {
		for key, alt := range candidates[i].Tags {
			if strings.HasPrefix(key, "name:") && strings.ToLower(alt) == term {
				c := candidates[i]
				return &c
			}
		}
	}

	for i := range candidates {
		name := strings.ToLower(candidates[i].Name)
		if strings.Contains(name, term) || strings.Contains(term, name) {
			c := candidates[i]
			return &c
		}
	}

	return nil
}
