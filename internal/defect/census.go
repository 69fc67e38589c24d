// Package defect classifies and locates a single point defect by comparing
// a host geometry with a defect geometry
package defect

import "github.com/ppiankov/defectscan/internal/geometry"

// SpeciesCount is the number of atoms of one species in each geometry
type SpeciesCount struct {
	Species     string `json:"species"`
	HostCount   int    `json:"host_count"`
	DefectCount int    `json:"defect_count"`
}

// Delta is HostCount - DefectCount
func (s SpeciesCount) Delta() int {
	return s.HostCount - s.DefectCount
}

// Census holds per-species counts ordered by first appearance in the host.
// Species that appear only in the defect geometry are not counted; they are
// listed in DefectOnly so callers can warn about them
type Census struct {
	Entries    []SpeciesCount `json:"entries"`
	DefectOnly []string       `json:"defect_only,omitempty"`
}

// NewCensus counts the species of host and defect
func NewCensus(host, defect []geometry.Atom) Census {
	index := make(map[string]int)
	var c Census

	for _, a := range host {
		i, ok := index[a.Species]
		if !ok {
			i = len(c.Entries)
			index[a.Species] = i
			c.Entries = append(c.Entries, SpeciesCount{Species: a.Species})
		}
		c.Entries[i].HostCount++
	}

	seen := make(map[string]bool)
	for _, a := range defect {
		if i, ok := index[a.Species]; ok {
			c.Entries[i].DefectCount++
			continue
		}
		if !seen[a.Species] {
			seen[a.Species] = true
			c.DefectOnly = append(c.DefectOnly, a.Species)
		}
	}

	return c
}

// Species returns the species labels in census order
func (c Census) Species() []string {
	out := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Species
	}
	return out
}

// Lookup returns the counts for a species
func (c Census) Lookup(species string) (SpeciesCount, bool) {
	for _, e := range c.Entries {
		if e.Species == species {
			return e, true
		}
	}
	return SpeciesCount{}, false
}
