package model

import (
	"time"

	"github.com/ppiankov/defectscan/internal/defect"
	"github.com/ppiankov/defectscan/internal/geometry"
)

// Report is the result of analysing one host/defect pair
type Report struct {
	HostPath   string    `json:"host_path"`
	DefectPath string    `json:"defect_path"`
	AnalyzedAt time.Time `json:"analyzed_at"`

	Kind       defect.Kind `json:"kind"`
	Species    string      `json:"species"`               // Vacancy/interstitial species, or species arriving at an antisite
	SpeciesOut string      `json:"species_out,omitempty"` // Species leaving an antisite

	Position        Position `json:"position"`
	LineIndex       int      `json:"line_index"`       // Host index for vacancies, defect index otherwise
	LineSource      string   `json:"line_source"`      // "host" or "defect"
	NearestDistance float64  `json:"nearest_distance"` // Distance to nearest same-species partner

	Supercell *geometry.Dimensions `json:"supercell,omitempty"` // Nil when the host has no lattice
	Boundary  *geometry.Distances  `json:"boundary,omitempty"`

	Score    Score                 `json:"score"`
	Census   []defect.SpeciesCount `json:"census"`
	Warnings []string              `json:"warnings,omitempty"`
}

// Position is a Cartesian coordinate in Angstrom
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Line sources for Report.LineSource
const (
	LineSourceHost   = "host"
	LineSourceDefect = "defect"
)

// NewReport builds a report from a located site
func NewReport(hostPath, defectPath string, site *defect.Site, census defect.Census) *Report {
	source := LineSourceDefect
	if site.Kind == defect.KindVacancy {
		source = LineSourceHost
	}

	return &Report{
		HostPath:        hostPath,
		DefectPath:      defectPath,
		AnalyzedAt:      time.Now().UTC(),
		Kind:            site.Kind,
		Species:         site.Species,
		SpeciesOut:      site.SpeciesOut,
		Position:        Position{X: site.X, Y: site.Y, Z: site.Z},
		LineIndex:       site.LineIndex,
		LineSource:      source,
		NearestDistance: site.NearestDistance,
		Census:          census.Entries,
	}
}

// SiteLabel is a short human-readable description of the defect
func (r *Report) SiteLabel() string {
	switch r.Kind {
	case defect.KindVacancy:
		return "V_" + r.Species
	case defect.KindInterstitial:
		return r.Species + "_i"
	case defect.KindAntisite:
		return r.Species + "_" + r.SpeciesOut
	default:
		return string(r.Kind)
	}
}
