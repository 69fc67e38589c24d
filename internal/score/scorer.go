package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/defectscan/internal/defect"
	"github.com/ppiankov/defectscan/internal/geometry"
	"github.com/ppiankov/defectscan/internal/model"
)

// DefaultBoundaryMargin is used when the scorer is built with a
// non-positive margin, in Angstrom
const DefaultBoundaryMargin = 2.0

// Scorer calculates the site confidence index and generates signals
type Scorer struct {
	boundaryMargin float64
}

// NewScorer creates a new scorer
func NewScorer(boundaryMargin float64) *Scorer {
	if boundaryMargin <= 0 {
		boundaryMargin = DefaultBoundaryMargin
	}
	return &Scorer{boundaryMargin: boundaryMargin}
}

// Calculate scores the located site. boundary may be nil when the host has
// no lattice. findings are the geometry validation signals; they are
// summarised into the index and appended to the returned signals
func (s *Scorer) Calculate(site *defect.Site, boundary *geometry.Distances, findings []model.Signal) model.Score {
	var signals []model.Signal

	// 1. Site separation (0-60 points)
	separationScore, separationSignal := s.calculateSeparation(site)
	signals = append(signals, separationSignal)

	// 2. Boundary margin (0-30 points)
	boundaryScore, boundarySignal := s.calculateBoundary(boundary)
	signals = append(signals, boundarySignal)

	// 3. Input integrity (0-10 points)
	integrityScore, integritySignal := s.calculateIntegrity(findings)
	signals = append(signals, integritySignal)

	signals = append(signals, findings...)

	total := separationScore + boundaryScore + integrityScore

	return model.Score{
		Index:      total,
		Confidence: s.determineConfidence(total, signals),
		Signals:    signals,
	}
}

// calculateSeparation compares the site's nearest-partner distance with the
// runner-up candidate. An unrelaxed defect has a runner-up of zero
func (s *Scorer) calculateSeparation(site *defect.Site) (int, model.Signal) {
	if site.NearestDistance <= 0 {
		return 0, model.Signal{
			Type:        model.SignalSiteSeparation,
			Severity:    model.SeverityCritical,
			Description: "Located site coincides with a partner atom",
			Data: map[string]interface{}{
				"nearest":   site.NearestDistance,
				"runner_up": site.RunnerUpDistance,
			},
		}
	}

	ratio := 1 - site.RunnerUpDistance/site.NearestDistance
	score := int(math.Round(ratio * 60))

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 0.8 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalSiteSeparation,
		Severity:    severity,
		Description: fmt.Sprintf("Site separation: %.3f Å vs runner-up %.3f Å", site.NearestDistance, site.RunnerUpDistance),
		Data: map[string]interface{}{
			"nearest":   site.NearestDistance,
			"runner_up": site.RunnerUpDistance,
			"ratio":     ratio,
			"score":     score,
			"formula":   "(1 - runner_up / nearest) * 60",
		},
	}
}

// calculateBoundary penalises sites close to a supercell face, where the
// nearest partner may sit across the periodic boundary
func (s *Scorer) calculateBoundary(boundary *geometry.Distances) (int, model.Signal) {
	if boundary == nil {
		return 15, model.Signal{
			Type:        model.SignalBoundaryMargin,
			Severity:    model.SeverityWarning,
			Description: "No lattice vectors (assuming moderate)",
			Data:        map[string]interface{}{"score": 15},
		}
	}

	closest := math.Min(boundary.X, math.Min(boundary.Y, boundary.Z))
	// A site outside the box has a negative face distance
	ratio := math.Max(0, math.Min(closest/s.boundaryMargin, 1))
	score := int(math.Round(ratio * 30))

	severity := model.SeverityInfo
	if closest < s.boundaryMargin {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalBoundaryMargin,
		Severity:    severity,
		Description: fmt.Sprintf("Closest supercell face: %.3f Å", closest),
		Data: map[string]interface{}{
			"closest": closest,
			"margin":  s.boundaryMargin,
			"score":   score,
			"formula": "clamp(closest / margin, 0, 1) * 30",
		},
	}
}

// calculateIntegrity takes 5 points per warning finding and all 10 for
// any critical one
func (s *Scorer) calculateIntegrity(findings []model.Signal) (int, model.Signal) {
	warnings, critical := 0, 0
	for _, f := range findings {
		switch f.Severity {
		case model.SeverityWarning:
			warnings++
		case model.SeverityCritical:
			critical++
		}
	}

	score := 10 - 5*warnings
	if critical > 0 || score < 0 {
		score = 0
	}

	severity := model.SeverityInfo
	description := "Geometries passed validation"
	if critical > 0 {
		severity = model.SeverityCritical
		description = fmt.Sprintf("Geometry validation: %d critical, %d warning", critical, warnings)
	} else if warnings > 0 {
		severity = model.SeverityWarning
		description = fmt.Sprintf("Geometry validation: %d warning", warnings)
	}

	return score, model.Signal{
		Type:        model.SignalInputIntegrity,
		Severity:    severity,
		Description: description,
		Data: map[string]interface{}{
			"warnings": warnings,
			"critical": critical,
			"score":    score,
			"formula":  "critical > 0 ? 0 : max(10 - warnings*5, 0)",
		},
	}
}

// determineConfidence determines the confidence level based on the score
func (s *Scorer) determineConfidence(score int, signals []model.Signal) string {
	for _, sig := range signals {
		if sig.Severity == model.SeverityCritical {
			return model.ConfidenceLow
		}
	}

	if score >= 80 {
		return model.ConfidenceHigh
	} else if score >= 55 {
		return model.ConfidenceMedium
	}
	return model.ConfidenceLow
}
