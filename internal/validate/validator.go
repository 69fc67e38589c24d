package validate

import (
	"fmt"
	"math"
	"sync"

	"github.com/ppiankov/defectscan/internal/geometry"
	"github.com/ppiankov/defectscan/internal/model"
)

// Defaults used when a tolerance is non-positive, in Angstrom
const (
	DefaultCellTolerance = 0.01
	DefaultMinSeparation = 0.5
)

// Validator checks geometries for conditions that make the defect site or
// its boundary distances unreliable
type Validator struct {
	cellTolerance float64
	minSeparation float64
}

// NewValidator creates a new validator
func NewValidator(cellTolerance, minSeparation float64) *Validator {
	if cellTolerance <= 0 {
		cellTolerance = DefaultCellTolerance
	}
	if minSeparation <= 0 {
		minSeparation = DefaultMinSeparation
	}
	return &Validator{
		cellTolerance: cellTolerance,
		minSeparation: minSeparation,
	}
}

// ValidatePair validates host and defect concurrently. Host findings come
// first
func (v *Validator) ValidatePair(host, defect *geometry.Geometry) []model.Signal {
	var (
		wg      sync.WaitGroup
		results [2][]model.Signal
	)

	for i, g := range []struct {
		label string
		geom  *geometry.Geometry
	}{{"host", host}, {"defect", defect}} {
		wg.Add(1)
		go func(idx int, label string, geom *geometry.Geometry) {
			defer wg.Done()
			results[idx] = v.Validate(label, geom)
		}(i, g.label, g.geom)
	}

	wg.Wait()
	return append(results[0], results[1]...)
}

// Validate returns one signal per failed check. label names the geometry in
// descriptions
func (v *Validator) Validate(label string, g *geometry.Geometry) []model.Signal {
	var signals []model.Signal

	if g.Lattice != nil {
		if sig, ok := v.checkOrthogonal(label, *g.Lattice); !ok {
			signals = append(signals, sig)
		}
		dims := geometry.SupercellDimensions(*g.Lattice)
		if sig, ok := v.checkInsideCell(label, g.Atoms, dims); !ok {
			signals = append(signals, sig)
		}
	}

	if sig, ok := v.checkSeparation(label, g.Atoms); !ok {
		signals = append(signals, sig)
	}

	return signals
}

// checkOrthogonal flags lattices whose off-diagonal components exceed the
// tolerance; boundary distances treat the cell as an axis-aligned box
func (v *Validator) checkOrthogonal(label string, l geometry.Lattice) (model.Signal, bool) {
	largest := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i != j {
				largest = math.Max(largest, math.Abs(l[i][j]))
			}
		}
	}

	if largest <= v.cellTolerance {
		return model.Signal{}, true
	}

	return model.Signal{
		Type:        model.SignalNonOrthogonal,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%s lattice is not orthogonal (off-diagonal up to %.4f Å)", label, largest),
		Data: map[string]interface{}{
			"geometry":     label,
			"off_diagonal": largest,
			"tolerance":    v.cellTolerance,
		},
	}, false
}

// checkInsideCell flags atoms beyond [0, L] on any axis
func (v *Validator) checkInsideCell(label string, atoms []geometry.Atom, dims geometry.Dimensions) (model.Signal, bool) {
	outside := 0
	first := -1
	for i, a := range atoms {
		if outsideAxis(a.X, dims.X, v.cellTolerance) ||
			outsideAxis(a.Y, dims.Y, v.cellTolerance) ||
			outsideAxis(a.Z, dims.Z, v.cellTolerance) {
			if first < 0 {
				first = i
			}
			outside++
		}
	}

	if outside == 0 {
		return model.Signal{}, true
	}

	return model.Signal{
		Type:        model.SignalOutsideCell,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d %s atoms lie outside the supercell", outside, label),
		Data: map[string]interface{}{
			"geometry":   label,
			"outside":    outside,
			"first_line": first,
			"tolerance":  v.cellTolerance,
		},
	}, false
}

func outsideAxis(c, length, tol float64) bool {
	return c < -tol || c > length+tol
}

// checkSeparation flags atom pairs closer than the minimum separation
func (v *Validator) checkSeparation(label string, atoms []geometry.Atom) (model.Signal, bool) {
	pairs := 0
	closest := math.Inf(1)
	for i := range atoms {
		for j := i + 1; j < len(atoms); j++ {
			d := geometry.Distance(atoms[i], atoms[j])
			if d < v.minSeparation {
				pairs++
				closest = math.Min(closest, d)
			}
		}
	}

	if pairs == 0 {
		return model.Signal{}, true
	}

	return model.Signal{
		Type:        model.SignalCoincidentAtoms,
		Severity:    model.SeverityCritical,
		Description: fmt.Sprintf("%d %s atom pairs closer than %.2f Å", pairs, label, v.minSeparation),
		Data: map[string]interface{}{
			"geometry":       label,
			"pairs":          pairs,
			"closest":        closest,
			"min_separation": v.minSeparation,
		},
	}, false
}
