package validate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/defectscan/internal/geometry"
	"github.com/ppiankov/defectscan/internal/model"
)

func box(l float64) *geometry.Lattice {
	return &geometry.Lattice{{l, 0, 0}, {0, l, 0}, {0, 0, l}}
}

func TestValidator_Fixtures(t *testing.T) {
	v := NewValidator(0, 0)

	for _, name := range []string{"perfect", "vacancy", "interstitial", "antisite"} {
		t.Run(name, func(t *testing.T) {
			g, err := geometry.Load(filepath.Join("..", "..", "testdata", name, "geometry.in"))
			require.NoError(t, err)
			assert.Empty(t, v.Validate(name, g))
		})
	}
}

func TestValidator_NonOrthogonal(t *testing.T) {
	v := NewValidator(0.01, 0.5)
	g := &geometry.Geometry{
		Lattice: &geometry.Lattice{{10, 0, 0}, {2, 10, 0}, {0, 0, 10}},
		Atoms:   []geometry.Atom{{X: 1, Y: 1, Z: 1, Species: "Si"}},
	}

	signals := v.Validate("host", g)
	require.Len(t, signals, 1)
	assert.Equal(t, model.SignalNonOrthogonal, signals[0].Type)
	assert.Equal(t, model.SeverityWarning, signals[0].Severity)
	assert.Contains(t, signals[0].Description, "host")
	assert.InDelta(t, 2.0, signals[0].Data["off_diagonal"], 1e-12)
}

func TestValidator_OutsideCell(t *testing.T) {
	v := NewValidator(0.01, 0.5)
	g := &geometry.Geometry{
		Lattice: box(10),
		Atoms: []geometry.Atom{
			{X: 1, Y: 1, Z: 1, Species: "Si"},
			{X: 10.005, Y: 5, Z: 5, Species: "Si"},
			{X: 5, Y: -0.5, Z: 5, Species: "Si"},
			{X: 5, Y: 5, Z: 11, Species: "Si"},
		},
	}

	signals := v.Validate("defect", g)
	require.Len(t, signals, 1)
	assert.Equal(t, model.SignalOutsideCell, signals[0].Type)
	assert.Equal(t, 2, signals[0].Data["outside"])
	assert.Equal(t, 2, signals[0].Data["first_line"])
}

func TestValidator_CoincidentAtoms(t *testing.T) {
	v := NewValidator(0.01, 0.5)
	g := &geometry.Geometry{
		Atoms: []geometry.Atom{
			{X: 1, Y: 1, Z: 1, Species: "Si"},
			{X: 1.1, Y: 1, Z: 1, Species: "Si"},
			{X: 4, Y: 4, Z: 4, Species: "Si"},
		},
	}

	signals := v.Validate("defect", g)
	require.Len(t, signals, 1)
	assert.Equal(t, model.SignalCoincidentAtoms, signals[0].Type)
	assert.Equal(t, model.SeverityCritical, signals[0].Severity)
	assert.Equal(t, 1, signals[0].Data["pairs"])
	assert.InDelta(t, 0.1, signals[0].Data["closest"], 1e-9)
}

func TestValidator_NoLatticeSkipsCellChecks(t *testing.T) {
	v := NewValidator(0, 0)
	g := &geometry.Geometry{Atoms: []geometry.Atom{{X: -50, Y: 0, Z: 0, Species: "Si"}}}
	assert.Empty(t, v.Validate("host", g))
}

func TestValidator_ValidatePairOrder(t *testing.T) {
	v := NewValidator(0.01, 0.5)
	host := &geometry.Geometry{
		Lattice: &geometry.Lattice{{10, 1, 0}, {0, 10, 0}, {0, 0, 10}},
	}
	def := &geometry.Geometry{
		Atoms: []geometry.Atom{{X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}},
	}

	signals := v.ValidatePair(host, def)
	require.Len(t, signals, 2)
	assert.Equal(t, "host", signals[0].Data["geometry"])
	assert.Equal(t, model.SignalNonOrthogonal, signals[0].Type)
	assert.Equal(t, "defect", signals[1].Data["geometry"])
	assert.Equal(t, model.SignalCoincidentAtoms, signals[1].Type)
}
