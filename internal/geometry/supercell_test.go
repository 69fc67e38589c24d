package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupercellDimensions(t *testing.T) {
	g, err := Load(fixture("vacancy"))
	require.NoError(t, err)

	d, err := g.Dimensions()
	require.NoError(t, err)
	assert.InDelta(t, 14.8588928, d.X, 1e-9)
	assert.InDelta(t, 12.9147523, d.Y, 1e-9)
	assert.InDelta(t, 12.33466882, d.Z, 1e-9)
}

func TestDimensions_NoLattice(t *testing.T) {
	g := &Geometry{Atoms: []Atom{{Species: "Cu"}}}
	_, err := g.Dimensions()
	assert.ErrorIs(t, err, ErrNoLattice)
}

func TestDefectToBoundary(t *testing.T) {
	dims := Dimensions{X: 14.8588928, Y: 12.9147523, Z: 12.33466882}

	tests := []struct {
		name    string
		x, y, z float64
		want    Distances
	}{
		{
			name: "antisite site",
			x:    5.58437198, y: 8.56614992, z: 6.21005598,
			want: Distances{X: 5.58437198, Y: 4.34860238, Z: 6.12461284},
		},
		{
			name: "cell centre is unchanged",
			x:    dims.X / 2, y: dims.Y / 2, z: dims.Z / 2,
			want: Distances{X: dims.X / 2, Y: dims.Y / 2, Z: dims.Z / 2},
		},
		{
			name: "just below upper face",
			x:    dims.X - 1e-6, y: dims.Y - 1e-6, z: dims.Z - 1e-6,
			want: Distances{X: 1e-6, Y: 1e-6, Z: 1e-6},
		},
		{
			name: "origin",
			want: Distances{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefectToBoundary(tt.x, tt.y, tt.z, dims)
			assert.InDelta(t, tt.want.X, got.X, 1e-8)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-8)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-8)
		})
	}
}

func TestDistance(t *testing.T) {
	a := Atom{X: 0, Y: 0, Z: 0}
	b := Atom{X: 3, Y: 4, Z: 12}
	assert.InDelta(t, 13.0, Distance(a, b), 1e-12)
	assert.Zero(t, Distance(b, b))
}
