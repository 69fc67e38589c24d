// Package geometry reads FHI-aims style geometry files and provides the
// supercell helpers used by the defect analysis
package geometry

import "math"

// Atom is a single atom record: Cartesian position plus species label
type Atom struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Species string  `json:"species"`
}

// Position returns the coordinates as an array
func (a Atom) Position() [3]float64 {
	return [3]float64{a.X, a.Y, a.Z}
}

// Distance is the plain Euclidean distance between two atoms.
// No periodic wraparound is applied
func Distance(a, b Atom) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Lattice holds the three lattice vectors as rows (a1, a2, a3)
type Lattice [3][3]float64

// Components returns the x, y and z components of a1, a2 and a3 as three
// slices, so xs[1] is the x component of a2
func (l Lattice) Components() (xs, ys, zs []float64) {
	xs = make([]float64, 3)
	ys = make([]float64, 3)
	zs = make([]float64, 3)
	for i, v := range l {
		xs[i], ys[i], zs[i] = v[0], v[1], v[2]
	}
	return xs, ys, zs
}

// ToCartesian converts fractional coordinates to Cartesian ones
func (l Lattice) ToCartesian(f1, f2, f3 float64) (x, y, z float64) {
	x = f1*l[0][0] + f2*l[1][0] + f3*l[2][0]
	y = f1*l[0][1] + f2*l[1][1] + f3*l[2][1]
	z = f1*l[0][2] + f2*l[1][2] + f3*l[2][2]
	return x, y, z
}

// Geometry is a parsed geometry file. The index of an atom in Atoms is its
// line index
type Geometry struct {
	Lattice *Lattice `json:"lattice,omitempty"`
	Atoms   []Atom   `json:"atoms"`
	Skipped int      `json:"skipped,omitempty"` // atom lines that could not be parsed
}

// Len returns the number of atoms
func (g *Geometry) Len() int {
	return len(g.Atoms)
}

// Coordinates returns the atom positions without species labels
func (g *Geometry) Coordinates() [][3]float64 {
	out := make([][3]float64, len(g.Atoms))
	for i, a := range g.Atoms {
		out[i] = a.Position()
	}
	return out
}

// Dimensions derives the supercell dimensions from the lattice
func (g *Geometry) Dimensions() (Dimensions, error) {
	if g.Lattice == nil {
		return Dimensions{}, ErrNoLattice
	}
	return SupercellDimensions(*g.Lattice), nil
}
