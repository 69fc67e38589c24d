package geometry

import "math"

// Dimensions are the edge lengths of an orthogonal supercell
type Dimensions struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distances holds the per-axis distance from a point to the nearest cell face
type Distances struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// SupercellDimensions takes the maximum of each lattice column as the cell
// length along that axis. Only meaningful for (near-)orthogonal cells where
// the off-diagonal components are numerical noise
func SupercellDimensions(l Lattice) Dimensions {
	var d [3]float64
	for col := 0; col < 3; col++ {
		d[col] = math.Max(l[0][col], math.Max(l[1][col], l[2][col]))
	}
	return Dimensions{X: d[0], Y: d[1], Z: d[2]}
}

// DefectToBoundary folds each coordinate onto the nearest face of a cell
// with its origin at (0,0,0): the coordinate itself when it lies in the
// lower half of the axis, L minus the coordinate otherwise
func DefectToBoundary(x, y, z float64, d Dimensions) Distances {
	return Distances{
		X: foldToBoundary(x, d.X),
		Y: foldToBoundary(y, d.Y),
		Z: foldToBoundary(z, d.Z),
	}
}

func foldToBoundary(c, length float64) float64 {
	if c <= length/2.0 {
		return c
	}
	return length - c
}
