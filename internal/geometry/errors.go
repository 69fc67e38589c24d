package geometry

import "errors"

// Sentinel errors returned by the geometry package. Callers match them with
// errors.Is; the loader wraps them with the offending path
var (
	// ErrFileUnreadable is returned when a geometry file cannot be opened or read
	ErrFileUnreadable = errors.New("geometry: file unreadable")

	// ErrLatticeVectorCount is returned when a file holds lattice_vector lines
	// but not exactly three of them
	ErrLatticeVectorCount = errors.New("geometry: expected 0 or 3 lattice vectors")

	// ErrFractionalWithoutLattice is returned for atom_frac records in a file
	// that defines no lattice to convert them with
	ErrFractionalWithoutLattice = errors.New("geometry: fractional coordinates without lattice")

	// ErrNoLattice is returned when supercell dimensions are requested from a
	// geometry that has no lattice vectors
	ErrNoLattice = errors.New("geometry: no lattice vectors")
)
