package geometry

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	latticeKeyword  = "lattice_vector"
	atomKeyword     = "atom"
	fracAtomKeyword = "atom_frac"
)

// Load reads and parses a geometry file
func Load(path string) (*Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFileUnreadable, path, err)
	}
	defer func() { _ = f.Close() }()

	g, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return g, nil
}

// Parse reads geometry records from r.
//
// Recognised lines:
//
//	lattice_vector <x> <y> <z>
//	atom      <x> <y> <z> <species>
//	atom_frac <f1> <f2> <f3> <species>
//
// Any keyword containing "atom" is treated as an atom record. Atom lines with
// missing fields or non-numeric coordinates are skipped and counted in
// Geometry.Skipped. Fractional records are converted with the lattice once
// the whole input has been read, so lattice vectors may appear anywhere
func Parse(r io.Reader) (*Geometry, error) {
	var (
		g        = &Geometry{Atoms: make([]Atom, 0)}
		lattice  Lattice
		nLattice int
		frac     []int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		keyword := fields[0]

		switch {
		case keyword == latticeKeyword:
			vec, ok := parseVector(fields[1:])
			if !ok {
				continue
			}
			if nLattice < 3 {
				lattice[nLattice] = vec
			}
			nLattice++

		case strings.Contains(keyword, atomKeyword):
			if len(fields) < 5 {
				g.Skipped++
				continue
			}
			vec, ok := parseVector(fields[1:4])
			if !ok {
				g.Skipped++
				continue
			}
			if keyword == fracAtomKeyword {
				frac = append(frac, len(g.Atoms))
			}
			g.Atoms = append(g.Atoms, Atom{X: vec[0], Y: vec[1], Z: vec[2], Species: fields[4]})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileUnreadable, err)
	}

	switch nLattice {
	case 0:
	case 3:
		g.Lattice = &lattice
	default:
		return nil, fmt.Errorf("%w: found %d", ErrLatticeVectorCount, nLattice)
	}

	if len(frac) > 0 {
		if g.Lattice == nil {
			return nil, ErrFractionalWithoutLattice
		}
		for _, i := range frac {
			a := &g.Atoms[i]
			a.X, a.Y, a.Z = g.Lattice.ToCartesian(a.X, a.Y, a.Z)
		}
	}

	return g, nil
}

// CountAtoms returns the number of atom records in a geometry file
func CountAtoms(path string) (int, error) {
	g, err := Load(path)
	if err != nil {
		return 0, err
	}
	return g.Len(), nil
}

func parseVector(fields []string) ([3]float64, bool) {
	var v [3]float64
	if len(fields) < 3 {
		return v, false
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return v, false
		}
		v[i] = f
	}
	return v, true
}
