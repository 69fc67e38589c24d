package defect

import "errors"

var (
	// ErrAmbiguousDefectCount is returned when host and defect atom counts
	// differ by more than one
	ErrAmbiguousDefectCount = errors.New("defect: atom count difference is not -1, 0 or +1")

	// ErrNoVacancySpecies is returned when no species has one atom fewer in
	// the defect geometry
	ErrNoVacancySpecies = errors.New("defect: no vacancy species found")

	// ErrNoInterstitialSpecies is returned when no species has one atom more
	// in the defect geometry
	ErrNoInterstitialSpecies = errors.New("defect: no interstitial species found")

	// ErrNoAntisiteSpecies is returned when either the arriving or the
	// leaving species of an antisite cannot be resolved
	ErrNoAntisiteSpecies = errors.New("defect: no antisite species found")

	// ErrAmbiguousSpecies is returned in strict mode when more than one
	// species satisfies the same count delta
	ErrAmbiguousSpecies = errors.New("defect: more than one species matches count delta")

	// ErrNoCandidateAtoms is returned when the nearest-neighbour search has
	// no atoms of the implicated species on one side
	ErrNoCandidateAtoms = errors.New("defect: no candidate atoms for species")
)
