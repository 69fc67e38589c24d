package defect

import (
	"fmt"
	"strings"

	"github.com/ppiankov/defectscan/internal/geometry"
)

// Kind is the type of point defect
type Kind string

const (
	KindVacancy      Kind = "vacancy"
	KindInterstitial Kind = "interstitial"
	KindAntisite     Kind = "antisite"
)

// ClassifyKind decides the defect kind from the total atom counts
func ClassifyKind(host, defect []geometry.Atom) (Kind, error) {
	nHost, nDefect := len(host), len(defect)
	switch nHost - nDefect {
	case 1:
		return KindVacancy, nil
	case -1:
		return KindInterstitial, nil
	case 0:
		return KindAntisite, nil
	default:
		return "", fmt.Errorf("%w: host has %d atoms, defect has %d", ErrAmbiguousDefectCount, nHost, nDefect)
	}
}

// Classifier resolves which species a defect implicates.
//
// In strict mode more than one species with the required count delta is an
// error. Otherwise the last matching species in census order is used
type Classifier struct {
	Strict bool
}

// NewClassifier creates a classifier
func NewClassifier(strict bool) *Classifier {
	return &Classifier{Strict: strict}
}

// VacancySpecies returns the species with one atom fewer in the defect
func (c *Classifier) VacancySpecies(census Census) (string, error) {
	species, err := c.match(census, 1)
	if err != nil {
		return "", err
	}
	if species == "" {
		return "", ErrNoVacancySpecies
	}
	return species, nil
}

// InterstitialSpecies returns the species with one atom more in the defect
func (c *Classifier) InterstitialSpecies(census Census) (string, error) {
	species, err := c.match(census, -1)
	if err != nil {
		return "", err
	}
	if species == "" {
		return "", ErrNoInterstitialSpecies
	}
	return species, nil
}

// AntisiteSpecies returns the species arriving at the site (in) and the
// species leaving it (out)
func (c *Classifier) AntisiteSpecies(census Census) (in, out string, err error) {
	in, err = c.match(census, -1)
	if err != nil {
		return "", "", err
	}
	out, err = c.match(census, 1)
	if err != nil {
		return "", "", err
	}
	if in == "" || out == "" {
		return "", "", fmt.Errorf("%w: in=%q out=%q", ErrNoAntisiteSpecies, in, out)
	}
	return in, out, nil
}

// match scans the census for species whose host-defect delta equals delta
func (c *Classifier) match(census Census, delta int) (string, error) {
	var matches []string
	for _, e := range census.Entries {
		if e.Delta() == delta {
			matches = append(matches, e.Species)
		}
	}

	switch {
	case len(matches) == 0:
		return "", nil
	case len(matches) > 1 && c.Strict:
		return "", fmt.Errorf("%w: delta %+d for %s", ErrAmbiguousSpecies, delta, strings.Join(matches, ", "))
	default:
		return matches[len(matches)-1], nil
	}
}
