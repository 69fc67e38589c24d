package defect

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/defectscan/internal/geometry"
)

// Site is a located defect
type Site struct {
	Kind    Kind   `json:"kind"`
	Species string `json:"species"`
	// SpeciesOut is the species that left the site; set for antisites only
	SpeciesOut string  `json:"species_out,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	// LineIndex is the 0-based atom index in the host geometry for a
	// vacancy and in the defect geometry otherwise
	LineIndex int `json:"line_index"`
	// NearestDistance is the distance from the site to its nearest partner
	// of the same species in the other geometry
	NearestDistance float64 `json:"nearest_distance"`
	// RunnerUpDistance is the largest nearest-partner distance among the
	// other candidates, 0 when there was only one candidate
	RunnerUpDistance float64 `json:"runner_up_distance"`
}

// Locator finds the defect site by nearest-neighbour matching
type Locator struct {
	classifier *Classifier
	workers    int
}

// NewLocator creates a locator. With workers > 1 the per-atom nearest
// neighbour searches run concurrently; the result does not depend on it
func NewLocator(classifier *Classifier, workers int) *Locator {
	if classifier == nil {
		classifier = NewClassifier(true)
	}
	if workers <= 0 {
		workers = 1
	}
	return &Locator{classifier: classifier, workers: workers}
}

// Locate classifies the defect and finds its site
func (l *Locator) Locate(ctx context.Context, host, defect []geometry.Atom) (*Site, error) {
	kind, err := ClassifyKind(host, defect)
	if err != nil {
		return nil, err
	}
	census := NewCensus(host, defect)

	switch kind {
	case KindVacancy:
		species, err := l.classifier.VacancySpecies(census)
		if err != nil {
			return nil, err
		}
		return l.LocateVacancy(ctx, host, defect, species)

	case KindInterstitial:
		species, err := l.classifier.InterstitialSpecies(census)
		if err != nil {
			return nil, err
		}
		return l.LocateInterstitial(ctx, host, defect, species)

	default:
		in, out, err := l.classifier.AntisiteSpecies(census)
		if err != nil {
			return nil, err
		}
		return l.LocateAntisite(ctx, host, defect, in, out)
	}
}

// LocateVacancy returns the host atom of the given species whose nearest
// same-species atom in the defect geometry is farthest away
func (l *Locator) LocateVacancy(ctx context.Context, host, defect []geometry.Atom, species string) (*Site, error) {
	m, err := l.farthest(ctx, host, defect, species)
	if err != nil {
		return nil, err
	}
	return newSite(KindVacancy, species, "", host, m), nil
}

// LocateInterstitial returns the defect atom of the given species whose
// nearest same-species atom in the host geometry is farthest away
func (l *Locator) LocateInterstitial(ctx context.Context, host, defect []geometry.Atom, species string) (*Site, error) {
	m, err := l.farthest(ctx, defect, host, species)
	if err != nil {
		return nil, err
	}
	return newSite(KindInterstitial, species, "", defect, m), nil
}

// LocateAntisite searches the arriving species the same way as an
// interstitial
func (l *Locator) LocateAntisite(ctx context.Context, host, defect []geometry.Atom, in, out string) (*Site, error) {
	m, err := l.farthest(ctx, defect, host, in)
	if err != nil {
		return nil, err
	}
	return newSite(KindAntisite, in, out, defect, m), nil
}

// match is the outcome of a farthest-nearest-neighbour scan
type match struct {
	index    int
	nearest  float64
	runnerUp float64
}

func newSite(kind Kind, species, out string, atoms []geometry.Atom, m match) *Site {
	a := atoms[m.index]
	return &Site{
		Kind:             kind,
		Species:          species,
		SpeciesOut:       out,
		X:                a.X,
		Y:                a.Y,
		Z:                a.Z,
		LineIndex:        m.index,
		NearestDistance:  m.nearest,
		RunnerUpDistance: m.runnerUp,
	}
}

// farthest returns the index into candidates of the atom of species whose
// nearest same-species neighbour in reference is farthest away. The first
// maximum in candidate order wins
func (l *Locator) farthest(ctx context.Context, candidates, reference []geometry.Atom, species string) (match, error) {
	cands := indicesOf(candidates, species)
	refs := indicesOf(reference, species)
	if len(cands) == 0 || len(refs) == 0 {
		return match{}, fmt.Errorf("%w: %q (%d candidates, %d references)", ErrNoCandidateAtoms, species, len(cands), len(refs))
	}

	nearest := make([]float64, len(cands))
	search := func(i int) {
		nearest[i] = nearestDistance(candidates[cands[i]], reference, refs)
	}

	if l.workers > 1 && len(cands) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(l.workers)
		for i := range cands {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				search(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return match{}, err
		}
	} else {
		for i := range cands {
			if err := ctx.Err(); err != nil {
				return match{}, err
			}
			search(i)
		}
	}

	best := 0
	for i := 1; i < len(nearest); i++ {
		if nearest[i] > nearest[best] {
			best = i
		}
	}

	m := match{index: cands[best], nearest: nearest[best]}
	for i, d := range nearest {
		if i != best && d > m.runnerUp {
			m.runnerUp = d
		}
	}
	return m, nil
}

// nearestDistance returns the smallest distance from a to the reference
// atoms at the given indices
func nearestDistance(a geometry.Atom, reference []geometry.Atom, refs []int) float64 {
	best := math.Inf(1)
	for _, j := range refs {
		if d := geometry.Distance(a, reference[j]); d < best {
			best = d
		}
	}
	return best
}

func indicesOf(atoms []geometry.Atom, species string) []int {
	var out []int
	for i, a := range atoms {
		if a.Species == species {
			out = append(out, i)
		}
	}
	return out
}
