package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/defectscan/internal/defect"
	"github.com/ppiankov/defectscan/internal/geometry"
	"github.com/ppiankov/defectscan/internal/model"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", name, "geometry.in")
}

func testConfig(t *testing.T, cacheEnabled bool) *model.Config {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = cacheEnabled
	cfg.Cache.DiskDir = filepath.Join(t.TempDir(), "cache")
	return cfg
}

func writeGeometry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geometry.in")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestPipeline_Analyze(t *testing.T) {
	tests := []struct {
		name     string
		kind     defect.Kind
		label    string
		pos      model.Position
		line     int
		source   string
		boundary geometry.Distances
	}{
		{
			name:     "vacancy",
			kind:     defect.KindVacancy,
			label:    "V_S",
			pos:      model.Position{X: 5.52373568, Y: 8.61786697, Z: 2.34329588},
			line:     22,
			source:   model.LineSourceHost,
			boundary: geometry.Distances{X: 5.52373568, Y: 12.9147523 - 8.61786697, Z: 2.34329588},
		},
		{
			name:     "interstitial",
			kind:     defect.KindInterstitial,
			label:    "Cu_i",
			pos:      model.Position{X: 5.6, Y: 2.6, Z: 4.6},
			line:     112,
			source:   model.LineSourceDefect,
			boundary: geometry.Distances{X: 5.6, Y: 2.6, Z: 4.6},
		},
		{
			name:     "antisite",
			kind:     defect.KindAntisite,
			label:    "As_Cu",
			pos:      model.Position{X: 5.58437198, Y: 8.56614992, Z: 6.21005598},
			line:     87,
			source:   model.LineSourceDefect,
			boundary: geometry.Distances{X: 5.58437198, Y: 4.34860238, Z: 6.12461284},
		},
	}

	for _, cached := range []bool{false, true} {
		p := NewPipeline(testConfig(t, cached), nil)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				res, err := p.Analyze(context.Background(), fixture("perfect"), fixture(tt.name))
				require.NoError(t, err)
				r := res.Report

				assert.Equal(t, tt.kind, r.Kind)
				assert.Equal(t, tt.label, r.SiteLabel())
				assert.InDelta(t, tt.pos.X, r.Position.X, 1e-8)
				assert.InDelta(t, tt.pos.Y, r.Position.Y, 1e-8)
				assert.InDelta(t, tt.pos.Z, r.Position.Z, 1e-8)
				assert.Equal(t, tt.line, r.LineIndex)
				assert.Equal(t, tt.source, r.LineSource)
				assert.Empty(t, r.Warnings)

				require.NotNil(t, r.Supercell)
				assert.InDelta(t, 14.8588928, r.Supercell.X, 1e-9)
				assert.InDelta(t, 12.9147523, r.Supercell.Y, 1e-9)
				assert.InDelta(t, 12.33466882, r.Supercell.Z, 1e-9)

				require.NotNil(t, r.Boundary)
				assert.InDelta(t, tt.boundary.X, r.Boundary.X, 1e-8)
				assert.InDelta(t, tt.boundary.Y, r.Boundary.Y, 1e-8)
				assert.InDelta(t, tt.boundary.Z, r.Boundary.Z, 1e-8)

				assert.Len(t, r.Census, 3)

				assert.Equal(t, 100, r.Score.Index)
				assert.Equal(t, model.ConfidenceHigh, r.Score.Confidence)
			})
		}
	}
}

func TestPipeline_Analyze_MissingFile(t *testing.T) {
	p := NewPipeline(testConfig(t, false), nil)

	_, err := p.Analyze(context.Background(), filepath.Join(t.TempDir(), "nope.in"), fixture("vacancy"))
	require.Error(t, err)
	assert.ErrorIs(t, err, geometry.ErrFileUnreadable)

	p = NewPipeline(testConfig(t, true), nil)
	_, err = p.Analyze(context.Background(), fixture("perfect"), filepath.Join(t.TempDir(), "nope.in"))
	assert.ErrorIs(t, err, geometry.ErrFileUnreadable)
}

func TestPipeline_Analyze_Ambiguous(t *testing.T) {
	host := writeGeometry(t, "atom 0 0 0 Cu\natom 1 1 1 Cu\natom 2 2 2 S\n")
	def := writeGeometry(t, "atom 0 0 0 Cu\n")

	_, err := NewPipeline(testConfig(t, false), nil).Analyze(context.Background(), host, def)
	assert.ErrorIs(t, err, defect.ErrAmbiguousDefectCount)
}

func TestPipeline_Analyze_NoLattice(t *testing.T) {
	host := writeGeometry(t, "atom 0 0 0 Cu\natom 3 0 0 Cu\natom 0 3 0 S\n")
	def := writeGeometry(t, "atom 0 0 0 Cu\natom 0 3 0 S\nnot_an_atom_line\n")

	cfg := testConfig(t, false)
	res, err := NewPipeline(cfg, nil).Analyze(context.Background(), host, def)
	require.NoError(t, err)
	assert.Equal(t, defect.KindVacancy, res.Report.Kind)
	assert.Equal(t, 1, res.Report.LineIndex)
	assert.Nil(t, res.Report.Boundary)
	assert.NotEmpty(t, res.Report.Warnings)

	cfg.Analysis.RequireLattice = true
	_, err = NewPipeline(cfg, nil).Analyze(context.Background(), host, def)
	assert.ErrorIs(t, err, geometry.ErrNoLattice)
}

func TestPipeline_Analyze_CoincidentAtomsLowerConfidence(t *testing.T) {
	cell := "lattice_vector 10 0 0\nlattice_vector 0 10 0\nlattice_vector 0 0 10\n"
	host := writeGeometry(t, cell+"atom 1 1 1 Cu\natom 5 5 5 Cu\natom 1.1 1 1 S\n")
	def := writeGeometry(t, cell+"atom 1 1 1 Cu\natom 1.1 1 1 S\n")

	res, err := NewPipeline(testConfig(t, false), nil).Analyze(context.Background(), host, def)
	require.NoError(t, err)

	r := res.Report
	assert.Equal(t, "V_Cu", r.SiteLabel())
	assert.Equal(t, 1, r.LineIndex)
	assert.Equal(t, 90, r.Score.Index)
	assert.Equal(t, model.ConfidenceLow, r.Score.Confidence)

	var coincident int
	for _, sig := range r.Score.Signals {
		if sig.Type == model.SignalCoincidentAtoms {
			coincident++
		}
	}
	assert.Equal(t, 2, coincident)
}

func TestPipeline_Analyze_NonFiniteCoordinateIsSkipped(t *testing.T) {
	cell := "lattice_vector 10 0 0\nlattice_vector 0 10 0\nlattice_vector 0 0 10\n"
	host := writeGeometry(t, cell+"atom 1 1 1 Cu\natom 5 5 5 Cu\n")
	def := writeGeometry(t, cell+"atom 1 1 1 Cu\natom 5 5 5 Cu\natom nan 5 5 Cu\natom 8 8 8 Cu\n")

	p := NewPipeline(testConfig(t, false), nil)
	res, err := p.Analyze(context.Background(), host, def)
	require.NoError(t, err)

	r := res.Report
	assert.Equal(t, "Cu_i", r.SiteLabel())
	assert.Equal(t, model.Position{X: 8, Y: 8, Z: 8}, r.Position)
	assert.Equal(t, 2, r.LineIndex)
	assert.NotEmpty(t, r.Warnings)

	require.NoError(t, p.RenderReport(r, filepath.Join(t.TempDir(), "report.json"), ""))
}

func TestPipeline_Analyze_DefectOnlySpeciesWarns(t *testing.T) {
	host := writeGeometry(t, "atom 0 0 0 Cu\natom 3 0 0 Cu\natom 0 3 0 S\n")
	def := writeGeometry(t, "atom 0 0 0 Cu\natom 3 0 0 Se\natom 0 3 0 S\n")

	// Se replaces Cu but is not in the host, so the census cannot see an
	// arriving species.
	_, err := NewPipeline(testConfig(t, false), nil).Analyze(context.Background(), host, def)
	assert.ErrorIs(t, err, defect.ErrNoAntisiteSpecies)

	census, err := NewPipeline(testConfig(t, false), nil).Census(host, def)
	require.NoError(t, err)
	assert.Equal(t, []string{"Se"}, census.DefectOnly)
}

func TestPipeline_RenderReport(t *testing.T) {
	p := NewPipeline(testConfig(t, false), nil)
	res, err := p.Analyze(context.Background(), fixture("perfect"), fixture("antisite"))
	require.NoError(t, err)

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "report.json")
	mdPath := filepath.Join(dir, "report.md")
	require.NoError(t, p.RenderReport(res.Report, jsonPath, mdPath))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded model.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, defect.KindAntisite, decoded.Kind)
	assert.Equal(t, "As", decoded.Species)
	assert.Equal(t, "Cu", decoded.SpeciesOut)
	assert.Equal(t, 87, decoded.LineIndex)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Defect report: As_Cu")
	assert.Contains(t, string(md), "| Species in | As |")
	assert.Contains(t, string(md), "## Species census")
	assert.Contains(t, string(md), "Index 100/100 (high)")

	var buf bytes.Buffer
	p.Renderer().RenderSummary(&buf, res.Report)
	assert.Contains(t, buf.String(), "As_Cu (antisite)")
	assert.Contains(t, buf.String(), "Boundary:")
	assert.Contains(t, buf.String(), "Confidence: 100/100 (high)")

	buf.Reset()
	p.Renderer().RenderCensus(&buf, res.Census)
	assert.Contains(t, buf.String(), "SPECIES")
	assert.Contains(t, buf.String(), "Cu")
}

func TestLoader_CachesGeometry(t *testing.T) {
	cfg := testConfig(t, true)
	p := NewPipeline(cfg, nil)

	first, err := p.loader.Load(fixture("perfect"))
	require.NoError(t, err)
	second, err := p.loader.Load(fixture("perfect"))
	require.NoError(t, err)
	assert.Same(t, first, second)

	entries, err := os.ReadDir(cfg.Cache.DiskDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
