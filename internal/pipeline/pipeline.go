package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/defectscan/internal/cache"
	"github.com/ppiankov/defectscan/internal/defect"
	"github.com/ppiankov/defectscan/internal/geometry"
	"github.com/ppiankov/defectscan/internal/logging"
	"github.com/ppiankov/defectscan/internal/model"
	"github.com/ppiankov/defectscan/internal/score"
	"github.com/ppiankov/defectscan/internal/validate"
)

// latticeTolerance is the largest per-axis difference between host and
// defect cell lengths accepted without a warning, in Angstrom
const latticeTolerance = 1e-3

// Pipeline orchestrates the complete analysis
type Pipeline struct {
	loader    *Loader
	locator   *defect.Locator
	validator *validate.Validator
	scorer    *score.Scorer
	renderer  *Renderer
	config    *model.Config
	logger    *zap.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, logger *zap.Logger) *Pipeline {
	logger = logging.OrNop(logger)

	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.DiskDir, cfg.Cache.DiskTTL, logger)
	}

	return &Pipeline{
		loader:    NewLoader(c, logger),
		locator:   defect.NewLocator(defect.NewClassifier(cfg.Analysis.StrictSpecies), cfg.Analysis.Workers),
		validator: validate.NewValidator(cfg.Analysis.CellTolerance, cfg.Analysis.MinSeparation),
		scorer:    score.NewScorer(cfg.Analysis.BoundaryMargin),
		renderer:  NewRenderer(cfg.Output.IncludeCensus),
		config:    cfg,
		logger:    logger,
	}
}

// AnalysisResult contains the complete analysis result
type AnalysisResult struct {
	Report *model.Report
	Census defect.Census
}

// Analyze classifies and locates the defect in defectPath relative to hostPath
func (p *Pipeline) Analyze(ctx context.Context, hostPath, defectPath string) (*AnalysisResult, error) {
	// 1. Load both geometries
	host, err := p.loader.Load(hostPath)
	if err != nil {
		return nil, fmt.Errorf("load host: %w", err)
	}
	def, err := p.loader.Load(defectPath)
	if err != nil {
		return nil, fmt.Errorf("load defect: %w", err)
	}

	var warnings []string
	warn := func(msg string, fields ...zap.Field) {
		warnings = append(warnings, msg)
		p.logger.Warn(msg, fields...)
	}

	if host.Skipped > 0 {
		warn(fmt.Sprintf("skipped %d unparseable atom lines in host", host.Skipped), zap.String("path", hostPath))
	}
	if def.Skipped > 0 {
		warn(fmt.Sprintf("skipped %d unparseable atom lines in defect", def.Skipped), zap.String("path", defectPath))
	}

	// 2. Species census
	census := defect.NewCensus(host.Atoms, def.Atoms)
	if len(census.DefectOnly) > 0 {
		warn("species present only in defect geometry are ignored: "+strings.Join(census.DefectOnly, ", "),
			zap.Strings("species", census.DefectOnly))
	}

	// 3. Classify and locate
	site, err := p.locator.Locate(ctx, host.Atoms, def.Atoms)
	if err != nil {
		return nil, fmt.Errorf("locate defect: %w", err)
	}

	report := model.NewReport(hostPath, defectPath, site, census)

	// 4. Boundary distances
	dims, err := host.Dimensions()
	switch {
	case errors.Is(err, geometry.ErrNoLattice):
		if p.config.Analysis.RequireLattice {
			return nil, fmt.Errorf("supercell dimensions: %w", err)
		}
		warn("host has no lattice vectors, boundary distances omitted", zap.String("path", hostPath))
	case err != nil:
		return nil, fmt.Errorf("supercell dimensions: %w", err)
	default:
		boundary := geometry.DefectToBoundary(site.X, site.Y, site.Z, dims)
		report.Supercell = &dims
		report.Boundary = &boundary

		if defDims, err := def.Dimensions(); err == nil && !sameCell(dims, defDims) {
			warn("host and defect supercells differ", zap.Any("host", dims), zap.Any("defect", defDims))
		}
	}

	// 5. Validate inputs and score the site
	findings := p.validator.ValidatePair(host, def)
	for _, f := range findings {
		p.logger.Warn(f.Description, zap.String("signal", string(f.Type)), zap.String("severity", string(f.Severity)))
	}
	report.Score = p.scorer.Calculate(site, report.Boundary, findings)
	report.Warnings = warnings

	p.logger.Info("defect located",
		zap.String("kind", string(site.Kind)),
		zap.String("site", report.SiteLabel()),
		zap.Int("line", site.LineIndex),
		zap.Float64("nearest", site.NearestDistance),
		zap.Int("confidence_index", report.Score.Index),
	)

	return &AnalysisResult{
		Report: report,
		Census: census,
	}, nil
}

// Census loads both geometries and returns only the species census
func (p *Pipeline) Census(hostPath, defectPath string) (defect.Census, error) {
	host, err := p.loader.Load(hostPath)
	if err != nil {
		return defect.Census{}, fmt.Errorf("load host: %w", err)
	}
	def, err := p.loader.Load(defectPath)
	if err != nil {
		return defect.Census{}, fmt.Errorf("load defect: %w", err)
	}
	return defect.NewCensus(host.Atoms, def.Atoms), nil
}

// RenderReport renders the report to the specified outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.logger.Debug("wrote JSON report", zap.String("path", jsonPath))
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.logger.Debug("wrote Markdown report", zap.String("path", mdPath))
	}

	return nil
}

// Renderer returns the pipeline's renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

func sameCell(a, b geometry.Dimensions) bool {
	return math.Abs(a.X-b.X) <= latticeTolerance &&
		math.Abs(a.Y-b.Y) <= latticeTolerance &&
		math.Abs(a.Z-b.Z) <= latticeTolerance
}
