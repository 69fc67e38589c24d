package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/defectscan/internal/logging"
	"github.com/ppiankov/defectscan/internal/model"
	"github.com/ppiankov/defectscan/internal/pipeline"
)

// Analyzer analyses one host/defect pair
type Analyzer interface {
	Analyze(ctx context.Context, hostPath, defectPath string) (*pipeline.AnalysisResult, error)
}

// AnalysisJob analyses one defect geometry against the host
type AnalysisJob struct {
	Index      int
	HostPath   string
	DefectPath string
	Analyzer   Analyzer
	Limiter    *Limiter
}

// Execute runs the analysis
func (j *AnalysisJob) Execute(ctx context.Context) Result {
	res := &AnalysisResult{Index: j.Index, DefectPath: j.DefectPath}

	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.DefectPath); err != nil {
			res.Error = fmt.Errorf("rate limit: %w", err)
			return res
		}
	}

	out, err := j.Analyzer.Analyze(ctx, j.HostPath, j.DefectPath)
	if err != nil {
		res.Error = err
		return res
	}
	res.Report = out.Report
	return res
}

// AnalysisResult is the outcome of one batch entry
type AnalysisResult struct {
	Index      int
	DefectPath string
	Report     *model.Report
	Error      error
}

// GetError returns the analysis error
func (r *AnalysisResult) GetError() error {
	return r.Error
}

// BatchProcessor analyses many defect geometries against one host
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	limiter     *Limiter
	logger      *zap.Logger
}

// NewBatchProcessor creates a batch processor. filesPerSecond <= 0
// disables throttling
func NewBatchProcessor(analyzer Analyzer, concurrency int, filesPerSecond float64, burst int, logger *zap.Logger) *BatchProcessor {
	var limiter *Limiter
	if filesPerSecond > 0 {
		limiter = NewLimiter(filesPerSecond, burst)
	}

	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		limiter:     limiter,
		logger:      logging.OrNop(logger),
	}
}

// ProcessFiles analyses each defect path against hostPath. Results are in
// input order; entries that never ran because ctx ended carry ctx's error
func (b *BatchProcessor) ProcessFiles(ctx context.Context, hostPath string, defectPaths []string) []*AnalysisResult {
	results := make([]*AnalysisResult, len(defectPaths))
	if len(defectPaths) == 0 {
		return results
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, path := range defectPaths {
			job := &AnalysisJob{
				Index:      i,
				HostPath:   hostPath,
				DefectPath: path,
				Analyzer:   b.analyzer,
				Limiter:    b.limiter,
			}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	for r := range pool.Results() {
		res := r.(*AnalysisResult)
		results[res.Index] = res
		if res.Error != nil {
			b.logger.Warn("analysis failed", zap.String("defect", res.DefectPath), zap.Error(res.Error))
		} else {
			b.logger.Debug("analysis done", zap.String("defect", res.DefectPath), zap.String("site", res.Report.SiteLabel()))
		}
	}

	for i, res := range results {
		if res == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			results[i] = &AnalysisResult{Index: i, DefectPath: defectPaths[i], Error: err}
		}
	}

	return results
}

// ProcessList reads defect paths from listPath and analyses them
func (b *BatchProcessor) ProcessList(ctx context.Context, hostPath, listPath string) ([]*AnalysisResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read defect list: %w", err)
	}

	return b.ProcessFiles(ctx, hostPath, paths), nil
}

// ReadPathsFromFile reads geometry paths, one per line. Blank lines and
// # comments are skipped, duplicates dropped, and relative paths resolved
// against the list file's directory
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		line = filepath.Clean(line)

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
