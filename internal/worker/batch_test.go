package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/defectscan/internal/defect"
	"github.com/ppiankov/defectscan/internal/model"
	"github.com/ppiankov/defectscan/internal/pipeline"
)

type mockAnalyzer struct {
	failOn string
}

func (m *mockAnalyzer) Analyze(ctx context.Context, hostPath, defectPath string) (*pipeline.AnalysisResult, error) {
	time.Sleep(5 * time.Millisecond)
	if strings.Contains(defectPath, m.failOn) && m.failOn != "" {
		return nil, errors.New("analysis error")
	}
	return &pipeline.AnalysisResult{
		Report: &model.Report{
			HostPath:   hostPath,
			DefectPath: defectPath,
			Kind:       defect.KindVacancy,
			Species:    "S",
		},
	}, nil
}

func TestBatchProcessor_ProcessFiles(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{failOn: "bad"}, 2, 0, 0, nil)
	paths := []string{"a/geometry.in", "bad/geometry.in", "c/geometry.in", "d/geometry.in"}

	results := processor.ProcessFiles(context.Background(), "host/geometry.in", paths)
	require.Len(t, results, len(paths))

	for i, res := range results {
		assert.Equal(t, i, res.Index)
		assert.Equal(t, paths[i], res.DefectPath)
	}

	assert.Error(t, results[1].Error)
	for _, i := range []int{0, 2, 3} {
		require.NoError(t, results[i].Error)
		assert.Equal(t, "host/geometry.in", results[i].Report.HostPath)
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 2, 0, 0, nil)
	assert.Empty(t, processor.ProcessFiles(context.Background(), "host", nil))
}

func TestBatchProcessor_Throttled(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 4, 1000, 1, nil)
	require.NotNil(t, processor.limiter)

	results := processor.ProcessFiles(context.Background(), "host", []string{"a/x.in", "a/y.in", "b/z.in"})
	for _, res := range results {
		assert.NoError(t, res.Error)
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&mockAnalyzer{}, 1, 0, 0, nil)
	results := processor.ProcessFiles(ctx, "host", []string{"a", "b", "c"})
	require.Len(t, results, 3)
	for _, res := range results {
		assert.ErrorIs(t, res.Error, context.Canceled)
	}
}

func TestReadPathsFromFile(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "defects.txt")
	abs := filepath.Join(dir, "abs", "geometry.in")
	content := "# defect runs\n\nvac/geometry.in\n" + abs + "\n./vac/geometry.in\n  int/geometry.in  \n"
	require.NoError(t, os.WriteFile(list, []byte(content), 0644))

	paths, err := ReadPathsFromFile(list)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "vac", "geometry.in"),
		abs,
		filepath.Join(dir, "int", "geometry.in"),
	}, paths)

	_, err = ReadPathsFromFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestBatchProcessor_ProcessList_Fixtures(t *testing.T) {
	root, err := filepath.Abs(filepath.Join("..", "..", "testdata"))
	require.NoError(t, err)

	list := filepath.Join(t.TempDir(), "defects.txt")
	content := strings.Join([]string{
		filepath.Join(root, "vacancy", "geometry.in"),
		filepath.Join(root, "interstitial", "geometry.in"),
		filepath.Join(root, "antisite", "geometry.in"),
		filepath.Join(root, "missing", "geometry.in"),
	}, "\n")
	require.NoError(t, os.WriteFile(list, []byte(content), 0644))

	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false
	processor := NewBatchProcessor(pipeline.NewPipeline(cfg, nil), 3, 0, 0, nil)

	results, err := processor.ProcessList(context.Background(), filepath.Join(root, "perfect", "geometry.in"), list)
	require.NoError(t, err)
	require.Len(t, results, 4)

	want := []string{"V_S", "Cu_i", "As_Cu"}
	for i, label := range want {
		require.NoError(t, results[i].Error)
		assert.Equal(t, label, results[i].Report.SiteLabel())
	}
	assert.Error(t, results[3].Error)
}
