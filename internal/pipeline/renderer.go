package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/defectscan/internal/defect"
	"github.com/ppiankov/defectscan/internal/model"
)

// Renderer writes reports as JSON, Markdown and a terminal summary
type Renderer struct {
	includeCensus bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeCensus bool) *Renderer {
	return &Renderer{includeCensus: includeCensus}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(report)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Markdown formats the report as a Markdown document
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Defect report: %s\n\n", report.SiteLabel())
	fmt.Fprintf(&b, "- Host: `%s`\n", report.HostPath)
	fmt.Fprintf(&b, "- Defect: `%s`\n", report.DefectPath)
	fmt.Fprintf(&b, "- Analyzed: %s\n\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Site\n\n")
	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Kind | %s |\n", report.Kind)
	if report.Kind == defect.KindAntisite {
		fmt.Fprintf(&b, "| Species in | %s |\n", report.Species)
		fmt.Fprintf(&b, "| Species out | %s |\n", report.SpeciesOut)
	} else {
		fmt.Fprintf(&b, "| Species | %s |\n", report.Species)
	}
	fmt.Fprintf(&b, "| Position (x, y, z) | %.8f, %.8f, %.8f |\n", report.Position.X, report.Position.Y, report.Position.Z)
	fmt.Fprintf(&b, "| Line index | %d (%s) |\n", report.LineIndex, report.LineSource)
	fmt.Fprintf(&b, "| Nearest partner distance | %.8f |\n", report.NearestDistance)

	if report.Boundary != nil && report.Supercell != nil {
		b.WriteString("\n## Boundary distance\n\n")
		b.WriteString("| Axis | Cell length | Distance to face |\n|---|---|---|\n")
		fmt.Fprintf(&b, "| x | %.8f | %.8f |\n", report.Supercell.X, report.Boundary.X)
		fmt.Fprintf(&b, "| y | %.8f | %.8f |\n", report.Supercell.Y, report.Boundary.Y)
		fmt.Fprintf(&b, "| z | %.8f | %.8f |\n", report.Supercell.Z, report.Boundary.Z)
	}

	if len(report.Score.Signals) > 0 {
		b.WriteString("\n## Confidence\n\n")
		fmt.Fprintf(&b, "Index %d/100 (%s)\n\n", report.Score.Index, report.Score.Confidence)
		b.WriteString("| Signal | Severity | Description |\n|---|---|---|\n")
		for _, s := range report.Score.Signals {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Type, s.Severity, s.Description)
		}
	}

	if r.includeCensus && len(report.Census) > 0 {
		b.WriteString("\n## Species census\n\n")
		b.WriteString("| Species | Host | Defect | Delta |\n|---|---|---|---|\n")
		for _, e := range report.Census {
			fmt.Fprintf(&b, "| %s | %d | %d | %+d |\n", e.Species, e.HostCount, e.DefectCount, -e.Delta())
		}
	}

	if len(report.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}

// RenderSummary prints a short summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  %s (%s)\n", report.SiteLabel(), report.Kind)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  Position:   (%.8f, %.8f, %.8f)\n", report.Position.X, report.Position.Y, report.Position.Z)
	fmt.Fprintf(w, "  Line index: %d in %s\n", report.LineIndex, report.LineSource)
	fmt.Fprintf(w, "  Nearest:    %.8f\n", report.NearestDistance)
	if report.Boundary != nil {
		fmt.Fprintf(w, "  Boundary:   (%.8f, %.8f, %.8f)\n", report.Boundary.X, report.Boundary.Y, report.Boundary.Z)
	}
	if report.Score.Confidence != "" {
		fmt.Fprintf(w, "  Confidence: %d/100 (%s)\n", report.Score.Index, report.Score.Confidence)
	}
	for _, s := range report.Score.Signals {
		if s.Severity != model.SeverityInfo {
			fmt.Fprintf(w, "  ⚠️  %s\n", s.Description)
		}
	}
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	fmt.Fprintln(w)
}

// RenderCensus prints the species census as a table
func (r *Renderer) RenderCensus(w io.Writer, census defect.Census) {
	fmt.Fprintf(w, "%-8s %8s %8s %6s\n", "SPECIES", "HOST", "DEFECT", "DELTA")
	for _, e := range census.Entries {
		fmt.Fprintf(w, "%-8s %8d %8d %+6d\n", e.Species, e.HostCount, e.DefectCount, -e.Delta())
	}
	if len(census.DefectOnly) > 0 {
		fmt.Fprintf(w, "\nOnly in defect (not counted): %s\n", strings.Join(census.DefectOnly, ", "))
	}
}
