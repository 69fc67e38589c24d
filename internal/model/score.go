package model

// Score is the transparent confidence breakdown for a located defect site
type Score struct {
	Index      int      `json:"index"`      // Overall confidence index (0-100)
	Confidence string   `json:"confidence"` // "low", "medium", "high"
	Signals    []Signal `json:"signals"`
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"` // Inputs and formula behind the signal
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalSiteSeparation  SignalType = "site_separation"  // Located site vs runner-up candidate
	SignalBoundaryMargin  SignalType = "boundary_margin"  // Site proximity to a supercell face
	SignalInputIntegrity  SignalType = "input_integrity"  // Summary of geometry findings
	SignalNonOrthogonal   SignalType = "non_orthogonal"   // Lattice has off-diagonal components
	SignalOutsideCell     SignalType = "outside_cell"     // Atoms beyond the supercell box
	SignalCoincidentAtoms SignalType = "coincident_atoms" // Atoms closer than the minimum separation
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// Confidence levels for Score.Confidence
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)
