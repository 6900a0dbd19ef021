package vision

import (
	"context"
	"time"
)

// Severity levels ordered from least to most severe.
const (
	SeverityCosmetic = "cosmetic"
	SeverityMinor    = "minor"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
	SeverityCritical = "critical"
)

var severityRank = map[string]int{
	SeverityCosmetic: 0,
	SeverityMinor:    1,
	SeverityModerate: 2,
	SeveritySevere:   3,
	SeverityCritical: 4,
}

// Safety hazard identifiers.
const (
	HazardElectricalFire   = "electrical_fire_risk"
	HazardWaterDamage      = "water_damage"
	HazardExposedWiring    = "exposed_wiring"
	HazardGasLeakSigns     = "gas_leak_signs"
	HazardStructuralDamage = "structural_damage"
	HazardMoldGrowth       = "mold_growth"
	HazardNone             = "none"
)

// Hint carries what the conversation already knows about the problem so the
// analyzer can ground its assessment.
type Hint struct {
	Category    string
	Description string
}

// Analysis is the outcome of analyzing one media attachment.
type Analysis struct {
	ProblemCategory     string    `json:"problem_category"`
	DetectedComponents  []string  `json:"detected_components"`
	ProblemDescription  string    `json:"problem_description"`
	Severity            string    `json:"severity"`
	SafetyHazards       []string  `json:"safety_hazards"`
	EstimatedComplexity string    `json:"estimated_complexity"`
	ConfidenceScore     float64   `json:"confidence_score"`
	Recommendations     []string  `json:"recommendations"`
	RequiredTools       []string  `json:"required_tools"`
	RequiresExpert      bool      `json:"requires_expert"`
	AnalyzedAt          time.Time `json:"analysis_timestamp"`
}

// Analyzer inspects a problem photo and returns a structured assessment.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, imageURL string, hint Hint) (Analysis, error)
}

// moreSevere reports whether a outranks b.
func moreSevere(a, b string) bool {
	return severityRank[a] > severityRank[b]
}
