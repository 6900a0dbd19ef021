package vision

import "time"

var complexityRank = map[string]int{
	"simple":  0,
	"medium":  1,
	"complex": 2,
}

// Summary merges the per-image analyses of one request.
type Summary struct {
	TotalImages         int        `json:"total_images"`
	PrimaryCategory     string     `json:"primary_category"`
	DetectedComponents  []string   `json:"detected_components"`
	Severity            string     `json:"severity"`
	SafetyHazards       []string   `json:"safety_hazards"`
	EstimatedComplexity string     `json:"estimated_complexity"`
	Recommendations     []string   `json:"recommendations"`
	RequiredTools       []string   `json:"required_tools"`
	RequiresExpert      bool       `json:"requires_expert"`
	Analyses            []Analysis `json:"individual_analyses"`
	AnalyzedAt          time.Time  `json:"analysis_timestamp"`
}

// Aggregate reduces multiple analyses to one summary. The most severe
// analysis contributes the category, complexity is the highest seen, list
// fields are the union in first-seen order, and requires_expert is true if
// any analysis says so.
func Aggregate(analyses []Analysis) Summary {
	if len(analyses) == 0 {
		return Summary{AnalyzedAt: time.Now().UTC()}
	}

	worst := analyses[0]
	complexity := analyses[0].EstimatedComplexity
	requiresExpert := false

	var components, hazards, recommendations, tools []string
	seenComponent := map[string]bool{}
	seenHazard := map[string]bool{}
	seenRecommendation := map[string]bool{}
	seenTool := map[string]bool{}

	for _, a := range analyses {
		if moreSevere(a.Severity, worst.Severity) {
			worst = a
		}
		if complexityRank[a.EstimatedComplexity] > complexityRank[complexity] {
			complexity = a.EstimatedComplexity
		}
		requiresExpert = requiresExpert || a.RequiresExpert

		for _, c := range a.DetectedComponents {
			if !seenComponent[c] {
				seenComponent[c] = true
				components = append(components, c)
			}
		}
		for _, h := range a.SafetyHazards {
			if !seenHazard[h] {
				seenHazard[h] = true
				hazards = append(hazards, h)
			}
		}
		for _, r := range a.Recommendations {
			if !seenRecommendation[r] {
				seenRecommendation[r] = true
				recommendations = append(recommendations, r)
			}
		}
		for _, t := range a.RequiredTools {
			if !seenTool[t] {
				seenTool[t] = true
				tools = append(tools, t)
			}
		}
	}

	return Summary{
		TotalImages:         len(analyses),
		PrimaryCategory:     worst.ProblemCategory,
		DetectedComponents:  components,
		Severity:            worst.Severity,
		SafetyHazards:       hazards,
		EstimatedComplexity: complexity,
		Recommendations:     recommendations,
		RequiredTools:       tools,
		RequiresExpert:      requiresExpert,
		Analyses:            analyses,
		AnalyzedAt:          time.Now().UTC(),
	}
}
