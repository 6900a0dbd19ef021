package vision

import (
	"context"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

func TestRuleAnalyzerCriticalElectrical(t *testing.T) {
	a := NewRuleAnalyzer()
	hint := Hint{Description: "искрит розетка, оголенный провод"}

	analysis, err := a.AnalyzeImage(context.Background(), "http://example.com/1.jpg", hint)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.ProblemCategory != "electrical" {
		t.Fatalf("expected electrical, got %s", analysis.ProblemCategory)
	}
	if analysis.Severity != SeverityCritical {
		t.Fatalf("expected critical severity, got %s", analysis.Severity)
	}
	if !analysis.RequiresExpert {
		t.Fatal("critical findings must require an expert")
	}
	if analysis.EstimatedComplexity != "complex" {
		t.Fatalf("expected complex, got %s", analysis.EstimatedComplexity)
	}
	if !containsString(analysis.DetectedComponents, "outlet") || !containsString(analysis.DetectedComponents, "wire") {
		t.Fatalf("expected outlet and wire detected, got %v", analysis.DetectedComponents)
	}
	if !containsString(analysis.SafetyHazards, HazardExposedWiring) {
		t.Fatalf("expected exposed wiring hazard, got %v", analysis.SafetyHazards)
	}
	if len(analysis.Recommendations) == 0 || len(analysis.RequiredTools) == 0 {
		t.Fatal("expected recommendations and tools")
	}
}

func TestRuleAnalyzerDefaults(t *testing.T) {
	a := NewRuleAnalyzer()
	analysis, err := a.AnalyzeImage(context.Background(), "http://example.com/2.jpg", Hint{Description: "что-то сломалось"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Severity != SeverityModerate {
		t.Fatalf("expected moderate, got %s", analysis.Severity)
	}
	if len(analysis.DetectedComponents) != 1 || analysis.DetectedComponents[0] != "unidentified_component" {
		t.Fatalf("expected unidentified component fallback, got %v", analysis.DetectedComponents)
	}
	if len(analysis.SafetyHazards) != 1 || analysis.SafetyHazards[0] != HazardNone {
		t.Fatalf("expected no hazards, got %v", analysis.SafetyHazards)
	}
}

func TestRuleAnalyzerCategoryHintWins(t *testing.T) {
	a := NewRuleAnalyzer()
	analysis, _ := a.AnalyzeImage(context.Background(), "u", Hint{Category: "plumbing", Description: "искрит розетка"})
	if analysis.ProblemCategory != "plumbing" {
		t.Fatalf("hint must win, got %s", analysis.ProblemCategory)
	}
}

func TestConfidenceStablePerURL(t *testing.T) {
	a := NewRuleAnalyzer()
	first, _ := a.AnalyzeImage(context.Background(), "http://example.com/a.jpg", Hint{})
	second, _ := a.AnalyzeImage(context.Background(), "http://example.com/a.jpg", Hint{})
	if first.ConfidenceScore != second.ConfidenceScore {
		t.Fatalf("confidence must be stable per url: %v vs %v", first.ConfidenceScore, second.ConfidenceScore)
	}
	if first.ConfidenceScore < 0.70 || first.ConfidenceScore >= 0.80 {
		t.Fatalf("confidence out of range: %v", first.ConfidenceScore)
	}
}

func TestAggregateWorstSeverityWins(t *testing.T) {
	now := time.Now()
	analyses := []Analysis{
		{
			ProblemCategory:     "plumbing",
			Severity:            SeverityMinor,
			EstimatedComplexity: "simple",
			DetectedComponents:  []string{"faucet"},
			SafetyHazards:       []string{HazardNone},
			AnalyzedAt:          now,
		},
		{
			ProblemCategory:     "electrical",
			Severity:            SeverityCritical,
			EstimatedComplexity: "medium",
			DetectedComponents:  []string{"wire", "faucet"},
			SafetyHazards:       []string{HazardExposedWiring},
			RequiresExpert:      true,
			AnalyzedAt:          now,
		},
	}

	summary := Aggregate(analyses)
	if summary.TotalImages != 2 {
		t.Fatalf("expected 2 images, got %d", summary.TotalImages)
	}
	if summary.PrimaryCategory != "electrical" {
		t.Fatalf("worst analysis should pick the category, got %s", summary.PrimaryCategory)
	}
	if summary.Severity != SeverityCritical {
		t.Fatalf("expected critical, got %s", summary.Severity)
	}
	if summary.EstimatedComplexity != "medium" {
		t.Fatalf("expected highest complexity medium, got %s", summary.EstimatedComplexity)
	}
	if !summary.RequiresExpert {
		t.Fatal("expert flag must propagate")
	}
	// Union keeps first-seen order without duplicates.
	if len(summary.DetectedComponents) != 2 || summary.DetectedComponents[0] != "faucet" || summary.DetectedComponents[1] != "wire" {
		t.Fatalf("unexpected component union %v", summary.DetectedComponents)
	}
}

func TestAggregateEmpty(t *testing.T) {
	summary := Aggregate(nil)
	if summary.TotalImages != 0 || summary.PrimaryCategory != "" {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestAnalysisFromChoices(t *testing.T) {
	if _, ok := analysisFromChoices(openai.ChatCompletionResponse{}); ok {
		t.Fatal("empty choices must not parse")
	}

	garbage := openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Content: "извините, не могу разобрать фото"}},
	}}
	if _, ok := analysisFromChoices(garbage); ok {
		t.Fatal("non-JSON content must not parse")
	}

	fenced := openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Content: "```json\n{\"problem_category\":\"plumbing\",\"severity\":\"severe\"}\n```"}},
	}}
	analysis, ok := analysisFromChoices(fenced)
	if !ok {
		t.Fatal("fenced JSON must parse")
	}
	if analysis.ProblemCategory != "plumbing" || analysis.Severity != SeveritySevere {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
}
