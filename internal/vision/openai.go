package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const visionPrompt = `Проанализируй фотографию бытовой неисправности. Контекст от клиента: %q (категория: %s).

Верни JSON со структурой:
{
    "problem_category": "electrical|plumbing|appliances|renovation",
    "detected_components": ["component1", ...],
    "problem_description": "краткое описание проблемы",
    "severity": "cosmetic|minor|moderate|severe|critical",
    "safety_hazards": ["electrical_fire_risk"|"water_damage"|"exposed_wiring"|"gas_leak_signs"|"structural_damage"|"mold_growth"|"none", ...],
    "estimated_complexity": "simple|medium|complex",
    "confidence_score": 0.0,
    "recommendations": ["..."],
    "required_tools": ["..."],
    "requires_expert": false
}`

// OpenAIAnalyzer sends the photo to a vision-capable chat model. Any API or
// parse failure falls through to the rule tables so analysis never errors out
// of the pipeline.
type OpenAIAnalyzer struct {
	client   *openai.Client
	model    string
	fallback *RuleAnalyzer
	logger   zerolog.Logger
}

func NewOpenAIAnalyzer(apiKey, model string, logger zerolog.Logger) *OpenAIAnalyzer {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIAnalyzer{
		client:   openai.NewClient(apiKey),
		model:    model,
		fallback: NewRuleAnalyzer(),
		logger:   logger.With().Str("component", "vision").Logger(),
	}
}

func (a *OpenAIAnalyzer) AnalyzeImage(ctx context.Context, imageURL string, hint Hint) (Analysis, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: fmt.Sprintf(visionPrompt, hint.Description, hint.Category),
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
					},
				},
			},
		},
		MaxTokens:   800,
		Temperature: 0,
	})
	if err != nil {
		a.logger.Warn().Err(err).Str("image_url", imageURL).Msg("vision request failed, using rule analyzer")
		return a.fallback.AnalyzeImage(ctx, imageURL, hint)
	}

	analysis, ok := analysisFromChoices(resp)
	if !ok {
		a.logger.Warn().Str("image_url", imageURL).Msg("unusable vision response, using rule analyzer")
		return a.fallback.AnalyzeImage(ctx, imageURL, hint)
	}

	if _, ok := severityRank[analysis.Severity]; !ok {
		analysis.Severity = SeverityModerate
	}
	if analysis.ProblemCategory == "" {
		analysis.ProblemCategory = determineCategory(hint.Description, hint.Category)
	}
	if len(analysis.SafetyHazards) == 0 {
		analysis.SafetyHazards = []string{HazardNone}
	}
	analysis.AnalyzedAt = time.Now().UTC()
	return analysis, nil
}

// analysisFromChoices decodes the first completion choice, tolerating a
// markdown code fence around the JSON. ok is false when the response carries
// no choices or the content does not parse.
func analysisFromChoices(resp openai.ChatCompletionResponse) (Analysis, bool) {
	if len(resp.Choices) == 0 {
		return Analysis{}, false
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	var analysis Analysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &analysis); err != nil {
		return Analysis{}, false
	}
	return analysis, true
}
