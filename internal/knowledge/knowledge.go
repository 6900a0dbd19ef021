package knowledge

import (
	"strings"

	"github.com/masterok/backend/internal/models"
)

// Skill levels a solution may require.
const (
	SkillBasic        = "basic"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
	SkillExpert       = "expert"
)

// Solution is an immutable catalog record describing a known repair.
type Solution struct {
	ID                string            `json:"problem_id"`
	Name              string            `json:"problem_name"`
	Category          string            `json:"category"`
	Description       string            `json:"description"`
	SkillLevel        string            `json:"skill_level"`
	EstimatedHours    float64           `json:"estimated_time_hours"`
	RequiredTools     []string          `json:"required_tools"`
	RequiredMaterials []models.Material `json:"required_materials"`
	SafetyPrecautions []string          `json:"safety_precautions"`
	Steps             []string          `json:"step_by_step_instructions"`
	CommonMistakes    []string          `json:"common_mistakes"`
	Troubleshooting   []string          `json:"troubleshooting_tips"`
	CostRange         CostRange         `json:"estimated_cost_range"`
}

type CostRange struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Materials float64 `json:"materials"`
}

// Base is the static problem-to-solution catalog. Loaded once at startup and
// read-only thereafter; lookups preserve insertion order so score ties are
// deterministic (first inserted wins).
type Base struct {
	solutions []Solution
	byID      map[string]int
}

func NewBase() *Base {
	b := &Base{byID: make(map[string]int)}
	for _, s := range catalog() {
		b.byID[s.ID] = len(b.solutions)
		b.solutions = append(b.solutions, s)
	}
	return b
}

// FindSolution scores every candidate as 2 points per solution-name word
// appearing in the description plus 1 point per solution-description word.
// A category hint restricts candidates; a zero score never matches.
func (b *Base) FindSolution(description, category string) (Solution, bool) {
	descLower := strings.ToLower(description)

	best := -1
	bestScore := 0.0
	for i, s := range b.solutions {
		if category != "" && s.Category != category {
			continue
		}
		score := 0.0
		for _, word := range strings.Fields(strings.ToLower(s.Name)) {
			if strings.Contains(descLower, word) {
				score += 2.0
			}
		}
		for _, word := range strings.Fields(strings.ToLower(s.Description)) {
			if strings.Contains(descLower, word) {
				score += 1.0
			}
		}
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best < 0 {
		return Solution{}, false
	}
	return b.solutions[best], true
}

// ByCategory lists solutions for a category in catalog order. An empty
// category lists everything.
func (b *Base) ByCategory(category string) []Solution {
	var out []Solution
	for _, s := range b.solutions {
		if category == "" || s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

func (b *Base) ByID(id string) (Solution, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Solution{}, false
	}
	return b.solutions[i], true
}

// ClientSpecifics carries the client-side details merged into instructions.
type ClientSpecifics struct {
	Notes   string
	Urgency string
}

// GenerateInstructions projects a solution into the master-facing work
// instructions. Pure merge, no side effects.
func (b *Base) GenerateInstructions(s Solution, specifics ClientSpecifics) models.WorkInstructions {
	urgency := specifics.Urgency
	if urgency == "" {
		urgency = "normal"
	}
	return models.WorkInstructions{
		JobTitle:           s.Name,
		Category:           s.Category,
		SkillLevelRequired: s.SkillLevel,
		EstimatedDuration:  s.EstimatedHours,
		SafetyFirst:        s.SafetyPrecautions,
		RequiredTools:      s.RequiredTools,
		MaterialsToBring:   s.RequiredMaterials,
		StepByStep:         s.Steps,
		MistakesToAvoid:    s.CommonMistakes,
		Troubleshooting:    s.Troubleshooting,
		ClientNotes:        specifics.Notes,
		Urgency:            urgency,
	}
}
