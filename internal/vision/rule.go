package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/masterok/backend/internal/utils"
)

type componentRule struct {
	name     string
	keywords []string
}

var electricalComponents = []componentRule{
	{"outlet", []string{"розетка", "розетки", "socket"}},
	{"switch", []string{"выключатель", "switch"}},
	{"circuit_breaker", []string{"автомат", "автоматический выключатель", "breaker"}},
	{"wire", []string{"провод", "проводка", "кабель", "wire"}},
	{"light_fixture", []string{"светильник", "лампа", "люстра", "light"}},
	{"electrical_panel", []string{"щиток", "электрощит", "panel"}},
	{"junction_box", []string{"распаечная коробка", "junction box"}},
}

var plumbingComponents = []componentRule{
	{"faucet", []string{"кран", "смеситель", "faucet"}},
	{"pipe", []string{"труба", "трубопровод", "pipe"}},
	{"toilet", []string{"унитаз", "toilet"}},
	{"sink", []string{"раковина", "мойка", "sink"}},
	{"bathtub", []string{"ванна", "bathtub"}},
	{"water_heater", []string{"бойлер", "водонагреватель", "heater"}},
	{"drain", []string{"слив", "канализация", "drain"}},
	{"valve", []string{"вентиль", "кран", "valve"}},
}

type hazardRule struct {
	hazard   string
	keywords []string
}

var hazardRules = []hazardRule{
	{HazardElectricalFire, []string{
		"black marks", "burn marks", "scorch", "charred",
		"черные пятна", "следы горения", "обугленный",
	}},
	{HazardWaterDamage, []string{
		"water stain", "wet", "puddle", "leak",
		"пятна воды", "влага", "лужа", "протечка",
	}},
	{HazardExposedWiring, []string{
		"exposed wire", "bare wire", "hanging wire",
		"оголенный провод", "висящий провод",
	}},
	{HazardMoldGrowth, []string{
		"mold", "mildew", "black spots",
		"плесень", "грибок", "черные пятна",
	}},
}

var criticalSeverityKeywords = []string{"искрит", "горит", "дым", "удар током", "затопление", "фонтан"}
var severeSeverityKeywords = []string{"течет сильно", "не работает совсем", "запах", "треснул"}
var minorSeverityKeywords = []string{"слегка", "немного", "иногда", "периодически"}

// RuleAnalyzer assesses a problem from its textual context using fixed
// keyword tables. Fully deterministic: the same URL and hint always produce
// the same analysis.
type RuleAnalyzer struct{}

func NewRuleAnalyzer() *RuleAnalyzer { return &RuleAnalyzer{} }

func (a *RuleAnalyzer) AnalyzeImage(_ context.Context, imageURL string, hint Hint) (Analysis, error) {
	category := determineCategory(hint.Description, hint.Category)
	components := detectComponents(hint.Description, category)
	severity := assessSeverity(hint.Description)
	hazards := detectHazards(hint.Description)
	complexity := estimateComplexity(severity, len(components))

	return Analysis{
		ProblemCategory:     category,
		DetectedComponents:  components,
		ProblemDescription:  describeProblem(category, components, severity),
		Severity:            severity,
		SafetyHazards:       hazards,
		EstimatedComplexity: complexity,
		ConfidenceScore:     confidenceFor(imageURL),
		Recommendations:     recommendations(category, severity, hazards),
		RequiredTools:       requiredTools(category, components),
		RequiresExpert:      severity == SeverityCritical || severity == SeveritySevere,
		AnalyzedAt:          time.Now().UTC(),
	}, nil
}

// confidenceFor spreads scores over [0.70, 0.80) keyed by the URL so repeat
// analyses of the same attachment agree.
func confidenceFor(imageURL string) float64 {
	return 0.70 + float64(utils.HashStringToUint64(imageURL)%10)/100
}

func determineCategory(description, hint string) string {
	if hint != "" {
		return hint
	}
	lower := strings.ToLower(description)
	if containsAny(lower, "розетка", "выключатель", "свет", "провод", "автомат", "электри") {
		return "electrical"
	}
	if containsAny(lower, "кран", "вода", "труба", "унитаз", "течь", "сантехник") {
		return "plumbing"
	}
	if containsAny(lower, "стиральная", "холодильник", "бойлер", "плита") {
		return "appliances"
	}
	return "electrical"
}

func detectComponents(description, category string) []string {
	var rules []componentRule
	switch category {
	case "electrical":
		rules = electricalComponents
	case "plumbing":
		rules = plumbingComponents
	}

	lower := strings.ToLower(description)
	var found []string
	for _, rule := range rules {
		if containsAny(lower, rule.keywords...) {
			found = append(found, rule.name)
		}
	}
	if len(found) == 0 {
		return []string{"unidentified_component"}
	}
	return found
}

func assessSeverity(description string) string {
	lower := strings.ToLower(description)
	if containsAny(lower, criticalSeverityKeywords...) {
		return SeverityCritical
	}
	if containsAny(lower, severeSeverityKeywords...) {
		return SeveritySevere
	}
	if containsAny(lower, minorSeverityKeywords...) {
		return SeverityMinor
	}
	return SeverityModerate
}

func detectHazards(description string) []string {
	lower := strings.ToLower(description)
	var found []string
	for _, rule := range hazardRules {
		if containsAny(lower, rule.keywords...) {
			found = append(found, rule.hazard)
		}
	}
	if len(found) == 0 {
		return []string{HazardNone}
	}
	return found
}

func estimateComplexity(severity string, componentCount int) string {
	switch {
	case severity == SeverityCritical:
		return "complex"
	case componentCount > 2:
		return "complex"
	case severity == SeveritySevere:
		return "medium"
	case severity == SeverityMinor:
		return "simple"
	default:
		return "medium"
	}
}

func recommendations(category, severity string, hazards []string) []string {
	var out []string
	if severity == SeverityCritical {
		switch category {
		case "electrical":
			out = append(out,
				"Немедленно отключите электропитание на щитке",
				"Не пользуйтесь поврежденными приборами")
		case "plumbing":
			out = append(out,
				"Перекройте основной водопроводный кран",
				"Уберите ценные вещи от места протечки")
		}
	}
	for _, hazard := range hazards {
		switch hazard {
		case HazardElectricalFire:
			out = append(out,
				"Отключите электричество в помещении",
				"Не включайте приборы до ремонта")
		case HazardWaterDamage:
			out = append(out,
				"Вытрите воду для предотвращения повреждений",
				"Обеспечьте вентиляцию помещения")
		case HazardExposedWiring:
			out = append(out,
				"Не прикасайтесь к оголенным проводам",
				"Ограничьте доступ к опасной зоне")
		}
	}
	if len(out) == 0 {
		out = append(out, "Дождитесь прибытия мастера для безопасного ремонта")
	}
	return out
}

func requiredTools(category string, components []string) []string {
	var tools []string
	switch category {
	case "electrical":
		tools = append(tools, "Мультиметр", "Отвертки", "Плоскогубцы", "Изолента")
		if contains(components, "wire") {
			tools = append(tools, "Кусачки", "Стриппер для проводов")
		}
		if contains(components, "outlet") {
			tools = append(tools, "Индикаторная отвертка")
		}
	case "plumbing":
		tools = append(tools, "Разводной ключ", "Плоскогубцы", "Уплотнительная лента")
		if contains(components, "pipe") {
			tools = append(tools, "Труборез", "Паяльник для труб")
		}
		if contains(components, "drain") {
			tools = append(tools, "Вантуз", "Трос сантехнический")
		}
	}
	return tools
}

var categoryNames = map[string]string{
	"electrical": "электрической системы",
	"plumbing":   "сантехники",
	"appliances": "бытовой техники",
	"renovation": "отделки",
}

var severityDescriptions = map[string]string{
	SeverityCritical: "критическая неисправность",
	SeveritySevere:   "серьезная проблема",
	SeverityModerate: "неисправность",
	SeverityMinor:    "незначительная проблема",
	SeverityCosmetic: "косметический дефект",
}

func describeProblem(category string, components []string, severity string) string {
	categoryName, ok := categoryNames[category]
	if !ok {
		categoryName = "системы"
	}
	severityDesc, ok := severityDescriptions[severity]
	if !ok {
		severityDesc = "проблема"
	}
	if len(components) > 0 && components[0] != "unidentified_component" {
		listed := components
		if len(listed) > 3 {
			listed = listed[:3]
		}
		return fmt.Sprintf("Обнаружена %s %s: проблема с %s", severityDesc, categoryName, strings.Join(listed, ", "))
	}
	return fmt.Sprintf("Обнаружена %s %s", severityDesc, categoryName)
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
