package pricing

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/masterok/backend/internal/models"
)

// Complexity levels recognized by the rate table.
const (
	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)

// Base hourly rates in RUB by category and complexity.
var baseRates = map[string]map[string]int64{
	"electrical": {
		ComplexitySimple:  800,
		ComplexityMedium:  1500,
		ComplexityComplex: 3000,
	},
	"plumbing": {
		ComplexitySimple:  900,
		ComplexityMedium:  1800,
		ComplexityComplex: 3500,
	},
	"renovation": {
		ComplexitySimple:  700,
		ComplexityMedium:  1400,
		ComplexityComplex: 2800,
	},
	"appliances": {
		ComplexitySimple:  1000,
		ComplexityMedium:  2000,
		ComplexityComplex: 4000,
	},
}

type catalogItem struct {
	key   string
	price int64
}

// Reference material prices in RUB. Matched by substring against the
// material name, first hit wins.
var materialsCatalog = map[string][]catalogItem{
	"electrical": {
		{"outlet", 150},
		{"switch", 200},
		{"circuit_breaker", 500},
		{"wire_1m", 80},
		{"junction_box", 100},
		{"cable_10m", 600},
		{"led_lamp", 300},
	},
	"plumbing": {
		{"pipe_1m", 200},
		{"faucet", 1500},
		{"valve", 400},
		{"sealant", 150},
	},
}

type urgencyRule struct {
	keyword    string
	multiplier string
}

// Scanned in order, first match wins.
var urgencyRules = []urgencyRule{
	{"срочно", "1.3"},
	{"аварийно", "1.5"},
	{"немедленно", "1.4"},
	{"сегодня", "1.2"},
	{"искры", "1.5"},
	{"запах гари", "1.5"},
	{"протечка", "1.4"},
	{"затопление", "1.6"},
}

var (
	gatewayFeeRate = decimal.RequireFromString("0.02")
	defaultLabor   = decimal.RequireFromString("0.7")
	defaultMats    = decimal.RequireFromString("0.3")
)

// Engine computes job cost breakdowns from the static rate tables.
type Engine struct {
	minCost    decimal.Decimal
	maxCost    decimal.Decimal
	commission decimal.Decimal
	logger     zerolog.Logger
}

func NewEngine(minCost, maxCost int64, commissionRate float64, logger zerolog.Logger) *Engine {
	return &Engine{
		minCost:    decimal.NewFromInt(minCost),
		maxCost:    decimal.NewFromInt(maxCost),
		commission: decimal.NewFromFloat(commissionRate),
		logger:     logger.With().Str("component", "pricing").Logger(),
	}
}

// Calculate produces the full cost breakdown for a job. Unknown categories
// fall back to electrical rates and unknown complexities to medium, so the
// same inputs always yield the same breakdown.
func (e *Engine) Calculate(category, description, complexity string, estimatedHours float64, materials []models.Material) models.CostBreakdown {
	rate := baseRate(category, complexity)
	laborCost := decimal.NewFromInt(rate).Mul(decimal.NewFromFloat(estimatedHours))
	materialsCost := e.materialsCost(category, materials)
	multiplier := urgencyMultiplier(description)

	subtotal := laborCost.Add(materialsCost).Mul(multiplier)

	totalCost := subtotal
	if totalCost.LessThan(e.minCost) {
		totalCost = e.minCost
	}
	if totalCost.GreaterThan(e.maxCost) {
		totalCost = e.maxCost
	}

	breakdown := models.CostBreakdown{
		LaborCost:         laborCost,
		MaterialsCost:     materialsCost,
		UrgencyMultiplier: multiplier,
		Subtotal:          subtotal,
		TotalCost:         totalCost,
	}
	e.applyEarnings(&breakdown)
	return breakdown
}

// DefaultBreakdown is the fallback quote when inputs are too sparse to
// price properly: a flat per-category cost split 70/30 labor/materials.
func (e *Engine) DefaultBreakdown(category string) models.CostBreakdown {
	e.logger.Warn().Str("category", category).Msg("falling back to default pricing")

	cost := decimal.NewFromInt(2500)
	switch category {
	case "plumbing":
		cost = decimal.NewFromInt(3000)
	case "appliances":
		cost = decimal.NewFromInt(3500)
	}

	breakdown := models.CostBreakdown{
		LaborCost:         cost.Mul(defaultLabor),
		MaterialsCost:     cost.Mul(defaultMats),
		UrgencyMultiplier: decimal.NewFromInt(1),
		Subtotal:          cost,
		TotalCost:         cost,
	}
	e.applyEarnings(&breakdown)
	return breakdown
}

func (e *Engine) applyEarnings(b *models.CostBreakdown) {
	b.GatewayFee = b.TotalCost.Mul(gatewayFeeRate)
	net := b.TotalCost.Sub(b.GatewayFee)
	b.PlatformCommission = net.Mul(e.commission)
	b.MasterEarnings = net.Sub(b.PlatformCommission)
}

func baseRate(category, complexity string) int64 {
	rates, ok := baseRates[category]
	if !ok {
		rates = baseRates["electrical"]
	}
	rate, ok := rates[complexity]
	if !ok {
		rate = rates[ComplexityMedium]
	}
	return rate
}

func (e *Engine) materialsCost(category string, materials []models.Material) decimal.Decimal {
	total := decimal.Zero
	catalog, ok := materialsCatalog[category]
	if !ok {
		return total
	}
	for _, m := range materials {
		name := strings.ToLower(m.Name)
		for _, item := range catalog {
			if strings.Contains(name, item.key) {
				qty := m.Quantity
				if qty <= 0 {
					qty = 1
				}
				total = total.Add(decimal.NewFromInt(item.price).Mul(decimal.NewFromInt(int64(qty))))
				break
			}
		}
	}
	return total
}

func urgencyMultiplier(description string) decimal.Decimal {
	lower := strings.ToLower(description)
	for _, rule := range urgencyRules {
		if strings.Contains(lower, rule.keyword) {
			return decimal.RequireFromString(rule.multiplier)
		}
	}
	return decimal.NewFromInt(1)
}

var simpleKeywords = []string{
	"розетка", "выключатель", "лампочка", "патрон",
	"outlet", "switch", "light bulb",
}

var complexKeywords = []string{
	"проводка", "щиток", "автомат", "ввод", "кабель",
	"wiring", "panel", "circuit", "main line",
}

// EstimateComplexity classifies a description into a complexity level.
// Simple keywords take precedence over complex ones.
func EstimateComplexity(description string) string {
	lower := strings.ToLower(description)
	for _, kw := range simpleKeywords {
		if strings.Contains(lower, kw) {
			return ComplexitySimple
		}
	}
	for _, kw := range complexKeywords {
		if strings.Contains(lower, kw) {
			return ComplexityComplex
		}
	}
	return ComplexityMedium
}

// EstimateDuration returns the expected hours for a complexity level,
// adjusted for categories that consistently run longer.
func EstimateDuration(complexity, category string) float64 {
	var hours float64
	switch complexity {
	case ComplexitySimple:
		hours = 1.0
	case ComplexityMedium:
		hours = 2.5
	case ComplexityComplex:
		hours = 5.0
	default:
		hours = 2.0
	}
	switch category {
	case "appliances":
		hours *= 1.2
	case "renovation":
		hours *= 1.5
	}
	return hours
}
