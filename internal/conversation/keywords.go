package conversation

import "regexp"

// Intent keyword families. Scan order is fixed: ties between equal scores go
// to the family listed first.
var intentKeywords = []struct {
	intent   string
	keywords []string
}{
	{IntentRequestService, []string{
		"нужен", "требуется", "вызов", "приезжайте", "помогите",
		"сделайте", "отремонтируйте", "почините", "установите",
	}},
	{IntentDescribeProblem, []string{
		"не работает", "сломал", "перестал", "искрит", "течет",
		"протечка", "выбивает", "горит", "запах", "треснул",
		"засор", "забился", "отвалил", "оторвался",
	}},
	{IntentUrgentRequest, []string{
		"срочно", "прямо сейчас", "немедленно", "горит", "течет",
		"искрит", "опасно", "сегодня", "быстрее", "аварийно",
	}},
	{IntentConfirmPrice, []string{
		"да", "согласен", "подходит", "хорошо", "договорились",
		"записывайте", "оформляйте", "принято", "ок", "окей",
	}},
	{IntentRejectPrice, []string{
		"дорого", "нет", "не подходит", "не устраивает", "отказ",
		"много", "откажусь", "передумал",
	}},
	{IntentGreeting, []string{
		"здравствуйте", "привет", "добрый день", "добрый вечер",
		"доброе утро", "слушаю",
	}},
	{IntentGratitude, []string{
		"спасибо", "благодарю", "отлично", "замечательно", "супер",
	}},
}

// Problem categories, scanned in fixed order for deterministic ties.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"electrical", []string{
		"розетка", "выключатель", "свет", "электри", "провод",
		"автомат", "щиток", "лампочка", "светильник", "люстра",
		"короткое замыкание", "проводка",
	}},
	{"plumbing", []string{
		"вода", "кран", "труба", "сантехник", "унитаз", "ванна",
		"раковина", "течь", "протечка", "засор", "канализация",
		"смеситель", "душ",
	}},
	{"appliances", []string{
		"стиральная машина", "холодильник", "посудомоечная",
		"плита", "духовка", "микроволновка", "бойлер", "водонагреватель",
	}},
	{"renovation", []string{
		"покраска", "обои", "пол", "потолок", "плитка", "ламинат",
		"шпаклевка", "штукатурка", "отделка",
	}},
}

// Urgency keyword families in priority order: critical beats urgent beats
// flexible; no match means normal.
var urgencyKeywords = []struct {
	level    string
	keywords []string
}{
	{UrgencyCritical, []string{
		"искрит", "горит", "дым", "запах горелого", "удар током",
		"вода течет", "затопление", "прорвало", "фонтан",
	}},
	{UrgencyUrgent, []string{
		"срочно", "сегодня", "как можно скорее", "прямо сейчас",
		"немедленно", "быстро",
	}},
	{UrgencyFlexible, []string{
		"когда удобно", "не срочно", "можно подождать", "в течение недели",
	}},
}

var addressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ул(?:ица)?\.?\s+[\p{L}\-]+\s+\d+[^\s,]*(?:,?\s*кв\.?\s*\d+)?`),
	regexp.MustCompile(`(?i)проспект\s+[\p{L}\-]+\s+\d+`),
	regexp.MustCompile(`(?i)пер(?:еулок)?\.?\s+[\p{L}\-]+\s+\d+`),
}

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+7[\s\-]?\d{3}[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}`),
	regexp.MustCompile(`8[\s\-]?\d{3}[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}`),
	regexp.MustCompile(`\d{3}[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}`),
}

var phoneSeparators = regexp.MustCompile(`[\s\-]`)
