package conversation

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/masterok/backend/internal/models"
)

// Next actions returned by ProcessMessage, in decision order.
const (
	ActionCreateJob        = "create_job"
	ActionCalculatePrice   = "calculate_price"
	ActionEscalateToUrgent = "escalate_to_urgent"
	ActionRequestLocation  = "request_location"
	ActionContinue         = "continue_conversation"
)

// Result is the outcome of processing one client message.
type Result struct {
	Reply      string `json:"reply"`
	Intent     string `json:"intent"`
	Slots      Slots  `json:"extracted_info"`
	NextAction string `json:"next_action"`
	IsComplete bool   `json:"conversation_complete"`
	Stage      string `json:"conversation_stage"`
}

// Engine keeps per-client dialogue state and turns raw message text into
// intent, slots and a next action. Each Context carries its own mutex, so
// Summary, ActiveCount and Sweep are safe against concurrent processing.
// Callers that run a multi-step pipeline around ProcessMessage must still
// hold the client lock from Acquire for the whole sequence: the engine
// guards individual calls, not cross-call atomicity.
type Engine struct {
	mu            sync.RWMutex
	conversations map[string]*Context
	locks         map[string]*sync.Mutex
	logger        zerolog.Logger
	now           func() time.Time
}

func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{
		conversations: make(map[string]*Context),
		locks:         make(map[string]*sync.Mutex),
		logger:        logger,
		now:           time.Now,
	}
}

// Acquire locks the given client id and returns the release func. Message
// effects for one client apply in acquisition order.
func (e *Engine) Acquire(clientID string) func() {
	e.mu.Lock()
	l, ok := e.locks[clientID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[clientID] = l
	}
	e.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// ProcessMessage appends the message to the client's context, classifies the
// intent, extracts slots and produces a templated reply. It never fails:
// unrecognized input degrades to a clarifying reply with intent "unknown".
func (e *Engine) ProcessMessage(clientID, text, channel string, mediaRefs []string) Result {
	now := e.now()

	e.mu.Lock()
	ctx, ok := e.conversations[clientID]
	if !ok {
		ctx = newContext(clientID, channel, now)
		e.conversations[clientID] = ctx
	}
	e.mu.Unlock()

	ctx.mu.Lock()
	defer ctx.mu.Unlock()

	ctx.addMessage("client", text, mediaRefs, now)

	intent := RecognizeIntent(text)
	ctx.CurrentIntent = intent

	if ctx.Slots.ProblemCategory == "" {
		if category := ExtractCategory(text); category != "" {
			ctx.Slots.ProblemCategory = category
		}
	}

	// Urgency is re-evaluated on every message; the latest signal wins.
	ctx.Slots.Urgency = ExtractUrgency(text)

	if loc := ExtractLocation(text); loc != "" {
		ctx.Slots.Location = loc
	}
	if phone := ExtractPhone(text); phone != "" {
		ctx.Slots.ClientPhone = phone
	}

	if intent == IntentDescribeProblem || intent == IntentRequestService {
		if ctx.Slots.ProblemDescription == "" {
			ctx.Slots.ProblemDescription = text
		} else {
			ctx.Slots.ProblemDescription += " " + text
		}
	}

	ctx.Slots.MediaFiles = append(ctx.Slots.MediaFiles, mediaRefs...)

	if ctx.Stage == StageInitial && (ctx.Slots.ProblemCategory != "" || ctx.Slots.ProblemDescription != "") {
		ctx.advanceStage(StageGathering)
	}

	reply := generateReply(intent, ctx)
	if intent == IntentConfirmPrice || intent == IntentRejectPrice {
		ctx.advanceStage(StageCompleted)
	}
	ctx.addMessage("ai", reply, nil, now)

	res := Result{
		Reply:      reply,
		Intent:     intent,
		Slots:      ctx.Slots,
		NextAction: nextAction(ctx),
		IsComplete: ctx.InfoComplete(),
		Stage:      ctx.Stage,
	}
	e.logger.Debug().
		Str("client_id", clientID).
		Str("intent", intent).
		Str("next_action", res.NextAction).
		Msg("message processed")
	return res
}

// RecognizeIntent scores each intent family by keyword occurrences in the
// lower-cased text; the highest non-zero score wins, ties going to the family
// scanned first. No match yields IntentUnknown.
func RecognizeIntent(text string) string {
	lower := strings.ToLower(text)
	best := IntentUnknown
	bestScore := 0
	for _, family := range intentKeywords {
		score := 0
		for _, kw := range family.keywords {
			score += strings.Count(lower, kw)
		}
		if score > bestScore {
			best = family.intent
			bestScore = score
		}
	}
	return best
}

// ExtractCategory returns the best-scoring problem category, or "".
func ExtractCategory(text string) string {
	lower := strings.ToLower(text)
	best := ""
	bestScore := 0
	for _, entry := range categoryKeywords {
		score := 0
		for _, kw := range entry.keywords {
			score += strings.Count(lower, kw)
		}
		if score > bestScore {
			best = entry.category
			bestScore = score
		}
	}
	return best
}

// ExtractUrgency checks keyword families in priority order: critical first,
// then urgent, then flexible. Default is normal.
func ExtractUrgency(text string) string {
	lower := strings.ToLower(text)
	for _, family := range urgencyKeywords {
		for _, kw := range family.keywords {
			if strings.Contains(lower, kw) {
				return family.level
			}
		}
	}
	return UrgencyNormal
}

// ExtractLocation matches address-like patterns; the first match wins.
func ExtractLocation(text string) string {
	for _, p := range addressPatterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// ExtractPhone matches common phone formats and normalizes to +7XXXXXXXXXX.
func ExtractPhone(text string) string {
	for _, p := range phonePatterns {
		m := p.FindString(text)
		if m == "" {
			continue
		}
		phone := phoneSeparators.ReplaceAllString(m, "")
		if strings.HasPrefix(phone, "8") {
			phone = "+7" + phone[1:]
		} else if !strings.HasPrefix(phone, "+") {
			phone = "+7" + phone
		}
		return phone
	}
	return ""
}

func nextAction(ctx *Context) string {
	if ctx.InfoComplete() {
		if ctx.Stage == StageCompleted {
			return ActionCreateJob
		}
		return ActionCalculatePrice
	}
	if ctx.Slots.Urgency == UrgencyCritical {
		return ActionEscalateToUrgent
	}
	if ctx.Slots.ProblemCategory != "" && ctx.Slots.ProblemDescription != "" && ctx.Slots.Location == "" {
		return ActionRequestLocation
	}
	return ActionContinue
}

// Summary returns a snapshot of the client's conversation, or nil if absent.
func (e *Engine) Summary(clientID string) *Summary {
	e.mu.RLock()
	ctx, ok := e.conversations[clientID]
	e.mu.RUnlock()
	if !ok {
		return nil
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	messages := make([]models.Message, len(ctx.Messages))
	copy(messages, ctx.Messages)
	return &Summary{
		ClientID:      ctx.ClientID,
		Channel:       ctx.Channel,
		Slots:         ctx.Slots,
		Messages:      messages,
		TotalMessages: len(messages),
		Stage:         ctx.Stage,
		IsComplete:    ctx.InfoComplete(),
	}
}

// MarkConfirming advances the conversation to the confirming stage once a
// quote has been presented.
func (e *Engine) MarkConfirming(clientID string) {
	e.mu.RLock()
	ctx, ok := e.conversations[clientID]
	e.mu.RUnlock()
	if ok {
		ctx.mu.Lock()
		ctx.advanceStage(StageConfirming)
		ctx.mu.Unlock()
	}
}

// SetCategory overwrites the category slot. Used by vision fusion, which is
// the only collaborator allowed to fill it after conversation extraction.
func (e *Engine) SetCategory(clientID, category string) {
	e.mu.RLock()
	ctx, ok := e.conversations[clientID]
	e.mu.RUnlock()
	if ok {
		ctx.mu.Lock()
		if ctx.Slots.ProblemCategory == "" {
			ctx.Slots.ProblemCategory = category
		}
		ctx.mu.Unlock()
	}
}

// AttachFindings records auxiliary vision-derived slot data. It never touches
// the description or location slots.
func (e *Engine) AttachFindings(clientID, severity string, hazards []string) {
	e.mu.RLock()
	ctx, ok := e.conversations[clientID]
	e.mu.RUnlock()
	if ok {
		ctx.mu.Lock()
		ctx.Slots.Severity = severity
		ctx.Slots.SafetyHazards = hazards
		ctx.mu.Unlock()
	}
}

// Clear removes the client's context. It is idempotent.
func (e *Engine) Clear(clientID string) {
	e.mu.Lock()
	delete(e.conversations, clientID)
	e.mu.Unlock()
}

// ActiveCount counts conversations not yet in the completed stage.
func (e *Engine) ActiveCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n := 0
	for _, ctx := range e.conversations {
		ctx.mu.Lock()
		stage := ctx.Stage
		ctx.mu.Unlock()
		if stage != StageCompleted {
			n++
		}
	}
	return n
}

// Sweep evicts contexts idle longer than ttl and returns how many were
// removed. A non-positive ttl disables eviction.
func (e *Engine) Sweep(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := e.now().Add(-ttl)
	e.mu.Lock()
	defer e.mu.Unlock()
	removed := 0
	for id, ctx := range e.conversations {
		ctx.mu.Lock()
		updatedAt := ctx.UpdatedAt
		ctx.mu.Unlock()
		if updatedAt.Before(cutoff) {
			delete(e.conversations, id)
			delete(e.locks, id)
			removed++
		}
	}
	if removed > 0 {
		e.logger.Info().Int("evicted", removed).Msg("idle conversations evicted")
	}
	return removed
}
