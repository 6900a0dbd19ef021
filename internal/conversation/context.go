package conversation

import (
	"sync"
	"time"

	"github.com/masterok/backend/internal/models"
)

// Intents recognized from client messages.
const (
	IntentRequestService  = "request_service"
	IntentDescribeProblem = "describe_problem"
	IntentProvideLocation = "provide_location"
	IntentConfirmPrice    = "confirm_price"
	IntentRejectPrice     = "reject_price"
	IntentRequestTiming   = "request_timing"
	IntentConfirmTiming   = "confirm_timing"
	IntentUrgentRequest   = "urgent_request"
	IntentQuestion        = "question"
	IntentGreeting        = "greeting"
	IntentGratitude       = "gratitude"
	IntentUnknown         = "unknown"
)

// Urgency levels, most severe first.
const (
	UrgencyCritical = "critical"
	UrgencyUrgent   = "urgent"
	UrgencyNormal   = "normal"
	UrgencyFlexible = "flexible"
)

// Conversation stages. Transitions are monotonic: a context never moves back
// to an earlier stage.
const (
	StageInitial    = "initial"
	StageGathering  = "gathering_info"
	StageConfirming = "confirming"
	StageCompleted  = "completed"
)

var stageRank = map[string]int{
	StageInitial:    0,
	StageGathering:  1,
	StageConfirming: 2,
	StageCompleted:  3,
}

// Slots holds the structured information extracted from a conversation.
// Fields fill incrementally and are never cleared except on context removal.
type Slots struct {
	ProblemCategory    string   `json:"problem_category,omitempty"`
	ProblemDescription string   `json:"problem_description,omitempty"`
	Location           string   `json:"location,omitempty"`
	Urgency            string   `json:"urgency"`
	PreferredTiming    string   `json:"preferred_timing,omitempty"`
	MediaFiles         []string `json:"media_files,omitempty"`
	ClientName         string   `json:"client_name,omitempty"`
	ClientPhone        string   `json:"client_phone,omitempty"`
	Severity           string   `json:"severity,omitempty"`
	SafetyHazards      []string `json:"safety_hazards,omitempty"`
}

// Context is the per-client dialogue state. It is owned by the Engine; mu
// guards every field so status reads stay safe against a message being
// processed for the same client at that moment.
type Context struct {
	mu sync.Mutex

	ClientID      string           `json:"client_id"`
	Channel       string           `json:"channel"`
	Messages      []models.Message `json:"messages"`
	Slots         Slots            `json:"extracted_info"`
	CurrentIntent string           `json:"current_intent"`
	Stage         string           `json:"conversation_stage"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func newContext(clientID, channel string, now time.Time) *Context {
	return &Context{
		ClientID:  clientID,
		Channel:   channel,
		Slots:     Slots{Urgency: UrgencyNormal},
		Stage:     StageInitial,
		UpdatedAt: now,
	}
}

func (c *Context) addMessage(role, content string, media []string, now time.Time) {
	c.Messages = append(c.Messages, models.Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
		MediaURLs: media,
	})
	c.UpdatedAt = now
}

// advanceStage moves the stage forward only; regressions are ignored.
func (c *Context) advanceStage(stage string) {
	if stageRank[stage] > stageRank[c.Stage] {
		c.Stage = stage
	}
}

// InfoComplete reports whether category, description and location are all set.
func (c *Context) InfoComplete() bool {
	return c.Slots.ProblemCategory != "" &&
		c.Slots.ProblemDescription != "" &&
		c.Slots.Location != ""
}

// Summary is the read-only snapshot surfaced to callers.
type Summary struct {
	ClientID      string           `json:"client_id"`
	Channel       string           `json:"channel"`
	Slots         Slots            `json:"extracted_info"`
	Messages      []models.Message `json:"message_history"`
	TotalMessages int              `json:"total_messages"`
	Stage         string           `json:"conversation_stage"`
	IsComplete    bool             `json:"is_complete"`
}
