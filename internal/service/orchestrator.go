package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/masterok/backend/internal/conversation"
	"github.com/masterok/backend/internal/db"
	"github.com/masterok/backend/internal/knowledge"
	"github.com/masterok/backend/internal/models"
	"github.com/masterok/backend/internal/pricing"
	"github.com/masterok/backend/internal/vision"
)

// Next actions added on top of the conversation engine's own set.
const (
	ActionAwaitingConfirmation = "awaiting_confirmation"
	ActionJobCreated           = "job_created"
)

// JobSink receives jobs the moment a master is assigned, so the terminal
// side can surface them. Publishing is best-effort.
type JobSink interface {
	Publish(ctx context.Context, job models.Job) error
}

// Metadata is channel-provided client data accompanying a message.
type Metadata struct {
	ClientName  string
	ClientPhone string
	Location    *models.GeoPoint
	ScheduledAt *time.Time
}

// MessageResult is the full outcome of one inbound client message.
type MessageResult struct {
	Reply          string             `json:"ai_response"`
	Intent         string             `json:"intent"`
	Slots          conversation.Slots `json:"extracted_info"`
	VisionFindings *vision.Summary    `json:"vision_findings,omitempty"`
	Quote          *models.Quote      `json:"quote,omitempty"`
	Job            *models.Job        `json:"job,omitempty"`
	NextAction     string             `json:"next_action"`
	IsComplete     bool               `json:"conversation_complete"`
	Stage          string             `json:"conversation_stage"`
}

// Orchestrator sequences the pipeline for each inbound message: dialogue,
// vision fusion, quoting, and finally job creation with auto-assignment.
type Orchestrator struct {
	engine      *conversation.Engine
	knowledge   *knowledge.Base
	pricing     *pricing.Engine
	matcher     *Matcher
	analyzer    vision.Analyzer
	transcriber vision.Transcriber
	jobs        db.JobStore
	sink        JobSink
	logger      zerolog.Logger
	now         func() time.Time
	newID       func() string
}

func NewOrchestrator(
	engine *conversation.Engine,
	kb *knowledge.Base,
	pricer *pricing.Engine,
	matcher *Matcher,
	analyzer vision.Analyzer,
	transcriber vision.Transcriber,
	jobs db.JobStore,
	sink JobSink,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		engine:      engine,
		knowledge:   kb,
		pricing:     pricer,
		matcher:     matcher,
		analyzer:    analyzer,
		transcriber: transcriber,
		jobs:        jobs,
		sink:        sink,
		logger:      logger.With().Str("component", "orchestrator").Logger(),
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
}

// ProcessMessage runs the full pipeline for one message. A voice-only message
// is transcribed first and then treated as text. The per-client lock is held
// for the whole sequence so effects for one client apply in receipt order.
func (o *Orchestrator) ProcessMessage(ctx context.Context, clientID, text, channel string, mediaRefs []string, meta Metadata) (MessageResult, error) {
	release := o.engine.Acquire(clientID)
	defer release()

	audioRefs, imageRefs := splitMediaRefs(mediaRefs)
	if text == "" && len(audioRefs) > 0 && o.transcriber != nil {
		transcribed, err := o.transcriber.Transcribe(ctx, audioRefs[0])
		if err != nil {
			o.logger.Warn().Err(err).Str("media", audioRefs[0]).Msg("voice transcription failed")
		} else {
			text = transcribed
		}
	}

	conv := o.engine.ProcessMessage(clientID, text, channel, mediaRefs)

	result := MessageResult{
		Reply:      conv.Reply,
		Intent:     conv.Intent,
		Slots:      conv.Slots,
		NextAction: conv.NextAction,
		IsComplete: conv.IsComplete,
		Stage:      conv.Stage,
	}

	if len(imageRefs) > 0 && o.analyzer != nil {
		findings := o.analyzeMedia(ctx, clientID, imageRefs, conv.Slots)
		result.VisionFindings = findings
		if summary := o.engine.Summary(clientID); summary != nil {
			result.Slots = summary.Slots
			result.IsComplete = summary.IsComplete
		}
	}
	if err := ctx.Err(); err != nil {
		return MessageResult{}, err
	}

	summary := o.engine.Summary(clientID)
	if summary == nil {
		return result, nil
	}

	if result.IsComplete && result.NextAction == conversation.ActionCalculatePrice {
		quote := o.buildQuote(summary)
		result.Quote = &quote
		result.Reply = formatQuoteMessage(quote)
		result.NextAction = ActionAwaitingConfirmation
		o.engine.MarkConfirming(clientID)
	}

	if conv.Intent == conversation.IntentConfirmPrice {
		job := o.createAndAssignJob(ctx, clientID, summary, meta)
		result.Job = &job
		result.NextAction = ActionJobCreated
		o.engine.Clear(clientID)
	}

	return result, nil
}

var audioExtensions = map[string]bool{
	".ogg": true,
	".oga": true,
	".mp3": true,
	".wav": true,
	".m4a": true,
}

// splitMediaRefs separates voice attachments from everything vision can look
// at, by file extension.
func splitMediaRefs(refs []string) (audio, images []string) {
	for _, ref := range refs {
		if audioExtensions[strings.ToLower(path.Ext(ref))] {
			audio = append(audio, ref)
		} else {
			images = append(images, ref)
		}
	}
	return audio, images
}

// analyzeMedia runs vision over every image attachment and fuses the aggregate
// into the conversation slots. Category only fills an empty slot; severity
// and hazards always attach.
func (o *Orchestrator) analyzeMedia(ctx context.Context, clientID string, mediaRefs []string, slots conversation.Slots) *vision.Summary {
	hint := vision.Hint{
		Category:    slots.ProblemCategory,
		Description: slots.ProblemDescription,
	}
	analyses := make([]vision.Analysis, 0, len(mediaRefs))
	for _, ref := range mediaRefs {
		analysis, err := o.analyzer.AnalyzeImage(ctx, ref, hint)
		if err != nil {
			o.logger.Warn().Err(err).Str("media", ref).Msg("media analysis failed")
			continue
		}
		analyses = append(analyses, analysis)
	}
	if len(analyses) == 0 {
		return nil
	}
	summary := vision.Aggregate(analyses)
	o.engine.SetCategory(clientID, summary.PrimaryCategory)
	o.engine.AttachFindings(clientID, summary.Severity, summary.SafetyHazards)
	return &summary
}

// buildQuote looks up a knowledge-base solution and prices it. When nothing
// matches the quote becomes a generic diagnostics visit at the flat default
// rate for the category.
func (o *Orchestrator) buildQuote(summary *conversation.Summary) models.Quote {
	slots := summary.Slots
	solution, found := o.knowledge.FindSolution(slots.ProblemDescription, slots.ProblemCategory)

	complexity, hours, materials, safetyNotes, name := quoteInputs(solution, found)

	category := slots.ProblemCategory
	if category == "" {
		category = "electrical"
	}
	cost := o.priceJob(category, slots.ProblemDescription, complexity, hours, materials, found)

	endOfDay := time.Date(o.now().Year(), o.now().Month(), o.now().Day(), 23, 59, 59, 0, time.UTC)
	return models.Quote{
		ID:             o.newID(),
		Category:       slots.ProblemCategory,
		Description:    slots.ProblemDescription,
		SolutionName:   name,
		EstimatedHours: hours,
		Complexity:     complexity,
		Cost:           cost,
		Urgency:        slots.Urgency,
		SafetyNotes:    safetyNotes,
		ValidUntil:     endOfDay,
	}
}

// priceJob prices a matched solution through the rate tables. Without a
// solution there is nothing to rate, so the per-category default applies.
func (o *Orchestrator) priceJob(category, description, complexity string, hours float64, materials []models.Material, solved bool) models.CostBreakdown {
	if !solved {
		return o.pricing.DefaultBreakdown(category)
	}
	return o.pricing.Calculate(category, description, complexity, hours, materials)
}

// quoteInputs derives pricing inputs from a solution lookup. Skill level maps
// to complexity: basic is simple, advanced and expert are complex.
func quoteInputs(solution knowledge.Solution, found bool) (complexity string, hours float64, materials []models.Material, safetyNotes []string, name string) {
	if !found {
		return pricing.ComplexityMedium, 1.5, nil, nil, "Диагностика и ремонт"
	}
	complexity = pricing.ComplexityMedium
	switch solution.SkillLevel {
	case knowledge.SkillBasic:
		complexity = pricing.ComplexitySimple
	case knowledge.SkillAdvanced, knowledge.SkillExpert:
		complexity = pricing.ComplexityComplex
	}
	notes := solution.SafetyPrecautions
	if len(notes) > 3 {
		notes = notes[:3]
	}
	return complexity, solution.EstimatedHours, solution.RequiredMaterials, notes, solution.Name
}

func formatQuoteMessage(quote models.Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Подобрал решение для вашей проблемы:

📋 Работа: %s
⏱ Время выполнения: %v ч
💰 Стоимость: %s руб.

Разбивка стоимости:
• Работа мастера: %s руб.
• Материалы: %s руб.
`,
		quote.SolutionName,
		quote.EstimatedHours,
		quote.Cost.TotalCost.Round(0),
		quote.Cost.LaborCost.Round(0),
		quote.Cost.MaterialsCost.Round(0))

	switch quote.Urgency {
	case conversation.UrgencyUrgent:
		b.WriteString("\n⚡ Срочный выезд - мастер прибудет в течение 2-4 часов")
	case conversation.UrgencyCritical:
		b.WriteString("\n🚨 Критическая ситуация - организуем экстренный выезд!")
	}

	if len(quote.SafetyNotes) > 0 {
		b.WriteString("\n\n⚠️ Важно:\n")
		for _, note := range quote.SafetyNotes {
			fmt.Fprintf(&b, "• %s\n", note)
		}
	}

	b.WriteString("\nПодтверждаете заказ?")
	return b.String()
}

// createAndAssignJob builds the job record, tries auto-assignment and
// persists the outcome. A failed match is a valid outcome recorded on the
// job, never an error.
func (o *Orchestrator) createAndAssignJob(ctx context.Context, clientID string, summary *conversation.Summary, meta Metadata) models.Job {
	slots := summary.Slots
	now := o.now().UTC()

	solution, found := o.knowledge.FindSolution(slots.ProblemDescription, slots.ProblemCategory)
	complexity, hours, materials, _, _ := quoteInputs(solution, found)

	category := slots.ProblemCategory
	if category == "" {
		category = "electrical"
	}
	cost := o.priceJob(category, slots.ProblemDescription, complexity, hours, materials, found)

	var instructions *models.WorkInstructions
	if found {
		instr := o.knowledge.GenerateInstructions(solution, knowledge.ClientSpecifics{
			Notes:   slots.ProblemDescription,
			Urgency: slots.Urgency,
		})
		instructions = &instr
	}

	clientPhone := slots.ClientPhone
	if clientPhone == "" {
		clientPhone = meta.ClientPhone
	}

	job := models.Job{
		ID:                  o.newID(),
		ClientID:            clientID,
		ClientName:          meta.ClientName,
		ClientPhone:         clientPhone,
		Category:            slots.ProblemCategory,
		Description:         slots.ProblemDescription,
		Location:            slots.Location,
		ClientLocation:      meta.Location,
		ScheduledAt:         meta.ScheduledAt,
		MediaFiles:          slots.MediaFiles,
		Urgency:             slots.Urgency,
		ClientCost:          cost.TotalCost,
		MasterEarnings:      cost.MasterEarnings,
		PlatformCommission:  cost.PlatformCommission,
		EstimatedHours:      hours,
		Complexity:          complexity,
		Instructions:        instructions,
		RequiredMaterials:   materials,
		ConversationHistory: summary.Messages,
		Channel:             summary.Channel,
		Status:              models.JobCreated,
		StatusHistory: []models.StatusChange{
			{Status: models.JobCreated, Timestamp: now},
		},
		CreatedAt: now,
	}

	if master, ok := o.matcher.FindBestMaster(ctx, job); ok {
		job.MasterID = master.ID
		job.MasterAssignmentStatus = models.AssignmentAssigned
		if err := job.Transition(models.JobAssigned, "auto-assigned", now); err != nil {
			o.logger.Error().Err(err).Str("job_id", job.ID).Msg("assignment transition rejected")
		}
	} else {
		job.MasterAssignmentStatus = models.AssignmentNoMasters
	}

	if o.jobs != nil {
		if err := o.jobs.CreateJob(ctx, job); err != nil {
			o.logger.Error().Err(err).Str("job_id", job.ID).Msg("persisting job failed")
		}
	}
	if o.sink != nil && job.MasterAssignmentStatus == models.AssignmentAssigned {
		if err := o.sink.Publish(ctx, job); err != nil {
			o.logger.Warn().Err(err).Str("job_id", job.ID).Msg("publishing job failed")
		}
	}

	o.logger.Info().
		Str("job_id", job.ID).
		Str("client_id", clientID).
		Str("assignment", job.MasterAssignmentStatus).
		Msg("job created")
	return job
}

// ConversationStatus returns the conversation summary for a client, or nil.
func (o *Orchestrator) ConversationStatus(clientID string) *conversation.Summary {
	return o.engine.Summary(clientID)
}

// ActiveConversationCount counts conversations not yet completed.
func (o *Orchestrator) ActiveConversationCount() int {
	return o.engine.ActiveCount()
}
