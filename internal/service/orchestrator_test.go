package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masterok/backend/internal/conversation"
	"github.com/masterok/backend/internal/db"
	"github.com/masterok/backend/internal/knowledge"
	"github.com/masterok/backend/internal/models"
	"github.com/masterok/backend/internal/pricing"
	"github.com/masterok/backend/internal/vision"
)

type captureSink struct {
	published []models.Job
}

func (s *captureSink) Publish(_ context.Context, job models.Job) error {
	s.published = append(s.published, job)
	return nil
}

type stubTranscriber struct {
	text string
}

func (s stubTranscriber) Transcribe(context.Context, string) (string, error) {
	return s.text, nil
}

func newTestOrchestrator(t *testing.T, store *db.MemoryStore, sink JobSink) *Orchestrator {
	t.Helper()
	return newTestOrchestratorWithTranscriber(t, store, sink, vision.NullTranscriber{})
}

func newTestOrchestratorWithTranscriber(t *testing.T, store *db.MemoryStore, sink JobSink, transcriber vision.Transcriber) *Orchestrator {
	t.Helper()
	logger := zerolog.Nop()
	matcher := newTestMatcher(t, store)
	return NewOrchestrator(
		conversation.NewEngine(logger),
		knowledge.NewBase(),
		pricing.NewEngine(500, 50000, 0.25, logger),
		matcher,
		vision.NewRuleAnalyzer(),
		transcriber,
		store,
		sink,
		logger,
	)
}

func TestPipelineFromMessageToJob(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.CreateMaster(ctx, electrician("m1", 4.5)))

	sink := &captureSink{}
	o := newTestOrchestrator(t, store, sink)

	res, err := o.ProcessMessage(ctx, "client-1", "Не работает розетка на кухне, нет напряжения", "telegram", nil, Metadata{})
	require.NoError(t, err)
	assert.Equal(t, conversation.IntentDescribeProblem, res.Intent)
	assert.Equal(t, "electrical", res.Slots.ProblemCategory)
	assert.Nil(t, res.Quote)
	assert.False(t, res.IsComplete)

	res, err = o.ProcessMessage(ctx, "client-1", "ул. Ленина 10, кв. 5", "telegram", nil, Metadata{})
	require.NoError(t, err)
	require.NotNil(t, res.Quote)
	assert.Equal(t, ActionAwaitingConfirmation, res.NextAction)
	assert.Equal(t, "Розетка не работает", res.Quote.SolutionName)
	assert.True(t, res.Quote.Cost.TotalCost.GreaterThanOrEqual(decimal.NewFromInt(500)))
	assert.True(t, strings.Contains(res.Reply, "Подтверждаете заказ?"))
	assert.Equal(t, conversation.StageConfirming, o.ConversationStatus("client-1").Stage)

	res, err = o.ProcessMessage(ctx, "client-1", "Да, согласен", "telegram", nil, Metadata{
		ClientName:  "Анна",
		ClientPhone: "+79160000000",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Job)
	assert.Equal(t, ActionJobCreated, res.NextAction)
	assert.Equal(t, models.JobAssigned, res.Job.Status)
	assert.Equal(t, "m1", res.Job.MasterID)
	assert.Equal(t, models.AssignmentAssigned, res.Job.MasterAssignmentStatus)
	assert.Equal(t, "Анна", res.Job.ClientName)
	assert.Equal(t, "+79160000000", res.Job.ClientPhone)
	assert.NotEmpty(t, res.Job.ConversationHistory)
	require.NotNil(t, res.Job.Instructions)
	assert.Equal(t, "Розетка не работает", res.Job.Instructions.JobTitle)

	stored, err := store.GetJob(ctx, res.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobAssigned, stored.Status)

	require.Len(t, sink.published, 1)
	assert.Equal(t, res.Job.ID, sink.published[0].ID)

	assert.Nil(t, o.ConversationStatus("client-1"), "conversation must be cleared after job creation")
}

func TestPipelineWithoutMasters(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()
	sink := &captureSink{}
	o := newTestOrchestrator(t, store, sink)

	_, err := o.ProcessMessage(ctx, "c1", "Течет кран на кухне, вода капает постоянно", "telegram", nil, Metadata{})
	require.NoError(t, err)
	_, err = o.ProcessMessage(ctx, "c1", "ул. Мира 3", "telegram", nil, Metadata{})
	require.NoError(t, err)

	res, err := o.ProcessMessage(ctx, "c1", "да", "telegram", nil, Metadata{})
	require.NoError(t, err)
	require.NotNil(t, res.Job)
	assert.Equal(t, models.JobCreated, res.Job.Status)
	assert.Equal(t, models.AssignmentNoMasters, res.Job.MasterAssignmentStatus)
	assert.Empty(t, res.Job.MasterID)
	assert.Empty(t, sink.published, "unassigned jobs are not published")
}

func TestPipelineVisionFusion(t *testing.T) {
	store := db.NewMemoryStore()
	o := newTestOrchestrator(t, store, &captureSink{})

	res, err := o.ProcessMessage(context.Background(), "c1", "что-то случилось", "telegram",
		[]string{"http://example.com/photo.jpg"}, Metadata{})
	require.NoError(t, err)
	require.NotNil(t, res.VisionFindings)
	assert.Equal(t, 1, res.VisionFindings.TotalImages)
	assert.Equal(t, "electrical", res.Slots.ProblemCategory, "vision fills the empty category slot")
	assert.Equal(t, res.VisionFindings.Severity, res.Slots.Severity)
}

func TestPipelineCancelledContext(t *testing.T) {
	store := db.NewMemoryStore()
	o := newTestOrchestrator(t, store, &captureSink{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.ProcessMessage(ctx, "c1", "Не работает розетка", "telegram",
		[]string{"http://example.com/p.jpg"}, Metadata{})
	assert.ErrorIs(t, err, context.Canceled)

	jobs, _ := store.ListJobs(context.Background(), "")
	assert.Empty(t, jobs)
}

func TestActiveConversationCount(t *testing.T) {
	store := db.NewMemoryStore()
	o := newTestOrchestrator(t, store, &captureSink{})
	assert.Equal(t, 0, o.ActiveConversationCount())
	_, err := o.ProcessMessage(context.Background(), "c1", "не работает свет", "telegram", nil, Metadata{})
	require.NoError(t, err)
	assert.Equal(t, 1, o.ActiveConversationCount())
}

func TestQuoteUsesScheduledTime(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.CreateMaster(ctx, electrician("m1", 4.5)))
	o := newTestOrchestrator(t, store, &captureSink{})

	scheduled := mondayMorning.Add(3 * time.Hour)
	_, err := o.ProcessMessage(ctx, "c1", "Не работает розетка в спальне, нет напряжения", "telegram", nil, Metadata{})
	require.NoError(t, err)
	_, err = o.ProcessMessage(ctx, "c1", "ул. Ленина 10", "telegram", nil, Metadata{})
	require.NoError(t, err)
	res, err := o.ProcessMessage(ctx, "c1", "да, подходит", "telegram", nil, Metadata{ScheduledAt: &scheduled})
	require.NoError(t, err)
	require.NotNil(t, res.Job)
	require.NotNil(t, res.Job.ScheduledAt)
	assert.True(t, res.Job.ScheduledAt.Equal(scheduled))
	assert.Equal(t, models.JobAssigned, res.Job.Status)
}

func TestQuoteDefaultsWhenNoSolutionMatches(t *testing.T) {
	o := newTestOrchestrator(t, db.NewMemoryStore(), &captureSink{})

	quote := o.buildQuote(&conversation.Summary{Slots: conversation.Slots{
		ProblemCategory:    "plumbing",
		ProblemDescription: "xyzzy",
		Location:           "ул. Мира 3",
		Urgency:            conversation.UrgencyNormal,
	}})

	assert.Equal(t, "Диагностика и ремонт", quote.SolutionName)
	assert.True(t, quote.Cost.TotalCost.Equal(decimal.NewFromInt(3000)),
		"unmatched plumbing problem gets the flat default cost, got %s", quote.Cost.TotalCost)
	assert.True(t, quote.Cost.UrgencyMultiplier.Equal(decimal.NewFromInt(1)))
	assert.True(t, quote.Cost.GatewayFee.Add(quote.Cost.PlatformCommission).Add(quote.Cost.MasterEarnings).Equal(quote.Cost.TotalCost))
}

func TestPipelineTranscribesVoiceMessage(t *testing.T) {
	store := db.NewMemoryStore()
	o := newTestOrchestratorWithTranscriber(t, store, &captureSink{},
		stubTranscriber{text: "Не работает розетка на кухне"})

	res, err := o.ProcessMessage(context.Background(), "c1", "", "telegram",
		[]string{"https://cdn.example.com/voice.ogg"}, Metadata{})
	require.NoError(t, err)
	assert.Equal(t, conversation.IntentDescribeProblem, res.Intent)
	assert.Equal(t, "electrical", res.Slots.ProblemCategory)
	assert.Equal(t, "Не работает розетка на кухне", res.Slots.ProblemDescription)
	assert.Nil(t, res.VisionFindings, "voice attachments are not sent to vision")
	assert.Contains(t, res.Slots.MediaFiles, "https://cdn.example.com/voice.ogg")
}
