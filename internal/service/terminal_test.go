package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masterok/backend/internal/db"
	"github.com/masterok/backend/internal/models"
)

func newTestTerminal(t *testing.T, store *db.MemoryStore) *Terminal {
	t.Helper()
	return NewTerminal(store, newTestMatcher(t, store), zerolog.Nop())
}

func seedAssignedJob(t *testing.T, store *db.MemoryStore, id, masterID string) models.Job {
	t.Helper()
	job := models.Job{
		ID:             id,
		ClientID:       "client-1",
		Category:       "electrical",
		Status:         models.JobAssigned,
		MasterID:       masterID,
		ClientCost:     decimal.NewFromInt(3000),
		MasterEarnings: decimal.NewFromInt(2205),
		CreatedAt:      mondayMorning,
	}
	require.NoError(t, store.CreateJob(context.Background(), job))
	return job
}

func TestRegisterMasterResetsProfile(t *testing.T) {
	store := db.NewMemoryStore()
	term := newTestTerminal(t, store)
	ctx := context.Background()

	m, err := term.RegisterMaster(ctx, models.Master{
		FullName:        "Иван Петров",
		Phone:           "+79160000001",
		City:            "Москва",
		Specializations: []string{"electrical"},
		Rating:          5.0, // must not survive registration
		Status:          models.MasterActive,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, models.MasterPending, m.Status)
	assert.Zero(t, m.Rating)
	assert.Empty(t, m.Schedule)
	assert.Nil(t, m.TerminalActivated)

	_, err = term.RegisterMaster(ctx, models.Master{FullName: "Другой", Phone: "+79160000001"})
	assert.ErrorIs(t, err, ErrPhoneRegistered)
}

func TestMasterActivationFlow(t *testing.T) {
	store := db.NewMemoryStore()
	term := newTestTerminal(t, store)
	ctx := context.Background()

	m, err := term.RegisterMaster(ctx, models.Master{FullName: "Иван", Phone: "+79160000002"})
	require.NoError(t, err)

	m, err = term.UpdateSchedule(ctx, m.ID, workingWeek(8, 20))
	require.NoError(t, err)
	assert.Equal(t, models.MasterPending, m.Status, "schedule alone does not activate")

	m, err = term.ActivateTerminal(ctx, m.ID, "mobile")
	require.NoError(t, err)
	assert.Equal(t, models.MasterActive, m.Status)
	assert.Equal(t, "mobile", m.TerminalType)
	require.NotNil(t, m.TerminalActivated)
}

func TestActivationWaitsForSchedule(t *testing.T) {
	store := db.NewMemoryStore()
	term := newTestTerminal(t, store)
	ctx := context.Background()

	m, err := term.RegisterMaster(ctx, models.Master{FullName: "Иван", Phone: "+79160000003"})
	require.NoError(t, err)

	m, err = term.ActivateTerminal(ctx, m.ID, "physical")
	require.NoError(t, err)
	assert.Equal(t, models.MasterPending, m.Status, "no available days yet")

	m, err = term.ConfirmAvailability(ctx, m.ID, true, 9, 18)
	require.NoError(t, err)
	assert.Equal(t, models.MasterActive, m.Status)
}

func TestAcceptJob(t *testing.T) {
	store := db.NewMemoryStore()
	term := newTestTerminal(t, store)
	ctx := context.Background()

	require.NoError(t, store.CreateMaster(ctx, electrician("m1", 4.0)))
	require.NoError(t, store.CreateMaster(ctx, electrician("m2", 4.0)))
	seedAssignedJob(t, store, "j1", "m1")

	_, err := term.AcceptJob(ctx, "m2", "j1")
	assert.ErrorIs(t, err, ErrNotOwner)

	job, err := term.AcceptJob(ctx, "m1", "j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobAccepted, job.Status)
	require.NotNil(t, job.AcceptedAt)

	_, err = term.AcceptJob(ctx, "m1", "missing")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestRejectJobClearsAssignment(t *testing.T) {
	store := db.NewMemoryStore()
	term := newTestTerminal(t, store)
	ctx := context.Background()

	require.NoError(t, store.CreateMaster(ctx, electrician("m1", 4.0)))
	seedAssignedJob(t, store, "j1", "m1")

	job, err := term.RejectJob(ctx, "m1", "j1", "слишком далеко")
	require.NoError(t, err)
	assert.Equal(t, models.JobCreated, job.Status)
	assert.Empty(t, job.MasterID)
	assert.Empty(t, job.MasterAssignmentStatus)
	assert.Equal(t, "слишком далеко", job.RejectionReason)
	require.NotEmpty(t, job.StatusHistory)
	assert.Equal(t, "Master rejected: слишком далеко", job.StatusHistory[len(job.StatusHistory)-1].Note)
}

func TestUpdateJobStatusProgression(t *testing.T) {
	store := db.NewMemoryStore()
	term := newTestTerminal(t, store)
	ctx := context.Background()

	require.NoError(t, store.CreateMaster(ctx, electrician("m1", 4.0)))
	seedAssignedJob(t, store, "j1", "m1")
	_, err := term.AcceptJob(ctx, "m1", "j1")
	require.NoError(t, err)

	location := &models.GeoPoint{Lat: 55.75, Lng: 37.62}
	job, err := term.UpdateJobStatus(ctx, "m1", "j1", models.JobInTransit, "выехал", location)
	require.NoError(t, err)
	assert.Equal(t, models.JobInTransit, job.Status)
	require.NotNil(t, job.MasterLocation)
	assert.Equal(t, 55.75, job.MasterLocation.Lat)

	job, err = term.UpdateJobStatus(ctx, "m1", "j1", models.JobInProgress, "", nil)
	require.NoError(t, err)
	assert.Equal(t, models.JobInProgress, job.Status)

	job, err = term.UpdateJobStatus(ctx, "m1", "j1", models.JobCompleted, "готово", nil)
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, job.Status)
}

func TestUpdateJobStatusRejectsOutOfBandStatuses(t *testing.T) {
	store := db.NewMemoryStore()
	term := newTestTerminal(t, store)
	ctx := context.Background()

	require.NoError(t, store.CreateMaster(ctx, electrician("m1", 4.0)))
	seedAssignedJob(t, store, "j1", "m1")

	var invalid *models.InvalidTransitionError
	_, err := term.UpdateJobStatus(ctx, "m1", "j1", models.JobPaid, "", nil)
	assert.ErrorAs(t, err, &invalid)

	// Skipping accepted: assigned -> in_progress is not in the table.
	_, err = term.UpdateJobStatus(ctx, "m1", "j1", models.JobInProgress, "", nil)
	assert.ErrorAs(t, err, &invalid)
}

func completeJob(t *testing.T, term *Terminal, ctx context.Context, masterID, jobID string) {
	t.Helper()
	_, err := term.AcceptJob(ctx, masterID, jobID)
	require.NoError(t, err)
	_, err = term.UpdateJobStatus(ctx, masterID, jobID, models.JobInProgress, "", nil)
	require.NoError(t, err)
	_, err = term.UpdateJobStatus(ctx, masterID, jobID, models.JobCompleted, "", nil)
	require.NoError(t, err)
}

func TestProcessPaymentCashSettlesImmediately(t *testing.T) {
	store := db.NewMemoryStore()
	term := newTestTerminal(t, store)
	ctx := context.Background()

	require.NoError(t, store.CreateMaster(ctx, electrician("m1", 4.0)))
	seedAssignedJob(t, store, "j1", "m1")

	_, err := term.ProcessPayment(ctx, "j1", PaymentCash, decimal.Zero)
	assert.ErrorIs(t, err, ErrNotCompleted)

	completeJob(t, term, ctx, "m1", "j1")

	res, err := term.ProcessPayment(ctx, "j1", PaymentCash, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, models.TxSuccess, res.Transaction.Status)
	assert.True(t, res.Transaction.Amount.Equal(decimal.NewFromInt(3000)), "zero amount defaults to client cost")
	assert.Empty(t, res.PaymentURL)

	job, err := store.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, models.JobPaid, job.Status)

	master, err := store.GetMaster(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 1, master.CompletedJobs)
	assert.Equal(t, 1, master.TotalJobs)
}

func TestProcessPaymentCardPendsUntilConfirmation(t *testing.T) {
	store := db.NewMemoryStore()
	term := newTestTerminal(t, store)
	ctx := context.Background()

	require.NoError(t, store.CreateMaster(ctx, electrician("m1", 4.0)))
	seedAssignedJob(t, store, "j1", "m1")
	completeJob(t, term, ctx, "m1", "j1")

	res, err := term.ProcessPayment(ctx, "j1", PaymentCard, decimal.NewFromInt(3000))
	require.NoError(t, err)
	assert.Equal(t, models.TxPending, res.Transaction.Status)
	assert.Equal(t, "/pay/"+res.Transaction.ID, res.PaymentURL)
	assert.Equal(t, "/pay/qr/"+res.Transaction.ID, res.QRCodeURL)

	job, _ := store.GetJob(ctx, "j1")
	assert.Equal(t, models.JobCompleted, job.Status, "card payment settles only on confirmation")

	tx, err := term.ConfirmPayment(ctx, res.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TxSuccess, tx.Status)
	require.NotNil(t, tx.ConfirmedAt)

	job, _ = store.GetJob(ctx, "j1")
	assert.Equal(t, models.JobPaid, job.Status)

	// Confirming again is a no-op.
	again, err := term.ConfirmPayment(ctx, res.Transaction.ID)
	require.NoError(t, err)
	assert.True(t, again.ConfirmedAt.Equal(*tx.ConfirmedAt))
	master, _ := store.GetMaster(ctx, "m1")
	assert.Equal(t, 1, master.CompletedJobs)
}

func TestEarnings(t *testing.T) {
	store := db.NewMemoryStore()
	term := newTestTerminal(t, store)
	ctx := context.Background()

	require.NoError(t, store.CreateMaster(ctx, electrician("m1", 4.0)))
	seedAssignedJob(t, store, "j1", "m1")
	completeJob(t, term, ctx, "m1", "j1")
	_, err := term.ProcessPayment(ctx, "j1", PaymentCash, decimal.Zero)
	require.NoError(t, err)

	summary, err := term.Earnings(ctx, "m1", "today")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalTransactions)
	assert.True(t, summary.TotalEarnings.Equal(decimal.NewFromInt(2205)))
	assert.Equal(t, "RUB", summary.Currency)
	assert.Len(t, summary.RecentTransactions, 1)
}

func TestReassignAfterRejection(t *testing.T) {
	store := db.NewMemoryStore()
	term := newTestTerminal(t, store)
	ctx := context.Background()

	first := electrician("m1", 4.9)
	first.Schedule = workingWeek(0, 24)
	require.NoError(t, store.CreateMaster(ctx, first))
	second := electrician("m2", 4.0)
	second.Schedule = workingWeek(0, 24)
	require.NoError(t, store.CreateMaster(ctx, second))
	seedAssignedJob(t, store, "j1", "m1")

	_, err := term.RejectJob(ctx, "m1", "j1", "занят")
	require.NoError(t, err)

	job, reassigned, err := term.Reassign(ctx, "j1", []string{"m1"})
	require.NoError(t, err)
	require.True(t, reassigned)
	assert.Equal(t, "m2", job.MasterID)
	assert.Equal(t, models.JobAssigned, job.Status)

	_, reassigned, err = term.Reassign(ctx, "j1", []string{"m1", "m2"})
	require.NoError(t, err)
	assert.False(t, reassigned)
}

func TestActiveJob(t *testing.T) {
	store := db.NewMemoryStore()
	term := newTestTerminal(t, store)
	ctx := context.Background()

	require.NoError(t, store.CreateMaster(ctx, electrician("m1", 4.0)))
	active, err := term.ActiveJob(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, active)

	seedAssignedJob(t, store, "j1", "m1")
	paid := models.Job{ID: "j0", MasterID: "m1", Status: models.JobPaid, CreatedAt: mondayMorning.Add(-time.Hour)}
	require.NoError(t, store.CreateJob(ctx, paid))

	active, err = term.ActiveJob(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "j1", active.ID)
}

func TestAvailableMasters(t *testing.T) {
	store := db.NewMemoryStore()
	term := newTestTerminal(t, store)
	ctx := context.Background()

	moscow := electrician("m1", 4.0)
	moscow.City = "Москва"
	require.NoError(t, store.CreateMaster(ctx, moscow))

	spb := electrician("m2", 5.0)
	spb.City = "Санкт-Петербург"
	require.NoError(t, store.CreateMaster(ctx, spb))

	pending := electrician("m3", 5.0)
	pending.Status = models.MasterPending
	pending.City = "Москва"
	require.NoError(t, store.CreateMaster(ctx, pending))

	masters, err := term.AvailableMasters(ctx, "electrical", "Москва")
	require.NoError(t, err)
	require.Len(t, masters, 1)
	assert.Equal(t, "m1", masters[0].ID)

	all, err := term.AvailableMasters(ctx, "electrical", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "m2", all[0].ID, "ranked by rating")
}
