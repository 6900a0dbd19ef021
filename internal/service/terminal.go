package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/masterok/backend/internal/db"
	"github.com/masterok/backend/internal/models"
)

var (
	// ErrNotOwner is returned when a master operates on a job assigned to
	// someone else.
	ErrNotOwner = errors.New("job not assigned to this master")
	// ErrNotCompleted is returned when payment is attempted before the job
	// is completed.
	ErrNotCompleted = errors.New("job must be completed before payment")
	// ErrPhoneRegistered is returned when a registration reuses a phone.
	ErrPhoneRegistered = errors.New("phone already registered")
)

// Payment methods accepted at the terminal.
const (
	PaymentCash = "cash"
	PaymentCard = "card"
	PaymentSBP  = "sbp"
)

// Terminal is the master-facing service: onboarding, the job lifecycle and
// payment processing.
type Terminal struct {
	store   db.Store
	matcher *Matcher
	logger  zerolog.Logger
	now     func() time.Time
	newID   func() string
}

func NewTerminal(store db.Store, matcher *Matcher, logger zerolog.Logger) *Terminal {
	return &Terminal{
		store:   store,
		matcher: matcher,
		logger:  logger.With().Str("component", "terminal").Logger(),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// RegisterMaster creates a pending master profile. Phone numbers are unique
// across the registry; activation happens later once the schedule is set and
// the terminal is activated.
func (t *Terminal) RegisterMaster(ctx context.Context, m models.Master) (models.Master, error) {
	existing, err := t.store.ListMasters(ctx, "")
	if err != nil {
		return models.Master{}, err
	}
	for _, other := range existing {
		if other.Phone == m.Phone {
			return models.Master{}, ErrPhoneRegistered
		}
	}

	m.ID = t.newID()
	m.Status = models.MasterPending
	m.Schedule = map[string]models.DaySchedule{}
	m.ServiceZones = nil
	m.Tools = nil
	m.Rating = 0
	m.TotalJobs = 0
	m.CompletedJobs = 0
	m.TerminalType = ""
	m.TerminalActivated = nil
	m.CreatedAt = t.now().UTC()

	if err := t.store.CreateMaster(ctx, m); err != nil {
		return models.Master{}, err
	}
	t.logger.Info().Str("master_id", m.ID).Str("city", m.City).Msg("master registered")
	return m, nil
}

func (t *Terminal) GetMaster(ctx context.Context, id string) (models.Master, error) {
	return t.store.GetMaster(ctx, id)
}

func (t *Terminal) ListMasters(ctx context.Context, status string) ([]models.Master, error) {
	return t.store.ListMasters(ctx, status)
}

// AvailableMasters lists active masters serving a category, best first by
// the simplified rating-plus-history ordering.
func (t *Terminal) AvailableMasters(ctx context.Context, category, city string) ([]models.Master, error) {
	masters, err := t.store.ListMasters(ctx, models.MasterActive)
	if err != nil {
		return nil, err
	}
	var matching []models.Master
	for _, m := range masters {
		if !m.HasSpecialization(category) {
			continue
		}
		if city != "" && !strings.EqualFold(m.City, city) {
			continue
		}
		matching = append(matching, m)
	}
	return RankSimplified(matching), nil
}

// UpdateProfile overwrites the updatable profile fields.
func (t *Terminal) UpdateProfile(ctx context.Context, m models.Master) (models.Master, error) {
	if err := t.store.UpdateMaster(ctx, m); err != nil {
		return models.Master{}, err
	}
	return m, nil
}

// UpdateSchedule replaces the master's work schedule. The master goes active
// once the schedule has an available day and the terminal is activated.
func (t *Terminal) UpdateSchedule(ctx context.Context, masterID string, schedule map[string]models.DaySchedule) (models.Master, error) {
	m, err := t.store.GetMaster(ctx, masterID)
	if err != nil {
		return models.Master{}, err
	}
	m.Schedule = schedule
	t.maybeActivate(&m)
	if err := t.store.UpdateMaster(ctx, m); err != nil {
		return models.Master{}, err
	}
	return m, nil
}

// ActivateTerminal records the payment terminal choice and activates the
// master when the schedule is already in place.
func (t *Terminal) ActivateTerminal(ctx context.Context, masterID, terminalType string) (models.Master, error) {
	m, err := t.store.GetMaster(ctx, masterID)
	if err != nil {
		return models.Master{}, err
	}
	now := t.now().UTC()
	m.TerminalType = terminalType
	m.TerminalActivated = &now
	t.maybeActivate(&m)
	if err := t.store.UpdateMaster(ctx, m); err != nil {
		return models.Master{}, err
	}
	t.logger.Info().Str("master_id", m.ID).Str("terminal", terminalType).Str("status", m.Status).Msg("terminal activated")
	return m, nil
}

// ConfirmAvailability sets today's schedule entry.
func (t *Terminal) ConfirmAvailability(ctx context.Context, masterID string, available bool, startHour, endHour int) (models.Master, error) {
	m, err := t.store.GetMaster(ctx, masterID)
	if err != nil {
		return models.Master{}, err
	}
	if m.Schedule == nil {
		m.Schedule = map[string]models.DaySchedule{}
	}
	today := strings.ToLower(t.now().Weekday().String())
	m.Schedule[today] = models.DaySchedule{Available: available, StartHour: startHour, EndHour: endHour}
	t.maybeActivate(&m)
	if err := t.store.UpdateMaster(ctx, m); err != nil {
		return models.Master{}, err
	}
	return m, nil
}

func (t *Terminal) maybeActivate(m *models.Master) {
	if m.Status == models.MasterPending && m.ScheduleValid() && m.TerminalActivated != nil {
		m.Status = models.MasterActive
	}
}

// MasterJobs lists the master's jobs, optionally filtered by status.
func (t *Terminal) MasterJobs(ctx context.Context, masterID, status string) ([]models.Job, error) {
	if _, err := t.store.GetMaster(ctx, masterID); err != nil {
		return nil, err
	}
	jobs, err := t.store.ListJobsByMaster(ctx, masterID)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return jobs, nil
	}
	var out []models.Job
	for _, j := range jobs {
		if j.Status == status {
			out = append(out, j)
		}
	}
	return out, nil
}

// ActiveJob returns the master's current active job, if any.
func (t *Terminal) ActiveJob(ctx context.Context, masterID string) (*models.Job, error) {
	jobs, err := t.MasterJobs(ctx, masterID, "")
	if err != nil {
		return nil, err
	}
	for _, j := range jobs {
		if j.IsActive() {
			job := j
			return &job, nil
		}
	}
	return nil, nil
}

// AcceptJob moves an assigned job to accepted.
func (t *Terminal) AcceptJob(ctx context.Context, masterID, jobID string) (models.Job, error) {
	job, err := t.ownedJob(ctx, masterID, jobID)
	if err != nil {
		return models.Job{}, err
	}
	if err := job.Transition(models.JobAccepted, "Master accepted the job", t.now().UTC()); err != nil {
		return models.Job{}, err
	}
	if err := t.store.UpdateJob(ctx, job); err != nil {
		return models.Job{}, err
	}
	t.logger.Info().Str("job_id", jobID).Str("master_id", masterID).Msg("job accepted")
	return job, nil
}

// RejectJob returns the job to the created state, clearing the assignment so
// it becomes eligible for reassignment.
func (t *Terminal) RejectJob(ctx context.Context, masterID, jobID, reason string) (models.Job, error) {
	job, err := t.ownedJob(ctx, masterID, jobID)
	if err != nil {
		return models.Job{}, err
	}
	note := "Master rejected"
	if reason != "" {
		note = "Master rejected: " + reason
	}
	if err := job.Transition(models.JobCreated, note, t.now().UTC()); err != nil {
		return models.Job{}, err
	}
	job.MasterID = ""
	job.MasterAssignmentStatus = ""
	job.RejectionReason = reason
	if err := t.store.UpdateJob(ctx, job); err != nil {
		return models.Job{}, err
	}
	t.logger.Info().Str("job_id", jobID).Str("master_id", masterID).Str("reason", reason).Msg("job rejected")
	return job, nil
}

// Progress statuses a master may request from the terminal.
var terminalStatuses = map[string]bool{
	models.JobInTransit:  true,
	models.JobInProgress: true,
	models.JobCompleted:  true,
}

// UpdateJobStatus advances the job through the working stages. Only
// in_transit, in_progress and completed can be requested here; the full
// transition table still applies on top.
func (t *Terminal) UpdateJobStatus(ctx context.Context, masterID, jobID, newStatus, note string, location *models.GeoPoint) (models.Job, error) {
	job, err := t.ownedJob(ctx, masterID, jobID)
	if err != nil {
		return models.Job{}, err
	}
	if !terminalStatuses[newStatus] {
		return models.Job{}, &models.InvalidTransitionError{From: job.Status, To: newStatus}
	}
	if err := job.Transition(newStatus, note, t.now().UTC()); err != nil {
		return models.Job{}, err
	}
	if newStatus == models.JobInTransit && location != nil {
		job.MasterLocation = location
	}
	if err := t.store.UpdateJob(ctx, job); err != nil {
		return models.Job{}, err
	}
	return job, nil
}

func (t *Terminal) ownedJob(ctx context.Context, masterID, jobID string) (models.Job, error) {
	if _, err := t.store.GetMaster(ctx, masterID); err != nil {
		return models.Job{}, err
	}
	job, err := t.store.GetJob(ctx, jobID)
	if err != nil {
		return models.Job{}, err
	}
	if job.MasterID != masterID {
		return models.Job{}, ErrNotOwner
	}
	return job, nil
}

// PaymentResult is what the terminal shows after initiating a payment.
type PaymentResult struct {
	Transaction models.Transaction `json:"transaction"`
	Job         models.Job         `json:"job"`
	PaymentURL  string             `json:"payment_url,omitempty"`
	QRCodeURL   string             `json:"qr_code_url,omitempty"`
}

// ProcessPayment takes payment for a completed job. Cash settles
// immediately; card and SBP produce a payment link pending confirmation.
func (t *Terminal) ProcessPayment(ctx context.Context, jobID, method string, amount decimal.Decimal) (PaymentResult, error) {
	job, err := t.store.GetJob(ctx, jobID)
	if err != nil {
		return PaymentResult{}, err
	}
	if job.Status != models.JobCompleted {
		return PaymentResult{}, ErrNotCompleted
	}
	master, err := t.store.GetMaster(ctx, job.MasterID)
	if err != nil {
		return PaymentResult{}, err
	}

	if amount.IsZero() {
		amount = job.ClientCost
	}
	now := t.now().UTC()
	tx := models.Transaction{
		ID:            t.newID(),
		JobID:         jobID,
		MasterID:      master.ID,
		Amount:        amount,
		PaymentMethod: method,
		Status:        models.TxPending,
		CreatedAt:     now,
	}

	if method == PaymentCash {
		tx.Status = models.TxSuccess
		tx.ConfirmedAt = &now
		if err := t.settleJob(ctx, &job, &master, fmt.Sprintf("Cash payment received: %s RUB", amount)); err != nil {
			return PaymentResult{}, err
		}
	} else {
		tx.PaymentURL = "/pay/" + tx.ID
		tx.QRCodeURL = "/pay/qr/" + tx.ID
	}

	if err := t.store.CreateTransaction(ctx, tx); err != nil {
		return PaymentResult{}, err
	}
	t.logger.Info().
		Str("transaction_id", tx.ID).
		Str("job_id", jobID).
		Str("method", method).
		Str("status", tx.Status).
		Msg("payment initiated")
	return PaymentResult{
		Transaction: tx,
		Job:         job,
		PaymentURL:  tx.PaymentURL,
		QRCodeURL:   tx.QRCodeURL,
	}, nil
}

// ConfirmPayment settles a pending card/SBP transaction. Confirming an
// already settled transaction is a no-op.
func (t *Terminal) ConfirmPayment(ctx context.Context, transactionID string) (models.Transaction, error) {
	tx, err := t.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return models.Transaction{}, err
	}
	if tx.Status == models.TxSuccess {
		return tx, nil
	}

	now := t.now().UTC()
	tx.Status = models.TxSuccess
	tx.ConfirmedAt = &now
	if err := t.store.UpdateTransaction(ctx, tx); err != nil {
		return models.Transaction{}, err
	}

	job, err := t.store.GetJob(ctx, tx.JobID)
	if err == nil {
		master, merr := t.store.GetMaster(ctx, job.MasterID)
		if merr == nil {
			if serr := t.settleJob(ctx, &job, &master, fmt.Sprintf("Payment confirmed: %s RUB", tx.Amount)); serr != nil {
				t.logger.Error().Err(serr).Str("job_id", job.ID).Msg("settling job after payment failed")
			}
		}
	}
	t.logger.Info().Str("transaction_id", tx.ID).Msg("payment confirmed")
	return tx, nil
}

// settleJob marks the job paid and bumps the master's completion counters.
// Both records go through the store's atomic settle so they cannot diverge.
func (t *Terminal) settleJob(ctx context.Context, job *models.Job, master *models.Master, note string) error {
	if err := job.Transition(models.JobPaid, note, t.now().UTC()); err != nil {
		return err
	}
	master.CompletedJobs++
	master.TotalJobs++
	return t.store.SettleJob(ctx, *job, *master)
}

// EarningsSummary aggregates a master's settled transactions.
type EarningsSummary struct {
	MasterID           string               `json:"master_id"`
	Period             string               `json:"period"`
	TotalTransactions  int                  `json:"total_transactions"`
	TotalEarnings      decimal.Decimal      `json:"total_earnings"`
	Currency           string               `json:"currency"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

// Earnings sums the master's share over successful transactions.
func (t *Terminal) Earnings(ctx context.Context, masterID, period string) (EarningsSummary, error) {
	if _, err := t.store.GetMaster(ctx, masterID); err != nil {
		return EarningsSummary{}, err
	}
	transactions, err := t.store.ListTransactionsByMaster(ctx, masterID)
	if err != nil {
		return EarningsSummary{}, err
	}

	total := decimal.Zero
	var settled []models.Transaction
	for _, tx := range transactions {
		if tx.Status != models.TxSuccess {
			continue
		}
		settled = append(settled, tx)
		if job, err := t.store.GetJob(ctx, tx.JobID); err == nil {
			total = total.Add(job.MasterEarnings)
		}
	}

	recent := settled
	if len(recent) > 10 {
		recent = recent[:10]
	}
	return EarningsSummary{
		MasterID:           masterID,
		Period:             period,
		TotalTransactions:  len(settled),
		TotalEarnings:      total,
		Currency:           "RUB",
		RecentTransactions: recent,
	}, nil
}

// Reassign finds an alternative master for a rejected job, excluding masters
// who already declined it, and assigns the best candidate.
func (t *Terminal) Reassign(ctx context.Context, jobID string, excludedIDs []string) (models.Job, bool, error) {
	job, err := t.store.GetJob(ctx, jobID)
	if err != nil {
		return models.Job{}, false, err
	}
	if t.matcher == nil {
		return job, false, nil
	}
	alternatives := t.matcher.FindAlternatives(ctx, job, excludedIDs, 1)
	if len(alternatives) == 0 {
		return job, false, nil
	}
	if err := job.Transition(models.JobAssigned, "reassigned", t.now().UTC()); err != nil {
		return models.Job{}, false, err
	}
	job.MasterID = alternatives[0].ID
	job.MasterAssignmentStatus = models.AssignmentAssigned
	if err := t.store.UpdateJob(ctx, job); err != nil {
		return models.Job{}, false, err
	}
	t.logger.Info().Str("job_id", jobID).Str("master_id", job.MasterID).Msg("job reassigned")
	return job, true, nil
}
