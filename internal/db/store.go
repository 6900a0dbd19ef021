package db

import (
	"context"

	"github.com/masterok/backend/internal/models"
)

// MasterStore holds master profiles.
type MasterStore interface {
	CreateMaster(ctx context.Context, m models.Master) error
	GetMaster(ctx context.Context, id string) (models.Master, error)
	UpdateMaster(ctx context.Context, m models.Master) error
	// ListMasters filters by status when status is non-empty.
	ListMasters(ctx context.Context, status string) ([]models.Master, error)
}

// JobStore holds jobs and their status history.
type JobStore interface {
	CreateJob(ctx context.Context, j models.Job) error
	GetJob(ctx context.Context, id string) (models.Job, error)
	UpdateJob(ctx context.Context, j models.Job) error
	// ListJobs filters by status when status is non-empty.
	ListJobs(ctx context.Context, status string) ([]models.Job, error)
	ListJobsByMaster(ctx context.Context, masterID string) ([]models.Job, error)
	ListJobsByClient(ctx context.Context, clientID string) ([]models.Job, error)
}

// TransactionStore holds payment transactions.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t models.Transaction) error
	GetTransaction(ctx context.Context, id string) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, t models.Transaction) error
	ListTransactionsByMaster(ctx context.Context, masterID string) ([]models.Transaction, error)
}

// Store is the full persistence surface of the service.
type Store interface {
	MasterStore
	JobStore
	TransactionStore

	// SettleJob writes a paid job together with its master's updated
	// counters as one atomic update.
	SettleJob(ctx context.Context, j models.Job, m models.Master) error

	Ping(ctx context.Context) error
	Close()
}
