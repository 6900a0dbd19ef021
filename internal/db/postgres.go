package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/masterok/backend/internal/models"
)

// PostgresStore persists each record as a jsonb document alongside the
// columns the queries filter on.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{Pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	s.Pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *PostgresStore) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SettleJob updates the paid job and the master's counters in one
// transaction so a crash cannot leave them out of step.
func (s *PostgresStore) SettleJob(ctx context.Context, j models.Job, m models.Master) error {
	jobDoc, err := json.Marshal(j)
	if err != nil {
		return err
	}
	masterDoc, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE jobs SET master_id = $2, status = $3, doc = $4 WHERE id = $1`,
			j.ID, j.MasterID, j.Status, jobDoc)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		tag, err = tx.Exec(ctx,
			`UPDATE masters SET status = $2, doc = $3 WHERE id = $1`,
			m.ID, m.Status, masterDoc)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS masters (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	doc        JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS jobs (
	id         TEXT PRIMARY KEY,
	client_id  TEXT NOT NULL,
	master_id  TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL,
	doc        JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS transactions (
	id         TEXT PRIMARY KEY,
	job_id     TEXT NOT NULL,
	master_id  TEXT NOT NULL,
	status     TEXT NOT NULL,
	doc        JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_master ON jobs (master_id);
CREATE INDEX IF NOT EXISTS idx_jobs_client ON jobs (client_id);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status);
CREATE INDEX IF NOT EXISTS idx_masters_status ON masters (status);
`)
	return err
}

func (s *PostgresStore) CreateMaster(ctx context.Context, m models.Master) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO masters (id, status, doc, created_at) VALUES ($1, $2, $3, $4)`,
		m.ID, m.Status, doc, m.CreatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (s *PostgresStore) GetMaster(ctx context.Context, id string) (models.Master, error) {
	var doc []byte
	err := s.Pool.QueryRow(ctx, `SELECT doc FROM masters WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Master{}, ErrNotFound
	}
	if err != nil {
		return models.Master{}, err
	}
	var m models.Master
	if err := json.Unmarshal(doc, &m); err != nil {
		return models.Master{}, err
	}
	return m, nil
}

func (s *PostgresStore) UpdateMaster(ctx context.Context, m models.Master) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return err
	}
	tag, err := s.Pool.Exec(ctx,
		`UPDATE masters SET status = $2, doc = $3 WHERE id = $1`,
		m.ID, m.Status, doc)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListMasters(ctx context.Context, status string) ([]models.Master, error) {
	query := `SELECT doc FROM masters`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Master
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var m models.Master
		if err := json.Unmarshal(doc, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateJob(ctx context.Context, j models.Job) error {
	doc, err := json.Marshal(j)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO jobs (id, client_id, master_id, status, doc, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		j.ID, j.ClientID, j.MasterID, j.Status, doc, j.CreatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (models.Job, error) {
	var doc []byte
	err := s.Pool.QueryRow(ctx, `SELECT doc FROM jobs WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Job{}, ErrNotFound
	}
	if err != nil {
		return models.Job{}, err
	}
	var j models.Job
	if err := json.Unmarshal(doc, &j); err != nil {
		return models.Job{}, err
	}
	return j, nil
}

func (s *PostgresStore) UpdateJob(ctx context.Context, j models.Job) error {
	doc, err := json.Marshal(j)
	if err != nil {
		return err
	}
	tag, err := s.Pool.Exec(ctx,
		`UPDATE jobs SET master_id = $2, status = $3, doc = $4 WHERE id = $1`,
		j.ID, j.MasterID, j.Status, doc)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, status string) ([]models.Job, error) {
	query := `SELECT doc FROM jobs`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id`
	return s.queryJobs(ctx, query, args...)
}

func (s *PostgresStore) ListJobsByMaster(ctx context.Context, masterID string) ([]models.Job, error) {
	return s.queryJobs(ctx,
		`SELECT doc FROM jobs WHERE master_id = $1 ORDER BY created_at DESC, id`, masterID)
}

func (s *PostgresStore) ListJobsByClient(ctx context.Context, clientID string) ([]models.Job, error) {
	return s.queryJobs(ctx,
		`SELECT doc FROM jobs WHERE client_id = $1 ORDER BY created_at DESC, id`, clientID)
}

func (s *PostgresStore) queryJobs(ctx context.Context, query string, args ...any) ([]models.Job, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Job
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var j models.Job
		if err := json.Unmarshal(doc, &j); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateTransaction(ctx context.Context, t models.Transaction) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO transactions (id, job_id, master_id, status, doc, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.JobID, t.MasterID, t.Status, doc, t.CreatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (s *PostgresStore) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	var doc []byte
	err := s.Pool.QueryRow(ctx, `SELECT doc FROM transactions WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Transaction{}, ErrNotFound
	}
	if err != nil {
		return models.Transaction{}, err
	}
	var t models.Transaction
	if err := json.Unmarshal(doc, &t); err != nil {
		return models.Transaction{}, err
	}
	return t, nil
}

func (s *PostgresStore) UpdateTransaction(ctx context.Context, t models.Transaction) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}
	tag, err := s.Pool.Exec(ctx,
		`UPDATE transactions SET status = $2, doc = $3 WHERE id = $1`,
		t.ID, t.Status, doc)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListTransactionsByMaster(ctx context.Context, masterID string) ([]models.Transaction, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT doc FROM transactions WHERE master_id = $1 ORDER BY created_at DESC, id`, masterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var t models.Transaction
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
