package db

import (
	"context"
	"sort"
	"sync"

	"github.com/masterok/backend/internal/models"
)

// MemoryStore keeps everything in process memory. The default backend for
// development and tests; state is lost on restart.
type MemoryStore struct {
	mu           sync.RWMutex
	masters      map[string]models.Master
	jobs         map[string]models.Job
	transactions map[string]models.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		masters:      make(map[string]models.Master),
		jobs:         make(map[string]models.Job),
		transactions: make(map[string]models.Transaction),
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
func (s *MemoryStore) Close()                     {}

func (s *MemoryStore) CreateMaster(_ context.Context, m models.Master) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.masters[m.ID]; ok {
		return ErrConflict
	}
	s.masters[m.ID] = m
	return nil
}

func (s *MemoryStore) GetMaster(_ context.Context, id string) (models.Master, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.masters[id]
	if !ok {
		return models.Master{}, ErrNotFound
	}
	return m, nil
}

func (s *MemoryStore) UpdateMaster(_ context.Context, m models.Master) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.masters[m.ID]; !ok {
		return ErrNotFound
	}
	s.masters[m.ID] = m
	return nil
}

func (s *MemoryStore) ListMasters(_ context.Context, status string) ([]models.Master, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Master, 0, len(s.masters))
	for _, m := range s.masters {
		if status != "" && m.Status != status {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateJob(_ context.Context, j models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[j.ID]; ok {
		return ErrConflict
	}
	s.jobs[j.ID] = j
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return models.Job{}, ErrNotFound
	}
	return j, nil
}

func (s *MemoryStore) UpdateJob(_ context.Context, j models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[j.ID]; !ok {
		return ErrNotFound
	}
	s.jobs[j.ID] = j
	return nil
}

func (s *MemoryStore) ListJobs(_ context.Context, status string) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectJobs(func(j models.Job) bool {
		return status == "" || j.Status == status
	}), nil
}

func (s *MemoryStore) ListJobsByMaster(_ context.Context, masterID string) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectJobs(func(j models.Job) bool { return j.MasterID == masterID }), nil
}

func (s *MemoryStore) ListJobsByClient(_ context.Context, clientID string) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectJobs(func(j models.Job) bool { return j.ClientID == clientID }), nil
}

// collectJobs returns matching jobs newest first. Callers hold the lock.
func (s *MemoryStore) collectJobs(keep func(models.Job) bool) []models.Job {
	var out []models.Job
	for _, j := range s.jobs {
		if keep(j) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryStore) SettleJob(_ context.Context, j models.Job, m models.Master) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[j.ID]; !ok {
		return ErrNotFound
	}
	if _, ok := s.masters[m.ID]; !ok {
		return ErrNotFound
	}
	s.jobs[j.ID] = j
	s.masters[m.ID] = m
	return nil
}

func (s *MemoryStore) CreateTransaction(_ context.Context, t models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; ok {
		return ErrConflict
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id string) (models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return models.Transaction{}, ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) UpdateTransaction(_ context.Context, t models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; !ok {
		return ErrNotFound
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *MemoryStore) ListTransactionsByMaster(_ context.Context, masterID string) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Transaction
	for _, t := range s.transactions {
		if t.MasterID == masterID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
