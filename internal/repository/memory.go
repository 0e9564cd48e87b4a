package repository

import (
	"context"
	"sync"

	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// MemoryRepository implements Repository with in-process maps. It backs
// single-node deployments and tests; all reads and writes copy records so
// callers never share memory with the store.
type MemoryRepository struct {
	mu        sync.RWMutex
	cases     map[string]*models.Case
	instances map[string]*models.AlertInstance
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		cases:     make(map[string]*models.Case),
		instances: make(map[string]*models.AlertInstance),
	}
}

// CreateCase inserts a new case record.
func (r *MemoryRepository) CreateCase(_ context.Context, c *models.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cases[c.ID] = c.Clone()
	return nil
}

// GetCase retrieves a case by ID.
func (r *MemoryRepository) GetCase(_ context.Context, id string) (*models.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cases[id]
	if !ok {
		return nil, ErrCaseNotFound
	}
	return c.Clone(), nil
}

// UpdateCase replaces the stored record for the case.
func (r *MemoryRepository) UpdateCase(_ context.Context, c *models.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cases[c.ID]; !ok {
		return ErrCaseNotFound
	}
	r.cases[c.ID] = c.Clone()
	return nil
}

// ListActiveCases retrieves all cases whose status is not terminal.
func (r *MemoryRepository) ListActiveCases(_ context.Context) ([]*models.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cases []*models.Case
	for _, c := range r.cases {
		if !c.Status.Terminal() {
			cases = append(cases, c.Clone())
		}
	}
	return cases, nil
}

// CreateInstance inserts a new alert instance record.
func (r *MemoryRepository) CreateInstance(_ context.Context, a *models.AlertInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dup := *a
	r.instances[a.ID] = &dup
	return nil
}

// GetInstance retrieves an alert instance by ID.
func (r *MemoryRepository) GetInstance(_ context.Context, id string) (*models.AlertInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.instances[id]
	if !ok {
		return nil, ErrInstanceNotFound
	}
	dup := *a
	return &dup, nil
}

// UpdateInstance replaces the stored record for the alert instance.
func (r *MemoryRepository) UpdateInstance(_ context.Context, a *models.AlertInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instances[a.ID]; !ok {
		return ErrInstanceNotFound
	}
	dup := *a
	r.instances[a.ID] = &dup
	return nil
}

// ListOpenInstances retrieves all unresolved alert instances.
func (r *MemoryRepository) ListOpenInstances(_ context.Context) ([]*models.AlertInstance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var instances []*models.AlertInstance
	for _, a := range r.instances {
		if a.ResolvedAt == nil {
			dup := *a
			instances = append(instances, &dup)
		}
	}
	return instances, nil
}

// Close is a no-op for the in-memory repository.
func (r *MemoryRepository) Close() error {
	return nil
}
