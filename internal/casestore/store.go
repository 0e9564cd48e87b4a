// Package casestore is the authoritative record of cases and their lifecycle.
package casestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vetlink-systems/vetlink-triage/internal/models"
	"github.com/vetlink-systems/vetlink-triage/internal/repository"
)

var (
	ErrInvalidTransition = errors.New("invalid case transition")
	ErrAlreadyAssigned   = errors.New("case already assigned")
)

// forward is the set of legal forward transitions. Cancellation is handled
// separately: it is reachable from any non-terminal status.
var forward = map[models.CaseStatus]models.CaseStatus{
	models.StatusWaiting:   models.StatusAssigned,
	models.StatusAssigned:  models.StatusInConsult,
	models.StatusInConsult: models.StatusComplete,
}

// Store validates and applies case lifecycle changes on top of a repository.
// All mutations on a single case ID are serialized; different IDs proceed
// independently.
type Store struct {
	repo repository.CaseRepository
	now  func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a case store backed by the given repository.
func NewStore(repo repository.CaseRepository) *Store {
	return &Store{
		repo:  repo,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// lock acquires the per-case mutex for id. Lock entries are retained for the
// process lifetime; cases are soft-closed, never deleted, so the set is small
// and bounded by total intake.
func (s *Store) lock(id string) *sync.Mutex {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l
}

// Create registers a new case in waiting status and returns it.
func (s *Store) Create(ctx context.Context, req *models.IntakeRequest) (*models.Case, error) {
	if req.PatientName == "" {
		return nil, fmt.Errorf("patient name is required")
	}
	if !req.TriageLevel.Valid() {
		return nil, fmt.Errorf("invalid triage level: %s", req.TriageLevel)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate case id: %w", err)
	}

	c := &models.Case{
		ID:          id.String(),
		PatientName: req.PatientName,
		Species:     req.Species,
		Complaint:   req.Complaint,
		TriageLevel: req.TriageLevel,
		Status:      models.StatusWaiting,
		CreatedAt:   s.now(),
	}

	if err := s.repo.CreateCase(ctx, c); err != nil {
		return nil, err
	}

	return c.Clone(), nil
}

// Get retrieves a case by ID.
func (s *Store) Get(ctx context.Context, id string) (*models.Case, error) {
	return s.repo.GetCase(ctx, id)
}

// ListActive retrieves all cases whose status is not terminal.
func (s *Store) ListActive(ctx context.Context) ([]*models.Case, error) {
	return s.repo.ListActiveCases(ctx)
}

// Transition moves a case to newStatus, enforcing the forward-only state
// machine. Illegal transitions return ErrInvalidTransition and leave the
// record unchanged.
func (s *Store) Transition(ctx context.Context, id string, newStatus models.CaseStatus) (*models.Case, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, newStatus)
	}
	if newStatus == models.StatusAssigned {
		// Assignment must record the vet; Assign is the only path into the
		// assigned status.
		return nil, fmt.Errorf("%w: assignment requires a vet ID, use Assign", ErrInvalidTransition)
	}

	l := s.lock(id)
	defer l.Unlock()

	c, err := s.repo.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.apply(c, newStatus); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCase(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Assign moves a waiting case to assigned and records the vet. Returns
// ErrAlreadyAssigned when the case is not waiting.
func (s *Store) Assign(ctx context.Context, id, vetID string) (*models.Case, error) {
	l := s.lock(id)
	defer l.Unlock()

	c, err := s.repo.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.Status != models.StatusWaiting {
		return nil, fmt.Errorf("%w: case %s is %s", ErrAlreadyAssigned, id, c.Status)
	}

	c.Status = models.StatusAssigned
	c.AssignedVetID = &vetID

	if err := s.repo.UpdateCase(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// apply mutates c for the transition to newStatus, or returns an error
// without touching c.
func (s *Store) apply(c *models.Case, newStatus models.CaseStatus) error {
	if c.Status.Terminal() {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, c.Status)
	}

	if newStatus == models.StatusCancelled {
		c.Status = models.StatusCancelled
		return nil
	}

	if forward[c.Status] != newStatus {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, newStatus)
	}

	now := s.now()
	switch newStatus {
	case models.StatusInConsult:
		c.ConsultationStart = &now
	case models.StatusComplete:
		c.ConsultationEnd = &now
	}
	c.Status = newStatus
	return nil
}
