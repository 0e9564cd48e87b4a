// Package queue derives the ordered triage view of waiting cases and manages
// assignment.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vetlink-systems/vetlink-triage/internal/casestore"
	"github.com/vetlink-systems/vetlink-triage/internal/logging"
	"github.com/vetlink-systems/vetlink-triage/internal/metrics"
	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

var (
	ErrVetNotFound        = errors.New("vet not found")
	ErrNotWaiting         = errors.New("case is not waiting")
	ErrAutoAssignDisabled = errors.New("auto-assign is disabled")
)

// EventPublisher mirrors queue and case events to out-of-process consumers.
// Implemented by *Publisher; nil disables mirroring.
type EventPublisher interface {
	PublishSnapshot(ctx context.Context, snap *models.QueueSnapshot) error
	PublishBroadcast(ctx context.Context, snap *models.QueueSnapshot) error
	PublishCaseCreated(ctx context.Context, c *models.Case) error
	PublishCaseAssigned(ctx context.Context, c *models.Case, vetID string) error
	PublishCaseUpdated(ctx context.Context, c *models.Case) error
}

// Policy holds the externally configured queue behavior flags.
type Policy struct {
	// AlertAllOnRed broadcasts an urgent snapshot to every subscriber when a
	// red-triage case enters the queue.
	AlertAllOnRed bool
	// AutoAssign enables greedy head-of-queue pairing with available vets.
	AutoAssign bool
}

// Manager produces deterministic orderings of waiting cases and drives
// assignment. Every state-affecting operation republishes the snapshot.
type Manager struct {
	store  *casestore.Store
	hub    *Hub
	pub    EventPublisher
	vets   VetDirectory
	policy Policy
	logger *logging.Logger
	now    func() time.Time
}

// NewManager creates a queue manager. pub may be nil when no message bus is
// configured.
func NewManager(store *casestore.Store, hub *Hub, pub EventPublisher, vets VetDirectory, policy Policy, logger *logging.Logger) *Manager {
	return &Manager{
		store:  store,
		hub:    hub,
		pub:    pub,
		vets:   vets,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Snapshot returns the current ordered list of waiting cases. Ordering is by
// triage rank, then arrival time, then case ID, so it is total and stable.
func (m *Manager) Snapshot(ctx context.Context) (*models.QueueSnapshot, error) {
	active, err := m.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active cases: %w", err)
	}

	waiting := make([]*models.Case, 0, len(active))
	for _, c := range active {
		if c.Status == models.StatusWaiting {
			waiting = append(waiting, c)
		}
	}

	sort.Slice(waiting, func(i, j int) bool {
		a, b := waiting[i], waiting[j]
		if ra, rb := a.TriageLevel.Rank(), b.TriageLevel.Rank(); ra != rb {
			return ra < rb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	snap := &models.QueueSnapshot{
		TakenAt: m.now(),
		Entries: make([]models.QueueEntry, 0, len(waiting)),
	}
	for i, c := range waiting {
		snap.Entries = append(snap.Entries, models.QueueEntry{
			CaseID:      c.ID,
			PatientName: c.PatientName,
			TriageLevel: c.TriageLevel,
			CreatedAt:   c.CreatedAt,
			Position:    i + 1,
		})
	}

	metrics.SetQueueDepth(len(snap.Entries))
	return snap, nil
}

// Refresh is the pull fallback for subscribers that lost their push stream.
func (m *Manager) Refresh(ctx context.Context) (*models.QueueSnapshot, error) {
	return m.Snapshot(ctx)
}

// Subscribe attaches a push subscriber for queue snapshots.
func (m *Manager) Subscribe() *Subscription {
	return m.hub.Subscribe()
}

// Position returns the 1-based queue position of the case, or 0 when the case
// is not currently waiting.
func (m *Manager) Position(ctx context.Context, caseID string) (int, error) {
	snap, err := m.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	for _, e := range snap.Entries {
		if e.CaseID == caseID {
			return e.Position, nil
		}
	}
	return 0, nil
}

// EstimatedWait estimates the wait for a waiting case as
// position * avgConsultMinutes / max(1, activeVetCount), rounded up to the
// nearest minute. This is a policy-level estimate, not a guarantee.
func (m *Manager) EstimatedWait(ctx context.Context, caseID string, avgConsultMinutes, activeVetCount int) (*models.EstimateResponse, error) {
	pos, err := m.Position(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if pos == 0 {
		if _, err := m.store.Get(ctx, caseID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrNotWaiting, caseID)
	}

	vets := activeVetCount
	if vets < 1 {
		vets = 1
	}
	wait := (pos*avgConsultMinutes + vets - 1) / vets

	return &models.EstimateResponse{
		CaseID:      caseID,
		Position:    pos,
		WaitMinutes: wait,
	}, nil
}

// Intake creates a case and publishes the updated queue. A red-triage intake
// additionally triggers the urgent broadcast when the alert-all-on-red policy
// is enabled.
func (m *Manager) Intake(ctx context.Context, req *models.IntakeRequest) (*models.Case, error) {
	c, err := m.store.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	metrics.IncIntake(string(c.TriageLevel))
	m.logger.InfoContext(ctx, "case created",
		logging.CaseID(c.ID), logging.Triage(string(c.TriageLevel)))

	if m.pub != nil {
		if err := m.pub.PublishCaseCreated(ctx, c); err != nil {
			m.logger.WarnContext(ctx, "failed to publish case created", logging.Error(err))
		}
	}

	urgent := c.TriageLevel == models.TriageRed && m.policy.AlertAllOnRed
	m.publish(ctx, urgent, c.ID)

	return c, nil
}

// Assign pairs the case with the vet. Fails with ErrVetNotFound for unknown
// vets and casestore.ErrAlreadyAssigned when the case is not waiting.
func (m *Manager) Assign(ctx context.Context, caseID, vetID string) (*models.Case, error) {
	ok, err := m.vets.Exists(ctx, vetID)
	if err != nil {
		return nil, fmt.Errorf("failed to check vet: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVetNotFound, vetID)
	}

	c, err := m.store.Assign(ctx, caseID, vetID)
	if err != nil {
		return nil, err
	}

	metrics.IncAssigned()
	m.logger.InfoContext(ctx, "case assigned",
		logging.CaseID(c.ID), logging.VetID(vetID))

	if m.pub != nil {
		if err := m.pub.PublishCaseAssigned(ctx, c, vetID); err != nil {
			m.logger.WarnContext(ctx, "failed to publish case assigned", logging.Error(err))
		}
	}
	m.publish(ctx, false, "")

	return c, nil
}

// AutoAssign greedily pairs the head of the queue with the given vets in
// order, stopping when either side is exhausted. This is first-available
// pairing, not an optimal matching. A case lost to a concurrent assignment is
// skipped without consuming a vet.
func (m *Manager) AutoAssign(ctx context.Context, availableVetIDs []string) ([]models.Assignment, error) {
	if !m.policy.AutoAssign {
		return nil, ErrAutoAssignDisabled
	}

	snap, err := m.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var assignments []models.Assignment
	vet := 0
	for _, entry := range snap.Entries {
		if vet >= len(availableVetIDs) {
			break
		}
		c, err := m.store.Assign(ctx, entry.CaseID, availableVetIDs[vet])
		if err != nil {
			if errors.Is(err, casestore.ErrAlreadyAssigned) {
				continue
			}
			return assignments, err
		}

		metrics.IncAssigned()
		assignments = append(assignments, models.Assignment{CaseID: c.ID, VetID: availableVetIDs[vet]})
		if m.pub != nil {
			if err := m.pub.PublishCaseAssigned(ctx, c, availableVetIDs[vet]); err != nil {
				m.logger.WarnContext(ctx, "failed to publish case assigned", logging.Error(err))
			}
		}
		vet++
	}

	if len(assignments) > 0 {
		m.publish(ctx, false, "")
	}

	return assignments, nil
}

// Transition moves a case to the given status and republishes the queue.
func (m *Manager) Transition(ctx context.Context, caseID string, status models.CaseStatus) (*models.Case, error) {
	c, err := m.store.Transition(ctx, caseID, status)
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "case transitioned",
		logging.CaseID(c.ID), logging.Status(string(c.Status)))

	if m.pub != nil {
		if err := m.pub.PublishCaseUpdated(ctx, c); err != nil {
			m.logger.WarnContext(ctx, "failed to publish case updated", logging.Error(err))
		}
	}
	m.publish(ctx, false, "")

	return c, nil
}

// Get retrieves a case by ID.
func (m *Manager) Get(ctx context.Context, caseID string) (*models.Case, error) {
	return m.store.Get(ctx, caseID)
}

// publish recomputes the snapshot and fans it out to subscribers and, when
// configured, the message bus. Publish failures are logged, never surfaced to
// the mutating caller.
func (m *Manager) publish(ctx context.Context, urgent bool, caseID string) {
	snap, err := m.Snapshot(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to build queue snapshot", logging.Error(err))
		return
	}
	snap.Urgent = urgent
	snap.CaseID = caseID

	m.hub.Publish(snap)

	if m.pub == nil {
		return
	}
	if err := m.pub.PublishSnapshot(ctx, snap); err != nil {
		m.logger.WarnContext(ctx, "failed to publish queue snapshot", logging.Error(err))
	}
	if urgent {
		if err := m.pub.PublishBroadcast(ctx, snap); err != nil {
			m.logger.WarnContext(ctx, "failed to publish red broadcast", logging.Error(err))
		}
	}
}
