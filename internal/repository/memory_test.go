package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

func testCase(status models.CaseStatus) *models.Case {
	return &models.Case{
		ID:          uuid.Must(uuid.NewV7()).String(),
		PatientName: "Biscuit",
		Species:     "dog",
		TriageLevel: models.TriageYellow,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
}

func testInstance() *models.AlertInstance {
	return &models.AlertInstance{
		ID:           uuid.Must(uuid.NewV7()).String(),
		RuleID:       "rule-1",
		RuleName:     "queue depth",
		Severity:     "critical",
		Metric:       "queue_size",
		Value:        12,
		TriggeredAt:  time.Now().UTC(),
		CurrentLevel: -1,
	}
}

func TestMemoryCaseCRUD(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	c := testCase(models.StatusWaiting)
	require.NoError(t, repo.CreateCase(ctx, c))

	got, err := repo.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.PatientName, got.PatientName)
	assert.Equal(t, models.StatusWaiting, got.Status)

	got.Status = models.StatusAssigned
	vet := "vet-1"
	got.AssignedVetID = &vet
	require.NoError(t, repo.UpdateCase(ctx, got))

	updated, err := repo.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, updated.Status)
	require.NotNil(t, updated.AssignedVetID)
	assert.Equal(t, "vet-1", *updated.AssignedVetID)
}

func TestMemoryCaseNotFound(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.GetCase(ctx, "missing")
	assert.ErrorIs(t, err, ErrCaseNotFound)

	err = repo.UpdateCase(ctx, testCase(models.StatusWaiting))
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestMemoryCaseIsolation(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	c := testCase(models.StatusWaiting)
	require.NoError(t, repo.CreateCase(ctx, c))

	// Mutating the caller's copy must not leak into the store.
	c.PatientName = "changed"

	got, err := repo.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Biscuit", got.PatientName)

	// Nor must mutating a returned record.
	got.PatientName = "changed again"
	again, err := repo.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Biscuit", again.PatientName)
}

func TestMemoryListActiveCases(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	waiting := testCase(models.StatusWaiting)
	consult := testCase(models.StatusInConsult)
	done := testCase(models.StatusComplete)
	cancelled := testCase(models.StatusCancelled)
	for _, c := range []*models.Case{waiting, consult, done, cancelled} {
		require.NoError(t, repo.CreateCase(ctx, c))
	}

	active, err := repo.ListActiveCases(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)

	ids := []string{active[0].ID, active[1].ID}
	assert.ElementsMatch(t, []string{waiting.ID, consult.ID}, ids)
}

func TestMemoryInstanceCRUD(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	a := testInstance()
	require.NoError(t, repo.CreateInstance(ctx, a))

	got, err := repo.GetInstance(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.RuleID, got.RuleID)
	assert.Equal(t, -1, got.CurrentLevel)

	got.CurrentLevel = 1
	require.NoError(t, repo.UpdateInstance(ctx, got))

	updated, err := repo.GetInstance(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CurrentLevel)

	_, err = repo.GetInstance(ctx, "missing")
	assert.ErrorIs(t, err, ErrInstanceNotFound)
	assert.ErrorIs(t, repo.UpdateInstance(ctx, testInstance()), ErrInstanceNotFound)
}

func TestMemoryListOpenInstances(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	open := testInstance()
	require.NoError(t, repo.CreateInstance(ctx, open))

	resolved := testInstance()
	now := time.Now().UTC()
	resolved.ResolvedAt = &now
	require.NoError(t, repo.CreateInstance(ctx, resolved))

	// Acknowledged but unresolved still counts as open.
	acked := testInstance()
	by := "dr-chen"
	acked.AcknowledgedAt = &now
	acked.AcknowledgedBy = &by
	require.NoError(t, repo.CreateInstance(ctx, acked))

	got, err := repo.ListOpenInstances(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	ids := []string{got[0].ID, got[1].ID}
	assert.ElementsMatch(t, []string{open.ID, acked.ID}, ids)
}
