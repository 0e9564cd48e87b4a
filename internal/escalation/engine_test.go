package escalation

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetlink-systems/vetlink-triage/internal/logging"
	"github.com/vetlink-systems/vetlink-triage/internal/models"
	"github.com/vetlink-systems/vetlink-triage/internal/notify"
	"github.com/vetlink-systems/vetlink-triage/internal/repository"
)

// mockNotifier records dispatches per escalation level.
type mockNotifier struct {
	mu      sync.Mutex
	levels  []int
	byLevel map[int][]string
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{byLevel: make(map[int][]string)}
}

func (m *mockNotifier) Dispatch(_ context.Context, channels []*models.NotificationChannel, p *notify.Payload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels = append(m.levels, p.Level)
	for _, ch := range channels {
		m.byLevel[p.Level] = append(m.byLevel[p.Level], ch.ID)
	}
}

func (m *mockNotifier) firedLevels() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.levels))
	copy(out, m.levels)
	return out
}

func (m *mockNotifier) channelsAt(level int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.byLevel[level]))
	copy(out, m.byLevel[level])
	return out
}

func testEngine(t *testing.T) (*Engine, *repository.MemoryRepository, *mockNotifier) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	notifier := newMockNotifier()
	engine := NewEngine(repo, notifier, nil, logging.New(slog.LevelError, "text"))
	t.Cleanup(engine.Stop)
	return engine, repo, notifier
}

func escalationBinding(delays ...time.Duration) *models.RuleBinding {
	levels := make([]models.EscalationLevel, 0, len(delays))
	for _, d := range delays {
		levels = append(levels, models.EscalationLevel{
			Delay:    d,
			Channels: []string{"ch-oncall"},
		})
	}
	return &models.RuleBinding{
		Rule: &models.AlertRule{
			ID:       "rule-1",
			Name:     "queue too deep",
			Metric:   "queue_size",
			Severity: "warning",
			Enabled:  true,
		},
		Policy: &models.EscalationPolicy{ID: "pol-1", Levels: levels},
		Channels: map[string]*models.NotificationChannel{
			"ch-oncall": {ID: "ch-oncall", Type: "push", Enabled: true},
		},
	}
}

func TestRaise_PersistsInstance(t *testing.T) {
	engine, repo, _ := testEngine(t)
	ctx := context.Background()

	inst, err := engine.Raise(ctx, escalationBinding(time.Hour), 15)
	require.NoError(t, err)

	assert.NotEmpty(t, inst.ID)
	assert.Equal(t, "rule-1", inst.RuleID)
	assert.Equal(t, float64(15), inst.Value)
	assert.Equal(t, -1, inst.CurrentLevel)
	assert.False(t, inst.TriggeredAt.IsZero())
	assert.Nil(t, inst.ResolvedAt)

	stored, err := repo.GetInstance(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, inst.ID, stored.ID)
}

func TestRaise_ZeroDelayDispatchesImmediately(t *testing.T) {
	engine, _, notifier := testEngine(t)

	_, err := engine.Raise(context.Background(), escalationBinding(0, time.Hour), 15)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(notifier.firedLevels()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []int{0}, notifier.firedLevels())
	assert.Equal(t, []string{"ch-oncall"}, notifier.channelsAt(0))
}

func TestRaise_LevelsFireInOrder(t *testing.T) {
	engine, repo, notifier := testEngine(t)
	ctx := context.Background()

	inst, err := engine.Raise(ctx, escalationBinding(0, 30*time.Millisecond, 60*time.Millisecond), 15)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(notifier.firedLevels()) == 3
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []int{0, 1, 2}, notifier.firedLevels())

	stored, err := repo.GetInstance(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentLevel)
}

func TestAcknowledge_CancelsPendingLevels(t *testing.T) {
	engine, _, notifier := testEngine(t)
	ctx := context.Background()

	inst, err := engine.Raise(ctx, escalationBinding(0, 80*time.Millisecond), 15)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(notifier.firedLevels()) == 1
	}, time.Second, 5*time.Millisecond)

	acked, err := engine.Acknowledge(ctx, inst.ID, "dr-chen")
	require.NoError(t, err)
	require.NotNil(t, acked.AcknowledgedAt)
	assert.Equal(t, "dr-chen", *acked.AcknowledgedBy)

	// The second level's deadline passes without a dispatch.
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []int{0}, notifier.firedLevels())
}

func TestAcknowledge_Twice(t *testing.T) {
	engine, _, _ := testEngine(t)
	ctx := context.Background()

	inst, err := engine.Raise(ctx, escalationBinding(time.Hour), 15)
	require.NoError(t, err)

	_, err = engine.Acknowledge(ctx, inst.ID, "dr-chen")
	require.NoError(t, err)

	_, err = engine.Acknowledge(ctx, inst.ID, "dr-patel")
	assert.ErrorIs(t, err, ErrAlreadyAcknowledged)
}

func TestAcknowledge_NotFound(t *testing.T) {
	engine, _, _ := testEngine(t)

	_, err := engine.Acknowledge(context.Background(), "missing", "dr-chen")
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestAcknowledge_ArchivedInstance(t *testing.T) {
	engine, repo, _ := testEngine(t)
	ctx := context.Background()

	// An instance raised before a restart exists only in the repository.
	require.NoError(t, repo.CreateInstance(ctx, &models.AlertInstance{
		ID:          "inst-old",
		RuleID:      "rule-1",
		TriggeredAt: time.Now().Add(-time.Hour),
	}))

	acked, err := engine.Acknowledge(ctx, "inst-old", "dr-chen")
	require.NoError(t, err)
	assert.Equal(t, "dr-chen", *acked.AcknowledgedBy)
}

func TestAcknowledgedInstanceStaysOpen(t *testing.T) {
	engine, _, _ := testEngine(t)
	ctx := context.Background()

	inst, err := engine.Raise(ctx, escalationBinding(time.Hour), 15)
	require.NoError(t, err)

	_, err = engine.Acknowledge(ctx, inst.ID, "dr-chen")
	require.NoError(t, err)

	// Acknowledged is not resolved: the instance still lists as open.
	open, err := engine.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, inst.ID, open[0].ID)
}

func TestResolve(t *testing.T) {
	engine, _, notifier := testEngine(t)
	ctx := context.Background()

	inst, err := engine.Raise(ctx, escalationBinding(80*time.Millisecond), 15)
	require.NoError(t, err)

	resolved, err := engine.Resolve(ctx, inst.ID)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)

	open, err := engine.ListOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	// Pending levels die with the resolution.
	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, notifier.firedLevels())
}

func TestResolve_AcknowledgedInstance(t *testing.T) {
	engine, _, _ := testEngine(t)
	ctx := context.Background()

	inst, err := engine.Raise(ctx, escalationBinding(time.Hour), 15)
	require.NoError(t, err)

	_, err = engine.Acknowledge(ctx, inst.ID, "dr-chen")
	require.NoError(t, err)

	resolved, err := engine.Resolve(ctx, inst.ID)
	require.NoError(t, err)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.NotNil(t, resolved.AcknowledgedAt)
}

func TestResolve_NotFound(t *testing.T) {
	engine, _, _ := testEngine(t)

	_, err := engine.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestLevelsAnchoredToTriggeredAt(t *testing.T) {
	engine, _, notifier := testEngine(t)

	// Both delays measure from TriggeredAt, not from the previous level, so
	// a 100ms and a 200ms level complete within ~200ms, not 300ms.
	start := time.Now()
	_, err := engine.Raise(context.Background(), escalationBinding(100*time.Millisecond, 200*time.Millisecond), 15)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(notifier.firedLevels()) == 2
	}, time.Second, 5*time.Millisecond)

	elapsed := time.Since(start)
	assert.Less(t, elapsed, 290*time.Millisecond, "levels drifted instead of anchoring to trigger time")
}

func TestLevelChannels_DisabledChannelDropped(t *testing.T) {
	engine, _, notifier := testEngine(t)

	binding := escalationBinding(0)
	binding.Policy.Levels[0].Channels = []string{"ch-oncall", "ch-muted", "ch-ghost"}
	binding.Channels["ch-muted"] = &models.NotificationChannel{ID: "ch-muted", Type: "sms", Enabled: false}

	_, err := engine.Raise(context.Background(), binding, 15)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(notifier.firedLevels()) == 1
	}, time.Second, 5*time.Millisecond)

	// Disabled and unknown channel IDs never reach the dispatcher.
	assert.Equal(t, []string{"ch-oncall"}, notifier.channelsAt(0))
}

func TestStop_CancelsAllTimers(t *testing.T) {
	engine, _, notifier := testEngine(t)

	_, err := engine.Raise(context.Background(), escalationBinding(60*time.Millisecond), 15)
	require.NoError(t, err)

	engine.Stop()

	time.Sleep(120 * time.Millisecond)
	assert.Empty(t, notifier.firedLevels())
}
