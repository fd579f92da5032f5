package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hypebot/internal/domain"
	"hypebot/internal/domain/entities"
)

func TestEventRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	base := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)

	late := &entities.Event{Name: "Raid", ScheduledAt: base.Add(time.Hour), MessageID: "200"}
	early := &entities.Event{Name: "Raid", ScheduledAt: base, MessageID: "100"}
	require.NoError(t, repo.Create(ctx, late))
	require.NoError(t, repo.Create(ctx, early))
	assert.NotEqual(t, late.ID, early.ID)

	err := repo.Create(ctx, &entities.Event{Name: "Unposted", ScheduledAt: base})
	var storeErr *domain.StoreError
	assert.ErrorAs(t, err, &storeErr)

	all, err := repo.ListOrderedByTime(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, early.ID, all[0].ID)

	byName, err := repo.FindByName(ctx, "Raid")
	require.NoError(t, err)
	assert.Equal(t, early.ID, byName.ID)

	byMsg, err := repo.FindByMessageID(ctx, "200")
	require.NoError(t, err)
	assert.Equal(t, late.ID, byMsg.ID)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestEventRepository_ReminderFlagIsMonotonic(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	ev := &entities.Event{Name: "Quiz", ScheduledAt: time.Now(), MessageID: "1"}
	require.NoError(t, repo.Create(ctx, ev))

	require.NoError(t, repo.SetReminderSent(ctx, ev.ID, entities.ReminderSent))
	require.NoError(t, repo.SetReminderSent(ctx, ev.ID, entities.ReminderPending))

	got, err := repo.FindByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ReminderSent, got.ReminderSent)
}

func TestEventRepository_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository()
	ev := &entities.Event{Name: "Quiz", ScheduledAt: time.Now(), MessageID: "1"}
	require.NoError(t, repo.Create(ctx, ev))

	require.NoError(t, repo.Delete(ctx, ev.ID))
	require.NoError(t, repo.Delete(ctx, ev.ID))
	require.NoError(t, repo.SetReminderSent(ctx, ev.ID, entities.ReminderSent))

	_, err := repo.FindByID(ctx, ev.ID)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}
