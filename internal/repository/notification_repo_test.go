package repository

import (
	"context"
	"testing"
	"time"

	"github.com/citysafe/inspection-backend/internal/common"
	"github.com/citysafe/inspection-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_Lifecycle(t *testing.T) {
	repo := NewNotificationRepository(setupTestDB(t))
	ctx := context.Background()

	first, err := repo.CreateForUser(ctx, &domain.MessageCenter{Title: "督办通知：WO20240310001", Content: "a"}, 7)
	require.NoError(t, err)
	_, err = repo.CreateForUser(ctx, &domain.MessageCenter{Title: "督办通知：WO20240310002", Content: "b"}, 7)
	require.NoError(t, err)
	_, err = repo.CreateForUser(ctx, &domain.MessageCenter{Title: "other", Content: "c"}, 8)
	require.NoError(t, err)

	items, total, err := repo.ListForUser(ctx, 7, nil, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.False(t, items[0].IsRead)

	unread, err := repo.CountUnread(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	now := time.Now()
	require.NoError(t, repo.MarkRead(ctx, 7, first.ID, now))
	// repeat is a no-op
	require.NoError(t, repo.MarkRead(ctx, 7, first.ID, now))

	unread, err = repo.CountUnread(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	// a user cannot mark another user's delivery
	assert.ErrorIs(t, repo.MarkRead(ctx, 8, first.ID, now), common.ErrNotificationNotFound)

	n, err := repo.MarkAllRead(ctx, 7, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	unread, err = repo.CountUnread(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
