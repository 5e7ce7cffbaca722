package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"durussync/internal/catalog"
	"durussync/internal/storage"
	"durussync/internal/youtube"
)

type fakeRecent struct {
	items []youtube.RecentVideo
	err   error
}

func (f *fakeRecent) ListRecentVideoIDs(ctx context.Context, limit int) ([]youtube.RecentVideo, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.items) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}

func somePlaylists(n int) []catalog.Playlist {
	playlists := make([]catalog.Playlist, n)
	for i := range playlists {
		playlists[i] = catalog.Playlist{ID: string(rune('A' + i))}
	}
	return playlists
}

func TestPlanSync_NoPriorStateIsFull(t *testing.T) {
	plan, err := PlanSync(context.Background(), nil, somePlaylists(3), &fakeRecent{}, 100)

	require.NoError(t, err)
	assert.Equal(t, ModeFull, plan.Mode)
	assert.Empty(t, plan.NewVideoIDs)
}

func TestPlanSync_PlaylistCountChangeIsFull(t *testing.T) {
	prior := &storage.SyncState{PlaylistCount: 2, LatestVideoDate: "2024-01-01T00:00:00Z"}

	// The recent lister must not even be consulted.
	recent := &fakeRecent{err: errors.New("should not be called")}
	plan, err := PlanSync(context.Background(), prior, somePlaylists(3), recent, 100)

	require.NoError(t, err)
	assert.Equal(t, ModeFull, plan.Mode)
}

func TestPlanSync_FiltersByWatermark(t *testing.T) {
	prior := &storage.SyncState{PlaylistCount: 2, LatestVideoDate: "2024-01-01T00:00:00Z"}
	recent := &fakeRecent{items: []youtube.RecentVideo{
		{ID: "new1", PublishedAt: "2024-02-01T00:00:00Z"},
		{ID: "new2", PublishedAt: "2024-01-02T00:00:00Z"},
		{ID: "boundary", PublishedAt: "2024-01-01T00:00:00Z"}, // not strictly newer
		{ID: "old", PublishedAt: "2023-12-01T00:00:00Z"},
		{ID: "new3", PublishedAt: "2024-03-01T00:00:00Z"},
	}}

	plan, err := PlanSync(context.Background(), prior, somePlaylists(2), recent, 100)

	require.NoError(t, err)
	assert.Equal(t, ModeIncremental, plan.Mode)
	assert.Equal(t, []string{"new1", "new2", "new3"}, plan.NewVideoIDs)
}

func TestPlanSync_NoNewVideosIsNone(t *testing.T) {
	prior := &storage.SyncState{PlaylistCount: 1, LatestVideoDate: "2024-06-01T00:00:00Z"}
	recent := &fakeRecent{items: []youtube.RecentVideo{
		{ID: "old", PublishedAt: "2024-05-01T00:00:00Z"},
	}}

	plan, err := PlanSync(context.Background(), prior, somePlaylists(1), recent, 100)

	require.NoError(t, err)
	assert.Equal(t, ModeNone, plan.Mode)
}

func TestPlanSync_CorruptWatermarkIsFull(t *testing.T) {
	prior := &storage.SyncState{PlaylistCount: 1, LatestVideoDate: "not-a-timestamp"}

	plan, err := PlanSync(context.Background(), prior, somePlaylists(1), &fakeRecent{}, 100)

	require.NoError(t, err)
	assert.Equal(t, ModeFull, plan.Mode)
}

func TestPlanSync_RecentListerErrorPropagates(t *testing.T) {
	prior := &storage.SyncState{PlaylistCount: 1, LatestVideoDate: "2024-01-01T00:00:00Z"}
	recent := &fakeRecent{err: errors.New("quota exceeded")}

	_, err := PlanSync(context.Background(), prior, somePlaylists(1), recent, 100)
	assert.Error(t, err)
}

func TestPlanSync_RespectsWindow(t *testing.T) {
	prior := &storage.SyncState{PlaylistCount: 1, LatestVideoDate: "2024-01-01T00:00:00Z"}
	recent := &fakeRecent{items: []youtube.RecentVideo{
		{ID: "a", PublishedAt: "2024-02-01T00:00:00Z"},
		{ID: "b", PublishedAt: "2024-02-02T00:00:00Z"},
		{ID: "c", PublishedAt: "2024-02-03T00:00:00Z"},
	}}

	plan, err := PlanSync(context.Background(), prior, somePlaylists(1), recent, 2)

	require.NoError(t, err)
	assert.Len(t, plan.NewVideoIDs, 2)
}
