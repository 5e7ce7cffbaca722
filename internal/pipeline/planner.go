// Package pipeline orchestrates a sync run: decide the sync mode,
// assemble the catalog, emit the static tree, persist the new state.
package pipeline

import (
	"context"
	"time"

	"durussync/internal/catalog"
	"durussync/internal/storage"
	"durussync/internal/youtube"
)

// Mode is the sync mode the planner selected.
type Mode string

const (
	// ModeFull re-derives the entire catalog and all memberships.
	ModeFull Mode = "full"
	// ModeIncremental fetches only videos newer than the last sync.
	ModeIncremental Mode = "incremental"
	// ModeNone found no new videos; files are re-emitted from the
	// existing catalog.
	ModeNone Mode = "none"
)

// Plan is the planner's decision.
type Plan struct {
	Mode        Mode
	NewVideoIDs []string
}

// RecentLister supplies the bounded recent-uploads window the
// incremental check inspects.
type RecentLister interface {
	ListRecentVideoIDs(ctx context.Context, limit int) ([]youtube.RecentVideo, error)
}

// PlanSync decides between full, incremental, and no-op sync.
//
// A playlist-count change forces a full sync: it is a cheap,
// conservative proxy for a structural change (playlist added or
// removed) that per-video diffing cannot safely capture, and
// membership recomputation requires re-walking all playlists anyway.
func PlanSync(ctx context.Context, prior *storage.SyncState, playlists []catalog.Playlist, recent RecentLister, window int) (Plan, error) {
	if prior == nil || prior.PlaylistCount != len(playlists) {
		return Plan{Mode: ModeFull}, nil
	}

	cutoff, err := time.Parse(time.RFC3339, prior.LatestVideoDate)
	if err != nil {
		// Unusable watermark; treat the state as absent.
		return Plan{Mode: ModeFull}, nil
	}

	items, err := recent.ListRecentVideoIDs(ctx, window)
	if err != nil {
		return Plan{}, err
	}

	var newIDs []string
	for _, item := range items {
		published, err := time.Parse(time.RFC3339, item.PublishedAt)
		if err != nil {
			continue
		}
		if published.After(cutoff) {
			newIDs = append(newIDs, item.ID)
		}
	}

	if len(newIDs) == 0 {
		return Plan{Mode: ModeNone}, nil
	}
	return Plan{Mode: ModeIncremental, NewVideoIDs: newIDs}, nil
}
