package catalog

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ItemSource supplies playlist membership listings and video details.
// Implemented by the YouTube client; tests substitute fakes.
type ItemSource interface {
	ListPlaylistItemIDs(ctx context.Context, playlistID string) ([]string, error)
	FetchVideoDetails(ctx context.Context, ids []string) ([]Video, error)
}

// AssembleFull walks every playlist's member list, records every
// membership a video id is claimed by, and fetches details for the
// complete unique id set. Videos whose ids do not resolve to fetchable
// details are silently dropped (the source reports stale member lists).
func AssembleFull(ctx context.Context, src ItemSource, playlists []Playlist, log *logrus.Entry) ([]Video, error) {
	memberships := make(map[string][]Membership)
	var uniqueIDs []string

	for _, p := range playlists {
		ids, err := src.ListPlaylistItemIDs(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("list playlist %s items: %w", p.ID, err)
		}
		log.WithFields(logrus.Fields{"playlist": p.Name, "videos": len(ids)}).Info("walked playlist")

		for _, id := range ids {
			if _, seen := memberships[id]; !seen {
				uniqueIDs = append(uniqueIDs, id)
			}
			memberships[id] = append(memberships[id], Membership{
				PlaylistID:   p.ID,
				PlaylistName: p.Name,
				Category:     p.Category,
			})
		}
	}

	videos, err := src.FetchVideoDetails(ctx, uniqueIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch video details: %w", err)
	}

	applyMemberships(videos, memberships)
	SortByDateDesc(videos)
	return videos, nil
}

// AssembleIncremental fetches details only for newIDs and merges them
// with the prior catalog. The membership map is rebuilt by re-walking
// every playlist's member list; the walk is already required to place
// the new videos, so prior videos get their memberships refreshed at
// no extra cost.
func AssembleIncremental(ctx context.Context, src ItemSource, playlists []Playlist, newIDs []string, prior []Video, log *logrus.Entry) ([]Video, error) {
	memberships := make(map[string][]Membership)

	for _, p := range playlists {
		ids, err := src.ListPlaylistItemIDs(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("list playlist %s items: %w", p.ID, err)
		}
		for _, id := range ids {
			memberships[id] = append(memberships[id], Membership{
				PlaylistID:   p.ID,
				PlaylistName: p.Name,
				Category:     p.Category,
			})
		}
	}

	newVideos, err := src.FetchVideoDetails(ctx, newIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch video details: %w", err)
	}
	log.WithField("videos", len(newVideos)).Info("fetched new videos")

	combined := make([]Video, 0, len(newVideos)+len(prior))
	combined = append(combined, newVideos...)
	combined = append(combined, prior...)

	applyMemberships(combined, memberships)
	SortByDateDesc(combined)
	return combined, nil
}

// RefreshMemberships rewrites the name and category on each video's
// existing membership records from the freshly-listed playlists, so a
// no-change run still picks up playlist renames. Memberships whose
// playlist no longer exists are kept as-is.
func RefreshMemberships(videos []Video, playlists []Playlist) []Video {
	byID := make(map[string]Playlist, len(playlists))
	for _, p := range playlists {
		byID[p.ID] = p
	}

	refreshed := make([]Video, len(videos))
	copy(refreshed, videos)
	for i := range refreshed {
		memberships := make([]Membership, len(refreshed[i].Playlists))
		copy(memberships, refreshed[i].Playlists)
		refreshed[i].Playlists = memberships
		for j, m := range refreshed[i].Playlists {
			if p, ok := byID[m.PlaylistID]; ok {
				refreshed[i].Playlists[j].PlaylistName = p.Name
				refreshed[i].Playlists[j].Category = p.Category
			}
		}
		setFirstMembership(&refreshed[i])
	}
	SortByDateDesc(refreshed)
	return refreshed
}

// RecountPlaylists replaces each playlist's nominal video count with
// the number of catalog videos whose membership list references it.
// The source's count may include private or deleted videos that never
// resolved to details.
func RecountPlaylists(playlists []Playlist, videos []Video) []Playlist {
	counts := make(map[string]int, len(playlists))
	for _, v := range videos {
		for _, m := range v.Playlists {
			counts[m.PlaylistID]++
		}
	}

	recounted := make([]Playlist, len(playlists))
	copy(recounted, playlists)
	for i := range recounted {
		recounted[i].VideoCount = counts[recounted[i].ID]
	}
	return recounted
}

// applyMemberships attaches membership lists and the first-membership
// summary fields. Videos absent from the map become orphans with no
// category.
func applyMemberships(videos []Video, memberships map[string][]Membership) {
	for i := range videos {
		videos[i].Playlists = memberships[videos[i].ID]
		setFirstMembership(&videos[i])
	}
}

func setFirstMembership(v *Video) {
	if len(v.Playlists) == 0 {
		v.PlaylistID = ""
		v.PlaylistName = ""
		v.Category = ""
		return
	}
	first := v.Playlists[0]
	v.PlaylistID = first.PlaylistID
	v.PlaylistName = first.PlaylistName
	v.Category = first.Category
}
