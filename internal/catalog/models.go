// Package catalog defines the video catalog domain model and the
// assembly logic that turns raw playlist listings into a complete,
// membership-annotated catalog.
package catalog

import (
	"sort"
	"strconv"
	"time"
)

// Membership records that a video belongs to one playlist. A video may
// carry zero, one, or many of these; order is discovery order.
type Membership struct {
	PlaylistID   string `json:"playlistId"`
	PlaylistName string `json:"playlistName"`
	Category     string `json:"category"`
}

// Video is a single catalog entry. Count fields stay strings and
// PublishedAt stays an RFC3339 string because the emitted JSON must
// match what the site's data layer already consumes.
type Video struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	PublishedAt  string   `json:"publishedAt"`
	Duration     string   `json:"duration"` // ISO-8601 duration, e.g. PT1H2M3S
	Thumbnail    string   `json:"thumbnail"`
	ViewCount    string   `json:"viewCount"`
	LikeCount    string   `json:"likeCount,omitempty"`
	CommentCount string   `json:"commentCount,omitempty"`
	Tags         []string `json:"tags,omitempty"`

	// First-registered membership, denormalized for listing pages and
	// sequential navigation.
	PlaylistID   string `json:"playlistId,omitempty"`
	PlaylistName string `json:"playlistName,omitempty"`
	Category     string `json:"category,omitempty"`

	// Full membership list. Empty for orphaned videos.
	Playlists []Membership `json:"playlists,omitempty"`
}

// PublishedTime parses the publication timestamp. Zero time on parse
// failure, which sorts last in newest-first order.
func (v *Video) PublishedTime() time.Time {
	t, err := time.Parse(time.RFC3339, v.PublishedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Views parses the view count for sorting. Unparseable counts as zero.
func (v *Video) Views() int64 {
	n, err := strconv.ParseInt(v.ViewCount, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// InCategory reports whether any membership carries the category.
func (v *Video) InCategory(category string) bool {
	for _, m := range v.Playlists {
		if m.Category == category {
			return true
		}
	}
	return false
}

// InPlaylist reports whether any membership references the playlist.
func (v *Video) InPlaylist(playlistID string) bool {
	for _, m := range v.Playlists {
		if m.PlaylistID == playlistID {
			return true
		}
	}
	return false
}

// Playlist is a source playlist. VideoCount starts as the source's
// nominal count and is recomputed to the resolvable count before
// emission (see RecountPlaylists).
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	VideoCount  int    `json:"videoCount"`
	Category    string `json:"category"`
}

// SortByDateDesc orders videos newest first, in place.
func SortByDateDesc(videos []Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].PublishedTime().After(videos[j].PublishedTime())
	})
}

// SortByDateAsc orders videos oldest first, in place.
func SortByDateAsc(videos []Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].PublishedTime().Before(videos[j].PublishedTime())
	})
}

// SortByViewsDesc orders videos most-viewed first, in place.
func SortByViewsDesc(videos []Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].Views() > videos[j].Views()
	})
}
