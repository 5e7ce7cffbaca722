package storage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"durussync/internal/catalog"
)

// PriorOutput is whatever could be recovered from the previous run's
// emitted tree. Empty slices, not errors, signal "nothing there": any
// unreadable piece simply degrades the next run toward a full sync.
type PriorOutput struct {
	State     *SyncState
	Videos    []catalog.Video
	Playlists []catalog.Playlist
}

// LoadPrior reconstructs the previous catalog from the data root. The
// newest-first listing pages supply the id set in catalog order; the
// per-video detail files supply descriptions, tags, and the full
// membership lists that pages do not carry. A video whose detail file
// is missing falls back to its page summary.
func LoadPrior(dataDir string) *PriorOutput {
	prior := &PriorOutput{State: NewStateStore(dataDir).Load()}

	var index catalog.SiteIndex
	if err := ReadJSON(filepath.Join(dataDir, "index.json"), "index", &index); err == nil {
		for _, p := range index.Playlists {
			prior.Playlists = append(prior.Playlists, catalog.Playlist{
				ID:         p.ID,
				Name:       p.Name,
				Category:   p.Category,
				VideoCount: p.VideoCount,
			})
		}
	}

	for _, path := range pageFiles(filepath.Join(dataDir, "videos", "date")) {
		var page catalog.Page
		if err := ReadJSON(path, "page", &page); err != nil {
			continue
		}
		for _, item := range page.Items {
			prior.Videos = append(prior.Videos, loadVideo(dataDir, item))
		}
	}

	return prior
}

// pageFiles lists page-N.json files under dir in page-number order.
func pageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "page-") && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return pageNumber(names[i]) < pageNumber(names[j])
	})

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}
	return paths
}

func pageNumber(name string) int {
	n := 0
	for _, r := range strings.TrimSuffix(strings.TrimPrefix(name, "page-"), ".json") {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func loadVideo(dataDir string, item catalog.PageItem) catalog.Video {
	var detail catalog.VideoDetail
	path := filepath.Join(dataDir, "video", item.ID+".json")
	if err := ReadJSON(path, "video", &detail); err == nil {
		return detail.Video
	}

	video := catalog.Video{
		ID:           item.ID,
		Title:        item.Title,
		PublishedAt:  item.PublishedAt,
		Duration:     item.Duration,
		Thumbnail:    item.Thumbnail,
		ViewCount:    item.ViewCount,
		PlaylistID:   item.PlaylistID,
		PlaylistName: item.PlaylistName,
		Category:     item.Category,
	}
	if item.PlaylistID != "" {
		video.Playlists = []catalog.Membership{{
			PlaylistID:   item.PlaylistID,
			PlaylistName: item.PlaylistName,
			Category:     item.Category,
		}}
	}
	return video
}
