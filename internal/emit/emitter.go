// Package emit fans the assembled catalog out into the static JSON
// tree the site consumes: the top-level index, listing pages per
// (scope, sort), per-video detail files with sequential navigation,
// and the chunked search indexes.
package emit

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"durussync/internal/catalog"
	"durussync/internal/storage"
)

// sliceConcurrency bounds parallel (scope, sort) page writers.
const sliceConcurrency = 8

// Emitter writes the static data tree under Dir. The four sub-outputs
// are independent and run in parallel; any write failure fails the
// whole emit so a half-consistent tree is never published as a
// success.
type Emitter struct {
	Dir       string
	PageSize  int
	ChunkSize int

	// Now stamps the index's lastUpdated field. Overridable in tests.
	Now func() time.Time

	Log *logrus.Entry
}

// New builds an emitter with the given fixed sizes.
func New(dir string, pageSize, chunkSize int, log *logrus.Entry) *Emitter {
	return &Emitter{
		Dir:       dir,
		PageSize:  pageSize,
		ChunkSize: chunkSize,
		Now:       time.Now,
		Log:       log,
	}
}

// Emit writes every output for the catalog. videos must already be
// sorted newest first and playlists must carry recomputed resolvable
// counts.
func (e *Emitter) Emit(ctx context.Context, videos []catalog.Video, playlists []catalog.Playlist) error {
	byDate := videos
	byOldest := sortedCopy(videos, catalog.SortByDateAsc)
	byViews := sortedCopy(videos, catalog.SortByViewsDesc)
	categories := catalog.CategoriesOf(playlists)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.writeIndex(byDate, playlists, categories) })
	g.Go(func() error { return e.writeListingPages(gctx, byDate, byOldest, byViews, playlists, categories) })
	g.Go(func() error { return e.writeDetails(gctx, byDate) })
	g.Go(func() error { return e.writeSearch(byDate, playlists, categories) })
	return g.Wait()
}

func sortedCopy(videos []catalog.Video, sortFn func([]catalog.Video)) []catalog.Video {
	c := make([]catalog.Video, len(videos))
	copy(c, videos)
	sortFn(c)
	return c
}

// pageCount is ceil(total / PageSize).
func (e *Emitter) pageCount(total int) int {
	return (total + e.PageSize - 1) / e.PageSize
}

func filterByCategory(videos []catalog.Video, category string) []catalog.Video {
	var filtered []catalog.Video
	for _, v := range videos {
		if v.InCategory(category) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

func filterByPlaylist(videos []catalog.Video, playlistID string) []catalog.Video {
	var filtered []catalog.Video
	for _, v := range videos {
		if v.InPlaylist(playlistID) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// writeIndex emits the top-level manifest.
func (e *Emitter) writeIndex(byDate []catalog.Video, playlists []catalog.Playlist, categories []string) error {
	resolvable := 0
	summaries := make([]catalog.PlaylistSummary, 0, len(playlists))
	byPlaylist := make(map[string]int, len(playlists))
	for _, p := range playlists {
		if p.VideoCount > 0 {
			resolvable++
		}
		summaries = append(summaries, catalog.PlaylistSummary{
			ID:         p.ID,
			Name:       p.Name,
			Category:   p.Category,
			VideoCount: p.VideoCount,
		})
		byPlaylist[p.ID] = e.pageCount(p.VideoCount)
	}

	byCategory := make(map[string]int, len(categories))
	for _, cat := range categories {
		byCategory[cat] = e.pageCount(len(filterByCategory(byDate, cat)))
	}

	index := catalog.SiteIndex{
		Stats: catalog.IndexStats{
			TotalVideos:     len(byDate),
			TotalPlaylists:  resolvable,
			CategoriesCount: len(categories),
			LastUpdated:     e.Now().UTC().Format(time.RFC3339),
		},
		Categories: categories,
		Playlists:  summaries,
		Pagination: catalog.IndexPagination{
			All:        e.pageCount(len(byDate)),
			ByCategory: byCategory,
			ByPlaylist: byPlaylist,
		},
	}

	e.Log.Info("writing index.json")
	return storage.WriteJSON(filepath.Join(e.Dir, "index.json"), "index", index)
}

// writeListingPages emits the {global, category, playlist} × {date,
// oldest, views} page files. A (scope, sort) pair with no matching
// videos emits nothing.
func (e *Emitter) writeListingPages(ctx context.Context, byDate, byOldest, byViews []catalog.Video, playlists []catalog.Playlist, categories []string) error {
	variants := []struct {
		name string
		data []catalog.Video
	}{
		{"date", byDate},
		{"oldest", byOldest},
		{"views", byViews},
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(sliceConcurrency)

	for _, variant := range variants {
		variant := variant
		e.Log.WithField("sort", variant.name).Info("writing listing pages")

		g.Go(func() error {
			return e.writePages(filepath.Join(e.Dir, "videos", variant.name), variant.data)
		})

		for _, cat := range categories {
			filtered := filterByCategory(variant.data, cat)
			if len(filtered) == 0 {
				continue
			}
			dir := filepath.Join(e.Dir, "categories", url.PathEscape(cat), variant.name)
			g.Go(func() error { return e.writePages(dir, filtered) })
		}

		for _, p := range playlists {
			filtered := filterByPlaylist(variant.data, p.ID)
			if len(filtered) == 0 {
				continue
			}
			dir := filepath.Join(e.Dir, "playlists", p.ID, variant.name)
			g.Go(func() error { return e.writePages(dir, filtered) })
		}
	}

	return g.Wait()
}

// writePages slices videos into fixed-size page files under dir.
func (e *Emitter) writePages(dir string, videos []catalog.Video) error {
	totalPages := e.pageCount(len(videos))

	for page := 1; page <= totalPages; page++ {
		start := (page - 1) * e.PageSize
		end := start + e.PageSize
		if end > len(videos) {
			end = len(videos)
		}

		items := make([]catalog.PageItem, 0, end-start)
		for i := start; i < end; i++ {
			items = append(items, videos[i].Summarize())
		}

		file := catalog.Page{
			Items:      items,
			Total:      len(videos),
			Page:       page,
			PageSize:   e.PageSize,
			TotalPages: totalPages,
		}
		path := filepath.Join(dir, fmt.Sprintf("page-%d.json", page))
		if err := storage.WriteJSON(path, "page", file); err != nil {
			return err
		}
	}
	return nil
}

// writeDetails emits one detail file per video. The nav block walks
// the video's first playlist in ascending publication order; orphans
// get a null-neighbor nav with total 0.
func (e *Emitter) writeDetails(ctx context.Context, videos []catalog.Video) error {
	e.Log.Info("writing video detail files")

	// Group by first membership, then order each group oldest first
	// so prev/next follow the lesson sequence.
	groups := make(map[string][]catalog.Video)
	for _, v := range videos {
		if v.PlaylistID != "" {
			groups[v.PlaylistID] = append(groups[v.PlaylistID], v)
		}
	}
	position := make(map[string]int, len(videos))
	for _, group := range groups {
		catalog.SortByDateAsc(group)
		for i, v := range group {
			position[v.ID] = i
		}
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(sliceConcurrency)

	for _, v := range videos {
		v := v
		g.Go(func() error {
			detail := catalog.VideoDetail{
				Video: v,
				Nav:   catalog.Nav{Index: 1, Total: 0},
			}
			if group, ok := groups[v.PlaylistID]; ok {
				idx := position[v.ID]
				detail.Nav.Index = idx + 1
				detail.Nav.Total = len(group)
				if idx > 0 {
					detail.Nav.Prev = &group[idx-1].ID
				}
				if idx < len(group)-1 {
					detail.Nav.Next = &group[idx+1].ID
				}
			}
			path := filepath.Join(e.Dir, "video", v.ID+".json")
			return storage.WriteJSON(path, "video", detail)
		})
	}
	return g.Wait()
}

// writeSearch emits the chunk manifest, the newest-first chunks, and
// the unchunked per-category and per-playlist indexes.
func (e *Emitter) writeSearch(byDate []catalog.Video, playlists []catalog.Playlist, categories []string) error {
	e.Log.Info("writing search indexes")

	totalChunks := (len(byDate) + e.ChunkSize - 1) / e.ChunkSize
	manifest := catalog.SearchManifest{
		TotalVideos: len(byDate),
		TotalChunks: totalChunks,
		ChunkSize:   e.ChunkSize,
	}
	if err := storage.WriteJSON(filepath.Join(e.Dir, "search", "manifest.json"), "search", manifest); err != nil {
		return err
	}

	for i := 0; i < totalChunks; i++ {
		start := i * e.ChunkSize
		end := start + e.ChunkSize
		if end > len(byDate) {
			end = len(byDate)
		}

		entries := make([]catalog.SearchEntry, 0, end-start)
		for _, v := range byDate[start:end] {
			entries = append(entries, catalog.SearchEntry{
				ID:           v.ID,
				Title:        v.Title,
				Category:     v.Category,
				PlaylistID:   v.PlaylistID,
				Duration:     v.Duration,
				Thumbnail:    v.Thumbnail,
				ViewCount:    v.ViewCount,
				PublishedAt:  v.PublishedAt,
				PlaylistName: v.PlaylistName,
			})
		}
		path := filepath.Join(e.Dir, "search", fmt.Sprintf("chunk-%d.json", i+1))
		if err := storage.WriteJSON(path, "search", catalog.SearchChunk{Entries: entries}); err != nil {
			return err
		}
	}

	for _, cat := range categories {
		filtered := filterByCategory(byDate, cat)
		entries := make([]catalog.CategorySearchEntry, 0, len(filtered))
		for _, v := range filtered {
			entries = append(entries, catalog.CategorySearchEntry{
				ID:           v.ID,
				Title:        v.Title,
				Duration:     v.Duration,
				Thumbnail:    v.Thumbnail,
				ViewCount:    v.ViewCount,
				PublishedAt:  v.PublishedAt,
				PlaylistID:   v.PlaylistID,
				PlaylistName: v.PlaylistName,
			})
		}
		path := filepath.Join(e.Dir, "search", "category", url.PathEscape(cat)+".json")
		if err := storage.WriteJSON(path, "search", entries); err != nil {
			return err
		}
	}

	for _, p := range playlists {
		filtered := filterByPlaylist(byDate, p.ID)
		if len(filtered) == 0 {
			continue
		}
		entries := make([]catalog.PlaylistSearchEntry, 0, len(filtered))
		for _, v := range filtered {
			entries = append(entries, catalog.PlaylistSearchEntry{
				ID:          v.ID,
				Title:       v.Title,
				Duration:    v.Duration,
				Thumbnail:   v.Thumbnail,
				ViewCount:   v.ViewCount,
				PublishedAt: v.PublishedAt,
			})
		}
		path := filepath.Join(e.Dir, "search", "playlist", p.ID+".json")
		if err := storage.WriteJSON(path, "search", entries); err != nil {
			return err
		}
	}

	return nil
}
