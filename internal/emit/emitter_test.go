package emit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"durussync/internal/catalog"
	"durussync/internal/storage"
)

func testEmitter(t *testing.T, pageSize, chunkSize int) *Emitter {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	e := New(t.TempDir(), pageSize, chunkSize, logrus.NewEntry(logger))
	e.Now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func member(p catalog.Playlist) catalog.Membership {
	return catalog.Membership{PlaylistID: p.ID, PlaylistName: p.Name, Category: p.Category}
}

// makeCatalog builds n videos all in one playlist, newest first.
// Video i (1-based) is published i days into January 2024, so v1 is
// the oldest.
func makeCatalog(n int) ([]catalog.Video, []catalog.Playlist) {
	playlist := catalog.Playlist{ID: "PL", Name: "شرح", Category: "حديث", VideoCount: n}
	videos := make([]catalog.Video, 0, n)
	for i := n; i >= 1; i-- {
		v := catalog.Video{
			ID:          fmt.Sprintf("v%d", i),
			Title:       fmt.Sprintf("درس %d", i),
			PublishedAt: time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC).Format(time.RFC3339),
			Duration:    "PT30M",
			ViewCount:   fmt.Sprintf("%d", i*10),
		}
		v.Playlists = []catalog.Membership{member(playlist)}
		v.PlaylistID = playlist.ID
		v.PlaylistName = playlist.Name
		v.Category = playlist.Category
		videos = append(videos, v)
	}
	return videos, []catalog.Playlist{playlist}
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	if err := storage.ReadJSON(path, "test", v); err != nil {
		t.Fatalf("ReadJSON(%s) error = %v", path, err)
	}
}

func TestEmit_PaginationCorrectness(t *testing.T) {
	// 50 videos at page size 24: pages of 24, 24, 2.
	videos, playlists := makeCatalog(50)
	e := testEmitter(t, 24, 500)

	if err := e.Emit(context.Background(), videos, playlists); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	var index catalog.SiteIndex
	readJSON(t, filepath.Join(e.Dir, "index.json"), &index)
	if index.Pagination.All != 3 {
		t.Errorf("pagination.all = %d, want 3", index.Pagination.All)
	}

	var seen []string
	for page := 1; page <= 3; page++ {
		var p catalog.Page
		readJSON(t, filepath.Join(e.Dir, "videos", "date", fmt.Sprintf("page-%d.json", page)), &p)

		if p.Total != 50 || p.TotalPages != 3 || p.PageSize != 24 || p.Page != page {
			t.Errorf("page %d metadata = %+v", page, p)
		}
		want := 24
		if page == 3 {
			want = 2
		}
		if len(p.Items) != want {
			t.Errorf("page %d has %d items, want %d", page, len(p.Items), want)
		}
		for _, item := range p.Items {
			seen = append(seen, item.ID)
		}
	}

	// Concatenating pages reproduces the sorted list exactly once each.
	if len(seen) != 50 {
		t.Fatalf("pages concatenate to %d items, want 50", len(seen))
	}
	for i, id := range seen {
		if want := fmt.Sprintf("v%d", 50-i); id != want {
			t.Fatalf("concatenated[%d] = %s, want %s", i, id, want)
		}
	}

	if _, err := os.Stat(filepath.Join(e.Dir, "videos", "date", "page-4.json")); !os.IsNotExist(err) {
		t.Error("page-4.json should not exist")
	}
}

func TestEmit_SortVariants(t *testing.T) {
	videos, playlists := makeCatalog(3)
	e := testEmitter(t, 24, 500)

	if err := e.Emit(context.Background(), videos, playlists); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	var oldest catalog.Page
	readJSON(t, filepath.Join(e.Dir, "videos", "oldest", "page-1.json"), &oldest)
	if oldest.Items[0].ID != "v1" {
		t.Errorf("oldest first item = %s, want v1", oldest.Items[0].ID)
	}

	var views catalog.Page
	readJSON(t, filepath.Join(e.Dir, "videos", "views", "page-1.json"), &views)
	if views.Items[0].ID != "v3" { // viewCount 30 is highest
		t.Errorf("views first item = %s, want v3", views.Items[0].ID)
	}
}

func TestEmit_NavPointers(t *testing.T) {
	videos, playlists := makeCatalog(3)
	e := testEmitter(t, 24, 500)

	if err := e.Emit(context.Background(), videos, playlists); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	// v2 is the 2nd of 3 in ascending publish order.
	var detail catalog.VideoDetail
	readJSON(t, filepath.Join(e.Dir, "video", "v2.json"), &detail)
	if detail.Nav.Index != 2 || detail.Nav.Total != 3 {
		t.Errorf("v2 nav = %+v, want index 2 of 3", detail.Nav)
	}
	if detail.Nav.Prev == nil || *detail.Nav.Prev != "v1" {
		t.Errorf("v2 nav.prev = %v, want v1", detail.Nav.Prev)
	}
	if detail.Nav.Next == nil || *detail.Nav.Next != "v3" {
		t.Errorf("v2 nav.next = %v, want v3", detail.Nav.Next)
	}

	// Endpoints get null neighbors.
	readJSON(t, filepath.Join(e.Dir, "video", "v1.json"), &detail)
	if detail.Nav.Prev != nil || detail.Nav.Index != 1 {
		t.Errorf("v1 nav = %+v, want first with null prev", detail.Nav)
	}
	readJSON(t, filepath.Join(e.Dir, "video", "v3.json"), &detail)
	if detail.Nav.Next != nil || detail.Nav.Index != 3 {
		t.Errorf("v3 nav = %+v, want last with null next", detail.Nav)
	}
}

func TestEmit_OrphanNav(t *testing.T) {
	videos := []catalog.Video{{
		ID:          "solo",
		Title:       "بدون قائمة",
		PublishedAt: "2024-01-01T00:00:00Z",
		ViewCount:   "5",
	}}
	e := testEmitter(t, 24, 500)

	if err := e.Emit(context.Background(), videos, nil); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	var detail catalog.VideoDetail
	readJSON(t, filepath.Join(e.Dir, "video", "solo.json"), &detail)
	want := catalog.Nav{Prev: nil, Next: nil, Index: 1, Total: 0}
	if detail.Nav != want {
		t.Errorf("orphan nav = %+v, want %+v", detail.Nav, want)
	}
}

func TestEmit_MultiMembershipScopes(t *testing.T) {
	// v2 is in both X (حديث) and Y (فقه); it must appear in both
	// category search files and both playlist scopes.
	x := catalog.Playlist{ID: "X", Name: "شرح حديث", Category: "حديث", VideoCount: 2}
	y := catalog.Playlist{ID: "Y", Name: "دروس فقه", Category: "فقه", VideoCount: 2}
	videos := []catalog.Video{
		{ID: "v3", PublishedAt: "2024-03-01T00:00:00Z", ViewCount: "1", Playlists: []catalog.Membership{member(y)}, PlaylistID: "Y", PlaylistName: y.Name, Category: y.Category},
		{ID: "v2", PublishedAt: "2024-02-01T00:00:00Z", ViewCount: "2", Playlists: []catalog.Membership{member(x), member(y)}, PlaylistID: "X", PlaylistName: x.Name, Category: x.Category},
		{ID: "v1", PublishedAt: "2024-01-01T00:00:00Z", ViewCount: "3", Playlists: []catalog.Membership{member(x)}, PlaylistID: "X", PlaylistName: x.Name, Category: x.Category},
	}
	e := testEmitter(t, 24, 500)

	if err := e.Emit(context.Background(), videos, []catalog.Playlist{x, y}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	var index catalog.SiteIndex
	readJSON(t, filepath.Join(e.Dir, "index.json"), &index)
	if index.Stats.TotalVideos != 3 {
		t.Errorf("totalVideos = %d, want 3", index.Stats.TotalVideos)
	}
	if index.Stats.LastUpdated != "2024-06-01T12:00:00Z" {
		t.Errorf("lastUpdated = %q", index.Stats.LastUpdated)
	}

	// Category search files use percent-encoded Arabic names.
	var hadith []catalog.CategorySearchEntry
	readJSON(t, filepath.Join(e.Dir, "search", "category", "%D8%AD%D8%AF%D9%8A%D8%AB.json"), &hadith)
	assertEntryIDs(t, "حديث", ids(hadith), "v2", "v1")

	var fiqh []catalog.CategorySearchEntry
	readJSON(t, filepath.Join(e.Dir, "search", "category", "%D9%81%D9%82%D9%87.json"), &fiqh)
	assertEntryIDs(t, "فقه", ids(fiqh), "v3", "v2")

	// v2 paginates under both playlists.
	var pageY catalog.Page
	readJSON(t, filepath.Join(e.Dir, "playlists", "Y", "date", "page-1.json"), &pageY)
	if len(pageY.Items) != 2 || pageY.Items[0].ID != "v3" || pageY.Items[1].ID != "v2" {
		t.Errorf("playlist Y page = %+v, want v3,v2", pageY.Items)
	}
}

func TestEmit_SearchChunking(t *testing.T) {
	videos, playlists := makeCatalog(5)
	e := testEmitter(t, 24, 2) // 5 videos at chunk size 2: 3 chunks

	if err := e.Emit(context.Background(), videos, playlists); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	var manifest catalog.SearchManifest
	readJSON(t, filepath.Join(e.Dir, "search", "manifest.json"), &manifest)
	if manifest.TotalChunks != 3 || manifest.ChunkSize != 2 || manifest.TotalVideos != 5 {
		t.Errorf("manifest = %+v", manifest)
	}

	var chunk catalog.SearchChunk
	readJSON(t, filepath.Join(e.Dir, "search", "chunk-1.json"), &chunk)
	if len(chunk.Entries) != 2 || chunk.Entries[0].ID != "v5" {
		t.Errorf("chunk 1 = %+v, want v5 first", chunk.Entries)
	}
	if chunk.Entries[0].PlaylistName != "شرح" || chunk.Entries[0].Duration != "PT30M" {
		t.Errorf("chunk entry missing summary fields: %+v", chunk.Entries[0])
	}

	readJSON(t, filepath.Join(e.Dir, "search", "chunk-3.json"), &chunk)
	if len(chunk.Entries) != 1 || chunk.Entries[0].ID != "v1" {
		t.Errorf("chunk 3 = %+v, want single v1", chunk.Entries)
	}
}

func TestEmit_EmptyScopesEmitNoPages(t *testing.T) {
	// A playlist with no resolvable videos gets no listing directory
	// and no search file.
	empty := catalog.Playlist{ID: "EMPTY", Name: "فارغة", Category: "متنوع", VideoCount: 0}
	videos, playlists := makeCatalog(1)
	e := testEmitter(t, 24, 500)

	if err := e.Emit(context.Background(), videos, append(playlists, empty)); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(e.Dir, "playlists", "EMPTY")); !os.IsNotExist(err) {
		t.Error("empty playlist listing directory should not exist")
	}
	if _, err := os.Stat(filepath.Join(e.Dir, "search", "playlist", "EMPTY.json")); !os.IsNotExist(err) {
		t.Error("empty playlist search file should not exist")
	}

	// The empty playlist still appears in the index with count 0, but
	// is not counted as a resolvable playlist.
	var index catalog.SiteIndex
	readJSON(t, filepath.Join(e.Dir, "index.json"), &index)
	if index.Stats.TotalPlaylists != 1 {
		t.Errorf("totalPlaylists = %d, want 1", index.Stats.TotalPlaylists)
	}
	if index.Pagination.ByPlaylist["EMPTY"] != 0 {
		t.Errorf("byPlaylist[EMPTY] = %d, want 0", index.Pagination.ByPlaylist["EMPTY"])
	}
	// Its category has no videos either: a category search file is
	// still written, as an empty array.
	var entries []catalog.CategorySearchEntry
	readJSON(t, filepath.Join(e.Dir, "search", "category", "%D9%85%D8%AA%D9%86%D9%88%D8%B9.json"), &entries)
	if entries == nil || len(entries) != 0 {
		t.Errorf("empty category search = %v, want []", entries)
	}
}

func ids(entries []catalog.CategorySearchEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func assertEntryIDs(t *testing.T, scope string, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s entries = %v, want %v", scope, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s entries = %v, want %v", scope, got, want)
			return
		}
	}
}
