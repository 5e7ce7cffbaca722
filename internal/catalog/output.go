package catalog

// Wire shapes of the emitted JSON files. Field names and order are
// pinned by the site's static-data layer; changing them breaks every
// deployed client.

// PageItem is the trimmed per-video projection used by listing pages.
type PageItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	PublishedAt  string `json:"publishedAt"`
	Duration     string `json:"duration"`
	Thumbnail    string `json:"thumbnail"`
	ViewCount    string `json:"viewCount"`
	PlaylistID   string `json:"playlistId,omitempty"`
	PlaylistName string `json:"playlistName,omitempty"`
	Category     string `json:"category,omitempty"`
}

// Page is one listing page file.
type Page struct {
	Items      []PageItem `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

// Summarize produces the listing-page projection of a video.
func (v *Video) Summarize() PageItem {
	return PageItem{
		ID:           v.ID,
		Title:        v.Title,
		PublishedAt:  v.PublishedAt,
		Duration:     v.Duration,
		Thumbnail:    v.Thumbnail,
		ViewCount:    v.ViewCount,
		PlaylistID:   v.PlaylistID,
		PlaylistName: v.PlaylistName,
		Category:     v.Category,
	}
}

// Nav points at a video's neighbors within its first playlist, ordered
// by ascending publication date.
type Nav struct {
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
	Index int     `json:"index"`
	Total int     `json:"total"`
}

// VideoDetail is the per-video detail file: the full video plus nav.
type VideoDetail struct {
	Video
	Nav Nav `json:"nav"`
}

// PlaylistSummary is the per-playlist entry in the site index.
type PlaylistSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	VideoCount int    `json:"videoCount"`
}

// IndexStats is the aggregate block of the site index.
type IndexStats struct {
	TotalVideos     int    `json:"totalVideos"`
	TotalPlaylists  int    `json:"totalPlaylists"`
	CategoriesCount int    `json:"categoriesCount"`
	LastUpdated     string `json:"lastUpdated"`
}

// IndexPagination gives total page counts per scope at the fixed page
// size.
type IndexPagination struct {
	All        int            `json:"all"`
	ByCategory map[string]int `json:"byCategory"`
	ByPlaylist map[string]int `json:"byPlaylist"`
}

// SiteIndex is the top-level manifest consumed before anything else.
type SiteIndex struct {
	Stats      IndexStats        `json:"stats"`
	Categories []string          `json:"categories"`
	Playlists  []PlaylistSummary `json:"playlists"`
	Pagination IndexPagination   `json:"pagination"`
}

// SearchManifest describes the chunked flat search index.
type SearchManifest struct {
	TotalVideos int `json:"totalVideos"`
	TotalChunks int `json:"totalChunks"`
	ChunkSize   int `json:"chunkSize"`
}

// SearchEntry is the compact projection in search chunks. Short field
// names keep chunk files small.
type SearchEntry struct {
	ID           string `json:"id"`
	Title        string `json:"t"`
	Category     string `json:"c,omitempty"`
	PlaylistID   string `json:"p,omitempty"`
	Duration     string `json:"d"`
	Thumbnail    string `json:"th"`
	ViewCount    string `json:"vc"`
	PublishedAt  string `json:"pa"`
	PlaylistName string `json:"pn,omitempty"`
}

// SearchChunk is one slice of the flat search index.
type SearchChunk struct {
	Entries []SearchEntry `json:"entries"`
}

// CategorySearchEntry is the projection in per-category search files.
// The category is implied by the file path.
type CategorySearchEntry struct {
	ID           string `json:"id"`
	Title        string `json:"t"`
	Duration     string `json:"d"`
	Thumbnail    string `json:"th"`
	ViewCount    string `json:"vc"`
	PublishedAt  string `json:"pa"`
	PlaylistID   string `json:"p,omitempty"`
	PlaylistName string `json:"pn,omitempty"`
}

// PlaylistSearchEntry is the projection in per-playlist search files.
type PlaylistSearchEntry struct {
	ID          string `json:"id"`
	Title       string `json:"t"`
	Duration    string `json:"d"`
	Thumbnail   string `json:"th"`
	ViewCount   string `json:"vc"`
	PublishedAt string `json:"pa"`
}
