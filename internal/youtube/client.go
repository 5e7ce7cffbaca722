// Package youtube wraps the YouTube Data API v3 for the sync pipeline.
// Callers never see pagination cursors: list operations follow
// nextPageToken until exhausted.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"durussync/internal/catalog"
)

const (
	// apiPageSize is the maximum page size the list endpoints accept.
	apiPageSize = 50
	// detailBatchSize is the videos.list per-request id limit.
	detailBatchSize = 50
	// detailConcurrency bounds concurrent detail batches.
	detailConcurrency = 4

	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// Sentinel errors.
var (
	ErrNoCredential    = errors.New("youtube: api key required")
	ErrUploadsNotFound = errors.New("youtube: uploads playlist not found")
)

// RecentVideo is a recent-uploads entry used by the incremental
// planner.
type RecentVideo struct {
	ID          string
	PublishedAt string
}

// Client is a rate-limited YouTube Data API client scoped to one
// channel. The response cache holds the uploads-playlist id and
// playlist member listings so repeated lookups within a process don't
// spend quota twice.
type Client struct {
	svc       *yt.Service
	channelID string
	limiter   *rate.Limiter
	cache     *gocache.Cache
}

// NewClient builds a client for the channel. requestsPerSecond paces
// outgoing calls to stay friendly to the daily quota.
func NewClient(ctx context.Context, apiKey, channelID string, requestsPerSecond float64) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoCredential
	}

	svc, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Client{
		svc:       svc,
		channelID: channelID,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		cache:     gocache.New(cacheTTL, cacheCleanup),
	}, nil
}

// ListPlaylists returns every playlist of the channel, classified by
// name. The video count is the source's nominal count and may be stale
// relative to resolvable videos.
func (c *Client) ListPlaylists(ctx context.Context) ([]catalog.Playlist, error) {
	var playlists []catalog.Playlist

	pageToken := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.svc.Playlists.List([]string{"snippet", "contentDetails"}).
			ChannelId(c.channelID).
			MaxResults(apiPageSize).
			PageToken(pageToken).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("list playlists: %w", err)
		}

		for _, item := range resp.Items {
			playlists = append(playlists, catalog.Playlist{
				ID:          item.Id,
				Name:        item.Snippet.Title,
				Description: item.Snippet.Description,
				VideoCount:  int(item.ContentDetails.ItemCount),
				Category:    catalog.Classify(item.Snippet.Title),
			})
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return playlists, nil
		}
	}
}

// ListPlaylistItemIDs returns the member video ids of a playlist in
// playlist order. Results are cached for the life of the process run.
func (c *Client) ListPlaylistItemIDs(ctx context.Context, playlistID string) ([]string, error) {
	cacheKey := "items:" + playlistID
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]string), nil
	}

	var ids []string
	pageToken := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.svc.PlaylistItems.List([]string{"contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(apiPageSize).
			PageToken(pageToken).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("list playlist %s items: %w", playlistID, err)
		}

		for _, item := range resp.Items {
			if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
				ids = append(ids, item.ContentDetails.VideoId)
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	c.cache.Set(cacheKey, ids, gocache.DefaultExpiration)
	return ids, nil
}

// FetchVideoDetails fetches full details for the given ids, batched at
// the API's per-request limit. Batches run concurrently but the result
// preserves the caller's id order; ids that do not resolve (private or
// deleted videos) are dropped.
func (c *Client) FetchVideoDetails(ctx context.Context, ids []string) ([]catalog.Video, error) {
	byID := make(map[string]catalog.Video, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailConcurrency)

	batches := batchIDs(ids, detailBatchSize)
	results := make([][]catalog.Video, len(batches))
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			videos, err := c.fetchDetailBatch(gctx, batch)
			if err != nil {
				return err
			}
			results[i] = videos
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, videos := range results {
		for _, v := range videos {
			byID[v.ID] = v
		}
	}

	ordered := make([]catalog.Video, 0, len(byID))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			ordered = append(ordered, v)
		}
	}
	return ordered, nil
}

func (c *Client) fetchDetailBatch(ctx context.Context, ids []string) ([]catalog.Video, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.svc.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(ids...).
		MaxResults(int64(len(ids))).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("fetch video details: %w", err)
	}

	videos := make([]catalog.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		video := catalog.Video{
			ID:        item.Id,
			ViewCount: "0",
		}
		if item.Snippet != nil {
			video.Title = item.Snippet.Title
			video.Description = item.Snippet.Description
			video.PublishedAt = item.Snippet.PublishedAt
			video.Tags = item.Snippet.Tags
			video.Thumbnail = pickThumbnail(item.Snippet.Thumbnails)
		}
		if item.ContentDetails != nil {
			video.Duration = item.ContentDetails.Duration
		}
		if item.Statistics != nil {
			video.ViewCount = strconv.FormatUint(item.Statistics.ViewCount, 10)
			if item.Statistics.LikeCount > 0 {
				video.LikeCount = strconv.FormatUint(item.Statistics.LikeCount, 10)
			}
			if item.Statistics.CommentCount > 0 {
				video.CommentCount = strconv.FormatUint(item.Statistics.CommentCount, 10)
			}
		}
		videos = append(videos, video)
	}
	return videos, nil
}

// ListRecentVideoIDs returns up to limit entries from the channel's
// uploads playlist, newest first, with their publication timestamps.
func (c *Client) ListRecentVideoIDs(ctx context.Context, limit int) ([]RecentVideo, error) {
	uploadsID, err := c.uploadsPlaylistID(ctx)
	if err != nil {
		return nil, err
	}

	var recent []RecentVideo
	pageToken := ""
	for len(recent) < limit {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.svc.PlaylistItems.List([]string{"contentDetails", "snippet"}).
			PlaylistId(uploadsID).
			MaxResults(apiPageSize).
			PageToken(pageToken).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("list recent uploads: %w", err)
		}

		recent = collectRecent(recent, resp.Items, limit)

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return recent, nil
}

// uploadsPlaylistID resolves and caches the channel's uploads playlist.
func (c *Client) uploadsPlaylistID(ctx context.Context) (string, error) {
	if cached, ok := c.cache.Get("uploads"); ok {
		return cached.(string), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := c.svc.Channels.List([]string{"contentDetails"}).
		Id(c.channelID).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("resolve uploads playlist: %w", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil ||
		resp.Items[0].ContentDetails.RelatedPlaylists == nil ||
		resp.Items[0].ContentDetails.RelatedPlaylists.Uploads == "" {
		return "", ErrUploadsNotFound
	}

	uploadsID := resp.Items[0].ContentDetails.RelatedPlaylists.Uploads
	c.cache.Set("uploads", uploadsID, gocache.DefaultExpiration)
	return uploadsID, nil
}

// collectRecent appends up to limit entries from a playlist-items page,
// skipping items without content details and falling back to the
// snippet timestamp when the video publication time is absent.
func collectRecent(recent []RecentVideo, items []*yt.PlaylistItem, limit int) []RecentVideo {
	for _, item := range items {
		if len(recent) >= limit {
			break
		}
		if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
			continue
		}
		entry := RecentVideo{
			ID:          item.ContentDetails.VideoId,
			PublishedAt: item.ContentDetails.VideoPublishedAt,
		}
		if entry.PublishedAt == "" && item.Snippet != nil {
			entry.PublishedAt = item.Snippet.PublishedAt
		}
		recent = append(recent, entry)
	}
	return recent
}

// batchIDs splits ids into slices of at most size, preserving order.
func batchIDs(ids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}

// pickThumbnail prefers the medium thumbnail, then default.
func pickThumbnail(t *yt.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	if t.Medium != nil && t.Medium.Url != "" {
		return t.Medium.Url
	}
	if t.Default != nil {
		return t.Default.Url
	}
	return ""
}
