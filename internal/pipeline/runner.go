package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"durussync/internal/catalog"
	"durussync/internal/config"
	"durussync/internal/emit"
	"durussync/internal/storage"
	"durussync/internal/youtube"
)

// ErrNoDataToRegenerate means there is no API key and no prior output:
// nothing can be synced and nothing can be regenerated.
var ErrNoDataToRegenerate = errors.New("pipeline: no api key and no prior output to regenerate")

// Source is what the runner needs from the remote catalog. Satisfied
// by *youtube.Client; tests substitute fakes.
type Source interface {
	catalog.ItemSource
	ListPlaylists(ctx context.Context) ([]catalog.Playlist, error)
	ListRecentVideoIDs(ctx context.Context, limit int) ([]youtube.RecentVideo, error)
}

// Result summarizes a completed run.
type Result struct {
	Mode           Mode
	Regenerated    bool
	NewVideos      int
	TotalVideos    int
	TotalPlaylists int
	Elapsed        time.Duration
}

// Runner executes the sync pipeline end to end.
type Runner struct {
	cfg    *config.Config
	log    *logrus.Entry
	source Source
}

// New creates a runner that connects to YouTube on demand. Every log
// line of the run carries a short correlation id.
func New(cfg *config.Config, logger *logrus.Logger) *Runner {
	return &Runner{
		cfg: cfg,
		log: logger.WithField("run_id", uuid.NewString()[:8]),
	}
}

// NewWithSource creates a runner bound to an explicit source.
func NewWithSource(cfg *config.Config, logger *logrus.Logger, src Source) *Runner {
	r := New(cfg, logger)
	r.source = src
	return r
}

// Run performs one sync: plan, assemble, emit, persist state. Without
// a credential it degrades to regenerating the static tree from the
// previous run's output, and fails only when there is nothing to
// regenerate from.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	prior := storage.LoadPrior(r.cfg.OutputDir)

	if r.cfg.APIKey == "" && r.source == nil {
		return r.regenerate(ctx, prior, start)
	}

	src, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}

	playlists, err := src.ListPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	r.log.WithField("playlists", len(playlists)).Info("fetched playlists")

	plan, err := PlanSync(ctx, prior.State, playlists, src, r.cfg.RecentWindow)
	if err != nil {
		return nil, fmt.Errorf("plan sync: %w", err)
	}
	r.log.WithFields(logrus.Fields{"mode": plan.Mode, "new_videos": len(plan.NewVideoIDs)}).Info("planned sync")

	var videos []catalog.Video
	switch plan.Mode {
	case ModeFull:
		videos, err = catalog.AssembleFull(ctx, src, playlists, r.log)
	case ModeIncremental:
		videos, err = catalog.AssembleIncremental(ctx, src, playlists, plan.NewVideoIDs, prior.Videos, r.log)
	case ModeNone:
		videos = catalog.RefreshMemberships(prior.Videos, playlists)
	}
	if err != nil {
		return nil, fmt.Errorf("assemble catalog: %w", err)
	}

	playlists = catalog.RecountPlaylists(playlists, videos)

	if err := r.emit(ctx, videos, playlists); err != nil {
		return nil, err
	}

	state := &storage.SyncState{
		LastSync:        time.Now().UTC().Format(time.RFC3339),
		VideoCount:      len(videos),
		PlaylistCount:   len(playlists),
		LatestVideoDate: latestVideoDate(videos),
		PlaylistEtags:   map[string]string{},
	}
	if err := storage.NewStateStore(r.cfg.OutputDir).Save(state); err != nil {
		return nil, fmt.Errorf("save sync state: %w", err)
	}

	result := &Result{
		Mode:           plan.Mode,
		NewVideos:      len(plan.NewVideoIDs),
		TotalVideos:    len(videos),
		TotalPlaylists: len(playlists),
		Elapsed:        time.Since(start),
	}
	r.log.WithFields(logrus.Fields{
		"videos":    result.TotalVideos,
		"playlists": result.TotalPlaylists,
		"elapsed":   result.Elapsed.Round(100 * time.Millisecond).String(),
	}).Info("sync complete")
	return result, nil
}

// PlanOnly reports what a run would do without assembling or emitting.
func (r *Runner) PlanOnly(ctx context.Context) (Plan, error) {
	prior := storage.LoadPrior(r.cfg.OutputDir)

	src, err := r.connect(ctx)
	if err != nil {
		return Plan{}, err
	}
	playlists, err := src.ListPlaylists(ctx)
	if err != nil {
		return Plan{}, fmt.Errorf("list playlists: %w", err)
	}
	return PlanSync(ctx, prior.State, playlists, src, r.cfg.RecentWindow)
}

// regenerate re-emits the static tree from the previous run's output
// without touching the network. Sync state is left untouched: nothing
// new was learned from the source.
func (r *Runner) regenerate(ctx context.Context, prior *storage.PriorOutput, start time.Time) (*Result, error) {
	if len(prior.Videos) == 0 {
		return nil, ErrNoDataToRegenerate
	}
	r.log.WithFields(logrus.Fields{
		"videos":    len(prior.Videos),
		"playlists": len(prior.Playlists),
	}).Warn("no api key set, regenerating from existing data")

	videos := catalog.RefreshMemberships(prior.Videos, prior.Playlists)
	playlists := catalog.RecountPlaylists(prior.Playlists, videos)

	if err := r.emit(ctx, videos, playlists); err != nil {
		return nil, err
	}

	result := &Result{
		Regenerated:    true,
		TotalVideos:    len(videos),
		TotalPlaylists: len(playlists),
		Elapsed:        time.Since(start),
	}
	r.log.WithField("elapsed", result.Elapsed.Round(100*time.Millisecond).String()).Info("regeneration complete")
	return result, nil
}

func (r *Runner) emit(ctx context.Context, videos []catalog.Video, playlists []catalog.Playlist) error {
	emitter := emit.New(r.cfg.OutputDir, r.cfg.PageSize, r.cfg.SearchChunkSize, r.log)
	if err := emitter.Emit(ctx, videos, playlists); err != nil {
		return fmt.Errorf("emit static files: %w", err)
	}
	return nil
}

func (r *Runner) connect(ctx context.Context) (Source, error) {
	if r.source != nil {
		return r.source, nil
	}
	client, err := youtube.NewClient(ctx, r.cfg.APIKey, r.cfg.ChannelID, r.cfg.RequestsPerSecond)
	if err != nil {
		return nil, err
	}
	r.source = client
	return client, nil
}

func latestVideoDate(videos []catalog.Video) string {
	if len(videos) > 0 {
		return videos[0].PublishedAt
	}
	return time.Now().UTC().Format(time.RFC3339)
}
