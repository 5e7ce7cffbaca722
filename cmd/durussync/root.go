package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"durussync/internal/config"
	"durussync/internal/pipeline"
	"durussync/internal/storage"
)

// Flag overrides; empty means "use config/env".
var (
	flagAPIKey    string
	flagChannelID string
	flagOutputDir string
	flagVerbose   bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "durussync",
		Short: "Syncs the lecture archive's YouTube channel into static JSON data files",
		Long: `durussync crawls the archive's YouTube channel, assembles the video
catalog with playlist memberships and categories, and emits the static
JSON tree (listings, detail files, search indexes) the site serves.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "YouTube API key (overrides YOUTUBE_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&flagChannelID, "channel", "", "YouTube channel id to crawl")
	rootCmd.PersistentFlags().StringVarP(&flagOutputDir, "out", "o", "", "data output directory")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newStateCmd())
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagAPIKey != "" {
		cfg.APIKey = flagAPIKey
	}
	if flagChannelID != "" {
		cfg.ChannelID = flagChannelID
	}
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	return cfg, nil
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if flagVerbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run the sync pipeline and regenerate the static data tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger()

			result, err := pipeline.New(cfg, logger).Run(cmd.Context())
			if err != nil {
				if errors.Is(err, pipeline.ErrNoDataToRegenerate) {
					logger.Error("no API key set and no existing data to regenerate")
				} else {
					logger.WithError(err).Error("sync failed")
				}
				return err
			}

			if result.Regenerated {
				fmt.Printf("regenerated %d videos, %d playlists in %s\n",
					result.TotalVideos, result.TotalPlaylists, result.Elapsed.Round(100*time.Millisecond))
				return nil
			}
			fmt.Printf("sync complete (%s): %d playlists, %d videos in %s\n",
				result.Mode, result.TotalPlaylists, result.TotalVideos, result.Elapsed.Round(100*time.Millisecond))
			return nil
		},
	}
}

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show what a sync would do without fetching details or writing files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			plan, err := pipeline.New(cfg, newLogger()).PlanOnly(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("mode: %s\n", plan.Mode)
			if plan.Mode == pipeline.ModeIncremental {
				fmt.Printf("new videos: %d\n", len(plan.NewVideoIDs))
				for _, id := range plan.NewVideoIDs {
					fmt.Printf("  %s\n", id)
				}
			}
			return nil
		},
	}
}

func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the persisted sync state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			state := storage.NewStateStore(cfg.OutputDir).Load()
			if state == nil {
				fmt.Println("no sync state (next run will be a full sync)")
				return nil
			}

			out, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(out))
			return nil
		},
	}
}
