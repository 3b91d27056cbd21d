package cli

import (
	"context"
	"fmt"

	"github.com/asktube/asktube/internal/config"
	"github.com/asktube/asktube/internal/database"
	"github.com/asktube/asktube/internal/service"
	"github.com/spf13/cobra"
)

// ProcessCmd returns the process command
func ProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <video-url>",
		Short: "Fetch, chunk and index a video transcript",
		Long:  "Run the ingestion pipeline for one video synchronously, without going through the job queue",
		Args:  cobra.ExactArgs(1),
		RunE:  runProcess,
	}

	cmd.Flags().Bool("force", false, "Delete the video's existing chunks and reprocess it")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	deps, err := buildServices(ctx, cfg, pool)
	if err != nil {
		return err
	}
	defer deps.close()

	force, _ := cmd.Flags().GetBool("force")

	var result service.IngestResult
	if force {
		result, err = deps.ingestSvc.ReprocessVideo(ctx, args[0])
		if err == nil && deps.redisCache != nil {
			if cacheErr := deps.redisCache.InvalidateSummary(ctx, result.VideoID); cacheErr != nil {
				fmt.Printf("warning: failed to invalidate cached summary: %v\n", cacheErr)
			}
		}
	} else {
		result, err = deps.ingestSvc.ProcessVideo(ctx, args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to process video: %w", err)
	}

	if result.AlreadyIndexed {
		fmt.Printf("video %s is already indexed\n", result.VideoID)
		return nil
	}

	fmt.Printf("indexed video %s: %d chunks stored", result.VideoID, result.Chunks)
	if result.Skipped > 0 {
		fmt.Printf(" (%d skipped)", result.Skipped)
	}
	fmt.Println()
	return nil
}
