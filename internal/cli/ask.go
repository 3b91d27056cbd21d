package cli

import (
	"context"
	"fmt"

	"github.com/asktube/asktube/internal/config"
	"github.com/asktube/asktube/internal/database"
	"github.com/asktube/asktube/internal/youtube"
	"github.com/spf13/cobra"
)

// AskCmd returns the ask command
func AskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <video-url-or-id> <question>",
		Short: "Ask a question about an indexed video",
		Args:  cobra.ExactArgs(2),
		RunE:  runAsk,
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	deps, err := buildServices(ctx, cfg, pool)
	if err != nil {
		return err
	}
	defer deps.close()

	// Accept either a full URL or a bare video id.
	videoID, err := youtube.ExtractVideoID(args[0])
	if err != nil {
		videoID = args[0]
	}

	answer, sources, err := deps.chatSvc.Ask(ctx, args[1], videoID, nil)
	if err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}

	fmt.Println(answer)

	if len(sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range sources {
			fmt.Printf("  [%s] %s\n", formatTimestamp(src.StartTime), excerpt(src.Text))
		}
	}
	return nil
}

func excerpt(text string) string {
	const max = 80
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func formatTimestamp(seconds float64) string {
	total := int(seconds)
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
