package main

import (
	"fmt"
	"os"

	"github.com/asktube/asktube/internal/cli"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "asktubed",
		Short:   "AskTube daemon and CLI",
		Long:    "AskTube daemon for serving the transcript Q&A API and managing video ingestion",
		Version: version,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.ProcessCmd())
	rootCmd.AddCommand(cli.AskCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
