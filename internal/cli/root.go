package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "revise",
	Short: "Spaced-repetition study tracker",
	Long:  "Revise tracks study topics and schedules reviews on an FSRS forgetting curve. Single Go binary, SQLite on disk.",
}

func Execute() error {
	// Fold in a .env if present; real environment always wins.
	godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(configCmd)
}
