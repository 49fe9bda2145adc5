// Package main provides the entry point for the Dice application autopilot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autopilot",
	Short: "Dice job application autopilot",
	Long:  "Autopilot searches Dice for matching contract postings, filters them by keyword, and applies to each one through the Easy-apply flow, keeping a durable ledger of every outcome.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
