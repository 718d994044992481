package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"salary-board/internal/client"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	baseURL string
	timeout string
	lang    string
}

var rf rootFlags

var rootCmd = &cobra.Command{
	Use:           "salaryctl",
	Short:         "salaryctl: command line client for the salary dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// newClient builds the API client and a context bounded by --timeout.
func newClient(cmd *cobra.Command) (*client.Client, context.Context, context.CancelFunc, error) {
	timeout, err := time.ParseDuration(rf.timeout)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid --timeout: %w", err)
	}
	c := client.New(rf.baseURL, timeout)
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	return c, ctx, cancel, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rf.baseURL, "url", "http://127.0.0.1:8501", "dashboard base URL")
	rootCmd.PersistentFlags().StringVar(&rf.timeout, "timeout", "10s", "HTTP timeout (e.g. 10s, 500ms)")
	rootCmd.PersistentFlags().StringVar(&rf.lang, "lang", "", "page language (ru, en)")

	rootCmd.AddCommand(playersCmd, predictCmd, leagueCmd, modelsCmd, chartCmd)
}
