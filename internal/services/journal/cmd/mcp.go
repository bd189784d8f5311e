package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/Sehgal-Arjun/Lucid/internal/pkg/logging"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/config"
	"github.com/Sehgal-Arjun/Lucid/internal/services/journal/internal/mcptools"
	"github.com/spf13/cobra"
)

var mcpUser string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the journal MCP server (stdio) for one user",
	Long: `Start a Model Context Protocol server that exposes one user's journal
as tools over stdio: save_entry, get_entry, list_entries, journal_stats and
monthly_summary.

Example:

  lucid mcp --user 3f1c9a2e-5b7d-4e8f-9a61-2d4b8c0e7f13`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mcpUser == "" {
			return errors.New("--user is required")
		}

		cfg := config.FromEnv()
		// stdout carries the protocol
		slog.SetDefault(logging.NewWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format))

		d, err := buildDeps(cfg)
		if err != nil {
			return err
		}
		defer d.close()

		slog.Info("starting MCP server", "uid", mcpUser)
		return mcptools.NewServer(d.journal, mcpUser, version).Serve()
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpUser, "user", "", "uid of the journal owner")
}
