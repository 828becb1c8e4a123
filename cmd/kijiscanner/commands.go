package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"KijiScanner/internal/app"
	"KijiScanner/internal/config"
	"KijiScanner/internal/logging"
)

type rootFlags struct {
	configPath string
	incoming   string
	processed  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "kijiscanner",
		Short:         "Collect NHK and Asahi articles from RSS feeds into Postgres",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to YAML config (defaults to $KIJI_SCANNER_CONFIG)")

	root.AddCommand(
		newDownloadCmd(flags),
		newUploadCmd(flags),
		newRunCmd(flags),
		newMigrateCmd(flags),
	)
	return root
}

func newDownloadCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Crawl every feed and stage one CSV batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, logger, err := build(flags)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Download(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info("download finished", "batch", report.Batch, "articles", report.Articles)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.incoming, "out", "", "directory for new batches")
	return cmd
}

func newUploadCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Insert staged batches into the database and archive them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, logger, err := build(flags)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Upload(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info("upload finished",
				"files", report.Files,
				"total", report.Total,
				"inserted", report.Inserted,
				"duplicates", report.Duplicates,
				"failures", report.Failures,
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.incoming, "in", "", "directory holding staged batches")
	cmd.Flags().StringVar(&flags.processed, "done", "", "directory for archived batches")
	return cmd
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Download then upload; with --watch repeat on the configured interval",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, _, err := build(flags)
			if err != nil {
				return err
			}
			defer application.Close()

			if watch {
				return application.Watch(cmd.Context())
			}
			return application.RunOnce(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep running on the scheduler interval")
	return cmd
}

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the articles table and seed genre/source lookups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, logger, err := build(flags)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Migrate(cmd.Context()); err != nil {
				return err
			}
			logger.Info("migration finished")
			return nil
		},
	}
}

func build(flags *rootFlags) (*app.Application, *slog.Logger, error) {
	cfg := config.Load(flags.configPath)
	if flags.incoming != "" {
		cfg.Staging.IncomingDir = flags.incoming
	}
	if flags.processed != "" {
		cfg.Staging.ProcessedDir = flags.processed
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := logging.New(cfg.Logging.Level)
	application, err := app.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return application, logger, nil
}
