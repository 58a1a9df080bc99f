package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/stacksight/pipeline/internal/baserow"
	"github.com/stacksight/pipeline/internal/config"
	"github.com/stacksight/pipeline/internal/denorm"
	"github.com/stacksight/pipeline/internal/models"
	"github.com/stacksight/pipeline/internal/pipeline"
	"github.com/stacksight/pipeline/internal/storage"
)

func main() {
	// Optional .env for local runs; in CI the variables come from the
	// environment directly.
	godotenv.Load()

	limitFlag := &cli.IntFlag{
		Name:  "limit",
		Usage: "maximum rows to fetch per table (0 = no limit)",
	}

	app := &cli.App{
		Name:  "stacksight",
		Usage: "fetch Baserow tables and build web-ready catalog data",
		Commands: []*cli.Command{
			{
				Name:   "fetch",
				Usage:  "fetch all tables into raw JSON snapshots",
				Flags:  []cli.Flag{limitFlag},
				Action: fetchAction,
			},
			{
				Name:   "process",
				Usage:  "denormalize snapshots into web-ready JSON files",
				Action: processAction,
			},
			{
				Name:   "run",
				Usage:  "fetch then process",
				Flags:  []cli.Flag{limitFlag},
				Action: runAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setup() (config.Config, *storage.Store, *zap.Logger, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, storage.New(cfg.SnapshotDir, cfg.WebDir), logger, nil
}

func fetchAction(c *cli.Context) error {
	cfg, store, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	report, err := runFetch(c, cfg, store, logger)
	if err != nil {
		return err
	}
	if !report.AllSucceeded() {
		return cli.Exit("one or more tables failed", 1)
	}
	return nil
}

func processAction(c *cli.Context) error {
	_, store, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	return runProcess(store, logger)
}

func runAction(c *cli.Context) error {
	cfg, store, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	report, err := runFetch(c, cfg, store, logger)
	if err != nil {
		return err
	}
	if !report.AllSucceeded() {
		// Denormalization needs all three snapshots; don't run it
		// against a partial fetch.
		return cli.Exit("one or more tables failed; skipping processing", 1)
	}

	return runProcess(store, logger)
}

func runFetch(c *cli.Context, cfg config.Config, store *storage.Store, logger *zap.Logger) (*models.FetchReport, error) {
	if err := cfg.RequireToken(); err != nil {
		return nil, err
	}

	client := baserow.NewClient(cfg, logger)
	report := pipeline.Fetch(c.Context, client, store, c.Int("limit"), logger)
	printFetchSummary(report)
	return report, nil
}

func runProcess(store *storage.Store, logger *zap.Logger) error {
	a, err := pipeline.Process(store, logger)
	if err != nil {
		return err
	}
	printProcessSummary(a)
	return nil
}

func printFetchSummary(report *models.FetchReport) {
	fmt.Printf("\nFetch run %s (%s)\n", report.RunID, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	for _, t := range report.Tables {
		if t.Status == models.StatusSuccess {
			fmt.Printf("  %-10s %s (%d rows)\n", t.Table, t.Status, t.Rows)
		} else {
			fmt.Printf("  %-10s %s: %s\n", t.Table, t.Status, t.Error)
		}
	}
}

func printProcessSummary(a *denorm.Artifacts) {
	fmt.Println("\nProcessing complete")
	fmt.Printf("  Companies:            %d\n", a.Stats.TotalCompanies)
	fmt.Printf("  Tools:                %d\n", a.Stats.TotalTools)
	fmt.Printf("  Tags:                 %d\n", a.Stats.TotalTags)
	fmt.Printf("  Companies with tools: %d\n", a.Stats.CompaniesWithTools)
	fmt.Printf("  Tools with companies: %d\n", a.Stats.ToolsWithCompanies)
}
