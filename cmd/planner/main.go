package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/config"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/demo"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/domain"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/export"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/planning"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/repository"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/repository/postgres"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/internal/storage"
	"github.com/nicobravo933-Planner/nicobravo933-Planner/pkg/logger"
	"github.com/urfave/cli/v2"
)

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Snapshot JSON file",
		},
		&cli.StringFlag{
			Name:  "db-url",
			Usage: "Read the snapshot from this Postgres database",
		},
		&cli.StringFlag{
			Name:  "bucket-key",
			Usage: "Read the snapshot from this object in the configured bucket",
		},
	}
}

func outputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write to this file instead of stdout",
	}
}

func main() {
	app := &cli.App{
		Name:  "planner",
		Usage: "Evaluate inventory snapshots from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(os.Stderr, c.String("log-level"), true)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "evaluate",
				Usage: "Run the planning engine on a snapshot and print the evaluation",
				Flags: append(sourceFlags(),
					outputFlag(),
					&cli.StringFlag{
						Name:  "upload-key",
						Usage: "Also upload the evaluation JSON to this object key",
					},
				),
				Action: runEvaluate,
			},
			{
				Name:  "generate",
				Usage: "Write a synthetic demo snapshot",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "seed", Value: 1},
					&cli.IntFlag{Name: "skus", Value: demo.DefaultSkus},
					outputFlag(),
				},
				Action: runGenerate,
			},
			{
				Name:  "export",
				Usage: "Evaluate a snapshot and write per-SKU metrics or the replenishment plan as CSV",
				Flags: append(sourceFlags(),
					outputFlag(),
					&cli.StringFlag{
						Name:  "what",
						Value: "skus",
						Usage: "skus or plan",
					},
				),
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("planner failed")
	}
}

func runEvaluate(c *cli.Context) error {
	cfg := config.Load()
	eval, err := evaluate(c, cfg)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(eval, "", "  ")
	if err != nil {
		return fmt.Errorf("encode evaluation: %w", err)
	}

	if key := c.String("upload-key"); key != "" {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			return err
		}
		if err := client.UploadObject(c.Context, key, data, "application/json"); err != nil {
			return err
		}
		logger.Log.Info().Str("key", key).Str("evaluation_id", eval.ID).Msg("evaluation uploaded")
	}

	return writeOutput(c.String("output"), func(w io.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
}

func runGenerate(c *cli.Context) error {
	snapshot := demo.Generate(demo.Options{Seed: c.Int64("seed"), Skus: c.Int("skus")})
	data, err := repository.EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	logger.Log.Info().Int("skus", len(snapshot.Skus)).Int64("seed", c.Int64("seed")).Msg("demo snapshot generated")
	return writeOutput(c.String("output"), func(w io.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
}

func runExport(c *cli.Context) error {
	what := c.String("what")
	if what != "skus" && what != "plan" {
		return fmt.Errorf("unknown export %q, want skus or plan", what)
	}

	eval, err := evaluate(c, config.Load())
	if err != nil {
		return err
	}

	return writeOutput(c.String("output"), func(w io.Writer) error {
		if what == "plan" {
			return export.WriteReplenishmentPlan(w, eval.Replenishment)
		}
		return export.WriteSkuMetrics(w, eval.Skus)
	})
}

func evaluate(c *cli.Context, cfg *config.Config) (*domain.Evaluation, error) {
	engine, err := planning.NewEngine(cfg.PlanningConfig())
	if err != nil {
		return nil, err
	}

	snapshot, err := loadSnapshot(c.Context, c, cfg)
	if err != nil {
		return nil, err
	}

	eval, err := engine.Evaluate(c.Context, snapshot)
	if err != nil {
		return nil, err
	}
	for _, d := range eval.Diagnostics {
		logger.Log.Warn().Str("sku", d.SkuID).Str("code", d.Code).Bool("excluded", d.Excluded).Msg(d.Message)
	}
	return eval, nil
}

func loadSnapshot(ctx context.Context, c *cli.Context, cfg *config.Config) (domain.Snapshot, error) {
	switch {
	case c.String("input") != "":
		return repository.NewFileSnapshotRepository(c.String("input")).LoadSnapshot(ctx)

	case c.String("db-url") != "":
		db, err := postgres.Open(c.String("db-url"), cfg.Database.MaxConns)
		if err != nil {
			return domain.Snapshot{}, err
		}
		defer db.Close()
		return postgres.NewSnapshotRepository(db).LoadSnapshot(ctx)

	case c.String("bucket-key") != "":
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			return domain.Snapshot{}, err
		}
		return repository.NewObjectSnapshotRepository(client, c.String("bucket-key")).LoadSnapshot(ctx)
	}

	return domain.Snapshot{}, fmt.Errorf("one of --input, --db-url or --bucket-key is required")
}

func writeOutput(path string, write func(w io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
