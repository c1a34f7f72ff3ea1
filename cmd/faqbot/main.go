// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/faqbot"
	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/match"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "faqbot",
		Usage: "FAQ matching engine and chatbot service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:  "listen",
						Usage: "Address to listen on",
						Value: ":8080",
					},
					&cli.BoolFlag{
						Name:  "lexical-only",
						Usage: "Disable the semantic pass; match by fuzzy string similarity only",
					},
				),
			},
			{
				Name:      "seed",
				Usage:     "Load FAQ records from a JSON file and embed them",
				Action:    seedCommand,
				ArgsUsage: "<faqs.json>",
				Flags:     databaseFlags(),
			},
			{
				Name:   "embed",
				Usage:  "Backfill embeddings for records that are missing them",
				Action: embedCommand,
				Flags:  databaseFlags(),
			},
			{
				Name:      "ask",
				Usage:     "Answer a single question from the command line",
				Action:    askCommand,
				ArgsUsage: "<question>",
				Flags:     databaseFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
	}
}

func openDatabase(c *cli.Context) (*faqbot.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := faqbot.NewDatabase(c.String("db"), faqbot.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func serveCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingest pipeline: %w", err)
	}
	defer pipeline.Release()

	var engineOpts []match.Option
	if c.Bool("lexical-only") {
		engineOpts = append(engineOpts, match.WithStrategies(match.NewLexicalMatcher()))
	}

	server, err := db.NewServer(pipeline, engineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	slog.Info("starting HTTP server", "listen", c.String("listen"))
	return server.Router().Run(c.String("listen"))
}

// seedFaq is the JSON shape of one FAQ in a seed file.
type seedFaq struct {
	Question  string            `json:"question"`
	Answer    string            `json:"answer"`
	Category  string            `json:"category"`
	ExtraData map[string]string `json:"extra_data"`
}

func seedCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one seed file argument")
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seeds []seedFaq
	if err := json.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	records := make([]*core.FaqRecord, len(seeds))
	for i, seed := range seeds {
		category := seed.Category
		if category == "" {
			category = "general"
		}
		records[i] = &core.FaqRecord{
			Question: seed.Question,
			Answer:   seed.Answer,
			Category: category,
			Metadata: seed.ExtraData,
		}
	}

	if _, err := db.FaqRepository().AddFaqs(ctx, records...); err != nil {
		return fmt.Errorf("failed to add FAQ records: %w", err)
	}

	pipeline, err := db.NewIngestPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingest pipeline: %w", err)
	}
	defer pipeline.Release()

	embedded, err := pipeline.EmbedAll(ctx)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Seeded %d FAQ records (%d embedded)\n", len(records), embedded)
	return nil
}

func embedCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingest pipeline: %w", err)
	}
	defer pipeline.Release()

	embedded, err := pipeline.EmbedAll(context.Background())
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Embedded %d FAQ records\n", embedded)
	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one question argument")
	}
	question := c.Args().First()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	engine, err := db.NewEngine()
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	snapshot, err := db.FaqRepository().Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load knowledge base: %w", err)
	}

	verdict, err := engine.Match(ctx, question, snapshot)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	if !verdict.Matched {
		fmt.Println(match.FallbackAnswer)
		return nil
	}

	fmt.Println(verdict.Record.Answer)
	fmt.Fprintf(os.Stderr, "(%s, score %.2f)\n", verdict.Method.String(), verdict.Score)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
