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
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/rankit"
	"github.com/poiesic/rankit/ai"
	"github.com/poiesic/rankit/knowledge"
	"github.com/urfave/cli/v2"
)

// maxRankedOutput caps the ranked records printed by the rank command.
const maxRankedOutput = 25

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	dbFlag := &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}

	return &cli.App{
		Name:  "rankit",
		Usage: "Query understanding and semantic re-ranking for short documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Shorthand for --log-level debug",
				EnvVars: []string{"RANKIT_DEBUG"},
			},
			&cli.StringFlag{
				Name:  "knowledge",
				Usage: "Path to a knowledge base YAML file (defaults to the built-in one)",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "all-minilm",
			},
			&cli.StringFlag{
				Name:  "recognizer-host",
				Usage: "Entity recognizer host URL (defaults to embedding-host if not specified)",
			},
			&cli.StringFlag{
				Name:  "recognizer-model",
				Usage: "Chat model used for entity recognition (disabled if empty)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "analyze",
				Usage:  "Print the semantic analysis of a query",
				Action: analyzeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Natural language query",
						Required: true,
					},
				},
			},
			{
				Name:   "rank",
				Usage:  "Re-rank the records in a JSON file against a query",
				Action: rankCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Natural language query",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "results",
						Aliases:  []string{"r"},
						Usage:    "JSON file with an array of candidate records",
						Required: true,
					},
				},
			},
			{
				Name:  "themes",
				Usage: "Manage theme vocabularies",
				Subcommands: []*cli.Command{
					{
						Name:   "import",
						Usage:  "Import themes from a YAML file",
						Action: importThemesCommand,
						Flags: []cli.Flag{
							dbFlag,
							&cli.StringFlag{
								Name:     "file",
								Aliases:  []string{"f"},
								Usage:    "YAML file with a list of themes",
								Required: true,
							},
						},
					},
					{
						Name:   "list",
						Usage:  "List stored themes",
						Action: listThemesCommand,
						Flags:  []cli.Flag{dbFlag},
					},
				},
			},
			{
				Name:   "ingest",
				Usage:  "Tag, store and embed the records in a JSON file",
				Action: ingestCommand,
				Flags: []cli.Flag{
					dbFlag,
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON file with an array of records",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to store and embed together",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent embedding batches",
						Value: 2,
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Search stored records",
				Action: searchCommand,
				Flags: []cli.Flag{
					dbFlag,
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Natural language query",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results (1-100)",
						Value: 10,
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all stored records with the configured embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					dbFlag,
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "continue-on-error",
						Usage: "Keep going when a batch fails",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve search, analysis and metrics over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					dbFlag,
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":8080",
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))
	if c.Bool("debug") {
		levelStr = "debug"
	}

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// aiConfig builds the AI configuration from the global flags.
func aiConfig(c *cli.Context) (*ai.Config, error) {
	recognizerHost := c.String("recognizer-host")
	if recognizerHost == "" {
		recognizerHost = c.String("embedding-host")
	}

	cfg := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithRecognizerHost(recognizerHost),
		ai.WithRecognizerModel(c.String("recognizer-model")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return cfg, nil
}

// libraryOptions turns the global flags into library options.
func libraryOptions(c *cli.Context) ([]rankit.Option, error) {
	cfg, err := aiConfig(c)
	if err != nil {
		return nil, err
	}
	opts := []rankit.Option{rankit.WithAIConfig(cfg)}

	if path := c.String("knowledge"); path != "" {
		base, err := knowledge.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load knowledge base: %w", err)
		}
		opts = append(opts, rankit.WithKnowledgeBase(base))
	}
	return opts, nil
}

func openLibrary(c *cli.Context, extra ...rankit.Option) (*rankit.Library, error) {
	dbPath := c.String("db")
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	opts, err := libraryOptions(c)
	if err != nil {
		return nil, err
	}
	lib, err := rankit.OpenLibrary(dbPath, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return lib, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
