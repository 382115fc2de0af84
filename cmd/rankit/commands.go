package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/poiesic/rankit"
	"github.com/poiesic/rankit/ai/openai"
	"github.com/poiesic/rankit/ai/resilient"
	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/ingestion"
	"github.com/poiesic/rankit/reembed"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

type analysisOutput struct {
	SemanticAnalysis *core.SemanticQuery `json:"semantic_analysis"`
}

// rankOutput always carries ranked_results, empty when nothing was ranked.
type rankOutput struct {
	SemanticAnalysis *core.SemanticQuery `json:"semantic_analysis"`
	RankedResults    []*core.Record      `json:"ranked_results"`
}

// newEngine builds an engine backed by an OpenAI-compatible provider.
// The returned func closes both.
func newEngine(c *cli.Context) (*rankit.Engine, func(), error) {
	cfg, err := aiConfig(c)
	if err != nil {
		return nil, nil, err
	}
	base, err := openai.NewProvider(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create AI provider: %w", err)
	}
	provider := resilient.NewProvider(base, resilient.DefaultConfig(), slog.Default())

	opts, err := libraryOptions(c)
	if err != nil {
		provider.Close()
		return nil, nil, err
	}
	engine, err := rankit.NewEngine(provider, opts...)
	if err != nil {
		provider.Close()
		return nil, nil, err
	}
	return engine, func() {
		engine.Close()
		provider.Close()
	}, nil
}

func analyzeCommand(c *cli.Context) error {
	engine, closeEngine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer closeEngine()

	sq, err := engine.Analyze(c.Context, c.String("query"))
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return writeJSON(c.App.Writer, analysisOutput{SemanticAnalysis: sq})
}

func rankCommand(c *cli.Context) error {
	records, err := readRecords(c.String("results"))
	if err != nil {
		return err
	}

	engine, closeEngine, err := newEngine(c)
	if err != nil {
		return err
	}
	defer closeEngine()

	sq, ranked, err := engine.Rank(c.Context, c.String("query"), records)
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}
	return writeJSON(c.App.Writer, rankedOutput(sq, ranked))
}

func rankedOutput(sq *core.SemanticQuery, ranked []*core.Record) rankOutput {
	if len(ranked) > maxRankedOutput {
		ranked = ranked[:maxRankedOutput]
	}
	if ranked == nil {
		ranked = []*core.Record{}
	}
	return rankOutput{SemanticAnalysis: sq, RankedResults: ranked}
}

func importThemesCommand(c *cli.Context) error {
	themes, err := readThemes(c.String("file"))
	if err != nil {
		return err
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	stored, err := lib.ImportThemes(c.Context, themes...)
	if err != nil {
		return fmt.Errorf("failed to import themes: %w", err)
	}
	fmt.Fprintf(c.App.ErrWriter, "Imported %d themes\n", len(stored))
	return nil
}

func listThemesCommand(c *cli.Context) error {
	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	themes, err := lib.ThemeRepository().ListThemes(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list themes: %w", err)
	}
	return writeJSON(c.App.Writer, themes)
}

func ingestCommand(c *cli.Context) error {
	records, err := readRecords(c.String("file"))
	if err != nil {
		return err
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	report, err := lib.Ingest(c.Context, records,
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithPoolSize(c.Int("workers")))
	if report != nil {
		fmt.Fprintf(c.App.ErrWriter, "Stored %d, embedded %d, tagged %d, skipped %d\n",
			report.Stored, report.Embedded, report.Tagged, report.Skipped)
	}
	if err != nil {
		return fmt.Errorf("ingestion finished with errors: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	results, err := lib.Search(c.Context, c.String("query"), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return writeJSON(c.App.Writer, results)
}

func reembedCommand(c *cli.Context) error {
	reembedConfig := &reembed.Config{
		BatchSize:       c.Int("batch-size"),
		ReportInterval:  c.Int("report-interval"),
		MaxRetries:      c.Int("max-retries"),
		RetryDelay:      c.Duration("retry-delay"),
		ContinueOnError: c.Bool("continue-on-error"),
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	reembedder, err := lib.NewReembedder(reembedConfig, c.App.ErrWriter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", c.String("db"))
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(c.App.ErrWriter)

	if err := reembedder.Run(c.Context); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func readRecords(path string) ([]*core.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records: %w", err)
	}
	defer f.Close()
	return decodeRecords(f)
}

func decodeRecords(r io.Reader) ([]*core.Record, error) {
	var records []*core.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

func readThemes(path string) ([]*core.Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open themes: %w", err)
	}
	defer f.Close()
	return decodeThemes(f)
}

// decodeThemes accepts either a bare list of themes or a document with a
// top-level "themes" key.
func decodeThemes(r io.Reader) ([]*core.Theme, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read themes: %w", err)
	}

	var themes []*core.Theme
	if err := yaml.Unmarshal(data, &themes); err == nil {
		return themes, nil
	}

	var doc struct {
		Themes []*core.Theme `yaml:"themes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode themes: %w", err)
	}
	return doc.Themes, nil
}
