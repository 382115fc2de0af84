package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poiesic/rankit"
	"github.com/poiesic/rankit/ai/mock"
	"github.com/poiesic/rankit/core"
	"github.com/poiesic/rankit/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const netflixQuery = "I want to build a software with trendy backend solutions and AI that is similar to Netflix"

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func TestAppCommands(t *testing.T) {
	app := newApp()
	for _, name := range []string{"analyze", "rank", "themes", "ingest", "search", "reembed", "serve"} {
		assert.NotNil(t, findCommand(t, app, name))
	}

	themes := findCommand(t, app, "themes")
	require.Len(t, themes.Subcommands, 2)
	assert.Equal(t, "import", themes.Subcommands[0].Name)
}

func TestRequiredFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		flag string
	}{
		{"analyze needs query", []string{"rankit", "analyze"}, "query"},
		{"rank needs results", []string{"rankit", "rank", "--query", "x"}, "results"},
		{"search needs db", []string{"rankit", "search", "--query", "x"}, "db"},
		{"ingest needs file", []string{"rankit", "ingest", "--db", "/tmp/x"}, "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Writer = &bytes.Buffer{}
			app.ErrWriter = &bytes.Buffer{}
			err := app.Run(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.flag)
		})
	}
}

func TestReembedFlagDefaults(t *testing.T) {
	cmd := findCommand(t, newApp(), "reembed")

	ints := map[string]int{}
	for _, f := range cmd.Flags {
		if f, ok := f.(*cli.IntFlag); ok {
			ints[f.Name] = f.Value
		}
	}
	assert.Equal(t, 100, ints["batch-size"])
	assert.Equal(t, 100, ints["report-interval"])
	assert.Equal(t, 3, ints["max-retries"])
}

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	newContext := func(t *testing.T, level string, debug bool) *cli.Context {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		set.String("log-level", level, "")
		set.Bool("debug", debug, "")
		return cli.NewContext(cli.NewApp(), set, nil)
	}

	tests := []struct {
		name    string
		level   string
		debug   bool
		enabled slog.Level
		wantErr bool
	}{
		{"debug", "debug", false, slog.LevelDebug, false},
		{"info", "info", false, slog.LevelInfo, false},
		{"upper case", "WARN", false, slog.LevelWarn, false},
		{"error", "error", false, slog.LevelError, false},
		{"debug flag wins", "error", true, slog.LevelDebug, false},
		{"invalid", "verbose", false, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := setupLogger(newContext(t, tt.level, tt.debug))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}
			require.NoError(t, err)
			assert.True(t, slog.Default().Enabled(context.Background(), tt.enabled))
			assert.False(t, slog.Default().Enabled(context.Background(), tt.enabled-1))
		})
	}
}

func TestAnalyzeCommand(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}

	require.NoError(t, app.Run([]string{"rankit", "--log-level", "error", "analyze", "--query", netflixQuery}))

	var got struct {
		SemanticAnalysis core.SemanticQuery `json:"semantic_analysis"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, core.IntentBuilding, got.SemanticAnalysis.Intent.Primary)
	assert.Contains(t, got.SemanticAnalysis.Entities.Companies, "Netflix")
	assert.NotContains(t, out.String(), "ranked_results")
}

func TestAnalyzeCommand_BadKnowledgeFile(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}

	err := app.Run([]string{"rankit", "--knowledge", "/nonexistent/kb.yaml", "analyze", "--query", "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "knowledge base")
}

func TestDecodeRecords(t *testing.T) {
	records, err := decodeRecords(strings.NewReader(`[
		{"title": "Netflix at scale", "description": "Streaming", "url": "https://example.com/a"},
		{"title": "Sourdough", "description": "Bread"}
	]`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Netflix at scale", records[0].Title)
	assert.Equal(t, "https://example.com/a", records[0].URL)

	_, err = decodeRecords(strings.NewReader(`{"title": "not a list"}`))
	assert.Error(t, err)
}

func TestDecodeThemes(t *testing.T) {
	t.Run("bare list", func(t *testing.T) {
		themes, err := decodeThemes(strings.NewReader("- name: backend\n  tags: [kafka, grpc]\n- name: ai\n  tags: [llm]\n"))
		require.NoError(t, err)
		require.Len(t, themes, 2)
		assert.Equal(t, "backend", themes[0].Name)
		assert.Equal(t, []string{"kafka", "grpc"}, themes[0].Tags)
	})

	t.Run("themes key", func(t *testing.T) {
		themes, err := decodeThemes(strings.NewReader("themes:\n  - name: backend\n    tags: [kafka]\n"))
		require.NoError(t, err)
		require.Len(t, themes, 1)
		assert.Equal(t, "backend", themes[0].Name)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := decodeThemes(strings.NewReader("themes: [: bad"))
		assert.Error(t, err)
	})
}

func TestRankedOutputCap(t *testing.T) {
	records := make([]*core.Record, 40)
	for i := range records {
		records[i] = &core.Record{Title: "r"}
	}

	out := rankedOutput(&core.SemanticQuery{}, records)
	assert.Len(t, out.RankedResults, maxRankedOutput)
}

func TestRankedOutput_EmptyResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, rankedOutput(&core.SemanticQuery{}, nil)))

	var got map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Contains(t, got, "ranked_results")
	assert.JSONEq(t, `[]`, string(got["ranked_results"]))

	buf.Reset()
	require.NoError(t, writeJSON(&buf, analysisOutput{SemanticAnalysis: &core.SemanticQuery{}}))
	assert.NotContains(t, buf.String(), "ranked_results")
}

func newTestServer(t *testing.T) (*server, *mock.MockProvider) {
	t.Helper()
	provider := mock.NewMockProvider().(*mock.MockProvider)
	m := metrics.NewSearchMetrics()
	lib, err := rankit.OpenLibrary("", rankit.WithInMemory(), rankit.WithProvider(provider), rankit.WithMetrics(m))
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })

	return &server{lib: lib, metrics: m, logger: slog.Default()}, provider
}

func TestServer_Search(t *testing.T) {
	srv, provider := newTestServer(t)
	_, err := srv.lib.Ingest(t.Context(), []*core.Record{
		{Title: "How Netflix builds backend services", Description: "Microservices at Netflix", URL: "https://example.com/netflix"},
	})
	require.NoError(t, err)
	provider.GetMockEmbedder().EmbedTextsFunc = mock.ConstantVectors([]float32{1, 0})
	handler := srv.routes()

	t.Run("get", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=netflix+backend&limit=5", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got struct {
			Results []*core.Record `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got.Results, 1)
		assert.Equal(t, "How Netflix builds backend services", got.Results[0].Title)
	})

	t.Run("post", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := strings.NewReader(`{"query": "netflix backend", "limit": 3}`)
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search", body))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing query", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("limit out of range", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=netflix&limit=500", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=netflix&limit=ten", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/search?q=x", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `rankit_search_searches_total{status="success"}`)
		assert.Contains(t, rec.Body.String(), `rankit_search_searches_total{status="error"}`)
	})
}

func TestServer_Analyze(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.routes()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"query": "`+netflixQuery+`"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		SemanticAnalysis core.SemanticQuery `json:"semantic_analysis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3, got.SemanticAnalysis.DomainWeights["company_netflix"])

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Healthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
