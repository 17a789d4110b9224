package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/shared"
	tu "github.com/desertthunder/lyrx/internal/testing"
	"github.com/desertthunder/lyrx/internal/tokenizer"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

const (
	apiURL = "https://api.genius.test"
	vocab  = "[PAD]\n[UNK]\n[CLS]\n[SEP]\nhello\nworld\n"
)

// testEnv is a temp directory holding a config file, a vocabulary and both stores.
type testEnv struct {
	dir        string
	configPath string
	database   shared.DatabaseConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "config.toml"),
		database: shared.DatabaseConfig{
			LyricsPath: filepath.Join(dir, "lyrics.db"),
			TokensPath: filepath.Join(dir, "tokens.db"),
		},
	}

	vocabPath := filepath.Join(dir, "vocab.txt")
	tu.MustWriteFile(t, vocabPath, vocab)
	tu.MustWriteFile(t, env.configPath, fmt.Sprintf(`
[credentials.genius]
base_url = %q
token_file = ""

[scraper]
request_delay = "0s"

[database]
lyrics_path = %q
tokens_path = %q

[tokenizer]
kind = "wordpiece"
vocab_path = %q
max_length = 0
padding = false
isolation = "goroutine"
timeout = "5s"

[logging]
file = ""
`, apiURL, env.database.LyricsPath, env.database.TokensPath, vocabPath))
	return env
}

// seed stores one song for "Some Rapper".
func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	stores, err := repositories.OpenStores(e.database)
	require.NoError(t, err)
	defer stores.Close()

	artist := models.Artist{ID: 42, Name: "Some Rapper", Table: "some_rapper"}
	err = stores.WithSession(context.Background(), func(s *repositories.Session) error {
		if err := s.Provision(context.Background(), artist); err != nil {
			return err
		}
		_, err := s.Save(context.Background(), artist.Table, "foo", "hello world", models.Encoding{IDs: []uint32{2, 4, 5, 3}})
		return err
	})
	require.NoError(t, err)
}

func newTestRunner(output io.Writer, client *http.Client) *Runner {
	return NewRunner(RunnerOpts{
		Logger:     shared.NewLogger(io.Discard),
		Output:     output,
		HTTPClient: client,
	})
}

func run(r *Runner, args ...string) error {
	app := &cli.Command{Name: "lyrx", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"lyrx"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			input := strings.NewReader("")
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Input:      input,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.input != input {
				t.Error("expected input to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.input != os.Stdin {
				t.Error("expected input to default to os.Stdin")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.executable == nil {
				t.Error("expected executable lookup to be set")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln surrounds text with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("done"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "\ndone\n" {
				t.Errorf("expected '\\ndone\\n', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]*cli.Command{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = cmd
		}

		for _, name := range []string{"setup", "scrape", "resolve", "tables", "export", tokenizer.WorkerCommand} {
			if _, ok := names[name]; !ok {
				t.Errorf("expected %s command to be registered", name)
			}
		}
		if worker := names[tokenizer.WorkerCommand]; worker != nil && !worker.Hidden {
			t.Error("expected worker command to be hidden")
		}
	})

	t.Run("tokenizerRunner", func(t *testing.T) {
		env := newTestEnv(t)
		config, err := shared.LoadConfig(env.configPath)
		require.NoError(t, err)

		t.Run("goroutine isolation", func(t *testing.T) {
			runner := newTestRunner(&bytes.Buffer{}, nil)
			tr, err := runner.tokenizerRunner(config, env.configPath)
			require.NoError(t, err)
			assert.IsType(t, &tokenizer.GoroutineRunner{}, tr)

			enc, err := tr.Tokenize(context.Background(), "hello world")
			require.NoError(t, err)
			assert.Equal(t, []uint32{2, 4, 5, 3}, enc.IDs)
		})

		t.Run("process isolation re-executes the binary", func(t *testing.T) {
			runner := newTestRunner(&bytes.Buffer{}, nil)
			runner.executable = func() (string, error) { return "/usr/local/bin/lyrx", nil }

			processConfig := *config
			processConfig.Tokenizer.Isolation = "process"

			tr, err := runner.tokenizerRunner(&processConfig, env.configPath)
			require.NoError(t, err)
			assert.IsType(t, &tokenizer.ProcessRunner{}, tr)
		})

		t.Run("missing vocabulary fails up front", func(t *testing.T) {
			runner := newTestRunner(&bytes.Buffer{}, nil)
			broken := *config
			broken.Tokenizer.VocabPath = filepath.Join(env.dir, "missing.txt")

			_, err := runner.tokenizerRunner(&broken, env.configPath)
			assert.Error(t, err)
		})
	})
}

func TestSetupDatabase(t *testing.T) {
	t.Run("creates config and both stores", func(t *testing.T) {
		t.Chdir(t.TempDir())

		runner := newTestRunner(&bytes.Buffer{}, nil)
		require.NoError(t, run(runner, "setup", "database"))

		tu.AssertFileExists(t, "config.toml")
		tu.AssertFileExists(t, filepath.Join("databases", "lyrics.db"))
		tu.AssertFileExists(t, filepath.Join("databases", "tokenized_lyrics.db"))
	})

	t.Run("reuses an existing config", func(t *testing.T) {
		env := newTestEnv(t)
		runner := newTestRunner(&bytes.Buffer{}, nil)

		require.NoError(t, run(runner, "setup", "database", "--config", env.configPath))
		tu.AssertFileExists(t, env.database.LyricsPath)
		tu.AssertFileExists(t, env.database.TokensPath)
	})
}

func TestResolve(t *testing.T) {
	setup := func(t *testing.T) (*testEnv, *bytes.Buffer, *Runner) {
		t.Helper()
		t.Setenv(shared.TokenEnvKey, "test-token")

		client := &http.Client{}
		httpmock.ActivateNonDefault(client)
		t.Cleanup(httpmock.DeactivateAndReset)

		output := &bytes.Buffer{}
		return newTestEnv(t), output, newTestRunner(output, client)
	}

	t.Run("prints artist and table", func(t *testing.T) {
		env, output, runner := setup(t)
		httpmock.RegisterResponder(http.MethodGet, apiURL+"/search",
			httpmock.NewStringResponder(http.StatusOK, tu.SearchResponse(42, "Some Rapper")))

		require.NoError(t, run(runner, "resolve", "--config", env.configPath, "some rapper"))
		assert.Contains(t, output.String(), "Some Rapper")
		assert.Contains(t, output.String(), "id 42")
		assert.Contains(t, output.String(), "Table: some_rapper")
	})

	t.Run("json output", func(t *testing.T) {
		env, output, runner := setup(t)
		httpmock.RegisterResponder(http.MethodGet, apiURL+"/search",
			httpmock.NewStringResponder(http.StatusOK, tu.SearchResponse(42, "Some Rapper")))

		require.NoError(t, run(runner, "resolve", "--config", env.configPath, "--json", "some rapper"))

		var got resolved
		require.NoError(t, json.Unmarshal(output.Bytes(), &got))
		assert.Equal(t, resolved{ID: 42, Name: "Some Rapper", Table: "some_rapper"}, got)
	})

	t.Run("unknown artist", func(t *testing.T) {
		env, _, runner := setup(t)
		httpmock.RegisterResponder(http.MethodGet, apiURL+"/search",
			httpmock.NewStringResponder(http.StatusOK, tu.EmptySearchResponse))

		err := run(runner, "resolve", "--config", env.configPath, "nobody")
		assert.ErrorIs(t, err, shared.ErrArtistNotFound)
	})

	t.Run("missing argument", func(t *testing.T) {
		env, _, runner := setup(t)
		err := run(runner, "resolve", "--config", env.configPath)
		assert.ErrorIs(t, err, shared.ErrMissingArgument)
	})

	t.Run("missing token", func(t *testing.T) {
		env, _, runner := setup(t)
		t.Setenv(shared.TokenEnvKey, "")

		err := run(runner, "resolve", "--config", env.configPath, "some rapper")
		assert.ErrorIs(t, err, shared.ErrMissingCredentials)
		assert.Zero(t, httpmock.GetTotalCallCount())
	})
}

func TestTables(t *testing.T) {
	t.Run("empty stores", func(t *testing.T) {
		env := newTestEnv(t)
		output := &bytes.Buffer{}

		require.NoError(t, run(newTestRunner(output, nil), "tables", "--config", env.configPath))
		assert.Contains(t, output.String(), "No artist tables yet")
	})

	t.Run("lists seeded table", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t)
		output := &bytes.Buffer{}

		require.NoError(t, run(newTestRunner(output, nil), "tables", "--config", env.configPath))
		assert.Contains(t, output.String(), "TABLE")
		assert.Contains(t, output.String(), "some_rapper")
		assert.Contains(t, output.String(), "Some Rapper")
	})

	t.Run("json output", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t)
		output := &bytes.Buffer{}

		require.NoError(t, run(newTestRunner(output, nil), "tables", "--config", env.configPath, "--json"))

		var rows []tableRow
		require.NoError(t, json.Unmarshal(output.Bytes(), &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, tableRow{Table: "some_rapper", ProviderID: 42, DisplayName: "Some Rapper", Songs: 1, Tokenized: 1}, rows[0])
	})

	t.Run("malformed config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		tu.MustWriteFile(t, path, "[scraper\n")

		err := run(newTestRunner(&bytes.Buffer{}, nil), "tables", "--config", path)
		assert.Error(t, err)
	})
}

func TestExport(t *testing.T) {
	t.Run("text to stdout", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t)
		output := &bytes.Buffer{}

		require.NoError(t, run(newTestRunner(output, nil), "export", "--config", env.configPath, "some_rapper"))
		assert.Equal(t, "\n\n--- foo ---\nhello world\n", output.String())
	})

	t.Run("json to file", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t)
		path := filepath.Join(env.dir, "out", "some_rapper.json")

		require.NoError(t, run(newTestRunner(&bytes.Buffer{}, nil),
			"export", "--config", env.configPath, "--format", "json", "-o", path, "some_rapper"))

		content := tu.MustReadFile(t, path)
		assert.Contains(t, content, `"foo"`)
		assert.Contains(t, content, "hello world")
	})

	t.Run("unknown format", func(t *testing.T) {
		env := newTestEnv(t)
		env.seed(t)

		err := run(newTestRunner(&bytes.Buffer{}, nil), "export", "--config", env.configPath, "--format", "xml", "some_rapper")
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)
	})

	t.Run("unregistered table", func(t *testing.T) {
		env := newTestEnv(t)

		err := run(newTestRunner(&bytes.Buffer{}, nil), "export", "--config", env.configPath, "nobody")
		assert.ErrorIs(t, err, shared.ErrInvalidArgument)
	})

	t.Run("missing table argument", func(t *testing.T) {
		env := newTestEnv(t)

		err := run(newTestRunner(&bytes.Buffer{}, nil), "export", "--config", env.configPath)
		assert.ErrorIs(t, err, shared.ErrMissingArgument)
	})
}

func TestTokenizeWorker(t *testing.T) {
	env := newTestEnv(t)
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Logger: shared.NewLogger(io.Discard),
		Input:  strings.NewReader(`{"text":"Hello world"}`),
		Output: output,
	})

	require.NoError(t, run(runner, tokenizer.WorkerCommand, "--config", env.configPath))

	var resp tokenizer.WorkerResponse
	require.NoError(t, json.Unmarshal(output.Bytes(), &resp))
	assert.Empty(t, resp.Error)
	assert.Equal(t, []uint32{2, 4, 5, 3}, resp.Encoding.IDs)
}

func TestScrape(t *testing.T) {
	setup := func(t *testing.T) (*testEnv, *bytes.Buffer, *Runner) {
		t.Helper()
		t.Setenv(shared.TokenEnvKey, "test-token")

		client := &http.Client{}
		httpmock.ActivateNonDefault(client)
		t.Cleanup(httpmock.DeactivateAndReset)

		output := &bytes.Buffer{}
		return newTestEnv(t), output, newTestRunner(output, client)
	}

	t.Run("stores songs and prints a summary", func(t *testing.T) {
		env, output, runner := setup(t)
		httpmock.RegisterResponder(http.MethodGet, apiURL+"/search",
			httpmock.NewStringResponder(http.StatusOK, tu.SearchResponse(42, "Some Rapper")))
		httpmock.RegisterResponder(http.MethodGet, apiURL+"/artists/42/songs",
			func(req *http.Request) (*http.Response, error) {
				if req.URL.Query().Get("page") != "1" {
					return httpmock.NewStringResponse(http.StatusOK, tu.SongsResponse("Some Rapper")), nil
				}
				return httpmock.NewStringResponse(http.StatusOK, tu.SongsResponse("Some Rapper",
					tu.SongFixture{Title: "Foo", URL: "https://genius.test/foo"},
					tu.SongFixture{Title: "Bar", URL: "https://genius.test/bar"},
				)), nil
			})
		httpmock.RegisterResponder(http.MethodGet, "https://genius.test/foo",
			httpmock.NewStringResponder(http.StatusOK, tu.LyricsPage("hello world")))
		httpmock.RegisterResponder(http.MethodGet, "https://genius.test/bar",
			httpmock.NewStringResponder(http.StatusOK, "<html><body><p>no lyrics</p></body></html>"))

		require.NoError(t, run(runner, "scrape", "--config", env.configPath, "--no-spinner", "some rapper"))

		out := output.String()
		assert.Contains(t, out, "Scrape Complete")
		assert.Contains(t, out, "Table:  some_rapper")
		assert.Contains(t, out, "extraction_failed: 1")

		stores, err := repositories.OpenStores(env.database)
		require.NoError(t, err)
		defer stores.Close()

		records, err := repositories.NewLyricsRepository(stores).List(context.Background(), "some_rapper")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Foo", records[0].SongTitle)
		assert.Equal(t, "hello world", records[0].Lyrics)
	})

	t.Run("unknown artist provisions nothing", func(t *testing.T) {
		env, output, runner := setup(t)
		httpmock.RegisterResponder(http.MethodGet, apiURL+"/search",
			httpmock.NewStringResponder(http.StatusOK, tu.EmptySearchResponse))

		err := run(runner, "scrape", "--config", env.configPath, "--no-spinner", "nobody")
		assert.ErrorIs(t, err, shared.ErrArtistNotFound)
		assert.NotContains(t, output.String(), "Scrape Complete")
	})

	t.Run("missing argument", func(t *testing.T) {
		env, _, runner := setup(t)
		err := run(runner, "scrape", "--config", env.configPath)
		assert.ErrorIs(t, err, shared.ErrMissingArgument)
	})

	t.Run("invalid network policy", func(t *testing.T) {
		env, _, runner := setup(t)
		path := filepath.Join(env.dir, "bad.toml")
		tu.MustWriteFile(t, path, "[scraper]\non_network_error = \"retry\"\n")

		err := run(runner, "scrape", "--config", path, "some rapper")
		assert.ErrorIs(t, err, shared.ErrInvalidConfig)
		assert.Zero(t, httpmock.GetTotalCallCount())
	})
}
