package main

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/steamwatch/internal/services"
	"github.com/desertthunder/steamwatch/internal/shared"
	tu "github.com/desertthunder/steamwatch/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			client := services.NewClient(services.Endpoints{}, httpClient, 0)
			scheduler := &tu.ManualScheduler{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Client:     client,
				Scheduler:  scheduler,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.client != client {
				t.Error("expected client to be set")
			}
			if runner.scheduler != scheduler {
				t.Error("expected scheduler to be set")
			}
			if runner.engine == nil {
				t.Error("expected quote engine to be built")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses configured timeout", func(t *testing.T) {
			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{Config: config})

			if runner.httpClient == nil {
				t.Fatal("expected httpClient to be built")
			}
			if runner.httpClient.Timeout != config.Remote.Timeout() {
				t.Errorf("expected timeout %v, got %v", config.Remote.Timeout(), runner.httpClient.Timeout)
			}
		})

		t.Run("builds client and openid from config", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.client == nil {
				t.Error("expected remote client to be built")
			}
			if runner.openid == nil {
				t.Error("expected openid provider to be built")
			}
		})

		t.Run("does not open the store eagerly", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.db != nil || runner.ctl != nil {
				t.Error("expected store and session to be opened lazily")
			}
			if err := runner.Close(); err != nil {
				t.Errorf("expected Close on an unopened runner to succeed, got %v", err)
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if got := runner.configPathOrDefault(); got != "/test/path/config.toml" {
				t.Errorf("expected configured path, got %s", got)
			}
		})

		t.Run("with empty configPath", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: ""})

			if runner.configPath != "" {
				t.Errorf("expected empty configPath, got %s", runner.configPath)
			}
			if got := runner.configPathOrDefault(); got != "config.toml" {
				t.Errorf("expected config.toml fallback, got %s", got)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
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

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
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
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("done %d", 3); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "\ndone 3\n" {
				t.Errorf("expected newline-wrapped text, got %q", result)
			}
		})

		t.Run("writePlainHeader frames the title", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writePlainHeader("Watchlist")

			lines := strings.Split(strings.TrimSpace(output.String()), "\n")
			if len(lines) != 3 || lines[1] != "Watchlist" {
				t.Errorf("expected framed header, got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := map[string]bool{
			"setup": false, "auth": false, "market": false, "tracks": false, "history": false,
			"notifications": false, "settings": false, "watch": false, "tui": false,
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			want[cmd.Name] = true
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s command to be registered", name)
			}
		}
	})

	t.Run("store", func(t *testing.T) {
		t.Run("opens the configured database", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = filepath.Join(t.TempDir(), "state.db")
			runner := NewRunner(RunnerOpts{Config: config})
			defer runner.Close()

			if err := runner.store(); err != nil {
				t.Fatalf("expected store to open, got %v", err)
			}
			if runner.prefs == nil || runner.notes == nil {
				t.Error("expected repositories to be built")
			}
			tu.AssertFileExists(t, config.Database.Path)
		})

		t.Run("reports an unusable path", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = filepath.Join(t.TempDir(), "missing", "dir", "state.db")
			runner := NewRunner(RunnerOpts{Config: config})

			err := runner.store()
			if err == nil || !strings.Contains(err.Error(), "failed to open local store") {
				t.Errorf("expected open failure, got %v", err)
			}
		})
	})
}

func TestParsers(t *testing.T) {
	t.Run("parseTrackID", func(t *testing.T) {
		tests := []struct {
			in   string
			want int64
			ok   bool
		}{
			{"12", 12, true},
			{"#7", 7, true},
			{" 3 ", 3, true},
			{"0", 0, false},
			{"-1", 0, false},
			{"abc", 0, false},
			{"", 0, false},
		}
		for _, tt := range tests {
			t.Run(tt.in, func(t *testing.T) {
				got, err := parseTrackID(tt.in)
				if tt.ok && (err != nil || got != tt.want) {
					t.Errorf("parseTrackID(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
				}
				if !tt.ok && !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("parseTrackID(%q) expected ErrInvalidArgument, got %v", tt.in, err)
				}
			})
		}
	})

	t.Run("parseTarget", func(t *testing.T) {
		got, err := parseTarget("$12.50")
		if err != nil || got.StringFixed(2) != "12.50" {
			t.Errorf("expected 12.50, got %v (%v)", got, err)
		}

		if _, err := parseTarget(""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if _, err := parseTarget("cheap"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("readLines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "items.txt")
		content := "# cases\nChroma 2 Case\n\n  Operation Breakout Weapon Case  \n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		lines, err := readLines(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(lines) != 2 || lines[0] != "Chroma 2 Case" || lines[1] != "Operation Breakout Weapon Case" {
			t.Errorf("unexpected lines %q", lines)
		}

		if _, err := readLines(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("intervalChoices", func(t *testing.T) {
		got := intervalChoices()
		if !strings.HasPrefix(got, "off, 0.5, 1") || !strings.HasSuffix(got, "60") {
			t.Errorf("unexpected choices %q", got)
		}
	})
}
