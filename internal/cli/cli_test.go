package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/seanhalberthal/uncomment/internal/config"
	"github.com/seanhalberthal/uncomment/internal/processor"
	"github.com/seanhalberthal/uncomment/internal/types"
)

// captureOutput captures stdout during function execution
func captureOutput(f func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	err := w.Close()
	if err != nil {
		fmt.Printf("Error closing pipe: %v\n", err.Error()+"")
	}
	os.Stdout = old

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	if err != nil {
		fmt.Printf("Error copying pipe: %v\n", err.Error()+"")
	}
	return buf.String()
}

// captureStderr captures stderr during function execution
func captureStderr(f func()) string {
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	f()

	err := w.Close()
	if err != nil {
		fmt.Printf("Error closing pipe: %v\n", err.Error()+"")
	}
	os.Stderr = old

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	if err != nil {
		fmt.Printf("Error copying pipe: %v\n", err.Error()+"")
	}
	return buf.String()
}

// mockExit replaces exitFunc and records the exit code.
func mockExit(t *testing.T) *int {
	t.Helper()
	code := -1
	old := exitFunc
	exitFunc = func(c int) { code = c }
	t.Cleanup(func() { exitFunc = old })
	return &code
}

// withStdin replaces the stdin reader for one test.
func withStdin(t *testing.T, input string) {
	t.Helper()
	old := stdin
	stdin = strings.NewReader(input)
	t.Cleanup(func() { stdin = old })
}

func newProcessor(t *testing.T) *processor.Processor {
	t.Helper()
	p, err := processor.New(config.Defaults())
	if err != nil {
		t.Fatalf("Failed to create processor: %v", err)
	}
	return p
}

// createTestFiles creates files under a temporary directory.
func createTestFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	tmpDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return tmpDir
}

func TestParseStripFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want stripOptions
	}{
		{
			name: "no flags",
			args: []string{},
			want: stripOptions{},
		},
		{
			name: "language long",
			args: []string{"--lang", "go", "main.go"},
			want: stripOptions{Language: "go", Paths: []string{"main.go"}},
		},
		{
			name: "language with equals",
			args: []string{"--lang=python", "-"},
			want: stripOptions{Language: "python", Paths: []string{"-"}},
		},
		{
			name: "all flags",
			args: []string{"-l", "rust", "-w", "-r", "--ext", "rs,.toml", "--json", "src", "lib"},
			want: stripOptions{
				Language:  "rust",
				Write:     true,
				Recursive: true,
				Exts:      []string{".rs", ".toml"},
				JSON:      true,
				Paths:     []string{"src", "lib"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseStripFlags(tt.args)
			if err != nil {
				t.Fatalf("parseStripFlags() error = %v", err)
			}
			if got.Language != tt.want.Language || got.Write != tt.want.Write ||
				got.Recursive != tt.want.Recursive || got.JSON != tt.want.JSON {
				t.Errorf("parseStripFlags() = %+v, want %+v", got, tt.want)
			}
			if !slices.Equal(got.Exts, tt.want.Exts) {
				t.Errorf("Exts = %v, want %v", got.Exts, tt.want.Exts)
			}
			if !slices.Equal(got.Paths, tt.want.Paths) {
				t.Errorf("Paths = %v, want %v", got.Paths, tt.want.Paths)
			}
		})
	}
}

func TestParseStripFlags_Errors(t *testing.T) {
	tests := [][]string{
		{"--lang"},
		{"--ext"},
		{"--verbose"},
	}
	for _, args := range tests {
		if _, err := parseStripFlags(args); err == nil {
			t.Errorf("parseStripFlags(%v) expected error", args)
		}
	}
}

func TestRun_NoArgs(t *testing.T) {
	code := mockExit(t)

	output := captureOutput(func() {
		Run(context.Background(), newProcessor(t), nil)
	})

	if *code != 1 {
		t.Errorf("exit code = %d, want 1", *code)
	}
	if !strings.Contains(output, "Usage:") {
		t.Error("expected usage text")
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	code := mockExit(t)

	stderr := captureStderr(func() {
		_ = captureOutput(func() {
			Run(context.Background(), newProcessor(t), []string{"frobnicate"})
		})
	})

	if *code != 1 {
		t.Errorf("exit code = %d, want 1", *code)
	}
	if !strings.Contains(stderr, "Unknown command: frobnicate") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRun_Languages(t *testing.T) {
	output := captureOutput(func() {
		Run(context.Background(), newProcessor(t), []string{"languages"})
	})

	for _, want := range []string{"ID", "LABEL", "javascript", "VB.NET", "Aliases:", "kotlin"} {
		if !strings.Contains(output, want) {
			t.Errorf("languages output missing %q", want)
		}
	}
}

func TestRun_LanguagesJSON(t *testing.T) {
	output := captureOutput(func() {
		Run(context.Background(), newProcessor(t), []string{"languages", "--json"})
	})

	var langs []types.Language
	if err := json.Unmarshal([]byte(output), &langs); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(langs) != 14 {
		t.Errorf("languages = %d, want 14", len(langs))
	}
}

func TestRun_Status(t *testing.T) {
	output := captureOutput(func() {
		Run(context.Background(), newProcessor(t), []string{"status"})
	})

	var status types.StatusResponse
	if err := json.Unmarshal([]byte(output), &status); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if status.Version != types.Version {
		t.Errorf("Version = %q, want %q", status.Version, types.Version)
	}
}

func TestRun_StripStdin(t *testing.T) {
	withStdin(t, "#!/bin/bash\n# comment\necho hi\n")

	var stdout string
	stderr := captureStderr(func() {
		stdout = captureOutput(func() {
			Run(context.Background(), newProcessor(t), []string{"strip", "--lang", "bash"})
		})
	})

	if stdout != "#!/bin/bash\necho hi\n" {
		t.Errorf("stdout = %q, want %q", stdout, "#!/bin/bash\necho hi\n")
	}
	if !strings.Contains(stderr, "Processed for Bash.") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRun_StripStdinJSON(t *testing.T) {
	withStdin(t, "=begin\nold code\n=end\nputs 1 # hi\n")

	output := captureOutput(func() {
		Run(context.Background(), newProcessor(t), []string{"strip", "--lang=ruby", "--json", "-"})
	})

	var res types.StripResult
	if err := json.Unmarshal([]byte(output), &res); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if res.Output != "puts 1\n" {
		t.Errorf("Output = %q, want %q", res.Output, "puts 1\n")
	}
	if res.OriginalLines != 5 || res.ResultLines != 1 {
		t.Errorf("lines = %d -> %d, want 5 -> 1", res.OriginalLines, res.ResultLines)
	}
}

func TestRun_StripErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
		want  string
	}{
		{"missing language", []string{"strip"}, "x", "Please select a language"},
		{"unknown language", []string{"strip", "--lang", "cobol"}, "x", `Unknown language "cobol"`},
		{"empty input", []string{"strip", "--lang", "go"}, "  \n", "No code provided to process"},
		{"write without files", []string{"strip", "--lang", "go", "-w"}, "x", "--write needs file arguments"},
		{"bad flag", []string{"strip", "--nope"}, "x", "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := mockExit(t)
			withStdin(t, tt.input)

			stderr := captureStderr(func() {
				_ = captureOutput(func() {
					Run(context.Background(), newProcessor(t), tt.args)
				})
			})

			if *code != 1 {
				t.Errorf("exit code = %d, want 1", *code)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.want)
			}
		})
	}
}

func TestRun_StripSingleFile(t *testing.T) {
	dir := createTestFiles(t, map[string]string{
		"query.sql": "-- report\nSELECT 1; /* inline */\n",
	})

	output := captureOutput(func() {
		_ = captureStderr(func() {
			Run(context.Background(), newProcessor(t), []string{"strip", "--lang", "sql", filepath.Join(dir, "query.sql")})
		})
	})

	if output != "SELECT 1; \n" {
		t.Errorf("stdout = %q, want %q", output, "SELECT 1; \n")
	}
}

func TestRun_StripWriteRecursive(t *testing.T) {
	dir := createTestFiles(t, map[string]string{
		"a.hs":     "{- module doc -}\nmain = print 1 -- entry\n",
		"sub/b.hs": "x = 2\n",
		"c.txt":    "-- untouched\n",
	})
	code := mockExit(t)

	stderr := captureStderr(func() {
		_ = captureOutput(func() {
			Run(context.Background(), newProcessor(t), []string{"strip", "-l", "haskell", "-w", "-r", "--ext", "hs", dir})
		})
	})

	if *code != -1 {
		t.Errorf("exit code = %d, want no exit", *code)
	}
	if !strings.Contains(stderr, "1 of 2 files changed") {
		t.Errorf("stderr = %q", stderr)
	}

	data, err := os.ReadFile(filepath.Join(dir, "a.hs"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "main = print 1\n" {
		t.Errorf("a.hs = %q, want %q", data, "main = print 1\n")
	}

	data, err = os.ReadFile(filepath.Join(dir, "c.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "-- untouched\n" {
		t.Errorf("c.txt modified: %q", data)
	}
}

func TestRun_StripFilesJSON(t *testing.T) {
	dir := createTestFiles(t, map[string]string{
		"one.ps1": "<# header #>\nWrite-Host hi # say hi\n",
		"two.ps1": "Get-Date\n",
	})

	output := captureOutput(func() {
		Run(context.Background(), newProcessor(t), []string{"strip", "--lang", "powershell", "--json",
			filepath.Join(dir, "one.ps1"), filepath.Join(dir, "two.ps1")})
	})

	var batch types.BatchResult
	if err := json.Unmarshal([]byte(output), &batch); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(batch.Files) != 2 || batch.Changed != 1 {
		t.Errorf("batch = %+v", batch)
	}
	if batch.Files[0].Output != "Write-Host hi\n" {
		t.Errorf("one.ps1 output = %q", batch.Files[0].Output)
	}
}

func TestRun_StripMissingPath(t *testing.T) {
	code := mockExit(t)

	stderr := captureStderr(func() {
		Run(context.Background(), newProcessor(t), []string{"strip", "--lang", "go", "/nonexistent/file.go"})
	})

	if *code != 1 {
		t.Errorf("exit code = %d, want 1", *code)
	}
	if !strings.Contains(stderr, "Error:") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestCapitalise(t *testing.T) {
	tests := map[string]string{
		"":                         "",
		"please select a language": "Please select a language",
		"X":                        "X",
	}
	for in, want := range tests {
		if got := capitalise(in); got != want {
			t.Errorf("capitalise(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatLines(t *testing.T) {
	got := formatLines(10, 4)
	if !strings.Contains(got, "10 → 4 lines") {
		t.Errorf("formatLines() = %q", got)
	}
}
