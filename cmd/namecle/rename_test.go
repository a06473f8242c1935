// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExpandArgsDirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.pdf"))
	touch(t, filepath.Join(dir, "a.pdf"))
	touch(t, filepath.Join(dir, "notes.txt"))
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "nested", "c.pdf"))

	files, err := expandArgs([]string{dir})
	if err != nil {
		t.Fatalf("expandArgs: %v", err)
	}

	want := []string{filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.pdf")}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want sorted non-recursive PDFs %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestExpandArgsDeduplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.pdf")
	touch(t, path)

	files, err := expandArgs([]string{path, path, dir})
	if err != nil {
		t.Fatalf("expandArgs: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("files = %v, want the duplicate paths collapsed", files)
	}
}

func TestExpandArgsMissingPath(t *testing.T) {
	if _, err := expandArgs([]string{"/no/such/file.pdf"}); err == nil {
		t.Error("expected error for a missing argument")
	}
}

func TestPipelineConfigHistoryPath(t *testing.T) {
	cfg := pipelineConfig(renameCmd)
	if cfg.History.DBPath != defaultHistoryDB {
		t.Errorf("History.DBPath = %q, want %q", cfg.History.DBPath, defaultHistoryDB)
	}

	if err := renameCmd.Flags().Set("no-history", "true"); err != nil {
		t.Fatal(err)
	}
	defer renameCmd.Flags().Set("no-history", "false")

	cfg = pipelineConfig(renameCmd)
	if cfg.History.DBPath != "" {
		t.Errorf("History.DBPath = %q, want empty with --no-history", cfg.History.DBPath)
	}
}

func TestSecretDefault(t *testing.T) {
	loadedSecrets = map[string]string{"llm-api-key": "sk_from_file"}
	defer func() { loadedSecrets = nil }()

	if got := secretDefault("llm-api-key", ""); got != "sk_from_file" {
		t.Errorf("secretDefault = %q, want secret file value", got)
	}
	if got := secretDefault("llm-api-key", "sk_flag"); got != "sk_flag" {
		t.Errorf("secretDefault = %q, want explicit value to win", got)
	}
	if got := secretDefault("absent", ""); got != "" {
		t.Errorf("secretDefault = %q, want empty for unknown key", got)
	}
}
