// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filename

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/namecle/pkg/types"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestResolveFreeSlot(t *testing.T) {
	dir := t.TempDir()
	self := filepath.Join(dir, "input.pdf")
	touch(t, self)

	got := Resolve("2020 bbb Foo Bar.pdf", self)
	want := filepath.Join(dir, "2020 bbb Foo Bar.pdf")
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolveCollisionCounter(t *testing.T) {
	dir := t.TempDir()
	self := filepath.Join(dir, "input.pdf")
	touch(t, self)
	touch(t, filepath.Join(dir, "2020 bbb Foo Bar.pdf"))
	touch(t, filepath.Join(dir, "2020 bbb Foo Bar (1).pdf"))

	got := Resolve("2020 bbb Foo Bar.pdf", self)
	want := filepath.Join(dir, "2020 bbb Foo Bar (2).pdf")
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolveSelfIsNotACollision(t *testing.T) {
	dir := t.TempDir()
	self := filepath.Join(dir, "2020 bbb Foo Bar.pdf")
	touch(t, self)

	got := Resolve("2020 bbb Foo Bar.pdf", self)
	if got != self {
		t.Errorf("Resolve() = %q, want the file's own path %q", got, self)
	}
}

func TestApply(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "input.pdf")
	touch(t, old)

	dest := filepath.Join(dir, "2020 bbb Foo Bar.pdf")
	if err := Apply(old, dest); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("destination missing after rename: %v", err)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("source still present after rename")
	}
}

func TestApplyMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := Apply(filepath.Join(dir, "absent.pdf"), filepath.Join(dir, "out.pdf"))
	if err == nil {
		t.Fatal("expected error renaming a missing file")
	}
	var re *RenameError
	if !errors.As(err, &re) {
		t.Fatalf("error type = %T, want *RenameError", err)
	}
	if re.Kind != types.ErrRenameIO {
		t.Errorf("Kind = %v, want rename-io", re.Kind)
	}
}
