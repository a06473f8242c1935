// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package filename

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pdiddy/namecle/pkg/types"
)

// RenameError classifies a failed rename for the outcome stream.
type RenameError struct {
	Kind types.ErrorKind
	Err  error
}

func (e *RenameError) Error() string { return e.Err.Error() }
func (e *RenameError) Unwrap() error { return e.Err }

// Resolve returns the collision-free destination path for name inside the
// directory of selfPath. When the synthesized name is already occupied by a
// different file, a " (n)" counter is inserted before the extension,
// starting at 1 and incrementing until a free slot is found. The occupied
// path being selfPath (the file we are renaming) is not a collision: the new
// name may equal the old one.
func Resolve(name, selfPath string) string {
	dir := filepath.Dir(selfPath)

	dest := filepath.Join(dir, name)
	if !occupied(dest, selfPath) {
		return dest
	}
	for n := 1; ; n++ {
		dest = filepath.Join(dir, counterName(name, n))
		if !occupied(dest, selfPath) {
			return dest
		}
	}
}

// occupied reports whether path exists and is not the file being renamed.
func occupied(path, selfPath string) bool {
	if samePath(path, selfPath) {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// samePath compares cleaned paths, case-insensitively on platforms with
// case-preserving filesystems.
func samePath(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// Apply renames oldPath to newPath, classifying failures. A permission
// error almost always means the file is open in another program; anything
// else is a generic filesystem error. The destination must come from
// Resolve so the existence check and the rename use the same path.
func Apply(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		kind := types.ErrRenameIO
		if errors.Is(err, os.ErrPermission) {
			kind = types.ErrFileLocked
		}
		return &RenameError{Kind: kind, Err: err}
	}
	return nil
}
