package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// RenameResult describes a completed audio file rename.
type RenameResult struct {
	SourcePath      string
	DestinationPath string
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsPlainName reports whether name refers to a file directly inside a
// directory: non-empty, not "." or "..", and free of path separators of
// either platform.
func IsPlainName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// RenameAudio renames dir/oldName to dir/newName. Unlike the organizer it
// never invents a unique name: fwdata already references newName, so an
// occupied destination is a DestinationExists error and nothing is moved.
func RenameAudio(dir, oldName, newName string) (*RenameResult, error) {
	for _, name := range []string{oldName, newName} {
		if !IsPlainName(name) {
			return nil, &RenameError{Type: InvalidName, Path: name}
		}
	}

	src := filepath.Join(dir, oldName)
	dst := filepath.Join(dir, newName)

	srcInfo, err := os.Lstat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &RenameError{Type: SourceNotFound, Path: src, Err: err}
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, &RenameError{Type: PermissionDenied, Path: src, Err: err}
		}
		return nil, err
	}

	if dstInfo, err := os.Lstat(dst); err == nil {
		// On case-insensitive filesystems a case-only rename finds itself.
		if !os.SameFile(srcInfo, dstInfo) {
			return nil, &RenameError{Type: DestinationExists, Path: dst}
		}
	}

	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, &RenameError{Type: PermissionDenied, Path: src, Err: err}
		}
		return nil, err
	}

	return &RenameResult{SourcePath: src, DestinationPath: dst}, nil
}
