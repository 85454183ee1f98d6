package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fwsanitize/internal/sanitizer"
)

// AudioExtensions are the file extensions treated as audio, lower-cased.
var AudioExtensions = []string{".mp3", ".m4a"}

// ScanOptions configures scanning behavior.
type ScanOptions struct {
	MaxDepth    int  // Maximum depth to scan (0 = immediate only, -1 = unlimited)
	FollowLinks bool // Report symlinked files instead of skipping them
	IncludeSafe bool // Also report files whose names are already safe
}

// DefaultScanOptions returns options that report only unsafe audio files in
// the directory itself.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{}
}

// FileEntry represents a file found during scanning.
type FileEntry struct {
	Name     string // Filename only
	FullPath string // Path joined from the scanned directory
}

// IsAudioFile reports whether name carries one of AudioExtensions,
// ignoring case.
func IsAudioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range AudioExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// UnsafeAudioFiles lists audio files directly inside dir whose names would
// still be rejected by the safe-name pattern.
func UnsafeAudioFiles(dir string) ([]FileEntry, error) {
	return ScanAudio(dir, DefaultScanOptions())
}

// ScanAudio enumerates audio files in directory, sorted by path.
func ScanAudio(directory string, opts ScanOptions) ([]FileEntry, error) {
	info, err := os.Stat(directory)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ScanError{Type: DirectoryNotFound, Path: directory, Err: err}
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, &ScanError{Type: ScanPermissionDenied, Path: directory, Err: err}
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, &ScanError{
			Type: DirectoryNotFound,
			Path: directory,
			Err:  errors.New("path is not a directory"),
		}
	}

	files, err := scanDirectory(directory, opts, 0)
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].FullPath < files[j].FullPath
	})
	return files, nil
}

func scanDirectory(directory string, opts ScanOptions, depth int) ([]FileEntry, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, &ScanError{Type: ScanPermissionDenied, Path: directory, Err: err}
		}
		return nil, err
	}

	var files []FileEntry
	for _, entry := range entries {
		fullPath := filepath.Join(directory, entry.Name())

		info, err := os.Lstat(fullPath)
		if err != nil {
			continue
		}

		if info.Mode()&os.ModeSymlink != 0 {
			if !opts.FollowLinks {
				continue
			}
			info, err = os.Stat(fullPath)
			if err != nil {
				continue // broken link
			}
		}

		if info.IsDir() {
			if opts.MaxDepth == -1 || depth < opts.MaxDepth {
				sub, err := scanDirectory(fullPath, opts, depth+1)
				if err != nil {
					return nil, err
				}
				files = append(files, sub...)
			}
			continue
		}

		if !IsAudioFile(entry.Name()) {
			continue
		}
		if !opts.IncludeSafe && sanitizer.IsSafeName(entry.Name()) {
			continue
		}

		files = append(files, FileEntry{
			Name:     entry.Name(),
			FullPath: fullPath,
		})
	}

	return files, nil
}
