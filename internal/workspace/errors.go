// Package workspace manages the output tree of a conversion run: it copies
// the samples tree into place, renames audio files and scans for audio
// files whose names are still unsafe.
package workspace

import (
	"errors"
	"fmt"
)

// RenameErrorType represents the type of rename error.
type RenameErrorType string

const (
	// SourceNotFound indicates the audio file to rename does not exist.
	SourceNotFound RenameErrorType = "SOURCE_NOT_FOUND"
	// DestinationExists indicates another file already has the new name.
	DestinationExists RenameErrorType = "DESTINATION_EXISTS"
	// PermissionDenied indicates insufficient permissions for the rename.
	PermissionDenied RenameErrorType = "PERMISSION_DENIED"
	// InvalidName indicates a name that is not a plain file name inside the
	// audio directory.
	InvalidName RenameErrorType = "INVALID_NAME"
)

// RenameError represents an error that occurred while renaming an audio file.
type RenameError struct {
	Type RenameErrorType
	Path string
	Err  error
}

func (e *RenameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Path)
}

func (e *RenameError) Unwrap() error {
	return e.Err
}

// IsRenameError reports whether err is a RenameError of the given type.
func IsRenameError(err error, t RenameErrorType) bool {
	var re *RenameError
	return errors.As(err, &re) && re.Type == t
}

// PrepareError is returned when the output tree cannot be rebuilt.
type PrepareError struct {
	Op   string // "remove" or "copy"
	Path string
	Err  error
}

func (e *PrepareError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PrepareError) Unwrap() error {
	return e.Err
}

// ScanErrorType represents the type of scanning error.
type ScanErrorType string

const (
	// DirectoryNotFound indicates the directory does not exist.
	DirectoryNotFound ScanErrorType = "DIRECTORY_NOT_FOUND"
	// ScanPermissionDenied indicates insufficient permissions to read the directory.
	ScanPermissionDenied ScanErrorType = "PERMISSION_DENIED"
)

// ScanError represents an error that occurred during directory scanning.
type ScanError struct {
	Type ScanErrorType
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return string(e.Type) + ": " + e.Path
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
