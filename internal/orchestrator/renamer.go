package orchestrator

import (
	"path/filepath"

	"fwsanitize/internal/workspace"
)

// renamer applies audio file renames inside one directory.
type renamer interface {
	exists(name string) bool
	rename(oldName, newName string) (*workspace.RenameResult, error)
}

// diskRenamer renames files for real.
type diskRenamer struct {
	dir string
}

func (r *diskRenamer) exists(name string) bool {
	return workspace.FileExists(filepath.Join(r.dir, name))
}

func (r *diskRenamer) rename(oldName, newName string) (*workspace.RenameResult, error) {
	return workspace.RenameAudio(r.dir, oldName, newName)
}

// plannedRenamer simulates renames on top of a read-only directory so a dry
// run sees the effect of earlier lines on later ones.
type plannedRenamer struct {
	dir     string
	overlay map[string]bool // name -> present after planned renames
}

func newPlannedRenamer(dir string) *plannedRenamer {
	return &plannedRenamer{dir: dir, overlay: make(map[string]bool)}
}

func (r *plannedRenamer) exists(name string) bool {
	if present, ok := r.overlay[name]; ok {
		return present
	}
	return workspace.FileExists(filepath.Join(r.dir, name))
}

func (r *plannedRenamer) rename(oldName, newName string) (*workspace.RenameResult, error) {
	for _, name := range []string{oldName, newName} {
		if !workspace.IsPlainName(name) {
			return nil, &workspace.RenameError{Type: workspace.InvalidName, Path: name}
		}
	}

	src := filepath.Join(r.dir, oldName)
	dst := filepath.Join(r.dir, newName)

	if !r.exists(oldName) {
		return nil, &workspace.RenameError{Type: workspace.SourceNotFound, Path: src}
	}
	if r.exists(newName) {
		return nil, &workspace.RenameError{Type: workspace.DestinationExists, Path: dst}
	}

	r.overlay[oldName] = false
	r.overlay[newName] = true
	return &workspace.RenameResult{SourcePath: src, DestinationPath: dst}, nil
}

// renamedAway reports whether a planned rename moved name out of the way.
func (r *plannedRenamer) renamedAway(name string) bool {
	present, ok := r.overlay[name]
	return ok && !present
}
