package workspace

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Prepare removes the mapping file and output tree left by a previous run,
// then copies the samples tree to outputDir.
func Prepare(samplesDir, outputDir, mappingFile string) error {
	if mappingFile != "" {
		if err := os.Remove(mappingFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &PrepareError{Op: "remove", Path: mappingFile, Err: err}
		}
	}

	if err := os.RemoveAll(outputDir); err != nil {
		return &PrepareError{Op: "remove", Path: outputDir, Err: err}
	}

	return CopyTree(samplesDir, outputDir)
}

// CopyTree copies the directory tree at src to dst, preserving file modes
// and symlinks. dst must not exist yet.
func CopyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return &PrepareError{Op: "copy", Path: src, Err: err}
	}
	if !info.IsDir() {
		return &PrepareError{Op: "copy", Path: src, Err: errors.New("not a directory")}
	}

	err = filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			// Sockets, devices and pipes have no place in a samples tree.
			return nil
		}
	})
	if err != nil {
		return &PrepareError{Op: "copy", Path: src, Err: err}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
