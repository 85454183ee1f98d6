package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestPrepare_CopiesSamplesTree(t *testing.T) {
	root := t.TempDir()
	samples := filepath.Join(root, "samples")
	output := filepath.Join(root, "output")
	mapping := filepath.Join(root, "mapping.json")

	writeFile(t, filepath.Join(samples, "AudioVisual", "test.fwdata"), "<Uni>AudioVisual\\龙.mp3</Uni>\n")
	writeFile(t, filepath.Join(samples, "AudioVisual", "龙.mp3"), "audio")
	writeFile(t, filepath.Join(samples, "Pictures", "a.png"), "png")

	// Stale results from a previous run.
	writeFile(t, mapping, "{}")
	writeFile(t, filepath.Join(output, "stale.txt"), "old")

	if err := Prepare(samples, output, mapping); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	if FileExists(mapping) {
		t.Error("expected stale mapping to be removed")
	}
	if FileExists(filepath.Join(output, "stale.txt")) {
		t.Error("expected stale output to be removed")
	}

	for _, rel := range []string{"AudioVisual/test.fwdata", "AudioVisual/龙.mp3", "Pictures/a.png"} {
		src, err := os.ReadFile(filepath.Join(samples, rel))
		if err != nil {
			t.Fatalf("failed to read source %s: %v", rel, err)
		}
		dst, err := os.ReadFile(filepath.Join(output, rel))
		if err != nil {
			t.Fatalf("expected %s to be copied: %v", rel, err)
		}
		if string(src) != string(dst) {
			t.Errorf("%s: content mismatch", rel)
		}
	}
}

func TestPrepare_MissingMappingIsFine(t *testing.T) {
	root := t.TempDir()
	samples := filepath.Join(root, "samples")
	writeFile(t, filepath.Join(samples, "AudioVisual", "x.fwdata"), "")

	if err := Prepare(samples, filepath.Join(root, "output"), filepath.Join(root, "mapping.json")); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
}

func TestPrepare_MissingSamples(t *testing.T) {
	root := t.TempDir()
	err := Prepare(filepath.Join(root, "samples"), filepath.Join(root, "output"), "")

	var pe *PrepareError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PrepareError, got %v", err)
	}
	if pe.Op != "copy" {
		t.Errorf("expected copy op, got %s", pe.Op)
	}
}

func TestCopyTree_PreservesSymlinks(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeFile(t, filepath.Join(src, "real.mp3"), "audio")
	if err := os.Symlink("real.mp3", filepath.Join(src, "link.mp3")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	dst := filepath.Join(root, "dst")
	if err := CopyTree(src, dst); err != nil {
		t.Fatalf("CopyTree failed: %v", err)
	}

	link, err := os.Readlink(filepath.Join(dst, "link.mp3"))
	if err != nil {
		t.Fatalf("expected symlink in copy: %v", err)
	}
	if link != "real.mp3" {
		t.Errorf("expected link target real.mp3, got %s", link)
	}
}
