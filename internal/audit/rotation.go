package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RotationManager decides when the active journal is retired into a
// dated segment. Watch mode appends a run on every save, so without
// rotation the journal grows without bound.
type RotationManager struct {
	config AuditConfig
	now    func() time.Time
}

// NewRotationManager creates a RotationManager for the given configuration.
func NewRotationManager(config AuditConfig) *RotationManager {
	return &RotationManager{config: config, now: time.Now}
}

// NeedsRotation reports whether the journal at logPath has reached the
// configured size or was last written in an earlier rotation period.
// A missing or empty journal never needs rotation.
func (rm *RotationManager) NeedsRotation(logPath string) (bool, error) {
	info, err := os.Stat(logPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat log file: %w", err)
	}
	if info.Size() == 0 {
		return false, nil
	}

	if rm.config.RotationSize > 0 && info.Size() >= rm.config.RotationSize {
		return true, nil
	}
	return rm.periodElapsed(info.ModTime())
}

func (rm *RotationManager) periodElapsed(lastWrite time.Time) (bool, error) {
	now := rm.now()

	switch rm.config.RotationPeriod {
	case "":
		return false, nil
	case "daily":
		ly, lm, ld := lastWrite.Date()
		ny, nm, nd := now.Date()
		return ly != ny || lm != nm || ld != nd, nil
	case "weekly":
		ly, lw := lastWrite.ISOWeek()
		ny, nw := now.ISOWeek()
		return ly != ny || lw != nw, nil
	default:
		return false, fmt.Errorf("unknown rotation period: %s", rm.config.RotationPeriod)
	}
}

// Rotate renames the journal at logPath to a new segment in the same
// directory and returns the segment's path. Segment names sort in the
// order they were created.
func (rm *RotationManager) Rotate(logPath string) (string, error) {
	dir := filepath.Dir(logPath)
	stamp := rm.now().Format("20060102-150405.000")
	stamp = strings.Replace(stamp, ".", "-", 1)

	segment := filepath.Join(dir, segmentPrefix+stamp+segmentSuffix)
	for n := 1; fileExists(segment); n++ {
		segment = filepath.Join(dir, segmentPrefix+stamp+"-"+strconv.Itoa(n)+segmentSuffix)
	}

	if err := os.Rename(logPath, segment); err != nil {
		return "", fmt.Errorf("failed to rotate audit log: %w", err)
	}
	return segment, nil
}

// RotateIfNeeded rotates logPath when NeedsRotation says so. It returns the
// new segment's path, or "" when nothing was rotated.
func (rm *RotationManager) RotateIfNeeded(logPath string) (string, error) {
	needed, err := rm.NeedsRotation(logPath)
	if err != nil || !needed {
		return "", err
	}
	return rm.Rotate(logPath)
}

// DiscoverSegments returns the names of the rotated segments in logDir,
// oldest first. The active journal is not a segment.
func DiscoverSegments(logDir string) ([]string, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}

	var segments []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == LogFileName {
			continue
		}
		if strings.HasPrefix(name, segmentPrefix) && strings.HasSuffix(name, segmentSuffix) {
			segments = append(segments, name)
		}
	}

	sort.Strings(segments)
	return segments, nil
}

// GetAllLogFiles returns the full paths of every segment followed by the
// active journal, if it exists.
func GetAllLogFiles(logDir string) ([]string, error) {
	segments, err := DiscoverSegments(logDir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(segments)+1)
	for _, seg := range segments {
		files = append(files, filepath.Join(logDir, seg))
	}

	active := filepath.Join(logDir, LogFileName)
	if fileExists(active) {
		files = append(files, active)
	}
	return files, nil
}

func newRotationEvent(segment string) AuditEvent {
	return AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventRotation,
		Status:    StatusSuccess,
		Metadata: map[string]string{
			"segment": filepath.Base(segment),
		},
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
