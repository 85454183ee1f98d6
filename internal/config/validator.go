package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string             // Config field with issue (e.g., "samplesDirectory")
	Message  string             // Human-readable description
	Severity ValidationSeverity // "error" or "warning"
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // True if no errors (warnings OK)
}

// Err returns a VALIDATION_ERROR ConfigError summarizing every error, or nil.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return &ConfigError{
		Type:    ValidationError,
		Message: strings.Join(msgs, "; "),
	}
}

// ValidateConfig checks the configuration against the filesystem and returns
// all findings.
func ValidateConfig(cfg *Configuration) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
		Valid:    true,
	}

	findings := ValidatePaths(cfg)
	findings = append(findings, ValidatePolicies(cfg)...)
	for _, f := range findings {
		if f.Severity == SeverityError {
			result.Errors = append(result.Errors, f)
		} else {
			result.Warnings = append(result.Warnings, f)
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// ValidatePaths checks that the samples tree and fwdata file exist and that
// the output tree can be replaced safely.
func ValidatePaths(cfg *Configuration) []ConfigValidationError {
	var errors []ConfigValidationError

	if err := checkDirectory(cfg.SamplesDirectory); err != "" {
		errors = append(errors, ConfigValidationError{
			Field:    "samplesDirectory",
			Message:  err,
			Severity: SeverityError,
		})
	} else if err := checkDirectory(cfg.InputAudioDir()); err != "" {
		errors = append(errors, ConfigValidationError{
			Field:    "audioDirectory",
			Message:  err,
			Severity: SeverityError,
		})
	} else {
		info, statErr := os.Stat(cfg.InputFile())
		switch {
		case os.IsNotExist(statErr):
			errors = append(errors, ConfigValidationError{
				Field:    "fwdata",
				Message:  "file does not exist: " + cfg.InputFile(),
				Severity: SeverityError,
			})
		case statErr != nil:
			errors = append(errors, ConfigValidationError{
				Field:    "fwdata",
				Message:  "error accessing file: " + statErr.Error(),
				Severity: SeverityError,
			})
		case info.IsDir():
			errors = append(errors, ConfigValidationError{
				Field:    "fwdata",
				Message:  "path is a directory: " + cfg.InputFile(),
				Severity: SeverityError,
			})
		}
	}

	if directoriesOverlap(cfg.SamplesDirectory, cfg.OutputDirectory) {
		errors = append(errors, ConfigValidationError{
			Field:    "outputDirectory",
			Message:  "output directory \"" + cfg.OutputDirectory + "\" overlaps with samples directory \"" + cfg.SamplesDirectory + "\"",
			Severity: SeverityError,
		})
	}

	if _, err := os.Stat(cfg.OutputDirectory); err == nil && !cfg.DryRun {
		errors = append(errors, ConfigValidationError{
			Field:    "outputDirectory",
			Message:  "existing directory will be replaced: " + cfg.OutputDirectory,
			Severity: SeverityWarning,
		})
	}

	return errors
}

// checkDirectory returns a description of what is wrong with dir, or "".
func checkDirectory(dir string) string {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "directory does not exist: " + dir
		}
		if os.IsPermission(err) {
			return "directory is not accessible: " + dir
		}
		return "error accessing directory: " + err.Error()
	}
	if !info.IsDir() {
		return "path is not a directory: " + dir
	}
	return ""
}

// directoriesOverlap checks if two directories overlap (one is parent/ancestor of the other).
func directoriesOverlap(dir1, dir2 string) bool {
	clean1 := absOrClean(dir1)
	clean2 := absOrClean(dir2)

	if clean1 == clean2 {
		return true
	}
	if strings.HasPrefix(clean2, clean1+string(filepath.Separator)) {
		return true
	}
	if strings.HasPrefix(clean1, clean2+string(filepath.Separator)) {
		return true
	}
	return false
}

func absOrClean(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

// ValidatePolicies checks that policy values are valid.
func ValidatePolicies(cfg *Configuration) []ConfigValidationError {
	var errors []ConfigValidationError

	if cfg.Watch != nil {
		if cfg.Watch.DebounceMilliseconds < 0 {
			errors = append(errors, ConfigValidationError{
				Field:    "watch.debounceMilliseconds",
				Message:  "must be a non-negative integer",
				Severity: SeverityError,
			})
		}
		if cfg.Watch.StableThresholdMilliseconds < 0 {
			errors = append(errors, ConfigValidationError{
				Field:    "watch.stableThresholdMilliseconds",
				Message:  "must be a non-negative integer",
				Severity: SeverityError,
			})
		}
		for i, pattern := range cfg.Watch.IgnorePatterns {
			if _, err := filepath.Match(pattern, ""); err != nil {
				errors = append(errors, ConfigValidationError{
					Field:    "watch.ignorePatterns[" + strconv.Itoa(i) + "]",
					Message:  "invalid glob pattern: \"" + pattern + "\"",
					Severity: SeverityError,
				})
			}
		}
	}

	if cfg.Audit != nil {
		switch cfg.Audit.RotationPeriod {
		case "", "daily", "weekly":
		default:
			errors = append(errors, ConfigValidationError{
				Field:    "audit.rotationPeriod",
				Message:  "must be \"daily\", \"weekly\" or empty, got \"" + cfg.Audit.RotationPeriod + "\"",
				Severity: SeverityError,
			})
		}
		limits := []struct {
			field string
			value int64
		}{
			{"audit.rotationSizeBytes", cfg.Audit.RotationSize},
			{"audit.retentionDays", int64(cfg.Audit.RetentionDays)},
			{"audit.retentionRuns", int64(cfg.Audit.RetentionRuns)},
			{"audit.minRetentionDays", int64(cfg.Audit.MinRetentionDays)},
		}
		for _, l := range limits {
			if l.value < 0 {
				errors = append(errors, ConfigValidationError{
					Field:    l.field,
					Message:  "must be a non-negative integer",
					Severity: SeverityError,
				})
			}
		}
	}

	return errors
}
