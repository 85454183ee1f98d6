// Package config handles configuration loading and validation for fwsanitize.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"fwsanitize/internal/audit"
	"fwsanitize/internal/sanitizer"
	"fwsanitize/internal/watcher"
)

// DefaultConfigFile is the configuration file looked up in the working directory.
const DefaultConfigFile = "config.json"

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	InvalidJSON     ConfigErrorType = "INVALID_JSON"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case InvalidJSON:
		return fmt.Sprintf("invalid JSON in configuration file: %s", e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

// Configuration holds all settings for a conversion run.
type Configuration struct {
	Fwdata           string                    `json:"fwdata"`
	SamplesDirectory string                    `json:"samplesDirectory,omitempty"`
	OutputDirectory  string                    `json:"outputDirectory,omitempty"`
	AudioDirectory   string                    `json:"audioDirectory,omitempty"`
	MappingFile      string                    `json:"mappingFile,omitempty"`
	EmptyNamePolicy  sanitizer.EmptyNamePolicy `json:"emptyNamePolicy,omitempty"`
	DryRun           bool                      `json:"dryRun,omitempty"`
	Audit            *audit.AuditConfig        `json:"audit,omitempty"`
	Watch            *watcher.WatchConfig      `json:"watch,omitempty"`
}

// Default directory layout, matching the samples/ and output/ trees the
// tool has always used.
const (
	DefaultSamplesDirectory = "samples"
	DefaultOutputDirectory  = "output"
	DefaultAudioDirectory   = "AudioVisual"
)

// Validate checks that the configuration has all required fields.
func (c *Configuration) Validate() error {
	if c.Fwdata == "" {
		return &ConfigError{
			Type:    ValidationError,
			Message: "fwdata filename is missing",
		}
	}

	if strings.ContainsAny(c.Fwdata, `/\`) {
		return &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("fwdata must be a file name inside the audio directory, got %q", c.Fwdata),
		}
	}

	switch c.EmptyNamePolicy {
	case "", sanitizer.EmptyNameKeep, sanitizer.EmptyNamePlaceholder:
	default:
		return &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("emptyNamePolicy must be %q or %q, got %q", sanitizer.EmptyNameKeep, sanitizer.EmptyNamePlaceholder, c.EmptyNamePolicy),
		}
	}

	return nil
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Configuration) ApplyDefaults() {
	if c.SamplesDirectory == "" {
		c.SamplesDirectory = DefaultSamplesDirectory
	}
	if c.OutputDirectory == "" {
		c.OutputDirectory = DefaultOutputDirectory
	}
	if c.AudioDirectory == "" {
		c.AudioDirectory = DefaultAudioDirectory
	}
	if c.MappingFile == "" {
		c.MappingFile = sanitizer.DefaultMappingFile
	}
	if c.EmptyNamePolicy == "" {
		c.EmptyNamePolicy = sanitizer.EmptyNameKeep
	}
	c.ApplyAuditDefaults()

	if c.Watch == nil {
		c.Watch = watcher.DefaultWatchConfig()
		return
	}
	defaults := watcher.DefaultWatchConfig()
	if c.Watch.DebounceMilliseconds == 0 {
		c.Watch.DebounceMilliseconds = defaults.DebounceMilliseconds
	}
	if c.Watch.StableThresholdMilliseconds == 0 {
		c.Watch.StableThresholdMilliseconds = defaults.StableThresholdMilliseconds
	}
	if len(c.Watch.IgnorePatterns) == 0 {
		c.Watch.IgnorePatterns = defaults.IgnorePatterns
	}
}

// ApplyAuditDefaults ensures the Audit configuration has sensible defaults.
func (c *Configuration) ApplyAuditDefaults() {
	defaults := audit.DefaultAuditConfig()

	if c.Audit == nil {
		c.Audit = &defaults
		return
	}
	if c.Audit.LogDirectory == "" {
		c.Audit.LogDirectory = defaults.LogDirectory
	}
	if c.Audit.RotationSize == 0 {
		c.Audit.RotationSize = defaults.RotationSize
	}
	// Zero retention limits mean unlimited.
	if c.Audit.MinRetentionDays == 0 {
		c.Audit.MinRetentionDays = defaults.MinRetentionDays
	}
}

// ResolvePaths expands a leading "~" in every configured path.
func (c *Configuration) ResolvePaths() error {
	paths := []*string{&c.SamplesDirectory, &c.OutputDirectory, &c.MappingFile}
	if c.Audit != nil {
		paths = append(paths, &c.Audit.LogDirectory)
	}

	for _, p := range paths {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(filepath.Clean(*p))
		if err != nil {
			return &ConfigError{
				Type:    ValidationError,
				Message: fmt.Sprintf("cannot expand path %q: %s", *p, err.Error()),
			}
		}
		*p = expanded
	}
	return nil
}

// InputAudioDir returns the audio directory of the samples tree.
func (c *Configuration) InputAudioDir() string {
	return filepath.Join(c.SamplesDirectory, c.AudioDirectory)
}

// OutputAudioDir returns the audio directory of the output tree.
func (c *Configuration) OutputAudioDir() string {
	return filepath.Join(c.OutputDirectory, c.AudioDirectory)
}

// InputFile returns the path of the fwdata file that is read.
func (c *Configuration) InputFile() string {
	return filepath.Join(c.InputAudioDir(), c.Fwdata)
}

// OutputFile returns the path of the fwdata file that is written.
func (c *Configuration) OutputFile() string {
	return filepath.Join(c.OutputAudioDir(), c.Fwdata)
}

// Load reads and parses a configuration file from the given path.
func Load(filePath string) (*Configuration, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{
				Type: FileNotFound,
				Path: filePath,
			}
		}
		return nil, &ConfigError{
			Type:    FileNotFound,
			Path:    filePath,
			Message: err.Error(),
		}
	}

	var config Configuration
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, &ConfigError{
			Type:    InvalidJSON,
			Message: err.Error(),
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.ApplyDefaults()
	if err := config.ResolvePaths(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadOrCreate loads config if it exists, or returns a default config if the
// file doesn't exist. The result is not validated.
func LoadOrCreate(filePath string) (*Configuration, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := &Configuration{}
			config.ApplyDefaults()
			return config, nil
		}
		return nil, &ConfigError{
			Type:    FileNotFound,
			Path:    filePath,
			Message: err.Error(),
		}
	}

	var config Configuration
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, &ConfigError{
			Type:    InvalidJSON,
			Message: err.Error(),
		}
	}

	config.ApplyDefaults()

	return &config, nil
}

// Save serializes and writes a configuration to the given path.
func Save(config *Configuration, filePath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return &ConfigError{
			Type:    InvalidJSON,
			Message: err.Error(),
		}
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("failed to write configuration file: %s", err.Error()),
		}
	}

	return nil
}
