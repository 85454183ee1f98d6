package sanitizer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/rogpeppe/go-internal/lockedfile"
)

// DefaultMappingFile is the conventional name of the mapping artifact.
const DefaultMappingFile = "mapping.json"

// Mapping returns a copy of the original-to-converted filename mapping.
func (s *Sanitizer) Mapping() map[string]string {
	m := make(map[string]string, len(s.mapping))
	for k, v := range s.mapping {
		m[k] = v
	}
	return m
}

// MappingCount returns the number of filenames that were converted.
func (s *Sanitizer) MappingCount() int {
	return len(s.mapping)
}

// MarshalMapping encodes the mapping as an indented JSON object.
func (s *Sanitizer) MarshalMapping() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.mapping); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteMapping writes the mapping to path. Nothing is written when the
// mapping is empty; the returned bool reports whether a file was written.
func (s *Sanitizer) WriteMapping(path string) (bool, error) {
	if len(s.mapping) == 0 {
		return false, nil
	}

	data, err := s.MarshalMapping()
	if err != nil {
		return false, fmt.Errorf("failed to marshal mapping: %w", err)
	}
	if err := lockedfile.Write(path, bytes.NewReader(data), 0644); err != nil {
		return false, fmt.Errorf("failed to write mapping %s: %w", path, err)
	}
	return true, nil
}
