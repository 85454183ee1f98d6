package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MarshalJSONLine encodes e as a single journal line without the trailing
// newline. Timestamps are stored in UTC with nanosecond precision, empty
// optional fields are left out, and paths are written without HTML escaping
// so the journal stays readable.
func MarshalJSONLine(e AuditEvent) ([]byte, error) {
	e.Timestamp = e.Timestamp.UTC()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSONLine decodes one journal line. A line without an event type
// or timestamp is not an event.
func UnmarshalJSONLine(data []byte) (*AuditEvent, error) {
	var e AuditEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.EventType == "" {
		return nil, errors.New("event has no eventType")
	}
	if e.Timestamp.IsZero() {
		return nil, fmt.Errorf("%s event has no timestamp", e.EventType)
	}
	return &e, nil
}
