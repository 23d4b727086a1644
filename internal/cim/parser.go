package cim

import (
	"encoding/json"
	"time"

	"github.com/nordlux/elcore/pkg/apperr"
)

// Parse decodes a wire envelope. Exactly one top-level document name is
// expected; unknown fields inside the header and records are ignored.
func Parse(data []byte) (Envelope, error) {
	var outer map[DocumentType]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return Envelope{}, apperr.New(apperr.ErrValidation, "malformed envelope: %v", err)
	}
	if len(outer) != 1 {
		return Envelope{}, apperr.New(apperr.ErrValidation, "envelope must carry exactly one document, got %d", len(outer))
	}

	var env Envelope
	for doc, raw := range outer {
		if _, err := Spec(doc); err != nil {
			return Envelope{}, err
		}
		var header Header
		if err := json.Unmarshal(raw, &header); err != nil {
			return Envelope{}, apperr.New(apperr.ErrValidation, "malformed %s: %v", doc, err)
		}
		env = Envelope{DocumentType: doc, Header: header}
	}

	if env.Header.MRID == "" {
		return Envelope{}, apperr.New(apperr.ErrValidation, "envelope mRID is required")
	}
	if env.Header.CreatedDateTime != "" {
		if _, err := ParseTime(env.Header.CreatedDateTime); err != nil {
			return Envelope{}, err
		}
	}
	return env, nil
}

// RecordString reads a plain string field from a record, unwrapping the
// {"value": ...} shape where present.
func RecordString(r Record, key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case ValueField:
		return v.Value
	case CodedField:
		return v.Value
	case map[string]any:
		if s, ok := v["value"].(string); ok {
			return s
		}
	}
	return ""
}

// RecordTime reads a wire-formatted time field from a record.
func RecordTime(r Record, key string) (time.Time, error) {
	s := RecordString(r, key)
	if s == "" {
		return time.Time{}, apperr.New(apperr.ErrValidation, "record field %q is missing", key)
	}
	return ParseTime(s)
}
