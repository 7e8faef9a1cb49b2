package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const jsonIndent = "    "

// Serialize renders v as the canonical gateway JSON document: four-space
// indentation, object keys sorted at every level and no HTML escaping.
func Serialize(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to serialize %T: %w", v, err)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Reformat parses an arbitrary JSON document and re-serializes it in the
// canonical form. Numbers are kept exactly as received.
func Reformat(raw []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("failed to parse json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to parse json: unexpected data after top-level value")
	}

	return Serialize(v)
}

// marshalValue is json.Marshal without HTML escaping
func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// object is the explicit field map of a record; encoding/json sorts its keys.
type object map[string]any

func (o object) marshal() ([]byte, error) {
	return marshalValue(map[string]any(o))
}

func stringMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func stringSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func cloneStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
