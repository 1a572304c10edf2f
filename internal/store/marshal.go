package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/qre/internal/ir"
)

// marshalRequest converts a request to canonical JSON TEXT for storage.
func marshalRequest(req ir.Object) (string, error) {
	data, err := ir.MarshalCanonical(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	return string(data), nil
}

// marshalResult converts a ResourceInfo to JSON TEXT.
// HTML escaping is disabled so program names round-trip byte for byte.
func marshalResult(res ir.ResourceInfo) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func unmarshalResult(data string) (ir.ResourceInfo, error) {
	var res ir.ResourceInfo
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return ir.ResourceInfo{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return res, nil
}

// exactRate returns the exact logical error rate text, falling back to
// the float form for results computed without one (e.g. the null result).
func exactRate(res ir.ResourceInfo) string {
	if res.LogicalErrorRateExact != "" {
		return res.LogicalErrorRateExact
	}
	return fmt.Sprintf("%g", res.LogicalErrorRate)
}
