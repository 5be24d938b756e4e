package testutil

import (
	"encoding/json"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// DecodeResult decodes a {"result": string} body and fails the test unless
// result is the only key and holds a string.
func DecodeResult(t *testing.T, body []byte) string {
	t.Helper()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		t.Fatalf("response is not a JSON object: %v\n%s", err, body)
	}
	if len(fields) != 1 {
		t.Fatalf("expected exactly one key, got %d: %s", len(fields), body)
	}
	raw, ok := fields["result"]
	if !ok {
		t.Fatalf("missing result key: %s", body)
	}

	var result string
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("result is not a string: %s", raw)
	}
	return result
}
