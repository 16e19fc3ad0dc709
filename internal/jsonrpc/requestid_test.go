package jsonrpc

import (
	"encoding/json"
	"testing"
)

func TestRequestID_RoundTripPreservesLexicalForm(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
	}{
		{"int", `1`},
		{"large int", `9007199254740993`},
		{"float", `1.5`},
		{"string", `"abc-123"`},
		{"numeric string", `"42"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var id RequestID
			if err := json.Unmarshal([]byte(tc.in), &id); err != nil {
				t.Fatalf("unmarshal %s: %v", tc.in, err)
			}
			out, err := json.Marshal(&id)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(out) != tc.in {
				t.Fatalf("round trip = %s, want %s", out, tc.in)
			}
		})
	}
}

func TestRequestID_RejectsObjects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{`{}`, `[1]`, `true`} {
		var id RequestID
		if err := json.Unmarshal([]byte(in), &id); err == nil {
			t.Fatalf("expected error for %s", in)
		}
	}
}

func TestRequestID_NilMarshalsAsNull(t *testing.T) {
	t.Parallel()

	var id *RequestID
	b, err := id.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "null" {
		t.Fatalf("got %s, want null", b)
	}
	if !id.IsNil() || id.String() != "" || id.Value() != nil {
		t.Fatalf("nil id accessors misbehaved")
	}
}

func TestNewRequestID(t *testing.T) {
	t.Parallel()

	if got := NewRequestID(7).String(); got != "7" {
		t.Fatalf("int id = %q", got)
	}
	if got := NewRequestID("x").String(); got != "x" {
		t.Fatalf("string id = %q", got)
	}
	if !NewRequestID(struct{}{}).IsNil() {
		t.Fatalf("unsupported value should produce a nil id")
	}
}
