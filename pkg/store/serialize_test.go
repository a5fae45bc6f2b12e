package store

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidateRejects(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	type node struct {
		Next *node `json:"next"`
	}
	loop := &node{}
	loop.Next = loop

	tests := []struct {
		name  string
		state State
		path  string
	}{
		{"func", State{"cb": func() {}}, "$.cb"},
		{"chan", State{"ch": make(chan int)}, "$.ch"},
		{"complex", State{"c": complex(1, 2)}, "$.c"},
		{"nan", State{"list": []any{1.0, math.NaN()}}, "$.list[1]"},
		{"inf", State{"n": math.Inf(1)}, "$.n"},
		{"map cycle", State{"m": cyclic}, "$.m.self"},
		{"pointer cycle", State{"n": loop}, "$.n.next"},
		{"bad key", State{"m": map[bool]int{true: 1}}, "$.m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.state)
			var se *SerializationError
			if !errors.As(err, &se) {
				t.Fatalf("Validate() = %v, want *SerializationError", err)
			}
			if se.Path != tt.path {
				t.Errorf("Path = %q, want %q", se.Path, tt.path)
			}
		})
	}
}

func TestValidateAcceptsSharedReferences(t *testing.T) {
	shared := []any{"x"}
	st := State{"a": shared, "b": shared, "raw": []byte("hi"), "nilfn": (func())(nil)}
	if err := Validate(st); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestMarshalEscapesScriptBreakers(t *testing.T) {
	const payload = "</script><!-- \u2028 & \u2029"
	data, err := Marshal(State{"html": payload})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := string(data)
	for _, bad := range []string{"</script>", "<!--", "\u2028", "\u2029", "&"} {
		if strings.Contains(out, bad) {
			t.Errorf("marshalled state contains %q: %s", bad, out)
		}
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back["html"] != payload {
		t.Errorf("round trip = %q", back["html"])
	}
}

func TestUnmarshalRejectsNull(t *testing.T) {
	if _, err := Unmarshal([]byte("null")); err == nil {
		t.Error("expected error for null state")
	}
	if _, err := Unmarshal([]byte("{broken")); err == nil {
		t.Error("expected error for malformed state")
	}
}
