package router

import "testing"

func TestDecode(t *testing.T) {
	var target struct {
		ID      int      `param:"id"`
		Page    uint8    `param:"page"`
		Ratio   float64  `param:"ratio"`
		Draft   bool     `param:"draft"`
		Slug    string   `param:"slug"`
		Rest    []string `param:"rest"`
		Ignored string
	}
	params := map[string]string{
		"id": "42", "page": "3", "ratio": "0.5", "draft": "true", "slug": "hi", "rest": "a/b",
	}
	if err := Decode(params, &target); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if target.ID != 42 || target.Page != 3 || target.Ratio != 0.5 || !target.Draft || target.Slug != "hi" {
		t.Errorf("decoded %+v", target)
	}
	if len(target.Rest) != 2 || target.Rest[1] != "b" {
		t.Errorf("Rest = %v", target.Rest)
	}
}

func TestDecodeErrors(t *testing.T) {
	var n struct {
		N int8 `param:"n"`
	}
	if err := Decode(map[string]string{"n": "300"}, &n); err == nil {
		t.Error("expected overflow error")
	}
	if err := Decode(map[string]string{}, n); err == nil {
		t.Error("expected error for non-pointer target")
	}
	s := "x"
	if err := Decode(map[string]string{}, &s); err == nil {
		t.Error("expected error for non-struct target")
	}
}

func TestValidateParam(t *testing.T) {
	tests := []struct {
		value, typ string
		ok         bool
	}{
		{"12", "int", true},
		{"-1", "int", true},
		{"x", "int", false},
		{"-1", "uint", false},
		{"123e4567-e89b-12d3-a456-426614174000", "uuid", true},
		{"nope", "uuid", false},
		{"anything", "string", true},
	}
	for _, tt := range tests {
		if err := ValidateParam(tt.value, tt.typ); (err == nil) != tt.ok {
			t.Errorf("ValidateParam(%q, %q) = %v", tt.value, tt.typ, err)
		}
	}
}
