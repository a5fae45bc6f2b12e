package errors

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/isomorph/pkg/prefetch"
	"github.com/vango-dev/isomorph/pkg/router"
	"github.com/vango-dev/isomorph/pkg/ssr"
	"github.com/vango-dev/isomorph/pkg/store"
)

func TestNewFromRegistry(t *testing.T) {
	e := New("E001")
	if e.Category != CategoryRouting || e.Status != http.StatusNotFound {
		t.Errorf("E001 = %+v", e)
	}
	if e.DocURL != "https://isomorph.dev/docs/errors/E001" {
		t.Errorf("DocURL = %q", e.DocURL)
	}
	if New("E010").Status != http.StatusInternalServerError {
		t.Error("prefetch failures default to 500")
	}
	if u := New("E999"); u.Message != "Unknown error" {
		t.Errorf("unknown code = %+v", u)
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	e := New("E010").Wrap(cause)
	if !stderrors.Is(e, cause) {
		t.Error("errors.Is should reach the cause")
	}
	if got := e.Error(); got != "E010: Route data could not be loaded: dial tcp: refused" {
		t.Errorf("Error() = %q", got)
	}
	if FromError(e, "E001") != e {
		t.Error("FromError must keep an existing *Error")
	}
	if FromError(nil, "E001") != nil {
		t.Error("FromError(nil) must be nil")
	}
}

func TestClassify(t *testing.T) {
	mv := func(typ router.ValidationErrorType) error {
		return &router.MultiValidationError{Errors: []router.ValidationError{{Type: typ}}}
	}
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"not found", ssr.ErrNotFound, "E001"},
		{"loader", &prefetch.Error{Failures: []prefetch.Failure{{Route: "home", Err: stderrors.New("x")}}}, "E010"},
		{"panic", &prefetch.Error{Failures: []prefetch.Failure{{Route: "home", Err: &prefetch.PanicError{Value: 1}}}}, "E011"},
		{"deadline", &prefetch.Error{Failures: []prefetch.Failure{{Route: "home", Err: fmt.Errorf("%w: %w", prefetch.ErrNotSettled, context.DeadlineExceeded)}}}, "E012"},
		{"serialize", fmt.Errorf("render: %w", &store.SerializationError{Path: "$.fn"}), "E030"},
		{"duplicate", mv(router.ErrorDuplicateRoute), "E100"},
		{"malformed", mv(router.ErrorMalformedPattern), "E101"},
		{"reused", mv(router.ErrorNodeReused), "E102"},
		{"component", mv(router.ErrorMissingComponent), "E103"},
		{"unknown", stderrors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Code, tt.code)
			}
			if !stderrors.Is(got, tt.err) {
				t.Error("classified error must wrap the original")
			}
		})
	}

	if d := Classify(tests[1].err).Detail; d != "Failed routes: home" {
		t.Errorf("prefetch detail = %q", d)
	}
	if Classify(nil) != nil {
		t.Error("Classify(nil) must be nil")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	dir := t.TempDir()
	file := filepath.Join(dir, "isomorph.yaml")
	os.WriteFile(file, []byte("a: 1\nb: [\nc: 3\n"), 0o644)

	e := New("E120").WithLocation(file, 2, 0).WithSuggestion("close the bracket")
	out := e.Format()
	for _, want := range []string{"ERROR E120: Invalid isomorph.yaml syntax", file + ":2", "→    2 │ b: [", "Hint: close the bracket"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if got := e.FormatCompact(); got != file+":2: E120: Invalid isomorph.yaml syntax" {
		t.Errorf("FormatCompact() = %q", got)
	}

	var buf bytes.Buffer
	Print(&buf, ssr.ErrNotFound)
	if !strings.Contains(buf.String(), "E001") {
		t.Errorf("Print output = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line too long: %q", l)
		}
	}
}
