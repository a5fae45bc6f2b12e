package routepath

import (
	"errors"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in       string
		want     string
		redirect bool
	}{
		{"", "/", false},
		{"/", "/", false},
		{"/login", "/login", false},
		{"/login/", "/login/", false},
		{"//login", "/login", true},
		{"/users//7", "/users/7", true},
		{"/a/./b", "/a/b", true},
		{"/a/b/../c", "/a/c", true},
		{"/a/..", "/", true},
		{"/posts/caf%C3%A9", "/posts/caf%C3%A9", false},
		{"login", "/login", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Clean(tt.in)
			if err != nil {
				t.Fatalf("Clean(%q) error: %v", tt.in, err)
			}
			if got.Path != tt.want || got.Redirect != tt.redirect {
				t.Errorf("Clean(%q) = %+v, want {%s %v}", tt.in, got, tt.want, tt.redirect)
			}
		})
	}
}

func TestCleanRejects(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"/a\\b", ErrBackslashInPath},
		{"/a\x00b", ErrNullByteInPath},
		{"/a%00b", ErrNullByteInPath},
		{"/a%GG", ErrInvalidPercentEscape},
		{"/a%2", ErrInvalidPercentEscape},
		{"/a%", ErrInvalidPercentEscape},
		{"/../secret", ErrPathEscapesRoot},
		{"/a/../../b", ErrPathEscapesRoot},
	}
	for _, tt := range tests {
		if _, err := Clean(tt.in); !errors.Is(err, tt.want) {
			t.Errorf("Clean(%q) error = %v, want %v", tt.in, err, tt.want)
		}
	}
}
