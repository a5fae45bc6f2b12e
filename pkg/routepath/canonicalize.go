// Package routepath normalizes request paths before they reach the matcher.
package routepath

import (
	"errors"
	"strings"
)

// Rejected request paths.
var (
	ErrBackslashInPath      = errors.New("routepath: path contains backslash")
	ErrNullByteInPath       = errors.New("routepath: path contains null byte")
	ErrInvalidPercentEscape = errors.New("routepath: invalid percent escape")
	ErrPathEscapesRoot      = errors.New("routepath: path escapes root via ..")
)

// Result is a cleaned path.
type Result struct {
	// Path is the escaped, cleaned path.
	Path string

	// Redirect is set when duplicate slashes or dot segments were removed,
	// i.e. the client should be sent to Path. A trailing slash alone does
	// not count: the matcher ignores it.
	Redirect bool
}

// Clean normalizes an escaped request path (no query):
//   - duplicate slashes collapse (/a//b -> /a/b)
//   - "." segments are dropped and ".." pops the previous segment
//   - a trailing slash is kept
//
// Backslashes, NUL bytes, malformed escapes and ".." above the root are
// rejected.
func Clean(escaped string) (Result, error) {
	if escaped == "" {
		return Result{Path: "/"}, nil
	}
	if strings.Contains(escaped, "\\") {
		return Result{}, ErrBackslashInPath
	}
	if strings.Contains(escaped, "\x00") || strings.Contains(strings.ToUpper(escaped), "%00") {
		return Result{}, ErrNullByteInPath
	}
	if err := validatePercentEscapes(escaped); err != nil {
		return Result{}, err
	}

	trailing := len(escaped) > 1 && strings.HasSuffix(escaped, "/")

	var segs []string
	for _, seg := range strings.Split(escaped, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segs) == 0 {
				return Result{}, ErrPathEscapesRoot
			}
			segs = segs[:len(segs)-1]
		default:
			segs = append(segs, seg)
		}
	}

	path := "/" + strings.Join(segs, "/")
	if trailing && path != "/" {
		path += "/"
	}

	original := escaped
	if !strings.HasPrefix(original, "/") {
		original = "/" + original
	}
	return Result{Path: path, Redirect: path != original}, nil
}

func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
