package router

import (
	"net/url"
	"strings"
)

type segmentKind uint8

const (
	segStatic segmentKind = iota
	segParam
	segCatchAll
)

type segment struct {
	kind      segmentKind
	value     string // literal text or parameter name
	paramType string
}

// pattern is a compiled route path.
type pattern struct {
	raw      string
	segments []segment
}

// compilePattern parses a route path. Errors describe the offending segment.
func compilePattern(raw string) (*pattern, string) {
	if raw == "" {
		return nil, "empty path"
	}
	if !strings.HasPrefix(raw, "/") {
		return nil, "path must start with /"
	}

	p := &pattern{raw: raw}
	parts := splitPath(raw)
	for i, part := range parts {
		switch part[0] {
		case ':':
			name, typ := parseParamSegment(part)
			if name == "" {
				return nil, "parameter without name in " + part
			}
			if !knownParamType(typ) {
				return nil, "unknown parameter type " + typ
			}
			p.segments = append(p.segments, segment{kind: segParam, value: name, paramType: typ})
		case '*':
			name := part[1:]
			if name == "" {
				return nil, "catch-all without name"
			}
			if i != len(parts)-1 {
				return nil, "catch-all must be the last segment"
			}
			p.segments = append(p.segments, segment{kind: segCatchAll, value: name})
		default:
			p.segments = append(p.segments, segment{kind: segStatic, value: part})
		}
	}
	return p, ""
}

// shape returns the pattern with parameter names erased, so /:id and /:slug
// compare equal.
func (p *pattern) shape() string {
	var sb strings.Builder
	for _, s := range p.segments {
		sb.WriteByte('/')
		switch s.kind {
		case segStatic:
			sb.WriteString(s.value)
		case segParam:
			sb.WriteString(":" + s.paramType)
		case segCatchAll:
			sb.WriteByte('*')
		}
	}
	if sb.Len() == 0 {
		return "/"
	}
	return sb.String()
}

// match tries to consume a prefix of segs. It returns the number of segments
// consumed and the bound parameters.
func (p *pattern) match(segs []string) (int, map[string]string, bool) {
	var params map[string]string
	bind := func(k, v string) {
		if params == nil {
			params = make(map[string]string, 2)
		}
		params[k] = v
	}

	for i, s := range p.segments {
		switch s.kind {
		case segCatchAll:
			bind(s.value, strings.Join(segs[i:], "/"))
			return len(segs), params, true
		case segStatic:
			if i >= len(segs) || segs[i] != s.value {
				return 0, nil, false
			}
		case segParam:
			if i >= len(segs) {
				return 0, nil, false
			}
			if ValidateParam(segs[i], s.paramType) != nil {
				return 0, nil, false
			}
			bind(s.value, segs[i])
		}
	}
	return len(p.segments), params, true
}

// splitPath splits a path into segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// requestSegments strips query and fragment and percent-decodes each segment.
func requestSegments(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segs := splitPath(path)
	for i, s := range segs {
		if dec, err := url.PathUnescape(s); err == nil {
			segs[i] = dec
		}
	}
	return segs
}

// parseParamSegment extracts name and type from a parameter segment.
// Input: ":id" or ":id:int" -> name="id", type="string" or "int"
func parseParamSegment(seg string) (name, paramType string) {
	seg = seg[1:]
	if idx := strings.Index(seg, ":"); idx != -1 {
		return seg[:idx], seg[idx+1:]
	}
	return seg, "string"
}
