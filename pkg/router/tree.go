package router

import "strings"

// Tree is a validated, compiled route table. Read-only after NewTree.
type Tree struct {
	roots []*compiledNode
	count int
}

type compiledNode struct {
	node     *RouteNode
	pattern  *pattern
	children []*compiledNode
}

// MatchEntry is one matched route, ordered root to leaf.
type MatchEntry struct {
	Node    *RouteNode
	Params  map[string]string // includes parameters bound by ancestors
	URL     string            // the portion of the path consumed so far
	IsExact bool              // the whole path was consumed at this entry
}

// NewTree validates and compiles a route table. All problems are reported
// together in a *MultiValidationError.
func NewTree(routes []*RouteNode) (*Tree, error) {
	t := &Tree{}
	var errs []ValidationError
	seen := make(map[*RouteNode]bool)
	t.roots = t.compile(routes, "", seen, &errs)
	if len(errs) > 0 {
		return nil, &MultiValidationError{Errors: errs}
	}
	return t, nil
}

// MustTree is like NewTree but panics on error. Intended for package-level
// route tables.
func MustTree(routes []*RouteNode) *Tree {
	t, err := NewTree(routes)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tree) compile(routes []*RouteNode, parent string, seen map[*RouteNode]bool, errs *[]ValidationError) []*compiledNode {
	out := make([]*compiledNode, 0, len(routes))
	shapes := make(map[string]string)

	for _, n := range routes {
		if n == nil {
			continue
		}
		where := parent + " > " + n.Path
		if parent == "" {
			where = n.Path
		}

		if seen[n] {
			*errs = append(*errs, ValidationError{
				Type:    ErrorNodeReused,
				Message: "route node appears more than once in the tree",
				Path:    where,
			})
			continue
		}
		seen[n] = true

		p, problem := compilePattern(n.Path)
		if p == nil {
			*errs = append(*errs, ValidationError{
				Type:    ErrorMalformedPattern,
				Message: "invalid route pattern " + quote(n.Path),
				Path:    where,
				Details: problem,
			})
			continue
		}

		if n.Component == nil {
			*errs = append(*errs, ValidationError{
				Type:    ErrorMissingComponent,
				Message: "route " + quote(n.Path) + " has no component",
				Path:    where,
			})
		}

		shape := p.shape()
		if first, dup := shapes[shape]; dup {
			*errs = append(*errs, ValidationError{
				Type:    ErrorDuplicateRoute,
				Message: "sibling routes resolve to the same pattern " + shape,
				Path:    where,
				Details: "first declared as " + quote(first),
			})
			continue
		}
		shapes[shape] = n.Path

		t.count++
		out = append(out, &compiledNode{
			node:     n,
			pattern:  p,
			children: t.compile(n.Routes, where, seen, errs),
		})
	}
	return out
}

// Len returns the number of routes in the tree.
func (t *Tree) Len() int {
	return t.count
}

// Match resolves path to the chain of matched routes, root first. It returns
// nil when the path is not resolved.
func (t *Tree) Match(path string) []MatchEntry {
	segs := requestSegments(path)
	level := t.roots
	params := map[string]string{}
	var out []MatchEntry

	for len(level) > 0 {
		var found *compiledNode
		var consumed int
		var bound map[string]string

		// Patterns are absolute: every level is matched against the full path.
		for _, c := range level {
			n, p, ok := c.pattern.match(segs)
			if !ok {
				continue
			}
			if c.node.Exact && n != len(segs) {
				continue
			}
			found, consumed, bound = c, n, p
			break
		}
		if found == nil {
			break
		}

		for k, v := range bound {
			params[k] = v
		}
		out = append(out, MatchEntry{
			Node:    found.node,
			Params:  copyParams(params),
			URL:     "/" + strings.Join(segs[:consumed], "/"),
			IsExact: consumed == len(segs),
		})
		level = found.children
	}

	if len(out) == 0 {
		return nil
	}
	if last := out[len(out)-1]; !last.IsExact && len(last.Node.Routes) > 0 {
		return nil
	}
	return out
}

// Walk visits every route depth-first.
func (t *Tree) Walk(fn func(n *RouteNode, depth int)) {
	var walk func(nodes []*compiledNode, depth int)
	walk = func(nodes []*compiledNode, depth int) {
		for _, c := range nodes {
			fn(c.node, depth)
			walk(c.children, depth+1)
		}
	}
	walk(t.roots, 0)
}

// Match compiles routes and matches path against them. Tables served
// repeatedly should be compiled once with NewTree.
func Match(routes []*RouteNode, path string) ([]MatchEntry, error) {
	t, err := NewTree(routes)
	if err != nil {
		return nil, err
	}
	return t.Match(path), nil
}

func copyParams(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func quote(s string) string {
	return `"` + s + `"`
}
