// Package router matches request paths against a declarative route tree.
//
// A route table is a literal tree of *RouteNode values:
//
//	routes := []*router.RouteNode{{
//	    Path:      "/",
//	    Component: Layout,
//	    Routes: []*router.RouteNode{
//	        {Path: "/", Exact: true, Key: "home", Component: Home, LoadData: LoadPosts},
//	        {Path: "/users/:id:int", Key: "user", Component: User},
//	    },
//	}}
//	tree, err := router.NewTree(routes)
//	matches := tree.Match("/users/7")
//
// Patterns are absolute. Matching walks the tree depth-first: at every level
// the first sibling, in declaration order, whose pattern matches a prefix of
// the path is taken and its children are tried next. Exact nodes only match when they
// consume the rest of the path. A walk that ends on a node which neither
// consumed the whole path nor is a leaf did not resolve the path and yields
// no matches.
//
// Pattern segments:
//
//	/users        static segment
//	/:id          one segment bound to "id"
//	/:id:int      typed parameter (int, uint, uuid, string)
//	/*rest        the remaining segments, bound to "rest"
//
// Trailing slashes are ignored, matching is case-sensitive and any query
// string or fragment is stripped before matching.
package router
