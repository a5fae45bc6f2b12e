package errors

import "net/http"

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	Status     int
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Routing (E001-E009)

	"E001": {
		Category:   CategoryRouting,
		Message:    "No route matches the requested path",
		Detail:     "The matcher walked the route tree without resolving the path, so no data was fetched and nothing was rendered.",
		Suggestion: "Check the route table for a pattern covering this path, or mark the parent route non-exact.",
		Status:     http.StatusNotFound,
	},

	// Data prefetch (E010-E019)

	"E010": {
		Category:   CategoryPrefetch,
		Message:    "Route data could not be loaded",
		Detail:     "At least one matched route's loader failed. The page is not rendered with partial data.",
		Suggestion: "Inspect the listed routes and their upstream service.",
	},
	"E011": {
		Category: CategoryPrefetch,
		Message:  "Route loader panicked",
		Detail:   "A loader panicked; the panic was recovered and reported as a prefetch failure.",
	},
	"E012": {
		Category:   CategoryPrefetch,
		Message:    "Route loader did not finish in time",
		Detail:     "The prefetch deadline passed before every loader settled.",
		Suggestion: "Raise prefetch.timeout or make the loader honour context cancellation.",
		Status:     http.StatusGatewayTimeout,
	},

	// Serialization (E030-E039)

	"E030": {
		Category:   CategorySerialization,
		Message:    "State cannot be serialized into the document",
		Detail:     "The store holds a value JSON cannot represent faithfully (function, channel, complex or non-finite number, cyclic reference).",
		Suggestion: "Keep only plain data in the store; derive everything else while rendering.",
	},

	// Hydration (E040-E049)

	"E040": {
		Category:   CategoryHydration,
		Message:    "Hydration mismatch",
		Detail:     "The client tree differs from the server markup. The page stays interactive but the differing nodes may not bind.",
		Suggestion: "Render only from store state; avoid clocks, randomness and environment checks in components.",
	},
	"E041": {
		Category: CategoryHydration,
		Message:  "Serialized state missing or malformed",
		Detail:   "The client fell back to the default state.",
	},

	// Route table (E100-E119)

	"E100": {
		Category: CategoryRouteTable,
		Message:  "Duplicate route pattern among siblings",
	},
	"E101": {
		Category:   CategoryRouteTable,
		Message:    "Malformed route pattern",
		Suggestion: "Patterns are absolute: /users/:id, /users/:id:int, /files/*rest.",
	},
	"E102": {
		Category: CategoryRouteTable,
		Message:  "Route node used more than once",
		Detail:   "A *RouteNode value may appear only once in the tree.",
	},
	"E103": {
		Category: CategoryRouteTable,
		Message:  "Route has no component",
	},

	// Configuration (E120-E149)

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid isomorph.yaml syntax",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"E141": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Run `isomorph check` from the project root or pass --config.",
	},
}

// Lookup returns the template for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
