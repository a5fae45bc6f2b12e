package render

import (
	"fmt"
	"strings"

	"github.com/vango-dev/isomorph/pkg/store"
)

// Defaults for Document fields left empty.
const (
	DefaultLang         = "en"
	DefaultMountID      = "app"
	DefaultStateVar     = "__INITIAL_STATE__"
	DefaultClientScript = "/main.js"
)

// Document is everything the response page is built from.
type Document struct {
	Title  string
	Lang   string
	Markup string   // rendered application markup
	Styles []string // style fragments in collection order
	State  store.State

	// MountID is the id of the element wrapping Markup.
	MountID string

	// StateVar is the window property the client reads the state from.
	StateVar string

	// ClientScript is the src of the client bundle.
	ClientScript string

	// StyleSheets are external stylesheet hrefs.
	StyleSheets []string

	// DevScript is inline JavaScript appended in development mode.
	DevScript string
}

// SerializeDocument builds the complete HTML page. The state is validated
// before anything is produced, so a non-serializable state yields a
// *store.SerializationError and no partial document.
func SerializeDocument(doc Document) (string, error) {
	if doc.State == nil {
		doc.State = store.State{}
	}
	stateJSON, err := store.Marshal(doc.State)
	if err != nil {
		return "", err
	}

	lang := orDefault(doc.Lang, DefaultLang)
	mountID := orDefault(doc.MountID, DefaultMountID)
	stateVar := orDefault(doc.StateVar, DefaultStateVar)
	clientScript := orDefault(doc.ClientScript, DefaultClientScript)

	var b strings.Builder
	b.Grow(len(doc.Markup) + len(stateJSON) + 512)

	b.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&b, "<html lang=\"%s\">\n", escapeAttr(lang))
	b.WriteString("<head>\n")
	b.WriteString("  <meta charset=\"utf-8\">\n")
	b.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	if doc.Title != "" {
		fmt.Fprintf(&b, "  <title>%s</title>\n", escapeHTML(doc.Title))
	}
	for _, href := range doc.StyleSheets {
		fmt.Fprintf(&b, "  <link rel=\"stylesheet\" href=\"%s\">\n", escapeAttr(href))
	}
	fmt.Fprintf(&b, "  <style>%s</style>\n", escapeRawText(strings.Join(doc.Styles, "\n")))
	b.WriteString("</head>\n")

	b.WriteString("<body>\n")
	fmt.Fprintf(&b, "<div id=\"%s\">%s</div>\n", escapeAttr(mountID), doc.Markup)
	fmt.Fprintf(&b, "<script>window.%s = %s;</script>\n", stateVar, stateJSON)
	fmt.Fprintf(&b, "<script src=\"%s\"></script>\n", escapeAttr(clientScript))
	if doc.DevScript != "" {
		fmt.Fprintf(&b, "<script>%s</script>\n", escapeRawText(doc.DevScript))
	}
	b.WriteString("</body>\n</html>\n")

	return b.String(), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
