package isomorph

import (
	"io"
	"net/http"
	"strconv"

	"github.com/vango-dev/isomorph/internal/errors"
	"github.com/vango-dev/isomorph/pkg/render"
	"github.com/vango-dev/isomorph/pkg/vdom"
)

// serveError maps a pipeline failure to a status and a generic page. No
// part of a failed document ever reaches the client.
func (a *App) serveError(w http.ResponseWriter, r *http.Request, err error) {
	e := errors.Classify(err)
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	log := a.logger.With("path", r.URL.Path, "code", e.Code, "category", e.CategoryName())
	if status == http.StatusNotFound {
		log.Debug("no route", "error", err)
	} else {
		log.Error("page failed", "error", err)
	}

	detail := ""
	if a.config.DevMode {
		detail = e.Error()
	}
	body, rerr := errorPage(status, detail)
	if rerr != nil {
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		io.WriteString(w, body)
	}
}

func errorPage(status int, detail string) (string, error) {
	heading := "Something went wrong"
	if status == http.StatusNotFound {
		heading = "Page not found"
	}

	page := vdom.Html(vdom.Attr{Key: "lang", Value: render.DefaultLang},
		vdom.Head(
			vdom.Meta(vdom.Attr{Key: "charset", Value: "utf-8"}),
			vdom.Title(vdom.Text(strconv.Itoa(status)+" "+heading)),
		),
		vdom.Body(
			vdom.Main(
				vdom.H1(vdom.Text(heading)),
				vdom.P(vdom.Textf("Status %d", status)),
				vdom.If(detail != "", vdom.Pre(vdom.Text(detail))),
			),
		),
	)

	html, err := render.NewRenderer(render.RendererConfig{OmitHIDs: true}).RenderToString(page)
	if err != nil {
		return "", err
	}
	return "<!DOCTYPE html>\n" + html, nil
}
