package isomorph

import (
	"errors"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// staticRelPath returns a sanitized relative path for a static file request.
// Traversal and absolute-path tricks are rejected so a request cannot escape
// the asset root.
func (a *App) staticRelPath(urlPath string) (string, bool) {
	rel, ok := stripStaticPrefix(a.config.Static.Prefix, urlPath)
	if !ok || rel == "" {
		return "", false
	}

	// %00 and platform separators.
	if strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, "\\") {
		return "", false
	}

	// "/static//etc/passwd" leaves "/etc/passwd" after the prefix.
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Dot-segments are rejected before cleaning so Clean cannot hide them.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == "" || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", false
	}

	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}

	return clean, true
}

// stripStaticPrefix removes prefix from urlPath.
func stripStaticPrefix(prefix, urlPath string) (string, bool) {
	if prefix == "" {
		prefix = "/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if prefix == "/" {
		return strings.TrimPrefix(urlPath, "/"), true
	}
	if !strings.HasPrefix(urlPath, prefix) {
		return "", false
	}
	return strings.TrimPrefix(urlPath, prefix), true
}

// serveStatic writes the asset for r and reports whether it did. With the
// root prefix only paths carrying a file extension are looked up, so page
// routes never cost an asset lookup.
func (a *App) serveStatic(w http.ResponseWriter, r *http.Request) bool {
	if a.assets == nil {
		return false
	}
	rel, ok := a.staticRelPath(r.URL.Path)
	if !ok {
		return false
	}
	if a.config.Static.Prefix == "/" && path.Ext(rel) == "" {
		return false
	}

	asset, err := a.assets.Open(r.Context(), rel)
	if err != nil {
		if !errors.Is(err, ErrAssetNotFound) {
			a.logger.Warn("asset lookup failed", "path", rel, "error", err)
		}
		return false
	}
	defer asset.Close()

	a.applyCacheHeaders(w, rel)
	for key, value := range a.config.Static.Headers {
		w.Header().Set(key, value)
	}
	if asset.ContentType != "" {
		w.Header().Set("Content-Type", asset.ContentType)
	}

	http.ServeContent(w, r, rel, asset.ModTime, asset.Content)
	return true
}

func (a *App) applyCacheHeaders(w http.ResponseWriter, filePath string) {
	switch a.config.Static.CacheControl {
	case CacheControlNone:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	case CacheControlProduction:
		if isFingerprinted(filePath) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
}

// isFingerprinted reports whether the name carries a content hash, e.g.
// "app.a1b2c3d4.css".
func isFingerprinted(filePath string) bool {
	parts := strings.Split(path.Base(filePath), ".")
	if len(parts) < 3 {
		return false
	}
	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
