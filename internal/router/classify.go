package router

import (
	"net/http"
	"path"
	"strings"
)

// Strategy names a request handling strategy.
type Strategy string

const (
	PassThrough          Strategy = "pass-through"
	NetworkFirstAPI      Strategy = "network-first-api"
	CacheFirstImage      Strategy = "cache-first-image"
	StaleWhileRevalidate Strategy = "stale-while-revalidate"
	NetworkFirstDocument Strategy = "network-first-document"
)

// DestHeader carries the request destination ("image", "script", "document", ...).
const DestHeader = "Sec-Fetch-Dest"

var (
	imageExt  = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".svg": true, ".gif": true, ".webp": true, ".ico": true}
	staticExt = map[string]bool{".css": true, ".js": true, ".woff": true, ".woff2": true, ".ttf": true, ".otf": true}
)

// Classify picks the strategy for req. The first matching rule wins.
func (r *Router) Classify(req *http.Request) Strategy {
	if req.URL == nil || (req.URL.Scheme != "http" && req.URL.Scheme != "https") {
		return PassThrough
	}
	if req.Method != http.MethodGet {
		return PassThrough
	}
	if r.apiOrigin != "" && origin(req) == r.apiOrigin {
		return NetworkFirstAPI
	}

	dest := strings.ToLower(req.Header.Get(DestHeader))
	ext := strings.ToLower(path.Ext(req.URL.Path))

	if dest == "image" || imageExt[ext] {
		return CacheFirstImage
	}
	if dest == "style" || dest == "script" || dest == "font" || staticExt[ext] {
		return StaleWhileRevalidate
	}
	return NetworkFirstDocument
}

// expectsDocument reports whether req is a navigation for an HTML document.
func expectsDocument(req *http.Request) bool {
	if dest := req.Header.Get(DestHeader); dest != "" {
		return strings.EqualFold(dest, "document")
	}
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}

func origin(req *http.Request) string {
	return strings.ToLower(req.URL.Scheme + "://" + req.URL.Host)
}
