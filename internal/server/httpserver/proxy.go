package httpserver

import (
	"io"
	"net/http"
	"net/url"
	"strings"
)

var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// handleProxy forwards r through the request router. Absolute-form targets
// are kept; origin-form paths resolve against the app origin.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	target, err := s.resolve(r.URL)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	out := r.Clone(r.Context())
	out.URL = target
	out.Host = target.Host
	out.RequestURI = ""
	for _, h := range hopHeaders {
		out.Header.Del(h)
	}
	if r.ContentLength == 0 {
		out.Body = nil
	}

	resp, err := s.deps.Proxy.RoundTrip(out)
	if err != nil {
		s.log.Warn(r.Context(), "proxy request failed", "url", target.String(), "error", err)
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for _, h := range hopHeaders {
		resp.Header.Del(h)
	}
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.log.Debug(r.Context(), "proxy copy interrupted", "url", target.String(), "error", err)
	}
}

func (s *Server) resolve(u *url.URL) (*url.URL, error) {
	if u.IsAbs() {
		return u, nil
	}
	ref, err := url.Parse("./" + strings.TrimPrefix(u.EscapedPath(), "/"))
	if err != nil {
		return nil, err
	}
	ref.RawQuery = u.RawQuery
	return s.appBase.ResolveReference(ref), nil
}
