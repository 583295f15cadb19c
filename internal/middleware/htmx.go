package middleware

import (
	"net/http"
)

// HTMX marks requests coming from htmx so handlers can answer with fragments.
// History restore requests want the full page and are not marked.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true" && r.Header.Get("HX-History-Restore-Request") != "true"
		ctx := WithHTMX(r.Context(), is)
		w.Header().Add("Vary", "HX-Request")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
