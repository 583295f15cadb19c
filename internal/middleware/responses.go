package middleware

import (
	"html/template"
	"net/http"
)

var errorFragment = template.Must(template.New("error").Parse(
	`<div class="fragment-error" role="alert"{{with .RequestID}} data-request-id="{{.}}"{{end}}>{{.Message}}</div>`,
))

type errorData struct {
	Message   string
	RequestID string
}

// WriteError answers htmx requests with a small inline fragment tagged with
// the request id, and everything else with a plain text error.
func WriteError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if IsHTMX(r.Context()) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(code)
		rid, _ := RequestID(r.Context())
		_ = errorFragment.Execute(w, errorData{Message: msg, RequestID: rid})
		return
	}
	http.Error(w, msg, code)
}
