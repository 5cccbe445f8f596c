package handlers

import (
	"bytes"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// render buffers the component so a failed render never leaves a half-written fragment.
func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	var buf bytes.Buffer
	if err := component.Render(r.Context(), &buf); err != nil {
		log.Printf("render %s: %v", r.URL.Path, err)
		http.Error(w, "failed to render", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func renderToString(r *http.Request, component templ.Component) string {
	var buf bytes.Buffer
	if err := component.Render(r.Context(), &buf); err != nil {
		log.Printf("render %s: %v", r.URL.Path, err)
	}
	return buf.String()
}

func writeSSE(w http.ResponseWriter, event string, data string) {
	_, _ = w.Write([]byte("event: " + event + "\n"))
	for _, line := range strings.Split(data, "\n") {
		_, _ = w.Write([]byte("data: " + line + "\n"))
	}
	_, _ = w.Write([]byte("\n"))
}
