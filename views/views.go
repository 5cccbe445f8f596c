package views

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"

	"wintergreet/internal/viewmodel"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"pct": func(v float64) string { return formatFloat(v) + "%" },
	"sec": func(v float64) string { return formatFloat(v) + "s" },
	"num": formatFloat,
}).ParseFS(templateFS, "templates/*.html"))

// ScenePage renders the full scene document.
func ScenePage(data viewmodel.ScenePage) templ.Component {
	return templ.FromGoHTML(templates.Lookup("scene"), data)
}

// GiftsFragment renders the gift row and modal overlay.
func GiftsFragment(data viewmodel.GiftsFragment) templ.Component {
	return templ.FromGoHTML(templates.Lookup("gifts"), data)
}

// LightsFragment renders the light string.
func LightsFragment(data viewmodel.LightsFragment) templ.Component {
	return templ.FromGoHTML(templates.Lookup("lights"), data)
}
