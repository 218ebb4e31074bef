// Package templates embeds the server-rendered pages.
package templates

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed *.html
var files embed.FS

// Funcs are the helpers every page may use.
var Funcs = template.FuncMap{
	// safeHTML marks already-sanitized markup as trusted.
	"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	"pct":      func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"px":       func(v float64) string { return fmt.Sprintf("%.1fpx", v) },
	"secs":     func(v float64) string { return fmt.Sprintf("%.1fs", v) },
	"num":      func(v float64) string { return fmt.Sprintf("%.2f", v) },
}

// Load parses every embedded page.
func Load() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(files, "*.html")
}
