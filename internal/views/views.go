// Package views holds the server-rendered pages and fragments: embedded
// html/template files, their view models and the static assets.
package views

import (
	"embed"
	"html/template"
	"io/fs"
	"math"

	"github.com/codyseavey/pricewatch/web/internal/format"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses every page and fragment template
func Templates() (*template.Template, error) {
	return template.New("views").Funcs(Funcs()).ParseFS(templateFS, "templates/*.html")
}

// Static returns the css and js served under /static
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Funcs returns the helpers available to templates
func Funcs() template.FuncMap {
	return template.FuncMap{
		"currency": format.Currency,
		"currencyOr": func(p *int64) string {
			if p == nil || *p == 0 {
				return "-"
			}
			return format.Currency(*p)
		},
		"percent": format.Percent,
		"absPercent": func(p *float64) string {
			if p == nil {
				return ""
			}
			return format.Percent(math.Abs(*p))
		},
		"text": func(p *string) string {
			if p == nil || *p == "" {
				return "-"
			}
			return *p
		},
		"link": func(p *string) string {
			if p == nil || *p == "" {
				return "#"
			}
			return *p
		},
		"nonzero": func(p *int64) bool {
			return p != nil && *p != 0
		},
		"negative": func(p *int64) bool {
			return p != nil && *p < 0
		},
		"signed": func(n int64) string {
			if n > 0 {
				return "+" + format.Currency(n)
			}
			if n < 0 {
				return "-" + format.Currency(-n)
			}
			return format.Currency(0)
		},
		"intValue": func(p *int64) int64 {
			if p == nil {
				return 0
			}
			return *p
		},
		"strValue": func(p *string) string {
			if p == nil {
				return ""
			}
			return *p
		},
		"skeletons": func(n int) []int {
			return make([]int, n)
		},
	}
}
