package handler

import (
	"html/template"
	"time"
)

// TemplateFuncs returns the helpers the page templates rely on. It must be
// installed on the router before the templates are loaded.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"pages": func(n int) []int {
			if n < 1 {
				n = 1
			}
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006 15:04")
		},
	}
}
