// Package issuetmpl renders issue bodies from the embedded templates.
package issuetmpl

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/italia/publiccode-issueopener/internal/domain"
)

// Ensure Renderer implements domain.IssueRenderer.
var _ domain.IssueRenderer = (*Renderer)(nil)

//go:embed templates/*.md
var templatesFS embed.FS

// Renderer holds one parsed template per language.
type Renderer struct {
	templates map[domain.Lang]*template.Template
}

// New parses the embedded template of every supported language.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[domain.Lang]*template.Template)}
	for _, lang := range domain.AllLangs() {
		name := fmt.Sprintf("templates/issue.%s.md", lang)
		tmpl, err := template.ParseFS(templatesFS, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.templates[lang] = tmpl
	}
	return r, nil
}

// Render renders the issue body in lang.
func (r *Renderer) Render(lang domain.Lang, data domain.IssueData) (string, error) {
	tmpl, ok := r.templates[lang]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedLang, lang)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s issue: %w", lang, err)
	}
	return buf.String(), nil
}
