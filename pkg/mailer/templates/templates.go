// Package templates renders the transactional emails shipped with the
// service. Templates are embedded so the worker binary is self-contained.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var FS embed.FS

var parsed = htmpl.Must(htmpl.ParseFS(FS, "*.tmpl"))

// Subjects per template name.
var subjects = map[string]string{
	"reset_password": "Password Reset Request",
	"welcome":        "Welcome to Cryptofolio",
}

// Render produces the subject and HTML body for the named template.
func Render(name string, data map[string]any) (subject, html string, err error) {
	subject, ok := subjects[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := parsed.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
