package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

const (
	VerifyEmail    = "verify_email"
	ForgotPassword = "forgot_password"
)

// EmailData is the model every template renders against.
type EmailData struct {
	Name  string
	Email string
	Type  string

	AppName     string
	CompanyName string
	SupportURL  string

	// ActionURL is the deep link carrying the one-time token.
	ActionURL string

	ExpiresAt     time.Time
	ExpiresAtText string
	ExpiresIn     string
	Time          string
	TimeAt        time.Time
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	}
}

func funcs() map[string]any {
	return map[string]any{
		"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
		"upper":      strings.ToUpper,
		"default":    defaultFn,
	}
}

// set holds the three parsed parts of one email.
type set struct {
	subject *texttpl.Template
	text    *texttpl.Template
	html    *htmpl.Template
}

var (
	loadOnce sync.Once
	sets     map[string]set
	loadErr  error
)

func load() {
	sets = make(map[string]set)
	for _, name := range []string{VerifyEmail, ForgotPassword} {
		var s set
		if s.subject, loadErr = texttpl.New(name + ".subject.tmpl").Funcs(funcs()).ParseFS(FS, name+".subject.tmpl"); loadErr != nil {
			return
		}
		if s.text, loadErr = texttpl.New(name + ".text.tmpl").Funcs(funcs()).ParseFS(FS, name+".text.tmpl"); loadErr != nil {
			return
		}
		if s.html, loadErr = htmpl.New(name + ".html.tmpl").Funcs(funcs()).ParseFS(FS, name+".html.tmpl"); loadErr != nil {
			return
		}
		sets[name] = s
	}
}

func execText(t *texttpl.Template, data EmailData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// Render produces subject, plain text and html bodies for the named email.
func Render(name string, data EmailData) (subject, text, html string, err error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return "", "", "", fmt.Errorf("parse templates: %w", loadErr)
	}
	s, ok := sets[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	if subject, err = execText(s.subject, data); err != nil {
		return "", "", "", err
	}
	if text, err = execText(s.text, data); err != nil {
		return "", "", "", err
	}
	var buf bytes.Buffer
	if err = s.html.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("exec %q: %w", s.html.Name(), err)
	}
	return strings.TrimSpace(subject), text, buf.String(), nil
}
