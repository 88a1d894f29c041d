// Package render wraps stored e-mail template bodies into HTML documents.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"reserver_notifier/internal/domain/notification"
)

const layout = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family:Arial,Helvetica,sans-serif;color:#111827;">
{{- if .Title}}
<h2 style="margin:0 0 18px 0;">{{.Title}}</h2>
{{- end}}
{{- range .Paragraphs}}
<p style="margin:0 0 18px 0;line-height:1.6;">{{range $i, $line := .}}{{if $i}}<br />{{end}}{{$line}}{{end}}</p>
{{- end}}
{{- if .EventName}}
<p style="color:#6b7280;font-size:13px;">{{.EventName}}{{if .EventStart}} &middot; {{.EventStart}}{{end}}</p>
{{- end}}
<p style="color:#6b7280;font-size:13px;">This is an automated message from the R/V Gunnerus cruise reservation system.</p>
</body>
</html>
`

type view struct {
	Title      string
	Paragraphs [][]string
	EventName  string
	EventStart string
}

// TemplateRenderer renders notification templates with a fixed HTML layout. Template
// text is escaped; blank lines separate paragraphs.
type TemplateRenderer struct {
	tmpl     *template.Template
	location *time.Location
}

func NewTemplateRenderer(loc *time.Location) *TemplateRenderer {
	if loc == nil {
		loc = time.Local
	}
	return &TemplateRenderer{
		tmpl:     template.Must(template.New("email").Parse(layout)),
		location: loc,
	}
}

func (r *TemplateRenderer) Render(n *notification.Notification) (string, error) {
	if n == nil || n.Template == nil {
		return "", fmt.Errorf("notification has no template")
	}
	v := view{
		Title:      strings.TrimSpace(n.Template.Title),
		Paragraphs: paragraphs(n.Template.Message),
	}
	if n.Event != nil {
		v.EventName = n.Event.Name
		if !n.Event.Start.IsZero() {
			v.EventStart = n.Event.Start.In(r.location).Format("02.01.2006 15:04")
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("failed to execute email layout: %w", err)
	}
	return buf.String(), nil
}

func paragraphs(message string) [][]string {
	message = strings.ReplaceAll(strings.ReplaceAll(message, "\r\n", "\n"), "\r", "\n")
	var out [][]string
	for _, block := range strings.Split(message, "\n\n") {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			out = append(out, lines)
		}
	}
	return out
}
