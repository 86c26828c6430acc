package notify

import (
	"bytes"
	"text/template"

	"github.com/demoforge/demoforge/internal/monitoring/model"
)

func severityEmoji(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "🚨"
	case model.SeverityHigh:
		return "🔴"
	case model.SeverityMedium:
		return "🟡"
	default:
		return "🔵"
	}
}

func severityColor(s model.Severity) string {
	switch s {
	case model.SeverityCritical:
		return "#dc2626"
	case model.SeverityHigh:
		return "#ea580c"
	case model.SeverityMedium:
		return "#ca8a04"
	default:
		return "#2563eb"
	}
}

type templateData struct {
	Emoji        string
	Color        string
	Severity     string
	BusinessName string
	Title        string
	Message      string
	Actions      []string
}

var subjectTmpl = template.Must(template.New("subject").Parse(
	`{{.Emoji}} [{{.Severity}}] {{.Title}}`))

var htmlTmpl = template.Must(template.New("html").Parse(`<div style="font-family:sans-serif;max-width:600px">
<h2 style="color:{{.Color}}">{{.Emoji}} {{.Title}}</h2>
<p><strong>{{.BusinessName}}</strong></p>
<p>{{.Message}}</p>
{{if .Actions}}<h3>Recommended actions</h3>
<ul>{{range .Actions}}<li>{{.}}</li>{{end}}</ul>{{end}}
<p style="color:#6b7280;font-size:12px">Sent by DemoForge monitoring.</p>
</div>`))

var textTmpl = template.Must(template.New("text").Parse(`{{.Emoji}} {{.Title}}

{{.BusinessName}}

{{.Message}}
{{if .Actions}}
Recommended actions:
{{range .Actions}}  - {{.}}
{{end}}{{end}}`))

var smsTmpl = template.Must(template.New("sms").Parse(
	`{{.Emoji}} {{.BusinessName}}: {{.Title}}. Check your DemoForge dashboard for details.`))

func render(t *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
