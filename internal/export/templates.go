package export

import (
	"bytes"
	"html/template"
	"strings"
	"time"
)

// SafeHTML is a template function that marks a string as safe HTML
func SafeHTML(s interface{}) template.HTML {
	switch v := s.(type) {
	case string:
		return template.HTML(v)
	case template.HTML:
		return v
	default:
		return template.HTML("")
	}
}

var pageTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"lower": strings.ToLower,
		"formatDate": func(t time.Time, layout string) string {
			return t.Format(layout)
		},
		"safeHTML": SafeHTML,
	}

	pageTemplate = template.Must(template.New("page").Funcs(funcMap).Parse(pageTemplateHTML))
}

// TemplateData holds data for page template rendering
type TemplateData struct {
	Title       string
	ContentHTML template.HTML
	Author      string
	Revision    string
	UpdatedAt   time.Time
	SpaceName   string
	Signatures  []TemplateSignature
}

// TemplateSignature holds e-signature data for template
type TemplateSignature struct {
	SignerName string
	Revision   string
	Checksum   string
	SignedAt   time.Time
}

// RenderPageHTML renders the page template with provided data
func RenderPageHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const pageTemplateHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    pre { background: #f5f5f5; padding: 1rem; overflow-x: auto; }
    code { font-family: "Courier New", monospace; }
    .signature { background: #f5f5f5; padding: 1rem; margin: 1rem 0; border-left: 3px solid #333; }
    .checksum { font-family: "Courier New", monospace; font-size: 0.8em; color: #666; word-break: break-all; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">{{.SpaceName}} | {{.Author}} | revision {{.Revision}}{{if not .UpdatedAt.IsZero}} | {{.UpdatedAt.Format "Jan 2, 2006"}}{{end}}</div>
  <div>{{.ContentHTML | safeHTML}}</div>
  {{if .Signatures}}
  <h2>Approval signatures</h2>
  {{range .Signatures}}
  <div class="signature">
    <strong>{{.SignerName}}</strong> signed revision {{.Revision}}{{if not .SignedAt.IsZero}} on {{.SignedAt.Format "Jan 2, 2006 15:04 MST"}}{{end}}
    <div class="checksum">sha256: {{.Checksum}}</div>
  </div>
  {{end}}
  {{end}}
</body>
</html>`
