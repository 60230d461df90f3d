package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Error describes a rendering failure with the stage that produced it.
type Error struct {
	Stage string // "html" or "pdf"
	Path  string
	Err   error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("render %s (%s): %v", e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// md converts GitHub-flavored markdown, which the report documents use for
// tables and fenced code blocks.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body {
    font-family: Georgia, 'Times New Roman', serif;
    color: #1a1a1a;
    max-width: 50rem;
    margin: 2rem auto;
    padding: 0 1.5rem;
    line-height: 1.55;
  }
  h1 { font-size: 1.9rem; border-bottom: 2px solid #2b4a6f; padding-bottom: .4rem; }
  h2 { font-size: 1.3rem; color: #2b4a6f; margin-top: 2rem; }
  em { color: #555; }
  table { border-collapse: collapse; width: 100%; font-size: .85rem; margin: 1rem 0; }
  th, td { border: 1px solid #ccc; padding: .35rem .6rem; text-align: left; }
  th { background: #eef2f7; }
  pre {
    background: #f6f6f4;
    border: 1px solid #ddd;
    border-radius: 4px;
    padding: .8rem;
    font-size: .8rem;
    overflow-x: auto;
  }
  code { font-family: 'SF Mono', Consolas, Menlo, monospace; }
  ul { padding-left: 1.3rem; }
  @media print {
    body { margin: 0 auto; max-width: none; }
    h2 { page-break-after: avoid; }
    pre, table { page-break-inside: avoid; }
  }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`

var pageTmpl = template.Must(template.New("report").Parse(pageTemplate))

// HTML converts report markdown into a standalone, print-styled HTML page.
func HTML(title, markdown string) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return "", &Error{Stage: "html", Err: err}
	}
	var out bytes.Buffer
	data := struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body.String())}
	if err := pageTmpl.Execute(&out, data); err != nil {
		return "", &Error{Stage: "html", Err: err}
	}
	return out.String(), nil
}
