package nightly

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/report.html.tmpl
var templatesFS embed.FS

// DefaultTitle heads the HTML report
const DefaultTitle = "Mirai Merged System"

type suiteView struct {
	Label  string
	ID     string
	Counts TestCounts
	Status Status
}

var reportTemplate = template.Must(template.New("report.html.tmpl").
	Funcs(template.FuncMap{
		"suite": func(label, id string, c TestCounts, s Status) suiteView {
			return suiteView{Label: label, ID: id, Counts: c, Status: s}
		},
	}).
	ParseFS(templatesFS, "templates/report.html.tmpl"))

// RenderHTML writes the human-readable report
func RenderHTML(w io.Writer, title string, r Report, e Evaluation) error {
	if title == "" {
		title = DefaultTitle
	}
	data := struct {
		Title  string
		Report Report
		Eval   Evaluation
	}{title, r, e}

	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}

// RenderJSON writes the raw collected data
func RenderJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}
	return nil
}
