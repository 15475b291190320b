package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/FranksOps/leadscan/internal/metrics"
	"github.com/FranksOps/leadscan/internal/storage"
	"gopkg.in/yaml.v3"
)

// Summary contains aggregated figures about one enrichment run.
type Summary struct {
	RunID       string         `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Total       int            `json:"total" yaml:"total"`
	OK          int            `json:"ok" yaml:"ok"`
	Errors      int            `json:"errors" yaml:"errors"`
	Dead        int            `json:"dead" yaml:"dead"`
	WithEmails  int            `json:"with_emails" yaml:"with_emails"`
	WithPhones  int            `json:"with_phones" yaml:"with_phones"`
	EmailsFound int            `json:"emails_found" yaml:"emails_found"`
	PhonesFound int            `json:"phones_found" yaml:"phones_found"`
	StatusCodes map[int]int    `json:"status_codes" yaml:"status_codes"`
	Protections map[string]int `json:"protections" yaml:"protections"`
	StartTime   time.Time      `json:"start_time" yaml:"start_time"`
	EndTime     time.Time      `json:"end_time" yaml:"end_time"`
	Duration    time.Duration  `json:"duration" yaml:"duration"`
}

// GenerateSummary aggregates the records of a run.
func GenerateSummary(records []*storage.Record) Summary {
	s := Summary{
		StatusCodes: make(map[int]int),
		Protections: make(map[string]int),
	}

	if len(records) == 0 {
		return s
	}

	s.RunID = records[0].RunID
	s.StartTime = records[0].FetchedAt
	s.EndTime = records[0].FetchedAt

	for _, r := range records {
		s.Total++
		switch metrics.Outcome(r) {
		case metrics.OutcomeOK:
			s.OK++
			if n := metrics.Count(r.Emails); n > 0 {
				s.WithEmails++
				s.EmailsFound += n
			}
			if n := metrics.Count(r.Phones); n > 0 {
				s.WithPhones++
				s.PhonesFound += n
			}
		case metrics.OutcomeDead:
			s.Dead++
		default:
			s.Errors++
		}
		if r.StatusCode > 0 {
			s.StatusCodes[r.StatusCode]++
		}
		if r.Protection != "" {
			s.Protections[r.Protection]++
		}

		if r.FetchedAt.Before(s.StartTime) {
			s.StartTime = r.FetchedAt
		}
		end := r.FetchedAt.Add(time.Duration(r.DurationMS) * time.Millisecond)
		if end.After(s.EndTime) {
			s.EndTime = end
		}
	}

	s.Duration = s.EndTime.Sub(s.StartTime)
	return s
}

// Format selects a summary renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
)

// Formats lists the supported summary formats.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML, FormatHTML}
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("report: unknown format %q", name)
}

// Write renders summary in format f.
func Write(w io.Writer, f Format, summary Summary) error {
	switch f {
	case FormatText:
		return WriteText(w, summary)
	case FormatJSON:
		return WriteJSON(w, summary)
	case FormatYAML:
		return WriteYAML(w, summary)
	case FormatHTML:
		return WriteHTML(w, summary)
	}
	return fmt.Errorf("report: unknown format %q", f)
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

// WriteYAML writes the summary as a YAML document.
func WriteYAML(w io.Writer, summary Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("report: encode yaml: %w", err)
	}
	return enc.Close()
}

const textTmpl = `Lead Enrichment Summary
-----------------------
{{- if .RunID}}
Run:           {{.RunID}}
{{- end}}
Time:          {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:      {{.Duration}}
Domains:       {{.Total}}
  OK:          {{.OK}}
  Errors:      {{.Errors}}
  Dead:        {{.Dead}}
Emails found:  {{.EmailsFound}} on {{.WithEmails}} sites
Phones found:  {{.PhonesFound}} on {{.WithPhones}} sites

Status Codes:
{{- range $code, $count := .StatusCodes}}
  {{$code}}: {{$count}}
{{- else}}
  None
{{- end}}

Protections:
{{- range $src, $count := .Protections}}
  {{$src}}: {{$count}}
{{- else}}
  None
{{- end}}
`

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	t, err := texttemplate.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("report: parse text template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render text: %w", err)
	}

	return nil
}

const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Lead Enrichment Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  .ok { color: green; }
  .bad { color: red; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>Lead Enrichment Report</h1>
  <p><strong>Time:</strong> {{.StartTime.Format "2006-01-02 15:04:05"}} to {{.EndTime.Format "2006-01-02 15:04:05"}} ({{.Duration}})</p>
  {{- if .RunID}}
  <p><strong>Run:</strong> {{.RunID}}</p>
  {{- end}}

  <div class="stat-card">
    <div>Domains</div>
    <div class="stat-val">{{.Total}}</div>
  </div>
  <div class="stat-card">
    <div>OK</div>
    <div class="stat-val ok">{{.OK}}</div>
  </div>
  <div class="stat-card">
    <div>Errors</div>
    <div class="stat-val{{if gt .Errors 0}} bad{{end}}">{{.Errors}}</div>
  </div>
  <div class="stat-card">
    <div>Dead</div>
    <div class="stat-val{{if gt .Dead 0}} bad{{end}}">{{.Dead}}</div>
  </div>
  <div class="stat-card">
    <div>Emails Found</div>
    <div class="stat-val">{{.EmailsFound}}</div>
  </div>
  <div class="stat-card">
    <div>Phones Found</div>
    <div class="stat-val">{{.PhonesFound}}</div>
  </div>

  <h3>Status Codes</h3>
  <table>
    <tr><th>Code</th><th>Count</th></tr>
    {{- range $code, $count := .StatusCodes}}
    <tr><td>{{$code}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Protections</h3>
  <table>
    <tr><th>Vendor</th><th>Count</th></tr>
    {{- range $src, $count := .Protections}}
    <tr><td>{{$src}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	t, err := template.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("report: parse html template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("report: render html: %w", err)
	}

	return nil
}
