package graphing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"PerfHarness/pkg/utils"
)

// Summary is the header rendered above the charts.
type Summary struct {
	Session    string
	Hostname   string
	Records    int
	Kinds      []KindCount
	Benchmarks []BenchmarkRow
}

type KindCount struct {
	Kind  string
	Count int
}

type BenchmarkRow struct {
	Name   string
	Status string
	Trials uint64
	BestMs float64
	Error  string
}

var templateFuncs = template.FuncMap{
	"group": utils.GroupUint,
	"ms":    func(v float64) string { return fmt.Sprintf("%.3f", v) },
}

var templates = template.Must(template.New("").Funcs(templateFuncs).Parse(`
{{define "styles"}}
<style>
* {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Arial, sans-serif;
}
body {
    max-width: 1400px;
    margin: 0 auto;
    padding: 20px;
    font-size: 14px;
}
.summary { margin-bottom: 20px; border-bottom: 2px solid #333; padding-bottom: 10px; }
.summary h1 { margin: 0 0 6px 0; font-size: 18px; }
.summary .meta { font-size: 11px; color: #666; }
.summary table { border-collapse: collapse; margin-top: 10px; }
.summary td, .summary th { padding: 3px 10px; text-align: left; border-bottom: 1px solid #ddd; }
.summary .errored { color: #a50026; }
</style>
{{end}}

{{define "summary"}}
<div class="summary">
    <h1>perfh results</h1>
    <div class="meta">Session: {{.Session}}{{if .Hostname}} &middot; Host: {{.Hostname}}{{end}} &middot; {{.Records}} records
    {{- range .Kinds}} &middot; {{.Kind}}: {{.Count}}{{end}}</div>
    {{if .Benchmarks}}
    <table>
        <tr><th>Benchmark</th><th>Status</th><th>Trials</th><th>Best (ms)</th></tr>
        {{range .Benchmarks}}
        <tr{{if .Error}} class="errored"{{end}}>
            <td>{{.Name}}</td>
            <td>{{.Status}}{{if .Error}}: {{.Error}}{{end}}</td>
            <td>{{group .Trials}}</td>
            <td>{{ms .BestMs}}</td>
        </tr>
        {{end}}
    </table>
    {{end}}
</div>
{{end}}
`))

// injectSummary places the summary after <body> and the styles before
// </head> of a rendered echarts page.
func injectSummary(page string, s Summary) (string, error) {
	var head, body bytes.Buffer
	if err := templates.ExecuteTemplate(&head, "styles", nil); err != nil {
		return "", fmt.Errorf("failed to execute styles template: %w", err)
	}
	if err := templates.ExecuteTemplate(&body, "summary", s); err != nil {
		return "", fmt.Errorf("failed to execute summary template: %w", err)
	}

	page = strings.Replace(page, "</head>", head.String()+"</head>", 1)
	page = strings.Replace(page, "<body>", "<body>\n"+body.String(), 1)
	return page, nil
}
