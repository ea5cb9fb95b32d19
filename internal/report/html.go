package report

import (
	"bytes"
	"html/template"
	"io"
)

// Page is the data of the HTML report page. Report may be nil before the
// first upload; UploadAction empty hides the upload form.
type Page struct {
	Title        string
	UploadAction string
	Error        string
	Report       *Report
}

type table struct {
	Headers []string
	Rows    [][]string
}

type chartHTML struct {
	Account string
	SVG     template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 2em; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #f3f3f3; }
.error { color: #b00020; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<h2>Instructions</h2>
<p>Login to Windsor AI and download a CSV file with GA4 data of the clients you want to analyze.</p>
<p>Include the following columns in the Windsor AI report: 1) Account Name, 2) Key Events, 3) Date, 4) First User Medium, 5) Page Path, 6) User Key Event Rate, 7) Users.</p>
<p><strong>Important:</strong> Before exporting from Windsor AI, filter the data using the column First User Medium to view only the rows that 'contain' the word <em>organic</em>.</p>
{{- if .UploadAction}}
<form method="post" action="{{.UploadAction}}" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv,text/csv">
<button type="submit">Upload</button>
</form>
{{- end}}
{{- if .Error}}
<p class="error">{{.Error}}</p>
{{- end}}
{{- with .Monthly}}
<h2>Account Level GA4 Report</h2>
{{template "table" .}}
{{- end}}
{{- with .Top}}
<h2>Top 10 Pages per Month per Account</h2>
{{template "table" .}}
{{- end}}
{{- if .Charts}}
<h2>Monthly Key Metrics Per Account</h2>
{{- range .Charts}}
<p>Monthly Statistics for {{.Account}}</p>
{{.SVG}}
{{- end}}
{{- end}}
</body>
</html>
{{define "table"}}<table>
<tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</table>{{end}}
`))

// WriteHTML renders the page: instructions, upload form and, when a report
// exists, its two tables and one chart per account.
func WriteHTML(w io.Writer, p Page) error {
	data := struct {
		Title        string
		UploadAction string
		Error        string
		Monthly      *table
		Top          *table
		Charts       []chartHTML
	}{Title: p.Title, UploadAction: p.UploadAction, Error: p.Error}

	if r := p.Report; r != nil {
		data.Monthly = &table{Headers: r.Monthly.Headers(), Rows: r.Monthly.Records()}
		data.Top = &table{Headers: r.TopPages.Headers(), Rows: r.TopPages.Records()}
		for _, c := range r.Charts {
			var buf bytes.Buffer
			if _, err := c.WriteTo(&buf); err != nil {
				return err
			}
			// SVG comes from the chart template, which escapes its text
			data.Charts = append(data.Charts, chartHTML{Account: c.Account, SVG: template.HTML(buf.String())})
		}
	}
	return pageTemplate.Execute(w, data)
}
