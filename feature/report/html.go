package report

import (
	"html/template"
	"io"
)

// WriteHTML renders the report as a self-contained HTML page.
func (r *MergeReport) WriteHTML(w io.Writer) error {
	return htmlTemplate.Execute(w, r)
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>ARXML Merge Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #f0f0f0; padding: 20px; border-radius: 5px; }
        .section { margin: 20px 0; }
        .success { color: green; }
        .error { color: red; }
        .warning { color: orange; }
        table { border-collapse: collapse; width: 100%; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
    </style>
</head>
<body>
    <div class="header">
        <h1>ARXML Merge Report</h1>
        <p><strong>Timestamp:</strong> {{.Timestamp.Format "2006-01-02 15:04:05"}}</p>
        <p><strong>Status:</strong> <span class="{{if .Success}}success{{else}}error{{end}}">{{if .Success}}Successful{{else}}Failed{{end}}</span></p>
        <p><strong>Merge strategy:</strong> {{.Strategy}}</p>
        <p>{{.Summary}}</p>
    </div>

    <div class="section">
        <h2>Input Files</h2>
        <ul>
        {{range .InputFiles}}<li>{{.}}</li>{{end}}
        </ul>
        {{if .OutputFile}}<p><strong>Output file:</strong> {{.OutputFile}}</p>{{end}}
    </div>

    <div class="section">
        <h2>Signal Summary</h2>
        <p><strong>Total signals:</strong> {{.Counts.TotalSignals}}</p>
        <p><strong>Total interfaces:</strong> {{.Counts.TotalInterfaces}}</p>
    </div>

    <div class="section">
        <h2>Resolved Conflicts</h2>
        <p><strong>Conflict count:</strong> {{len .Resolutions}}</p>
        {{if .Resolutions}}
        <table>
            <thead>
                <tr><th>Path</th><th>Kind</th><th>Strategy</th><th>Action</th><th>Winning Source</th></tr>
            </thead>
            <tbody>
            {{range .Resolutions}}
                <tr><td>{{.Path}}</td><td>{{.Kind}}</td><td>{{.Strategy}}</td><td>{{.Action}}</td><td>{{.Source}}</td></tr>
            {{end}}
            </tbody>
        </table>
        {{else}}
        <p>No conflicts occurred.</p>
        {{end}}
    </div>

    <div class="section">
        <h2>Diagnostics</h2>
        {{if .Diagnostics}}
        <ul>
        {{range .Diagnostics}}<li class="{{.Severity}}">[{{.Severity}}] {{.Code}}: {{.Message}}</li>{{end}}
        </ul>
        {{else}}
        <p>No warnings or errors.</p>
        {{end}}
    </div>
</body>
</html>
`))
