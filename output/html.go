package output

import (
	"html/template"
	"io"
)

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Duplicate photo report</title>
<style>
body { font-family: sans-serif; margin: 20px; }
.duplicate-group { margin-bottom: 12px; border: 1px solid #ddd; border-radius: 4px; }
.collapsible { background: #f1f1f1; cursor: pointer; padding: 10px; font-weight: bold; }
.content { display: none; padding: 0 12px 12px; }
.open .content { display: block; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 6px; text-align: left; }
th { background: #fafafa; }
.diagnostics td { color: #a33; }
</style>
</head>
<body>
<h1>Duplicate photo report</h1>
<p>Mode: {{.Mode}} ({{.Description}})<br>Root: {{.Root}}{{if .Algorithm}}<br>Hash: {{.Algorithm}}{{if .Verified}} (verified byte for byte){{end}}{{end}}</p>
<p>Files scanned: {{.Metrics.FilesScanned}}, fingerprinted: {{.Metrics.FilesFingerprinted}}</p>
{{- if eq .Status "no_files_scanned"}}
<p>No files scanned.</p>
{{- else if eq .Status "no_duplicates"}}
<p>No duplicates found.</p>
{{- else}}
<p>Found {{.GroupCount}} duplicate groups</p>
{{- end}}
{{range $i, $g := .Groups}}
<div class="duplicate-group">
<div class="collapsible" onclick="toggleGroup(this)">Group {{inc $i}}: {{$g.Key}} ({{len $g.Members}} files)</div>
<div class="content">
{{- if or $g.Raw $g.JPEG}}
<h3>Raw files ({{len $g.Raw}})</h3>
<table><tr><th>Path</th></tr>{{range $g.Raw}}<tr><td>{{.}}</td></tr>{{end}}</table>
<h3>JPEG files ({{len $g.JPEG}})</h3>
<table><tr><th>Path</th></tr>{{range $g.JPEG}}<tr><td>{{.}}</td></tr>{{end}}</table>
{{- else}}
<table><tr><th>Path</th><th>Size</th><th>Modified</th><th>Note</th></tr>
{{- range $g.Members}}<tr><td>{{.Path}}</td><td>{{.Size}}</td><td>{{.ModTime.Format "2006-01-02 15:04:05"}}</td><td>{{if .HardLinkOf}}hard link of {{.HardLinkOf}}{{end}}</td></tr>{{end}}
</table>
{{- end}}
</div>
</div>
{{- end}}
{{if .Census}}
<h2>Folder census</h2>
<table><tr><th>Folder</th><th>Raw</th><th>JPEG</th></tr>{{range .Census}}<tr><td>{{.Folder}}</td><td>{{.Raw}}</td><td>{{.JPEG}}</td></tr>{{end}}</table>
{{end}}
{{- if .Diagnostics}}
<h2>Diagnostics ({{len .Diagnostics}})</h2>
<table class="diagnostics"><tr><th>Kind</th><th>Path</th><th>Message</th></tr>{{range .Diagnostics}}<tr><td>{{.Kind}}</td><td>{{.Path}}</td><td>{{.Message}}</td></tr>{{end}}</table>
{{end}}
<script>
function toggleGroup(el) { el.parentElement.classList.toggle("open"); }
</script>
</body>
</html>
`))

func renderHTML(out io.Writer, rep *Report) error {
	return htmlReport.Execute(out, rep)
}
