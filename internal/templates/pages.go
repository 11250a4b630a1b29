package templates

// pageTemplates holds every dashboard page as a named template. The
// shared chrome lives in the "head" and "foot" templates.
const pageTemplates = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.}} - Fund Dashboard</title>
<style>
body{font-family:sans-serif;margin:0;background:#f5f6f8;color:#222}
header{background:#1f2937;color:#fff;padding:12px 24px}
header a{color:#cbd5e1;margin-right:16px;text-decoration:none}
main{padding:24px;max-width:1100px;margin:0 auto}
table{border-collapse:collapse;width:100%;background:#fff}
th,td{border:1px solid #e2e8f0;padding:8px 12px;text-align:left}
th{background:#f1f5f9}
.ok{color:#15803d}.bad{color:#b91c1c}
.card{background:#fff;border:1px solid #e2e8f0;padding:16px;margin-bottom:16px}
.pager a{margin-right:12px}
form label{display:block;margin:8px 0 4px}
form input{width:100%;max-width:480px;padding:6px}
button{padding:8px 16px;margin-top:12px}
</style>
</head>
<body>
<header>
<a href="/">Funds</a>
<a href="/history">History</a>
<a href="/market_review">Market Review</a>
<a href="/system/status">Status</a>
<a href="/config">Config</a>
</header>
<main>
<h1>{{.}}</h1>
{{end}}

{{define "foot"}}</main>
</body>
</html>
{{end}}

{{define "fund_list"}}{{template "head" "Watched Funds"}}
<p>Daily analysis runs at {{.ScheduleTime}}.</p>
<p><a href="/analysis/all">Analyze all</a> &middot; <a href="/market_review/run">Generate market review</a></p>
<table>
<tr><th>Code</th><th>Name</th><th>Advice</th><th>Score</th><th>Trend</th><th>Analyzed</th></tr>
{{range .Funds}}
<tr>
<td><a href="/fund/detail?code={{.Code}}">{{.Code}}</a></td>
<td>{{.Name}}</td>
{{if .HasAnalysis}}
<td>{{.Advice}}</td><td>{{.Score}}</td><td>{{.Trend}}</td><td>{{.AnalyzedAt}}</td>
{{else}}
<td colspan="4">no analysis yet</td>
{{end}}
</tr>
{{else}}
<tr><td colspan="6">No funds configured. Add codes on the config page.</td></tr>
{{end}}
</table>
{{template "foot"}}{{end}}

{{define "fund_detail"}}{{template "head" "Fund Detail"}}
<div class="card">
<h2>{{.Name}} ({{.Code}})</h2>
{{if .Valuation}}
<p>Intraday estimate: <strong>{{printf "%.2f" .Valuation.ChangePercent}}%</strong>
({{.Valuation.Source}}, {{.Valuation.Time}})</p>
{{end}}
<table>
{{range .Profile}}<tr><th>{{.Key}}</th><td>{{.Value}}</td></tr>{{end}}
</table>
</div>
{{if .Performance}}
<div class="card">
<h3>Performance</h3>
<table>
<tr>{{range .Performance}}<th>{{.Key}}</th>{{end}}</tr>
<tr>{{range .Performance}}<td>{{.Value}}</td>{{end}}</tr>
</table>
</div>
{{end}}
{{if .Holdings}}
<div class="card">
<h3>Top Holdings</h3>
<table>
<tr><th>Code</th><th>Name</th><th>Ratio</th></tr>
{{range .Holdings}}<tr><td>{{.Code}}</td><td>{{.Name}}</td><td>{{printf "%.2f" .Ratio}}%</td></tr>{{end}}
</table>
</div>
{{end}}
{{if .Latest}}
<div class="card">
<h3>Latest Analysis</h3>
<p>{{.Latest.Advice}} (score {{.Latest.Score}}, {{.Latest.Trend}})</p>
<p>{{.Latest.Summary}}</p>
<p><small>{{.Latest.CreatedAt}}</small></p>
</div>
{{end}}
{{template "foot"}}{{end}}

{{define "record_rows"}}
{{range .}}
<tr>
<td>{{.CreatedAt}}</td>
<td>{{.Code}}</td>
<td>{{.Name}}</td>
{{if .Success}}
<td class="ok">ok</td><td>{{.Advice}}</td><td>{{.Score}}</td><td>{{.Trend}}</td>
{{else}}
<td class="bad">failed</td><td colspan="3">{{.Error}}</td>
{{end}}
</tr>
{{else}}
<tr><td colspan="7">No records.</td></tr>
{{end}}
{{end}}

{{define "pager"}}
<p class="pager">
{{if .HasPrev}}<a href="?page={{.Prev}}{{if .Code}}&code={{.Code}}{{end}}">&laquo; newer</a>{{end}}
page {{.Page}} of {{.Pages}} ({{.Total}} records)
{{if .HasNext}}<a href="?page={{.Next}}{{if .Code}}&code={{.Code}}{{end}}">older &raquo;</a>{{end}}
</p>
{{end}}

{{define "history"}}{{template "head" "Analysis History"}}
{{if .Code}}<p>Filtered by fund {{.Code}}.</p>{{end}}
<table>
<tr><th>Time</th><th>Code</th><th>Name</th><th>Status</th><th>Advice</th><th>Score</th><th>Trend</th></tr>
{{template "record_rows" .Records}}
</table>
{{template "pager" .}}
{{template "foot"}}{{end}}

{{define "review_list"}}{{template "head" "Market Reviews"}}
<table>
<tr><th>Time</th><th>Status</th><th></th></tr>
{{range .Records}}
<tr>
<td>{{.CreatedAt}}</td>
{{if .Success}}<td class="ok">ok</td>{{else}}<td class="bad">failed</td>{{end}}
<td><a href="/market_review/detail?id={{.ID}}">view</a></td>
</tr>
{{else}}
<tr><td colspan="3">No market reviews yet.</td></tr>
{{end}}
</table>
<p class="pager">
{{if .HasPrev}}<a href="?page={{.Prev}}">&laquo; newer</a>{{end}}
page {{.Page}} of {{.Pages}} ({{.Total}} records)
{{if .HasNext}}<a href="?page={{.Next}}">older &raquo;</a>{{end}}
</p>
{{template "foot"}}{{end}}

{{define "review_detail"}}{{template "head" "Market Review"}}
<div class="card">
<p><small>{{.Record.CreatedAt}}</small></p>
<pre style="white-space:pre-wrap">{{.Report}}</pre>
</div>
{{template "foot"}}{{end}}

{{define "config"}}{{template "head" "Configuration"}}
{{if .Message}}<div class="card ok">{{.Message}}</div>{{end}}
<div class="card">
<p>Settings file: <code>{{.FileName}}</code></p>
<form method="post" action="/update">
<label for="STOCK_LIST">Fund codes (comma separated)</label>
<input id="STOCK_LIST" name="STOCK_LIST" value="{{range $i, $c := .StockList}}{{if $i}},{{end}}{{$c}}{{end}}">
{{range .Keys}}
<label for="{{.Key}}">{{.Key}}</label>
<input id="{{.Key}}" name="{{.Key}}" value="{{.Value}}">
{{end}}
<button type="submit">Save</button>
</form>
</div>
{{template "foot"}}{{end}}

{{define "status"}}{{template "head" "System Status"}}
<div class="card">
<p>Service: {{.Service}}</p>
<p>Health: {{if .Healthy}}<span class="ok">healthy</span>{{else}}<span class="bad">degraded</span>{{end}}</p>
<p>Watched funds: {{.FundCount}}</p>
</div>
<h3>Recent Tasks</h3>
<table>
<tr><th>Task</th><th>Code</th><th>Status</th><th>Created</th><th>Error</th></tr>
{{range .Tasks}}
<tr><td>{{.ID}}</td><td>{{.Code}}</td><td>{{.Status}}</td><td>{{.CreatedAt}}</td><td>{{.Error}}</td></tr>
{{else}}
<tr><td colspan="5">No tasks.</td></tr>
{{end}}
</table>
{{template "foot"}}{{end}}

{{define "error"}}{{template "head" .Title}}
<div class="card">
<p><strong>{{.Status}}</strong> {{.Message}}</p>
<p><a href="/">Back to the fund list</a></p>
</div>
{{template "foot"}}{{end}}
`
