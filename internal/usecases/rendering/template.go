package rendering

// reportTemplateText holds every layout in one template set. The constrained
// profile reuses the same sections but switches to the narrow single-column
// stylesheet; all truncation happens upstream in the aggregator.
const reportTemplateText = `
{{define "top"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - {{.Doc.CompanyName}}</title>
<style>
body { font-family: Arial, sans-serif; color: #1f2430; margin: 0; background: #f4f5f7; }
.page { max-width: 960px; margin: 24px auto; background: #fff; padding: 32px; }
.page.constrained { max-width: 520px; padding: 16px; }
h1 { font-size: 22px; margin: 0 0 4px; }
.meta { color: #6b7280; font-size: 13px; margin-bottom: 24px; }
.summary { display: flex; flex-wrap: wrap; gap: 16px; margin-bottom: 24px; }
.constrained .summary { flex-direction: column; gap: 8px; }
.metric { flex: 1 1 180px; border: 1px solid #e5e7eb; padding: 12px; }
.metric .label { font-size: 12px; color: #6b7280; text-transform: uppercase; }
.metric .value { font-size: 18px; font-weight: bold; }
.status-CRITICAL { color: #b91c1c; }
.status-LOW { color: #d97706; }
.status-ADEQUATE { color: #15803d; }
.status-EXCESS { color: #1d4ed8; }
.level-HIGH { color: #b91c1c; }
.level-MEDIUM { color: #d97706; }
.level-LOW { color: #15803d; }
table { width: 100%; border-collapse: collapse; margin-bottom: 24px; font-size: 14px; }
th, td { text-align: left; padding: 8px; border-bottom: 1px solid #e5e7eb; }
th { background: #f9fafb; font-size: 12px; text-transform: uppercase; color: #6b7280; }
td.num, th.num { text-align: right; }
.recommendations { background: #f9fafb; padding: 16px; }
.recommendations h2 { font-size: 15px; margin: 0 0 8px; }
.recommendations li { margin-bottom: 4px; font-size: 14px; }
.footer { margin-top: 24px; font-size: 12px; color: #9ca3af; }
</style>
</head>
<body>
<div class="page{{if eq .Doc.Profile "constrained"}} constrained{{end}}">
<h1>{{.Title}}</h1>
<div class="meta">
{{.Doc.CompanyName}} · {{.Doc.UserName}} ·
period {{date .Doc.PeriodFrom}} – {{date .Doc.PeriodTo}} ·
generated {{datetime .Doc.GeneratedAt}} UTC
</div>
{{end}}

{{define "bottom"}}
<div class="footer">Generated automatically by the financial dashboard.</div>
</div>
</body>
</html>
{{end}}

{{define "recommendations"}}
{{if .}}
<div class="recommendations">
<h2>Recommendations</h2>
<ul>
{{range .}}<li>{{.}}</li>
{{end}}</ul>
</div>
{{end}}
{{end}}

{{define "liquidity"}}{{template "top" wrap . "Liquidity Report"}}
{{with .Liquidity}}
<div class="summary">
<div class="metric"><div class="label">Status</div><div class="value status-{{.Status}}">{{.Status}}</div></div>
<div class="metric"><div class="label">Risk level</div><div class="value level-{{.RiskLevel}}">{{.RiskLevel}}</div></div>
<div class="metric"><div class="label">Total balance</div><div class="value">{{money .TotalBalance}}</div></div>
<div class="metric"><div class="label">Net cash flow</div><div class="value">{{money .NetCashFlow}}</div></div>
<div class="metric"><div class="label">Inflows</div><div class="value">{{money .Inflows}}</div></div>
<div class="metric"><div class="label">Outflows</div><div class="value">{{money .Outflows}}</div></div>
</div>
<table>
<tr><th>Account</th><th>Bank</th><th>Currency</th><th class="num">Balance</th><th class="num">Converted</th></tr>
{{range .Accounts}}<tr><td>{{.Name}}</td><td>{{.Bank}}</td><td>{{.Currency}}</td><td class="num">{{money .Balance}}</td><td class="num">{{money .BalanceReporting}}</td></tr>
{{end}}</table>
{{template "recommendations" .Recommendations}}
{{end}}
{{template "bottom"}}{{end}}

{{define "risk"}}{{template "top" wrap . "Risk Report"}}
{{with .Risk}}
<div class="summary">
<div class="metric"><div class="label">Overall risk</div><div class="value level-{{.OverallRisk}}">{{.OverallRisk}}</div></div>
<div class="metric"><div class="label">Total balance</div><div class="value">{{money .TotalBalance}}</div></div>
<div class="metric"><div class="label">High risks</div><div class="value">{{.HighRisks}}</div></div>
<div class="metric"><div class="label">Medium risks</div><div class="value">{{.MediumRisks}}</div></div>
</div>
<table>
<tr><th>Level</th><th>Description</th><th>Recommendation</th></tr>
{{range .Risks}}<tr><td class="level-{{.Level}}">{{.Level}}</td><td>{{.Description}}</td><td>{{.Recommendation}}</td></tr>
{{end}}</table>
<table>
<tr><th>Currency</th><th class="num">Amount</th><th class="num">Share</th></tr>
{{range .CurrencyShares}}<tr><td>{{.Key}}</td><td class="num">{{money .Amount}}</td><td class="num">{{percent .Percent}}</td></tr>
{{end}}</table>
<table>
<tr><th>Bank</th><th class="num">Amount</th><th class="num">Share</th></tr>
{{range .BankShares}}<tr><td>{{.Key}}</td><td class="num">{{money .Amount}}</td><td class="num">{{percent .Percent}}</td></tr>
{{end}}</table>
{{end}}
{{template "bottom"}}{{end}}

{{define "cashflow"}}{{template "top" wrap . "Cash Flow Report"}}
{{with .Cashflow}}
<div class="summary">
<div class="metric"><div class="label">Total inflows</div><div class="value">{{money .TotalInflows}}</div></div>
<div class="metric"><div class="label">Total outflows</div><div class="value">{{money .TotalOutflows}}</div></div>
<div class="metric"><div class="label">Net cash flow</div><div class="value">{{money .NetCashFlow}}</div></div>
<div class="metric"><div class="label">Weeks analyzed</div><div class="value">{{.WeeksAnalyzed}}</div></div>
</div>
<table>
<tr><th>Week</th><th class="num">Inflows</th><th class="num">Outflows</th><th class="num">Net</th></tr>
{{range .Weeks}}<tr><td>{{.Week}}</td><td class="num">{{money .Inflows}}</td><td class="num">{{money .Outflows}}</td><td class="num">{{money .Net}}</td></tr>
{{end}}</table>
{{if .Entries}}
<table>
<tr><th>Date</th><th>Type</th><th>Description</th><th class="num">Amount</th></tr>
{{range .Entries}}<tr><td>{{date .PlannedDate}}</td><td>{{.FlowType}}</td><td>{{.Description}}</td><td class="num">{{money .Amount}}</td></tr>
{{end}}</table>
{{end}}
{{end}}
{{template "bottom"}}{{end}}
`
