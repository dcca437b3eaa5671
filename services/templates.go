package services

import (
	"bytes"
	"html/template"
	"strings"
)

var emailTemplates = template.Must(template.New("email").Parse(`
{{define "status_change"}}<p>Hello {{.CustomerName}},</p>
<p>The status of your repair job <strong>{{.JobNumber}}</strong> ({{.Appliance}}) has changed from <strong>{{.OldStatus}}</strong> to <strong>{{.NewStatus}}</strong>.</p>
{{if .Note}}<p>Note: {{.Note}}</p>{{end}}
<p>{{.ShopName}}</p>{{end}}

{{define "ready_for_pickup"}}<p>Hello {{.CustomerName}},</p>
<p>Good news: your {{.Appliance}} (job <strong>{{.JobNumber}}</strong>) is ready for pickup.</p>
<p>{{.ShopName}}{{if .ShopAddress}}<br>{{.ShopAddress}}{{end}}{{if .ShopPhone}}<br>Phone: {{.ShopPhone}}{{end}}</p>
{{if .BusinessHours}}<p>Business hours:<br>{{range .BusinessHours}}{{.}}<br>{{end}}</p>{{end}}{{end}}

{{define "quote_sent"}}<p>Hello {{.CustomerName}},</p>
<p>Quote <strong>{{.QuoteNumber}}</strong> for job {{.JobNumber}} totals <strong>{{.Total}}</strong> and is valid until {{.ValidUntil}} ({{.DaysLeft}} days).</p>
<p><a href="{{.AcceptURL}}">Accept quote</a> | <a href="{{.RejectURL}}">Reject quote</a></p>
<p>{{.ShopName}}</p>{{end}}
`))

type statusEmail struct {
	CustomerName  string
	JobNumber     string
	Appliance     string
	OldStatus     string
	NewStatus     string
	Note          string
	ShopName      string
	ShopAddress   string
	ShopPhone     string
	BusinessHours []string
}

type quoteEmail struct {
	CustomerName string
	QuoteNumber  string
	JobNumber    string
	Total        string
	ValidUntil   string
	DaysLeft     int
	AcceptURL    string
	RejectURL    string
	ShopName     string
}

func renderEmail(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
