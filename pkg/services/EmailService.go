package services

import (
	"html/template"
	"strings"

	"github.com/adampresley/adamgokit/email"
)

/*
SendReconcileReport emails the operator the inconsistencies reconciliation
found but will not fix on its own.
*/
func SendReconcileReport(apiKey, toEmail, fromName, fromEmail string, report ReconcileReport) error {
	parsedTemplate := strings.Builder{}

	service := email.NewResendService(&email.Config{
		ApiKey: apiKey,
	})

	tmpl := `
<h1>Gallery storage check</h1>
<p>Removed {{len .RemovedBlobs}} stored file(s) that no photo referenced.</p>
{{if .MissingBlobs}}
<p>These photos point at files that are no longer in storage:</p>
<ul>
{{range .MissingBlobs}}<li>{{.PhotoID}} ({{.Path}})</li>{{end}}
</ul>
{{end}}
{{if .UnmatchedPhotos}}
<p>No files were removed because these photos have URLs outside the gallery base URL:</p>
<ul>
{{range .UnmatchedPhotos}}<li>{{.}}</li>{{end}}
</ul>
{{end}}
	`

	t := template.Must(template.New("email").Parse(tmpl))
	_ = t.Execute(&parsedTemplate, report)

	return service.Send(email.Mail{
		Body:       parsedTemplate.String(),
		BodyIsHtml: true,
		From: email.EmailAddress{
			Email: fromEmail,
			Name:  fromName,
		},
		Subject: "Gallery storage check found problems",
		To: []email.EmailAddress{
			{Email: toEmail},
		},
	})
}
