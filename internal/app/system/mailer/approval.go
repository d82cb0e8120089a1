package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/dalemusser/eventdesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/eventdesk/internal/domain/models"
)

// ApprovalTemplateType is the email_templates key for approval notices.
const ApprovalTemplateType = "approval_event"

// ApprovalEmailData holds the fields available to approval templates, e.g.
// {{.Name}} or {{.EventName}}.
type ApprovalEmailData struct {
	SiteName     string
	Name         string
	Email        string
	EventName    string
	GroupID      string
	GroupMembers string // "Name (id), Name (id)"
	MemberCount  int
	TotalAmount  string
}

// ApprovalDataFrom collects template data from an aggregated registration.
func ApprovalDataFrom(siteName string, reg models.Registration) ApprovalEmailData {
	parts := make([]string, 0, len(reg.Members))
	for _, m := range reg.Members {
		parts = append(parts, fmt.Sprintf("%s (%s)", m.Name, m.UserID))
	}
	return ApprovalEmailData{
		SiteName:     siteName,
		Name:         reg.Name,
		Email:        reg.Email,
		EventName:    reg.EventName,
		GroupID:      reg.GroupID,
		GroupMembers: strings.Join(parts, ", "),
		MemberCount:  reg.MemberCount,
		TotalAmount:  fmt.Sprintf("%.2f", reg.TotalAmount),
	}
}

// BuildApprovalEmail renders tmpl (or the built-in default when tmpl is
// nil) for data. The HTML body is sanitized after rendering.
func BuildApprovalEmail(tmpl *models.EmailTemplate, data ApprovalEmailData) (Email, error) {
	t := DefaultApprovalTemplate()
	if tmpl != nil {
		t = *tmpl
	}

	subject, err := renderText("subject", t.Subject, data)
	if err != nil {
		return Email{}, err
	}
	text, err := renderText("text", t.TextBody, data)
	if err != nil {
		return Email{}, err
	}
	html, err := renderHTML(t.HTMLBody, data)
	if err != nil {
		return Email{}, err
	}
	if text == "" && html == "" {
		return Email{}, fmt.Errorf("template %q has no body", t.Type)
	}

	return Email{
		To:       data.Email,
		Subject:  strings.TrimSpace(headerValue(subject)),
		TextBody: text,
		HTMLBody: html,
	}, nil
}

func renderText(name, src string, data ApprovalEmailData) (string, error) {
	if src == "" {
		return "", nil
	}
	t, err := texttemplate.New(name).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", name, err)
	}
	return buf.String(), nil
}

func renderHTML(src string, data ApprovalEmailData) (string, error) {
	if src == "" {
		return "", nil
	}
	t, err := htmltemplate.New("html").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse html template: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render html template: %w", err)
	}
	return htmlsanitize.Sanitize(buf.String()), nil
}

// DefaultApprovalTemplate is used when no approval_event template is stored.
func DefaultApprovalTemplate() models.EmailTemplate {
	return models.EmailTemplate{
		Type:     ApprovalTemplateType,
		Subject:  "Your registration for {{.EventName}} is approved",
		TextBody: defaultApprovalText,
		HTMLBody: defaultApprovalHTML,
	}
}

const defaultApprovalText = `Hi {{.Name}},

Your group registration for {{.EventName}} has been approved.

Group ID: {{.GroupID}}
Members: {{.GroupMembers}}
Amount paid: {{.TotalAmount}}

See you at the event!
{{.SiteName}}
`

const defaultApprovalHTML = `<div>
  <h1>{{.SiteName}}</h1>
  <p>Hi {{.Name}},</p>
  <p>Your group registration for <strong>{{.EventName}}</strong> has been approved.</p>
  <table>
    <tbody>
      <tr><td>Group ID</td><td>{{.GroupID}}</td></tr>
      <tr><td>Members</td><td>{{.GroupMembers}}</td></tr>
      <tr><td>Amount paid</td><td>{{.TotalAmount}}</td></tr>
    </tbody>
  </table>
  <p>See you at the event!</p>
</div>`
