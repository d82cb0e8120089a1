package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/dalemusser/eventdesk/internal/domain/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_ProviderSelection(t *testing.T) {
	_, err := New(Config{Provider: "pigeon", From: "a@b.c"}, nil)
	require.Error(t, err)

	_, err = New(Config{Provider: ProviderSMTP, From: "a@b.c"}, nil)
	require.Error(t, err, "smtp needs a host")

	_, err = New(Config{Provider: ProviderResend, From: "a@b.c"}, nil)
	require.Error(t, err, "resend needs an api key")

	m, err := New(Config{Provider: ProviderResend, ResendAPIKey: "re_test", From: "a@b.c"}, nil)
	require.NoError(t, err)
	require.Equal(t, ProviderResend, m.Provider())

	m, err = New(Config{From: "a@b.c"}, nil)
	require.NoError(t, err)
	require.Equal(t, ProviderLog, m.Provider())
}

func TestSend_LogProvider(t *testing.T) {
	m, err := New(Config{Provider: ProviderLog, From: "noreply@example.com", FromName: "Events"}, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "Events <noreply@example.com>", m.from)

	require.NoError(t, m.Send(context.Background(), Email{To: "x@example.com", Subject: "Hi", TextBody: "body"}))
	require.Error(t, m.Send(context.Background(), Email{Subject: "Hi"}), "recipient required")
	require.Error(t, m.Send(context.Background(), Email{To: "x@example.com"}), "subject required")
}

func TestBuildMIME(t *testing.T) {
	raw := string(buildMIME("Events <noreply@example.com>", Email{
		To: "x@example.com", Subject: "Approved", TextBody: "plain", HTMLBody: "<p>rich</p>",
	}))
	require.Contains(t, raw, "Subject: Approved\r\n")
	require.Contains(t, raw, "multipart/alternative")
	require.Contains(t, raw, "plain")
	require.Contains(t, raw, "<p>rich</p>")

	raw = string(buildMIME("noreply@example.com", Email{To: "x@example.com", Subject: "s", TextBody: "only text"}))
	require.NotContains(t, raw, "multipart")
	require.True(t, strings.HasSuffix(raw, "only text"))
}

func sampleRegistration() models.Registration {
	return models.Registration{
		GroupID:     "G1",
		EventName:   "Hackathon",
		Name:        "Asha",
		Email:       "asha@example.com",
		TotalAmount: 1000,
		MemberCount: 2,
		Members: []models.Member{
			{Name: "Asha", UserID: "U1"},
			{Name: "Ravi", UserID: "D2"},
		},
	}
}

func TestBuildApprovalEmail_Default(t *testing.T) {
	data := ApprovalDataFrom("Fest", sampleRegistration())
	require.Equal(t, "Asha (U1), Ravi (D2)", data.GroupMembers)

	msg, err := BuildApprovalEmail(nil, data)
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", msg.To)
	require.Equal(t, "Your registration for Hackathon is approved", msg.Subject)
	require.Contains(t, msg.TextBody, "Group ID: G1")
	require.Contains(t, msg.HTMLBody, "<strong>Hackathon</strong>")
}

func TestBuildApprovalEmail_StoredTemplateIsEscapedAndSanitized(t *testing.T) {
	reg := sampleRegistration()
	reg.Name = "<script>alert(1)</script>"
	tmpl := &models.EmailTemplate{
		Type:     ApprovalTemplateType,
		Subject:  "Approved: {{.EventName}}",
		HTMLBody: `<p>Hello {{.Name}}</p><script>steal()</script>`,
	}

	msg, err := BuildApprovalEmail(tmpl, ApprovalDataFrom("Fest", reg))
	require.NoError(t, err)
	require.Equal(t, "Approved: Hackathon", msg.Subject)
	require.NotContains(t, msg.HTMLBody, "<script>")
	require.NotContains(t, msg.HTMLBody, "steal()")
}

func TestBuildApprovalEmail_BadTemplate(t *testing.T) {
	_, err := BuildApprovalEmail(&models.EmailTemplate{Subject: "{{.Nope", TextBody: "x"}, ApprovalEmailData{})
	require.Error(t, err)

	_, err = BuildApprovalEmail(&models.EmailTemplate{Type: "empty", Subject: "s"}, ApprovalEmailData{})
	require.Error(t, err)
}

// headerBlock returns the raw header lines of a rendered message.
func headerBlock(raw string) []string {
	head, _, _ := strings.Cut(raw, "\r\n\r\n")
	return strings.Split(head, "\r\n")
}

func TestBuildMIME_StoredEventNameCannotAddHeaders(t *testing.T) {
	reg := sampleRegistration()
	reg.EventName = "Hack\r\nBcc: victim@evil.test"

	msg, err := BuildApprovalEmail(nil, ApprovalDataFrom("Fest", reg))
	require.NoError(t, err)
	require.NotContains(t, msg.Subject, "\n")

	raw := string(buildMIME("Events <noreply@example.com>", msg))
	for _, line := range headerBlock(raw) {
		require.False(t, strings.HasPrefix(line, "Bcc:"), "unexpected header line %q", line)
	}
	require.Contains(t, raw, "Subject: Your registration for Hack Bcc: victim@evil.test is approved\r\n")
}

func TestBuildMIME_EncodesNonASCIISubject(t *testing.T) {
	raw := string(buildMIME("noreply@example.com", Email{To: "x@example.com", Subject: "Inscripción aprobada", TextBody: "ok"}))
	require.Contains(t, raw, "Subject: =?utf-8?q?")
	require.NotContains(t, raw, "Inscripción")
}

func TestHeaderValue(t *testing.T) {
	cases := map[string]string{
		"Approved":          "Approved",
		"a\r\nb":            "a b",
		"a\n\n\rb":          "a b",
		"\r\nleading":       "leading",
		"To: x\r\nBcc: y\n": "To: x Bcc: y",
	}
	for in, want := range cases {
		require.Equal(t, want, headerValue(in), "headerValue(%q)", in)
	}
}

func TestSend_RejectsMultiLineRecipientAndSender(t *testing.T) {
	m, err := New(Config{Provider: ProviderLog, From: "noreply@example.com"}, zap.NewNop())
	require.NoError(t, err)
	require.Error(t, m.Send(context.Background(), Email{To: "x@example.com\r\nBcc: y@example.com", Subject: "Hi"}))
	require.Error(t, m.Send(context.Background(), Email{To: "x@example.com", Subject: "\r\n"}), "subject of only line breaks is empty")

	_, err = New(Config{Provider: ProviderLog, From: "noreply@example.com", FromName: "Events\r\nBcc: y@example.com"}, nil)
	require.Error(t, err)
}
