package moderation

import (
	"context"

	"github.com/dalemusser/eventdesk/internal/app/system/mailer"
	"github.com/dalemusser/eventdesk/internal/domain/models"
	"go.uber.org/zap"
)

// DetailReader loads the aggregated registration for a group.
type DetailReader interface {
	Detail(ctx context.Context, groupID string) (models.Registration, error)
}

// TemplateSource looks up an email template by type. It returns nil and no
// error when the template does not exist.
type TemplateSource interface {
	Get(ctx context.Context, templateType string) (*models.EmailTemplate, error)
}

// Sender delivers an email.
type Sender interface {
	Send(ctx context.Context, msg mailer.Email) error
}

// Notifier sends the approval email after a successful approval.
type Notifier struct {
	Details   DetailReader
	Templates TemplateSource
	Mail      Sender
	SiteName  string
}

// Notice reports side effects of an action that succeeded. Warning is set
// when the approval was stored but the email could not be sent.
type Notice struct {
	EmailSent bool   `json:"email_sent"`
	Warning   string `json:"warning,omitempty"`
}

// WithNotifier attaches approval notifications to e and returns e.
func (e *Engine) WithNotifier(n *Notifier) *Engine {
	e.notify = n
	return e
}

// ApproveAndNotify approves the group and then emails the group leader.
// Only the approval can fail the call; email problems are logged and
// surfaced in Notice.Warning.
func (e *Engine) ApproveAndNotify(ctx context.Context, groupID, reviewer string) (Notice, error) {
	if err := e.Approve(ctx, groupID, reviewer); err != nil {
		return Notice{}, err
	}
	if e.notify == nil || e.notify.Mail == nil || e.notify.Details == nil {
		return Notice{Warning: "Approval email is not configured"}, nil
	}

	log := e.log.With(zap.String("group_id", groupID))

	reg, err := e.notify.Details.Detail(ctx, groupID)
	if err != nil {
		log.Warn("approval email skipped: reload failed", zap.Error(err))
		return Notice{Warning: "Registration approved, but the email could not be prepared"}, nil
	}

	var tmpl *models.EmailTemplate
	if e.notify.Templates != nil {
		tmpl, err = e.notify.Templates.Get(ctx, mailer.ApprovalTemplateType)
		if err != nil {
			log.Warn("approval template lookup failed, using default", zap.Error(err))
			tmpl = nil
		}
	}

	msg, err := mailer.BuildApprovalEmail(tmpl, mailer.ApprovalDataFrom(e.notify.SiteName, reg))
	if err != nil {
		log.Warn("approval email render failed", zap.Error(err))
		return Notice{Warning: "Registration approved, but the email template is invalid"}, nil
	}
	if msg.To == "" {
		log.Warn("approval email skipped: leader has no email")
		return Notice{Warning: "Registration approved, but the group leader has no email address"}, nil
	}

	if err := e.notify.Mail.Send(ctx, msg); err != nil {
		log.Warn("approval email send failed", zap.Error(err))
		return Notice{Warning: "Registration approved, but the email could not be sent"}, nil
	}
	return Notice{EmailSent: true}, nil
}
