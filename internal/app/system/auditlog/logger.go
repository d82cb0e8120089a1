// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/eventdesk/internal/app/store/audit"
	"github.com/dalemusser/eventdesk/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Destinations accepted in Config.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// ValidMode reports whether mode is a known destination. Blank means ModeAll.
func ValidMode(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for sign-in, sign-out and bootstrap admin events.
	Auth string
}

// Logger records audit events to MongoDB (via audit.Store) and to zap.
// A nil *Logger is a valid no-op logger.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to the category's mode. Unknown
// categories and empty modes are treated as "all".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	if event.Category == audit.CategoryAuth {
		setting = l.config.Auth
	}
	setting = strings.ToLower(strings.TrimSpace(setting))
	if setting == "" {
		setting = ModeAll
	}
	if setting == ModeOff {
		return
	}

	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func fromRequest(r *http.Request, category, eventType, actor string) audit.Event {
	e := audit.Event{Category: category, EventType: eventType, Actor: actor, Success: true}
	if r != nil {
		e.IP = ratelimit.ClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

// --- Authentication Events ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, fromRequest(r, audit.CategoryAuth, audit.EventLoginSuccess, email))
}

// LoginFailed records a rejected sign-in. reason is logged, never returned
// to the client.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginFailed, email)
	e.Success = false
	e.FailureReason = reason
	l.Log(ctx, e)
}

func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, email string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginFailedRateLimit, email)
	e.Success = false
	e.FailureReason = "rate limited"
	l.Log(ctx, e)
}

func (l *Logger) Logout(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, fromRequest(r, audit.CategoryAuth, audit.EventLogout, email))
}

func (l *Logger) BootstrapAdminEnsured(ctx context.Context, email, action string) {
	e := fromRequest(nil, audit.CategoryAuth, audit.EventBootstrapAdminEnsured, email)
	e.Details = map[string]string{"action": action}
	l.Log(ctx, e)
}
