// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/eventdesk/internal/app/system/auditlog"
	"github.com/dalemusser/eventdesk/internal/app/system/mailer"
	"github.com/dalemusser/eventdesk/internal/app/system/proofurl"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for EventDesk.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: EVENTDESK_MONGO_URI, EVENTDESK_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "eventdesk", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "eventdesk-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "12h", Desc: "Session cookie lifetime"},

	// Payment proof storage
	{Name: "storage_type", Default: "local", Desc: "Payment proof backend: 'local' or 's3'"},
	{Name: "storage_local_url", Default: "/uploads", Desc: "Public base URL for locally stored proofs"},
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket holding payment screenshots"},
	{Name: "storage_s3_prefix", Default: "", Desc: "S3 key prefix"},
	{Name: "storage_s3_expires", Default: "15m", Desc: "Presigned URL lifetime"},
	{Name: "storage_cache_ttl", Default: "5m", Desc: "How long resolved proof URLs are reused"},

	// Email
	{Name: "mail_provider", Default: "log", Desc: "Email provider: 'smtp', 'resend' or 'log'"},
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_resend_api_key", Default: "", Desc: "Resend API key"},
	{Name: "mail_from", Default: "noreply@eventdesk.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "EventDesk", Desc: "From display name"},
	{Name: "mail_template_ttl", Default: "1m", Desc: "Email template cache lifetime"},

	{Name: "site_name", Default: "EventDesk", Desc: "Site name used in approval emails"},
	{Name: "export_timezone", Default: "Asia/Kolkata", Desc: "IANA timezone for CSV export dates"},

	// Tracing
	{Name: "tracing_enabled", Default: false, Desc: "Enable OpenTelemetry tracing"},
	{Name: "tracing_exporter", Default: "stdout", Desc: "Trace exporter: 'stdout', 'otlp' or 'none'"},
	{Name: "tracing_endpoint", Default: "localhost:4317", Desc: "OTLP collector endpoint"},
	{Name: "tracing_sample_rate", Default: "1.0", Desc: "Fraction of root traces sampled"},

	// Audit trail
	{Name: "audit_log_auth", Default: "all", Desc: "Sign-in audit destination: 'all', 'db', 'log' or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "How long audit events are kept (0 keeps them forever)"},

	// Bootstrap admin
	{Name: "bootstrap_admin_email", Default: "", Desc: "Superadmin email created or promoted on startup"},
	{Name: "bootstrap_admin_password", Default: "", Desc: "Password for a newly created bootstrap superadmin"},
}

// LoadConfig loads WAFFLE core config and EventDesk's app config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// EVENTDESK_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "EVENTDESK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	sampleRate, err := strconv.ParseFloat(strings.TrimSpace(appValues.String("tracing_sample_rate")), 64)
	if err != nil {
		return nil, AppConfig{}, fmt.Errorf("tracing_sample_rate: %w", err)
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 12*time.Hour),

		StorageType:      appValues.String("storage_type"),
		StorageLocalURL:  appValues.String("storage_local_url"),
		StorageS3Region:  appValues.String("storage_s3_region"),
		StorageS3Bucket:  appValues.String("storage_s3_bucket"),
		StorageS3Prefix:  appValues.String("storage_s3_prefix"),
		StorageS3Expires: appValues.Duration("storage_s3_expires", 15*time.Minute),
		StorageCacheTTL:  appValues.Duration("storage_cache_ttl", 5*time.Minute),

		MailProvider:     appValues.String("mail_provider"),
		MailSMTPHost:     appValues.String("mail_smtp_host"),
		MailSMTPPort:     appValues.Int("mail_smtp_port"),
		MailSMTPUser:     appValues.String("mail_smtp_user"),
		MailSMTPPass:     appValues.String("mail_smtp_pass"),
		MailResendAPIKey: appValues.String("mail_resend_api_key"),
		MailFrom:         appValues.String("mail_from"),
		MailFromName:     appValues.String("mail_from_name"),
		MailTemplateTTL:  appValues.Duration("mail_template_ttl", time.Minute),

		SiteName:       appValues.String("site_name"),
		ExportTimezone: appValues.String("export_timezone"),

		TracingEnabled:    appValues.Bool("tracing_enabled"),
		TracingExporter:   appValues.String("tracing_exporter"),
		TracingEndpoint:   appValues.String("tracing_endpoint"),
		TracingSampleRate: sampleRate,

		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),

		BootstrapAdminEmail:    appValues.String("bootstrap_admin_email"),
		BootstrapAdminPassword: appValues.String("bootstrap_admin_password"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation so that bad
// settings abort startup before any backend is contacted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database is required")
	}

	switch strings.ToLower(appCfg.StorageType) {
	case "", proofurl.BackendLocal:
	case proofurl.BackendS3:
		if appCfg.StorageS3Bucket == "" {
			return fmt.Errorf("storage_type s3 requires storage_s3_bucket")
		}
	default:
		return fmt.Errorf("unknown storage_type %q", appCfg.StorageType)
	}

	switch strings.ToLower(appCfg.MailProvider) {
	case "", mailer.ProviderLog, mailer.ProviderSMTP:
	case mailer.ProviderResend:
		if appCfg.MailResendAPIKey == "" {
			return fmt.Errorf("mail_provider resend requires mail_resend_api_key")
		}
	default:
		return fmt.Errorf("unknown mail_provider %q", appCfg.MailProvider)
	}

	if !auditlog.ValidMode(appCfg.AuditLogAuth) {
		return fmt.Errorf("unknown audit_log_auth %q", appCfg.AuditLogAuth)
	}
	if appCfg.AuditRetention < 0 {
		return fmt.Errorf("audit_retention must not be negative")
	}

	if _, err := time.LoadLocation(appCfg.ExportTimezone); err != nil {
		return fmt.Errorf("invalid export_timezone %q: %w", appCfg.ExportTimezone, err)
	}

	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters in production")
	}
	return nil
}
