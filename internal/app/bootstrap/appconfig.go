// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for EventDesk.
//
// WAFFLE's CoreConfig covers ports, TLS, logging and CORS. Everything
// specific to the registration back office lives here and is passed to
// each lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies
	SessionName   string        // Cookie name (default: eventdesk-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Payment proof storage
	StorageType      string // "local" or "s3"
	StorageLocalURL  string // Public base URL for local proof files
	StorageS3Region  string
	StorageS3Bucket  string
	StorageS3Prefix  string
	StorageS3Expires time.Duration // Presigned URL lifetime
	StorageCacheTTL  time.Duration // How long resolved URLs are reused

	// Email configuration
	MailProvider     string // "smtp", "resend" or "log"
	MailSMTPHost     string
	MailSMTPPort     int
	MailSMTPUser     string
	MailSMTPPass     string
	MailResendAPIKey string
	MailFrom         string
	MailFromName     string
	MailTemplateTTL  time.Duration // Email template cache lifetime

	SiteName string // Shown in approval emails

	// ExportTimezone is the IANA zone CSV dates are rendered in.
	ExportTimezone string

	// Tracing
	TracingEnabled    bool
	TracingExporter   string
	TracingEndpoint   string
	TracingSampleRate float64

	// Sign-in audit trail
	AuditLogAuth   string        // "all", "db", "log" or "off"
	AuditRetention time.Duration // Zero keeps events forever

	// Bootstrap superadmin, created or promoted on startup when set.
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}
