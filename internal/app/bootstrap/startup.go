// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	adminuserstore "github.com/dalemusser/eventdesk/internal/app/store/adminusers"
	"github.com/dalemusser/eventdesk/internal/app/store/audit"
	"github.com/dalemusser/eventdesk/internal/app/system/auditlog"
	"github.com/dalemusser/eventdesk/internal/app/system/mailer"
	"github.com/dalemusser/eventdesk/internal/app/system/proofurl"
	"github.com/dalemusser/eventdesk/internal/app/system/timeouts"
	"github.com/dalemusser/eventdesk/internal/app/system/tracing"
	"github.com/dalemusser/eventdesk/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// services holds what startup builds for buildHandler and shutdown. A zero
// value is usable: every field is optional.
type services struct {
	tracing *tracing.Provider
	mail    *mailer.Mailer
	proofs  *proofurl.Cached
	loc     *time.Location
	audit   *auditlog.Logger
	prune   *workers.AuditPrune
}

// startup runs one-time initialization after the DB and schema are ready
// and before the HTTP handler is built.
func (svc *services) startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		Enabled:      appCfg.TracingEnabled,
		Exporter:     appCfg.TracingExporter,
		OTLPEndpoint: appCfg.TracingEndpoint,
		SampleRate:   appCfg.TracingSampleRate,
	})
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	mail, err := mailer.New(mailer.Config{
		Provider:     appCfg.MailProvider,
		SMTPHost:     appCfg.MailSMTPHost,
		SMTPPort:     appCfg.MailSMTPPort,
		SMTPUser:     appCfg.MailSMTPUser,
		SMTPPass:     appCfg.MailSMTPPass,
		ResendAPIKey: appCfg.MailResendAPIKey,
		From:         appCfg.MailFrom,
		FromName:     appCfg.MailFromName,
	}, logger)
	if err != nil {
		return err
	}

	proofs, err := proofurl.New(ctx, proofurl.Config{
		Backend:      appCfg.StorageType,
		LocalBaseURL: appCfg.StorageLocalURL,
		S3Region:     appCfg.StorageS3Region,
		S3Bucket:     appCfg.StorageS3Bucket,
		S3Prefix:     appCfg.StorageS3Prefix,
		S3Expires:    appCfg.StorageS3Expires,
		CacheTTL:     appCfg.StorageCacheTTL,
	})
	if err != nil {
		return fmt.Errorf("payment proof storage: %w", err)
	}

	loc, err := time.LoadLocation(appCfg.ExportTimezone)
	if err != nil {
		return fmt.Errorf("export timezone: %w", err)
	}

	auditStore := audit.New(deps.MongoDatabase)
	auditLog := auditlog.New(auditStore, logger, auditlog.Config{Auth: appCfg.AuditLogAuth})

	var prune *workers.AuditPrune
	if appCfg.AuditRetention > 0 {
		prune = workers.NewAuditPrune(auditStore, logger, time.Hour, appCfg.AuditRetention)
		prune.Start()
	}

	*svc = services{tracing: tp, mail: mail, proofs: proofs, loc: loc, audit: auditLog, prune: prune}
	logger.Info("services ready",
		zap.Bool("tracing", tp.Enabled()),
		zap.String("mail_provider", mail.Provider()),
		zap.String("storage", appCfg.StorageType),
		zap.String("export_timezone", loc.String()))

	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()
	return ensureBootstrapAdmin(ctx, deps, appCfg.BootstrapAdminEmail, appCfg.BootstrapAdminPassword, auditLog, logger)
}

// ensureBootstrapAdmin makes sure email belongs to an active superadmin.
// An existing account is promoted and re-enabled; a new one needs password.
func ensureBootstrapAdmin(ctx context.Context, deps DBDeps, email, password string, auditLog *auditlog.Logger, logger *zap.Logger) error {
	if email == "" {
		return nil
	}
	store := adminuserstore.New(deps.MongoDatabase)

	u, err := store.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role != adminuserstore.RoleSuperAdmin {
			if err := store.SetRole(ctx, email, adminuserstore.RoleSuperAdmin); err != nil {
				return fmt.Errorf("promote bootstrap admin: %w", err)
			}
			logger.Info("promoted bootstrap admin", zap.String("email", u.Email))
			auditLog.BootstrapAdminEnsured(ctx, u.Email, "promoted")
		}
		if !u.IsActive {
			if err := store.SetActive(ctx, email, true); err != nil {
				return fmt.Errorf("activate bootstrap admin: %w", err)
			}
			auditLog.BootstrapAdminEnsured(ctx, u.Email, "reactivated")
		}
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		if password == "" {
			return errors.New("bootstrap_admin_password is required to create the bootstrap admin")
		}
		u, err := store.Create(ctx, email, "Administrator", password, adminuserstore.RoleSuperAdmin)
		if err != nil {
			return fmt.Errorf("create bootstrap admin: %w", err)
		}
		logger.Info("created bootstrap admin", zap.String("email", u.Email))
		auditLog.BootstrapAdminEnsured(ctx, u.Email, "created")
		return nil
	default:
		return fmt.Errorf("lookup bootstrap admin: %w", err)
	}
}
