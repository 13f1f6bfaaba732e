// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/studyplanet/internal/app/media"
	"github.com/dalemusser/studyplanet/internal/app/payments"
	"github.com/dalemusser/studyplanet/internal/app/system/mailer"
	"github.com/dalemusser/studyplanet/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. Each
// provider is chosen here exactly once: the real client when its
// credentials are configured, otherwise its disabled variant.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n), zap.Any("timeouts", timeouts.Current()))
	}

	svc := deps.Services
	if svc == nil {
		return errors.New("startup: services not allocated")
	}

	ing, closeFn, err := buildMedia(ctx, appCfg, logger)
	if err != nil {
		return err
	}
	svc.Media = ing
	if closeFn != nil {
		svc.closers = append(svc.closers, closeFn)
	}

	svc.Mailer = buildMailer(appCfg, logger)

	pay, err := buildPayments(appCfg, deps, svc.Mailer, logger)
	if err != nil {
		return err
	}
	svc.Payments = pay

	if appCfg.AdminEmail != "" && appCfg.AdminPassword != "" {
		created, err := EnsureAdmin(ctx, deps.MongoDatabase, AdminSpec{
			Email:     appCfg.AdminEmail,
			Password:  appCfg.AdminPassword,
			FirstName: appCfg.AdminFirstName,
			LastName:  appCfg.AdminLastName,
		}, logger)
		if err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		if created {
			logger.Info("admin account created", zap.String("email", appCfg.AdminEmail))
		}
	}
	return nil
}

// buildMedia returns the configured ingestor. Missing credentials yield the
// disabled ingestor; a configured backend that fails to initialize is fatal.
func buildMedia(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (*media.Ingestor, func() error, error) {
	cfg := media.Config{
		Folder:    appCfg.MediaFolder,
		MaxHeight: appCfg.MediaMaxHeight,
		Quality:   appCfg.MediaQuality,
	}

	var (
		up      media.Uploader
		closeFn func() error
		err     error
	)
	switch appCfg.MediaProvider {
	case "gcs":
		var g *media.GCS
		g, err = media.NewGCS(ctx, appCfg.GCSBucket, appCfg.GCSPublicBaseURL, appCfg.GCSCredentialsFile)
		if err == nil {
			up, closeFn = g, g.Close
		}
	case "cloudinary", "":
		var c *media.Cloudinary
		c, err = media.NewCloudinary(appCfg.CloudinaryCloudName, appCfg.CloudinaryAPIKey, appCfg.CloudinaryAPISecret)
		if err == nil {
			up = c
		}
	}

	switch {
	case errors.Is(err, media.ErrServiceNotConfigured):
		logger.Warn("media backend not configured; uploads are disabled", zap.String("provider", appCfg.MediaProvider))
		return media.Disabled(logger), nil, nil
	case err != nil:
		return nil, nil, fmt.Errorf("media backend %s: %w", appCfg.MediaProvider, err)
	}

	logger.Info("media backend ready", zap.String("provider", up.Name()), zap.String("folder", appCfg.MediaFolder))
	return media.New(up, cfg, logger), closeFn, nil
}

func buildMailer(appCfg AppConfig, logger *zap.Logger) mailer.Sender {
	if appCfg.SMTPHost == "" {
		logger.Info("smtp not configured; emails will be logged")
		return mailer.LogSender{Log: logger}
	}
	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     appCfg.SMTPHost,
		Port:     appCfg.SMTPPort,
		Username: appCfg.SMTPUser,
		Password: appCfg.SMTPPass,
		From:     appCfg.MailFrom,
	})
}

func buildPayments(appCfg AppConfig, deps DBDeps, mail mailer.Sender, logger *zap.Logger) (payments.Adapter, error) {
	if !appCfg.PaymentsEnabled() {
		logger.Warn("payment provider not configured; payment endpoints return 503")
		return payments.Disabled{}, nil
	}
	s, err := payments.NewStripe(payments.StripeConfig{
		PublishableKey: appCfg.PaymentKey,
		SecretKey:      appCfg.PaymentSecret,
		WebhookSecret:  appCfg.PaymentWebhookSecret,
		SuccessURL:     appCfg.PaymentSuccessURL,
		CancelURL:      appCfg.PaymentCancelURL,
		Currency:       appCfg.PaymentCurrency,
		SiteName:       appCfg.SiteName,
	}, deps.MongoDatabase, mail, logger)
	if err != nil {
		return nil, fmt.Errorf("payment adapter: %w", err)
	}
	logger.Info("payment provider ready", zap.String("provider", "stripe"), zap.String("currency", appCfg.PaymentCurrency))
	return s, nil
}
