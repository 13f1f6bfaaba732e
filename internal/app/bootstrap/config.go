// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/studyplanet/internal/app/media"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for StudyPlanet.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: STUDYPLANET_MONGO_URI, STUDYPLANET_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "", Desc: "MongoDB connection URI (required)"},
	{Name: "mongo_database", Default: "studyplanet", Desc: "MongoDB database name"},

	{Name: "jwt_secret", Default: "", Desc: "HS256 secret for signing and verifying tokens"},
	{Name: "jwt_ttl", Default: "24h", Desc: "Token lifetime (e.g., 24h, 30m)"},
	{Name: "cookie_hash_key", Default: "", Desc: "Token cookie signing key, at least 32 bytes (blank disables the cookie)"},
	{Name: "cookie_block_key", Default: "", Desc: "Token cookie encryption key, 16/24/32 bytes (optional)"},

	// Media
	{Name: "media_provider", Default: "cloudinary", Desc: "Media backend: 'cloudinary' or 'gcs'"},
	{Name: "cloudinary_cloud_name", Default: "", Desc: "Cloudinary cloud name"},
	{Name: "cloudinary_api_key", Default: "", Desc: "Cloudinary API key"},
	{Name: "cloudinary_api_secret", Default: "", Desc: "Cloudinary API secret"},
	{Name: "gcs_bucket", Default: "", Desc: "Google Cloud Storage bucket"},
	{Name: "gcs_public_base_url", Default: "", Desc: "Public base URL for GCS objects (blank uses storage.googleapis.com)"},
	{Name: "gcs_credentials_file", Default: "", Desc: "Service account JSON (blank uses application default credentials)"},
	{Name: "media_folder", Default: media.DefaultFolder, Desc: "Folder uploads are stored under"},
	{Name: "media_max_height", Default: 0, Desc: "Resize images to this height (0 keeps original)"},
	{Name: "media_quality", Default: "", Desc: "Image quality hint passed to the backend (e.g., auto, 80)"},

	// Payments
	{Name: "payment_key", Default: "", Desc: "Payment provider publishable key"},
	{Name: "payment_secret", Default: "", Desc: "Payment provider secret key"},
	{Name: "payment_webhook_secret", Default: "", Desc: "Payment provider webhook signing secret"},
	{Name: "payment_success_url", Default: "http://localhost:3000/dashboard/enrolled-courses", Desc: "Redirect after a successful checkout"},
	{Name: "payment_cancel_url", Default: "http://localhost:3000/dashboard/cart", Desc: "Redirect after a cancelled checkout"},
	{Name: "payment_currency", Default: "inr", Desc: "ISO currency code for checkout"},

	// Email
	{Name: "smtp_host", Default: "", Desc: "SMTP server host (blank logs emails instead of sending)"},
	{Name: "smtp_port", Default: 587, Desc: "SMTP server port"},
	{Name: "smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@studyplanet.local", Desc: "From email address"},
	{Name: "site_name", Default: "StudyPlanet", Desc: "Display name used in emails"},

	{Name: "cors_allowed_origins", Default: "http://localhost:3000", Desc: "Comma-separated origins allowed to call the API"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Admin account ensured at startup (requires admin_password)"},
	{Name: "admin_password", Default: "", Desc: "Password for a newly created admin"},
	{Name: "admin_first_name", Default: "Admin", Desc: "First name for a newly created admin"},
	{Name: "admin_last_name", Default: "User", Desc: "Last name for a newly created admin"},

	{Name: "login_rate_rps", Default: "0.2", Desc: "Sustained login attempts per second per IP"},
	{Name: "login_rate_burst", Default: 10, Desc: "Login attempts allowed in a burst per IP"},
	{Name: "trust_proxy_headers", Default: false, Desc: "Use X-Forwarded-For/X-Real-IP as the client address (only behind a trusted proxy)"},

	// Audit logging
	{Name: "audit_log_auth", Default: "all", Desc: "Auth events: all, db, log, off"},
	{Name: "audit_log_admin", Default: "all", Desc: "Course and category changes: all, db, log, off"},
	{Name: "audit_log_payment", Default: "all", Desc: "Checkout and enrollment events: all, db, log, off"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STUDYPLANET", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	rps, err := strconv.ParseFloat(strings.TrimSpace(appValues.String("login_rate_rps")), 64)
	if err != nil {
		return nil, AppConfig{}, fmt.Errorf("login_rate_rps: %w", err)
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		JWTSecret:      appValues.String("jwt_secret"),
		JWTTTL:         appValues.Duration("jwt_ttl", 24*time.Hour),
		CookieHashKey:  appValues.String("cookie_hash_key"),
		CookieBlockKey: appValues.String("cookie_block_key"),

		MediaProvider:       strings.ToLower(strings.TrimSpace(appValues.String("media_provider"))),
		CloudinaryCloudName: appValues.String("cloudinary_cloud_name"),
		CloudinaryAPIKey:    appValues.String("cloudinary_api_key"),
		CloudinaryAPISecret: appValues.String("cloudinary_api_secret"),
		GCSBucket:           appValues.String("gcs_bucket"),
		GCSPublicBaseURL:    appValues.String("gcs_public_base_url"),
		GCSCredentialsFile:  appValues.String("gcs_credentials_file"),
		MediaFolder:         appValues.String("media_folder"),
		MediaMaxHeight:      appValues.Int("media_max_height"),
		MediaQuality:        appValues.String("media_quality"),

		PaymentKey:           appValues.String("payment_key"),
		PaymentSecret:        appValues.String("payment_secret"),
		PaymentWebhookSecret: appValues.String("payment_webhook_secret"),
		PaymentSuccessURL:    appValues.String("payment_success_url"),
		PaymentCancelURL:     appValues.String("payment_cancel_url"),
		PaymentCurrency:      strings.ToLower(appValues.String("payment_currency")),

		SMTPHost: appValues.String("smtp_host"),
		SMTPPort: appValues.Int("smtp_port"),
		SMTPUser: appValues.String("smtp_user"),
		SMTPPass: appValues.String("smtp_pass"),
		MailFrom: appValues.String("mail_from"),
		SiteName: appValues.String("site_name"),

		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),

		AdminEmail:     appValues.String("admin_email"),
		AdminPassword:  appValues.String("admin_password"),
		AdminFirstName: appValues.String("admin_first_name"),
		AdminLastName:  appValues.String("admin_last_name"),

		LoginRateRPS:   rps,
		LoginRateBurst: appValues.Int("login_rate_burst"),

		TrustProxyHeaders: appValues.Bool("trust_proxy_headers"),

		AuditLogAuth:    appValues.String("audit_log_auth"),
		AuditLogAdmin:   appValues.String("audit_log_admin"),
		AuditLogPayment: appValues.String("audit_log_payment"),
	}

	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// A missing or malformed MongoDB URI aborts startup. Missing provider
// credentials do not: those features run in their disabled variant.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if strings.TrimSpace(appCfg.MongoURI) == "" {
		return fmt.Errorf("mongo_uri is required")
	}
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database is required")
	}

	switch appCfg.MediaProvider {
	case "", "cloudinary", "gcs":
	default:
		return fmt.Errorf("media_provider must be 'cloudinary' or 'gcs', got %q", appCfg.MediaProvider)
	}

	if appCfg.CookieHashKey != "" && len(appCfg.CookieHashKey) < 32 {
		return fmt.Errorf("cookie_hash_key must be at least 32 bytes")
	}
	if appCfg.LoginRateRPS <= 0 || appCfg.LoginRateBurst <= 0 {
		return fmt.Errorf("login_rate_rps and login_rate_burst must be positive")
	}

	for key, mode := range map[string]string{
		"audit_log_auth":    appCfg.AuditLogAuth,
		"audit_log_admin":   appCfg.AuditLogAdmin,
		"audit_log_payment": appCfg.AuditLogPayment,
	} {
		switch mode {
		case "", "all", "db", "log", "off":
		default:
			return fmt.Errorf("%s must be one of all, db, log, off; got %q", key, mode)
		}
	}

	if appCfg.JWTSecret == "" {
		logger.Warn("jwt_secret is not set; authenticated requests will fail until it is configured")
	}
	if (appCfg.PaymentKey == "") != (appCfg.PaymentSecret == "") {
		logger.Warn("only one of payment_key/payment_secret is set; payments stay disabled")
	}
	if appCfg.PaymentsEnabled() && appCfg.PaymentWebhookSecret == "" {
		logger.Warn("payment_webhook_secret is not set; webhook events will be rejected")
	}
	return nil
}
