// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (STUDYPLANET_*), config
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers ports, TLS, log level and the runtime environment; everything
// specific to the marketplace lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string
	MongoDatabase string

	// Credential verifier. An empty JWTSecret keeps the process running but
	// every authenticated request fails as misconfigured.
	JWTSecret      string
	JWTTTL         time.Duration
	CookieHashKey  string // blank disables the token cookie
	CookieBlockKey string // optional; enables cookie encryption

	// Media ingestor
	MediaProvider       string // "cloudinary", "gcs" or blank (disabled)
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	GCSBucket           string
	GCSPublicBaseURL    string
	GCSCredentialsFile  string
	MediaFolder         string
	MediaMaxHeight      int
	MediaQuality        string

	// Payment gateway. Disabled unless both key and secret are set.
	PaymentKey           string
	PaymentSecret        string
	PaymentWebhookSecret string
	PaymentSuccessURL    string
	PaymentCancelURL     string
	PaymentCurrency      string

	// Receipt email. Blank SMTPHost logs emails instead of sending them.
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
	SiteName string

	CORSAllowedOrigins []string

	// Admin account ensured at startup when email and password are set.
	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string

	LoginRateRPS   float64
	LoginRateBurst int

	// TrustProxyHeaders takes the client address from X-Forwarded-For /
	// X-Real-IP. Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool

	// Audit logging: "all", "db", "log" or "off" per category
	AuditLogAuth    string
	AuditLogAdmin   string
	AuditLogPayment string
}

// PaymentsEnabled reports whether provider credentials are configured.
func (c AppConfig) PaymentsEnabled() bool {
	return c.PaymentKey != "" && c.PaymentSecret != ""
}
