package bootstrap

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:       "mongodb://localhost:27017",
		MongoDatabase:  "studyplanet",
		MediaProvider:  "cloudinary",
		LoginRateRPS:   0.2,
		LoginRateBurst: 10,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"valid gcs", func(c *AppConfig) { c.MediaProvider = "gcs" }, ""},
		{"missing uri", func(c *AppConfig) { c.MongoURI = "" }, "mongo_uri is required"},
		{"missing database", func(c *AppConfig) { c.MongoDatabase = " " }, "mongo_database"},
		{"unknown media provider", func(c *AppConfig) { c.MediaProvider = "s3" }, "media_provider"},
		{"short cookie key", func(c *AppConfig) { c.CookieHashKey = "short" }, "cookie_hash_key"},
		{"zero burst", func(c *AppConfig) { c.LoginRateBurst = 0 }, "login_rate"},
		{"audit off", func(c *AppConfig) { c.AuditLogPayment = "off" }, ""},
		{"unknown audit mode", func(c *AppConfig) { c.AuditLogAuth = "verbose" }, "audit_log_auth"},
		{"missing jwt secret only warns", func(c *AppConfig) { c.JWTSecret = "" }, ""},
		{"half payment config only warns", func(c *AppConfig) { c.PaymentKey = "pk" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(nil, cfg, testLogger())
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("unexpected error: %v", err)
			case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPaymentsEnabled(t *testing.T) {
	cfg := validConfig()
	if cfg.PaymentsEnabled() {
		t.Error("no credentials should mean disabled")
	}
	cfg.PaymentKey = "pk_test"
	if cfg.PaymentsEnabled() {
		t.Error("key without secret should mean disabled")
	}
	cfg.PaymentSecret = "sk_test"
	if !cfg.PaymentsEnabled() {
		t.Error("key and secret should enable payments")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" http://a.test, ,http://b.test ,")
	if diff := cmp.Diff([]string{"http://a.test", "http://b.test"}, got); diff != "" {
		t.Errorf("splitList (-want +got):\n%s", diff)
	}
	if splitList("") != nil {
		t.Error("empty input should yield nil")
	}
}
