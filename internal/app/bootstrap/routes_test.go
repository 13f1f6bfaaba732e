package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/studyplanet/internal/app/payments"
	auditstore "github.com/dalemusser/studyplanet/internal/app/store/audit"
	"github.com/dalemusser/studyplanet/internal/testutil"
	"github.com/dalemusser/waffle/config"
)

const routesSecret = "bootstrap-routes-secret"

func newTestServer(t *testing.T) (*httptest.Server, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db, Services: &Services{}}
	if err := EnsureSchema(ctx, nil, AppConfig{}, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	cfg := validConfig()
	cfg.JWTSecret = routesSecret
	cfg.JWTTTL = time.Hour
	cfg.CookieHashKey = strings.Repeat("c", 32)
	cfg.LoginRateRPS = 100
	cfg.LoginRateBurst = 100
	if err := Startup(ctx, &config.CoreConfig{Env: "test"}, cfg, deps, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}

	h, err := BuildHandler(&config.CoreConfig{Env: "test"}, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, testutil.NewFixtures(t, db)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, method, url, token, body string) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp.StatusCode, env
}

func TestStartup_DisabledProviders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db, Services: &Services{}}
	if err := Startup(ctx, &config.CoreConfig{}, validConfig(), deps, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	if deps.Services.Media == nil || deps.Services.Media.Enabled() {
		t.Error("expected a disabled media ingestor")
	}
	if _, ok := deps.Services.Payments.(payments.Disabled); !ok {
		t.Errorf("payments = %T, want payments.Disabled", deps.Services.Payments)
	}
	if deps.Services.Mailer == nil {
		t.Error("expected a mailer")
	}
}

func TestBuildHandler_EndToEnd(t *testing.T) {
	srv, fx := newTestServer(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx.CreateAdmin(ctx, "admin@example.com")
	base := srv.URL + "/api/v1"

	if code, _ := do(t, http.MethodGet, srv.URL+"/health", "", ""); code != http.StatusOK {
		t.Errorf("health = %d, want 200", code)
	}

	code, env := do(t, http.MethodPost, base+"/auth/login", "",
		`{"email":"admin@example.com","password":"`+testutil.DefaultPassword+`"}`)
	if code != http.StatusOK {
		t.Fatalf("login = %d (%s)", code, env.Message)
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &login); err != nil || login.Token == "" {
		t.Fatalf("login data = %s", env.Data)
	}

	if code, _ := do(t, http.MethodPost, base+"/course/createCategory", "", `{"name":"Cybersecurity"}`); code != http.StatusUnauthorized {
		t.Errorf("anonymous createCategory = %d, want 401", code)
	}
	if code, env := do(t, http.MethodPost, base+"/course/createCategory", login.Token, `{"name":"Cybersecurity"}`); code != http.StatusOK {
		t.Errorf("admin createCategory = %d (%s)", code, env.Message)
	}

	code, env = do(t, http.MethodGet, base+"/course/showAllCategories", "", "")
	if code != http.StatusOK || !strings.Contains(string(env.Data), "Cybersecurity") {
		t.Errorf("showAllCategories = %d %s", code, env.Data)
	}

	if code, _ := do(t, http.MethodGet, base+"/course/getAllCourses", "", ""); code != http.StatusOK {
		t.Errorf("getAllCourses = %d, want 200", code)
	}

	code, env = do(t, http.MethodPost, base+"/payment/capturePayment", "", "")
	if code != http.StatusServiceUnavailable || env.Message != payments.DisabledMessage {
		t.Errorf("capturePayment = %d %q", code, env.Message)
	}

	if code, _ := do(t, http.MethodGet, base+"/nope", "", ""); code != http.StatusNotFound {
		t.Errorf("unknown route = %d, want 404", code)
	}

	if code, _ := do(t, http.MethodPost, base+"/auth/logout", login.Token, ""); code != http.StatusOK {
		t.Errorf("logout = %d, want 200", code)
	}

	audits := auditstore.New(fx.DB())
	for _, ev := range []string{auditstore.EventLoginSuccess, auditstore.EventCategoryCreated, auditstore.EventLogout} {
		n, err := audits.Count(ctx, auditstore.QueryFilter{EventType: ev})
		if err != nil || n != 1 {
			t.Errorf("audit %s count = %d (%v), want 1", ev, n, err)
		}
	}
}
