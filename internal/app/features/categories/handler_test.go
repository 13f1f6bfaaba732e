package categories_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/studyplanet/internal/app/features/categories"
	uierrors "github.com/dalemusser/studyplanet/internal/app/features/errors"
	userstore "github.com/dalemusser/studyplanet/internal/app/store/users"
	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"github.com/dalemusser/studyplanet/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*categories.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return categories.NewHandler(db, uierrors.NewErrorLogger(logger, false), logger), testutil.NewFixtures(t, db)
}

func TestHandleCreate_JSONAndDuplicate(t *testing.T) {
	h, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/course/createCategory",
		map[string]string{"name": "Web Development", "description": "HTML and CSS"})
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, req)
	rec.AssertStatus(t, http.StatusOK)

	var cat struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}
	rec.DecodeData(t, &cat)
	if cat.Name != "Web Development" || cat.ID == "" {
		t.Errorf("category = %+v", cat)
	}

	req = testutil.NewJSONRequest(t, http.MethodPost, "/course/createCategory",
		map[string]string{"name": "  web   development "})
	rec = testutil.NewRecorder()
	h.HandleCreate(rec, req)
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Category already exists")
}

func TestHandleCreate_Validation(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"blank json name", testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]string{"name": "  "})},
		{"form without name", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(url.Values{"description": {"x"}}.Encode()))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return r
		}()},
		{"malformed json", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
			r.Header.Set("Content-Type", "application/json")
			return r
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			h.HandleCreate(rec, tt.req)
			rec.AssertStatus(t, http.StatusBadRequest)
		})
	}
}

func TestHandleList_SortedByName(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateCategory(ctx, "Zoology")
	fx.CreateCategory(ctx, "algorithms")

	rec := testutil.NewRecorder()
	h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/course/showAllCategories", nil))
	rec.AssertStatus(t, http.StatusOK)

	var cats []struct {
		Name string `json:"name"`
	}
	rec.DecodeData(t, &cats)
	if len(cats) != 2 || cats[0].Name != "algorithms" || cats[1].Name != "Zoology" {
		t.Errorf("categories = %+v", cats)
	}
}

func TestRoutes_CreateRequiresAdmin(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateAdmin(ctx, "admin@example.com")
	inst := fx.CreateInstructor(ctx, "inst@example.com")

	const secret = "categories-test-secret"
	r := chi.NewRouter()
	r.Route("/course", categories.Routes(h, auth.NewVerifier(secret, nil), userstore.NewFetcher(fx.DB())))
	issuer := auth.NewIssuer(secret, time.Hour)

	post := func(bearer string) int {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/course/createCategory", map[string]string{"name": "Go"})
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	instTok, _, _ := issuer.Issue(*testutil.IdentityFor(inst))
	adminTok, _, _ := issuer.Issue(*testutil.IdentityFor(admin))

	if code := post(""); code != http.StatusUnauthorized {
		t.Errorf("anonymous = %d, want 401", code)
	}
	if code := post(instTok); code != http.StatusForbidden {
		t.Errorf("instructor = %d, want 403", code)
	}
	if code := post(adminTok); code != http.StatusOK {
		t.Errorf("admin = %d, want 200", code)
	}
}
