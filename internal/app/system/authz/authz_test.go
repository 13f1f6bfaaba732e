package authz_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"github.com/dalemusser/studyplanet/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// stubFetcher returns a fixed role (or error) and records the looked-up id.
type stubFetcher struct {
	role string
	err  error
	got  primitive.ObjectID
}

func (s *stubFetcher) FetchRole(_ context.Context, id primitive.ObjectID) (string, error) {
	s.got = id
	return s.role, s.err
}

func gate(f authz.RoleFetcher, roles ...string) http.Handler {
	return authz.RequireRole(f, zap.NewNop(), roles...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func withIdentity(role string) (*http.Request, primitive.ObjectID) {
	id := primitive.NewObjectID()
	req := httptest.NewRequest("GET", "/x", nil)
	return auth.WithTestIdentity(req, &auth.Identity{ID: id, Role: role}), id
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		stored     string
		fetchErr   error
		allowed    []string
		wantStatus int
	}{
		{"matching role", "Instructor", nil, []string{"Instructor"}, http.StatusOK},
		{"any of several", "Admin", nil, []string{"Instructor", "Admin"}, http.StatusOK},
		{"case insensitive", "student", nil, []string{"Student"}, http.StatusOK},
		{"allowed list padded", "Admin", nil, []string{" admin "}, http.StatusOK},
		{"mismatch", "Student", nil, []string{"Instructor"}, http.StatusForbidden},
		{"lookup error fails closed", "Instructor", errors.New("db down"), []string{"Instructor"}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &stubFetcher{role: tt.stored, err: tt.fetchErr}
			req, id := withIdentity("Instructor")
			rec := httptest.NewRecorder()

			gate(f, tt.allowed...).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if f.got != id {
				t.Errorf("fetcher called with %s, want %s", f.got.Hex(), id.Hex())
			}
		})
	}
}

func TestRequireRole_StaleTokenRole(t *testing.T) {
	// The token says Instructor but the stored user was demoted.
	f := &stubFetcher{role: "Student"}
	req, _ := withIdentity("Instructor")
	rec := httptest.NewRecorder()

	gate(f, "Instructor").ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRequireRole_NoIdentity(t *testing.T) {
	f := &stubFetcher{role: "Admin"}
	rec := httptest.NewRecorder()

	gate(f, "Admin").ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestHasAnyRole(t *testing.T) {
	if !authz.HasAnyRole("Instructor", "student", "instructor") {
		t.Error("expected match")
	}
	if authz.HasAnyRole("Admin", "Student") {
		t.Error("expected no match")
	}
	if authz.HasAnyRole("", "Student") {
		t.Error("empty role should never match")
	}
}
