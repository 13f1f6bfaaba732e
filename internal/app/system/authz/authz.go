// internal/app/system/authz/authz.go
package authz

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RoleFetcher loads the persisted role for a user. The role carried in the
// token is only a snapshot, so the gate always asks the store.
type RoleFetcher interface {
	FetchRole(ctx context.Context, userID primitive.ObjectID) (string, error)
}

// RequireRole admits the request only when the caller's stored role is one
// of allowed. Missing identity, lookup errors and mismatches are all denied
// with 403.
func RequireRole(fetcher RoleFetcher, log *zap.Logger, allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.CurrentIdentity(r)
			if !ok {
				forbidden(w)
				return
			}

			role, err := fetcher.FetchRole(r.Context(), id.ID)
			if err != nil {
				log.Warn("role lookup failed",
					zap.String("user_id", id.ID.Hex()),
					zap.String("path", r.URL.Path),
					zap.Error(err))
				forbidden(w)
				return
			}

			if !HasAnyRole(role, allowed...) {
				log.Info("role denied",
					zap.String("user_id", id.ID.Hex()),
					zap.String("role", role),
					zap.Strings("allowed", allowed))
				forbidden(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// HasAnyRole reports whether role matches any of roles, ignoring case.
func HasAnyRole(role string, roles ...string) bool {
	cur := strings.ToLower(strings.TrimSpace(role))
	for _, want := range roles {
		if cur == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{false, "forbidden"})
}
