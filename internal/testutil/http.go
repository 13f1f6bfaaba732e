package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IdentityFor returns the identity the credential verifier would attach for u.
func IdentityFor(u models.User) *auth.Identity {
	return &auth.Identity{ID: u.ID, Role: u.Role, Email: u.Email}
}

// StudentIdentity returns an identity for a student that does not exist in
// any database.
func StudentIdentity() *auth.Identity {
	return &auth.Identity{ID: primitive.NewObjectID(), Role: models.RoleStudent, Email: "student@test.com"}
}

// InstructorIdentity returns an identity for an instructor that does not
// exist in any database.
func InstructorIdentity() *auth.Identity {
	return &auth.Identity{ID: primitive.NewObjectID(), Role: models.RoleInstructor, Email: "instructor@test.com"}
}

// WithIdentity adds an identity to the request context for testing
// authenticated handlers. This bypasses the credential verifier.
func WithIdentity(r *http.Request, id *auth.Identity) *http.Request {
	return auth.WithTestIdentity(r, id)
}

// NewJSONRequest creates a request whose body is body encoded as JSON.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body %s)", r.Code, expected, r.Body.String())
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// Envelope mirrors the JSON envelope every endpoint writes. Data is left
// raw so tests can decode it into the type they expect.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Envelope decodes the response body.
func (r *ResponseRecorder) Envelope(t *testing.T) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(r.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, r.Body.String())
	}
	return env
}

// DecodeData decodes the envelope's data field into v.
func (r *ResponseRecorder) DecodeData(t *testing.T, v any) {
	t.Helper()
	env := r.Envelope(t)
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, string(env.Data))
	}
}
