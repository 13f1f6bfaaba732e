package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	progressstore "github.com/dalemusser/studyplanet/internal/app/store/courseprogress"
	userstore "github.com/dalemusser/studyplanet/internal/app/store/users"
	"github.com/dalemusser/studyplanet/internal/app/system/apperr"
	"github.com/dalemusser/studyplanet/internal/app/system/mailer"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	"github.com/dalemusser/studyplanet/internal/testutil"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestDisabled_EveryCallIsServiceDisabled(t *testing.T) {
	var a Adapter = Disabled{}
	ctx := context.Background()
	id := primitive.NewObjectID()

	if a.Enabled() {
		t.Error("Disabled reports enabled")
	}

	_, e1 := a.Capture(ctx, id, []primitive.ObjectID{id})
	_, e2 := a.Verify(ctx, id, "cs_1")
	_, e3 := a.HandleWebhook(ctx, []byte("{}"), "sig")
	e4 := a.SendReceipt(ctx, id, Receipt{OrderID: "o", PaymentID: "p", Amount: 1})

	for i, err := range []error{e1, e2, e3, e4} {
		ae, ok := apperr.As(err)
		if !ok || ae.Kind != apperr.ServiceDisabled {
			t.Errorf("call %d: err = %v, want ServiceDisabled", i, err)
			continue
		}
		if ae.Message != DisabledMessage {
			t.Errorf("call %d: message = %q", i, ae.Message)
		}
		if ae.Kind.Status() != http.StatusServiceUnavailable {
			t.Errorf("call %d: status = %d, want 503", i, ae.Kind.Status())
		}
	}
}

type fakeStripe struct {
	t        *testing.T
	lastForm map[string]string
	session  map[string]any
}

func (f *fakeStripe) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.lastForm = map[string]string{}
		for k := range r.PostForm {
			f.lastForm[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "cs_test_1",
			"object": "checkout.session",
			"url":    "https://checkout.stripe.test/cs_test_1",
		})
	})
	mux.HandleFunc("/v1/checkout/sessions/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if f.session == nil {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"type": "invalid_request_error", "message": "No such checkout.session"}})
			return
		}
		_ = json.NewEncoder(w).Encode(f.session)
	})
	return mux
}

type recordingSender struct{ sent []mailer.Email }

func (r *recordingSender) Send(_ context.Context, e mailer.Email) error {
	r.sent = append(r.sent, e)
	return nil
}

func newTestStripe(t *testing.T, db *mongo.Database, fs *fakeStripe, mail mailer.Sender) *Stripe {
	t.Helper()
	srv := httptest.NewServer(fs.handler())
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	s, err := NewStripe(StripeConfig{
		PublishableKey: "pk_test",
		SecretKey:      "sk_test_123",
		WebhookSecret:  "whsec_test",
		SuccessURL:     "https://app.example.com/success",
		CancelURL:      "https://app.example.com/cancel",
		Backends:       &stripe.Backends{API: backend, Connect: backend, Uploads: backend},
	}, db, mail, zap.NewNop())
	if err != nil {
		t.Fatalf("NewStripe: %v", err)
	}
	return s
}

func TestNewStripe_RequiresSecret(t *testing.T) {
	if _, err := NewStripe(StripeConfig{}, nil, nil, zap.NewNop()); err == nil {
		t.Error("expected error without a secret key")
	}
}

func TestStripe_Capture(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fx.CreateInstructor(ctx, "inst@example.com")
	student := fx.CreateStudent(ctx, "stu@example.com")
	cat := fx.CreateCategory(ctx, "Web")
	c1 := fx.CreateCourse(ctx, "Go", inst.ID, cat.ID, models.CourseStatusPublished)
	c2 := fx.CreateCourse(ctx, "Rust", inst.ID, cat.ID, models.CourseStatusPublished)

	fs := &fakeStripe{t: t}
	s := newTestStripe(t, db, fs, &recordingSender{})

	co, err := s.Capture(ctx, student.ID, []primitive.ObjectID{c1.ID, c2.ID})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if co.SessionID != "cs_test_1" || co.URL == "" {
		t.Errorf("checkout = %+v", co)
	}
	if co.Amount != 2*49900 || co.Currency != "inr" || co.Key != "pk_test" {
		t.Errorf("checkout = %+v", co)
	}

	wantForm := map[string]string{
		"mode":                                  "payment",
		"client_reference_id":                   student.ID.Hex(),
		"line_items[0][quantity]":               "1",
		"line_items[0][price_data][unit_amount]": "49900",
		"line_items[1][price_data][product_data][name]": "Rust",
		"metadata[courses]":                     c1.ID.Hex() + "," + c2.ID.Hex(),
	}
	for k, v := range wantForm {
		if fs.lastForm[k] != v {
			t.Errorf("form[%s] = %q, want %q", k, fs.lastForm[k], v)
		}
	}
}

func TestStripe_Capture_Rejects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fx.CreateInstructor(ctx, "inst@example.com")
	student := fx.CreateStudent(ctx, "stu@example.com")
	cat := fx.CreateCategory(ctx, "Web")
	owned := fx.CreateCourse(ctx, "Owned", inst.ID, cat.ID, models.CourseStatusPublished)
	fx.Enroll(ctx, owned.ID, student.ID)
	fresh := fx.CreateCourse(ctx, "Fresh", inst.ID, cat.ID, models.CourseStatusPublished)

	api := &fakeStripe{t: t}
	s := newTestStripe(t, db, api, &recordingSender{})

	tests := []struct {
		name    string
		courses []primitive.ObjectID
		kind    apperr.Kind
	}{
		{"no courses", nil, apperr.Validation},
		{"unknown course", []primitive.ObjectID{primitive.NewObjectID()}, apperr.NotFound},
		{"already enrolled", []primitive.ObjectID{owned.ID}, apperr.Validation},
		{"same course twice", []primitive.ObjectID{fresh.ID, fresh.ID}, apperr.Validation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Capture(ctx, student.ID, tt.courses)
			if !apperr.Is(err, tt.kind) {
				t.Errorf("err = %v, want kind %v", err, tt.kind)
			}
		})
	}
	if api.lastForm != nil {
		t.Errorf("checkout session created for rejected input: %v", api.lastForm)
	}
}

func assertEnrolled(t *testing.T, ctx context.Context, db *mongo.Database, userID, courseID primitive.ObjectID) {
	t.Helper()
	u, err := userstore.New(db).GetByID(ctx, userID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	found := false
	for _, id := range u.CourseIDs {
		found = found || id == courseID
	}
	if !found {
		t.Error("course missing from user's course list")
	}
	if _, err := progressstore.New(db).Get(ctx, courseID, userID); err != nil {
		t.Errorf("progress record missing: %v", err)
	}
}

func TestStripe_Verify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fx.CreateInstructor(ctx, "inst@example.com")
	student := fx.CreateStudent(ctx, "stu@example.com")
	cat := fx.CreateCategory(ctx, "Web")
	c := fx.CreateCourse(ctx, "Go", inst.ID, cat.ID, models.CourseStatusPublished)

	fs := &fakeStripe{t: t}
	s := newTestStripe(t, db, fs, &recordingSender{})

	if _, err := s.Verify(ctx, student.ID, "cs_missing"); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("unknown session err = %v, want NotFound", err)
	}

	fs.session = map[string]any{
		"id":                  "cs_test_1",
		"object":              "checkout.session",
		"mode":                "payment",
		"payment_status":      "unpaid",
		"client_reference_id": student.ID.Hex(),
		"metadata":            map[string]string{"courses": c.ID.Hex()},
	}
	if _, err := s.Verify(ctx, student.ID, "cs_test_1"); !apperr.Is(err, apperr.Validation) {
		t.Errorf("unpaid session err = %v, want Validation", err)
	}

	fs.session["payment_status"] = "paid"
	if _, err := s.Verify(ctx, primitive.NewObjectID(), "cs_test_1"); !apperr.Is(err, apperr.Forbidden) {
		t.Errorf("foreign session err = %v, want Forbidden", err)
	}

	enr, err := s.Verify(ctx, student.ID, "cs_test_1")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if enr.UserID != student.ID || len(enr.CourseIDs) != 1 || enr.CourseIDs[0] != c.ID {
		t.Errorf("enrollment = %+v", enr)
	}
	assertEnrolled(t, ctx, db, student.ID, c.ID)

	// Verifying twice must not duplicate anything.
	if _, err := s.Verify(ctx, student.ID, "cs_test_1"); err != nil {
		t.Fatalf("second Verify failed: %v", err)
	}
	u, _ := userstore.New(db).GetByID(ctx, student.ID)
	if len(u.CourseIDs) != 1 {
		t.Errorf("user has %d courses after repeat verify, want 1", len(u.CourseIDs))
	}
}

func signedEvent(t *testing.T, secret, typ string, obj map[string]any) ([]byte, string) {
	t.Helper()
	raw, err := json.Marshal(obj)
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(stripe.Event{
		APIVersion: stripe.APIVersion,
		Type:       typ,
		Data:       &stripe.EventData{Raw: json.RawMessage(raw)},
	})
	if err != nil {
		t.Fatal(err)
	}
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   b,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return b, signed.Header
}

func TestStripe_HandleWebhook(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := fx.CreateInstructor(ctx, "inst@example.com")
	student := fx.CreateStudent(ctx, "stu@example.com")
	cat := fx.CreateCategory(ctx, "Web")
	c := fx.CreateCourse(ctx, "Go", inst.ID, cat.ID, models.CourseStatusPublished)

	s := newTestStripe(t, db, &fakeStripe{t: t}, &recordingSender{})
	obj := map[string]any{
		"id":                  "cs_test_1",
		"mode":                "payment",
		"client_reference_id": student.ID.Hex(),
		"metadata":            map[string]string{"courses": c.ID.Hex()},
	}

	body, sig := signedEvent(t, "whsec_wrong", "checkout.session.completed", obj)
	if _, err := s.HandleWebhook(ctx, body, sig); !apperr.Is(err, apperr.Validation) {
		t.Errorf("bad signature err = %v, want Validation", err)
	}
	if _, err := s.HandleWebhook(ctx, body, ""); !apperr.Is(err, apperr.Validation) {
		t.Errorf("missing signature err = %v, want Validation", err)
	}

	body, sig = signedEvent(t, "whsec_test", "payment_intent.created", obj)
	enr, err := s.HandleWebhook(ctx, body, sig)
	if err != nil || enr != nil {
		t.Errorf("ignored event = %+v, %v; want nil, nil", enr, err)
	}

	body, sig = signedEvent(t, "whsec_test", "checkout.session.completed", obj)
	enr, err = s.HandleWebhook(ctx, body, sig)
	if err != nil {
		t.Fatalf("HandleWebhook failed: %v", err)
	}
	if enr == nil || enr.UserID != student.ID {
		t.Fatalf("enrollment = %+v", enr)
	}
	assertEnrolled(t, ctx, db, student.ID, c.ID)
}

func TestStripe_SendReceipt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fx.CreateStudent(ctx, "stu@example.com")
	sender := &recordingSender{}
	s := newTestStripe(t, db, &fakeStripe{t: t}, sender)

	if err := s.SendReceipt(ctx, student.ID, Receipt{OrderID: "cs_1"}); !apperr.Is(err, apperr.Validation) {
		t.Errorf("incomplete receipt err = %v, want Validation", err)
	}
	if err := s.SendReceipt(ctx, primitive.NewObjectID(), Receipt{OrderID: "cs_1", PaymentID: "pi_1", Amount: 100}); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("unknown user err = %v, want NotFound", err)
	}

	if err := s.SendReceipt(ctx, student.ID, Receipt{OrderID: "cs_1", PaymentID: "pi_1", Amount: 49950}); err != nil {
		t.Fatalf("SendReceipt failed: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	e := sender.sent[0]
	if e.To != "stu@example.com" || !strings.Contains(e.TextBody, "499.50 INR") {
		t.Errorf("email = %+v", e)
	}
}

func TestParseCourseIDs(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	got, err := parseCourseIDs(a.Hex() + ", " + b.Hex())
	if err != nil || len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("parseCourseIDs = %v, %v", got, err)
	}
	for _, bad := range []string{"", "  ", "nothex", a.Hex() + ",zz"} {
		if _, err := parseCourseIDs(bad); err == nil {
			t.Errorf("parseCourseIDs(%q) should fail", bad)
		}
	}
}

func TestAmounts(t *testing.T) {
	if got := toMinorUnits(499.99); got != 49999 {
		t.Errorf("toMinorUnits(499.99) = %d", got)
	}
	if got := toMinorUnits(0); got != 0 {
		t.Errorf("toMinorUnits(0) = %d", got)
	}
	if got := formatAmount(1205, "usd"); got != "12.05 USD" {
		t.Errorf("formatAmount = %q", got)
	}
}

func TestEnroller_UnknownCourse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fx.CreateStudent(ctx, "stu@example.com")
	err := NewEnroller(db, zap.NewNop()).Enroll(ctx, student.ID, []primitive.ObjectID{primitive.NewObjectID()})
	if !apperr.Is(err, apperr.NotFound) {
		t.Errorf("err = %v, want NotFound", err)
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Message != "course not found" {
		t.Errorf("message = %v", err)
	}
}
