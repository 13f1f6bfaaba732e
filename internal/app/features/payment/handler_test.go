package payment_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	uierrors "github.com/dalemusser/studyplanet/internal/app/features/errors"
	"github.com/dalemusser/studyplanet/internal/app/features/payment"
	"github.com/dalemusser/studyplanet/internal/app/payments"
	"github.com/dalemusser/studyplanet/internal/app/system/apperr"
	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"github.com/dalemusser/studyplanet/internal/domain/models"
	"github.com/dalemusser/studyplanet/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeAdapter records what reached it and answers with canned values.
type fakeAdapter struct {
	captured  []primitive.ObjectID
	verified  string
	receipt   *payments.Receipt
	webhook   string
	verifyErr error
}

func (f *fakeAdapter) Enabled() bool { return true }

func (f *fakeAdapter) Capture(_ context.Context, _ primitive.ObjectID, ids []primitive.ObjectID) (*payments.Checkout, error) {
	f.captured = ids
	return &payments.Checkout{SessionID: "cs_1", URL: "https://pay.example/cs_1", Amount: 100, Currency: "inr"}, nil
}

func (f *fakeAdapter) Verify(_ context.Context, uid primitive.ObjectID, sid string) (*payments.Enrollment, error) {
	f.verified = sid
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &payments.Enrollment{UserID: uid}, nil
}

func (f *fakeAdapter) HandleWebhook(_ context.Context, payload []byte, sig string) (*payments.Enrollment, error) {
	f.webhook = sig
	return nil, nil
}

func (f *fakeAdapter) SendReceipt(_ context.Context, _ primitive.ObjectID, r payments.Receipt) error {
	f.receipt = &r
	return nil
}

type staticRoles map[primitive.ObjectID]string

func (s staticRoles) FetchRole(_ context.Context, id primitive.ObjectID) (string, error) {
	return s[id], nil
}

func newHandler(a payments.Adapter) *payment.Handler {
	logger := zap.NewNop()
	return payment.NewHandler(a, uierrors.NewErrorLogger(logger, false), logger)
}

func TestDisabled_Returns503ForEveryEndpoint(t *testing.T) {
	h := newHandler(nil)
	r := chi.NewRouter()
	r.Route("/payment", payment.Routes(h, auth.NewVerifier("s", nil), staticRoles{}))

	for _, path := range []string{"/capturePayment", "/verifyPayment", "/sendPaymentSuccessEmail", "/webhook"} {
		t.Run(path, func(t *testing.T) {
			rec := testutil.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payment"+path, nil))
			rec.AssertStatus(t, http.StatusServiceUnavailable)
			if env := rec.Envelope(t); env.Success || env.Message != payments.DisabledMessage {
				t.Errorf("envelope = %+v", env)
			}
		})
	}
}

func TestEnabled_RoutesRequireStudent(t *testing.T) {
	const secret = "payment-route-secret"
	student := primitive.NewObjectID()
	instructor := primitive.NewObjectID()
	roles := staticRoles{student: models.RoleStudent, instructor: models.RoleInstructor}

	h := newHandler(&fakeAdapter{})
	r := chi.NewRouter()
	r.Route("/payment", payment.Routes(h, auth.NewVerifier(secret, nil), roles))
	issuer := auth.NewIssuer(secret, time.Hour)

	post := func(uid *primitive.ObjectID) int {
		req := httptest.NewRequest(http.MethodPost, "/payment/capturePayment",
			bytes.NewBufferString(`{"courses":["`+primitive.NewObjectID().Hex()+`"]}`))
		req.Header.Set("Content-Type", "application/json")
		if uid != nil {
			tok, _, err := issuer.Issue(auth.Identity{ID: *uid})
			if err != nil {
				t.Fatalf("Issue: %v", err)
			}
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	tests := []struct {
		name string
		uid  *primitive.ObjectID
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"instructor", &instructor, http.StatusForbidden},
		{"student", &student, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := post(tt.uid); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHandleCapture(t *testing.T) {
	fa := &fakeAdapter{}
	h := newHandler(fa)
	id := testutil.StudentIdentity()
	c1, c2 := primitive.NewObjectID(), primitive.NewObjectID()

	req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string][]string{"courses": {c1.Hex(), c2.Hex()}})
	rec := testutil.NewRecorder()
	h.HandleCapture(rec, testutil.WithIdentity(req, id))
	rec.AssertStatus(t, http.StatusOK)

	if diff := cmp.Diff([]primitive.ObjectID{c1, c2}, fa.captured); diff != "" {
		t.Errorf("captured ids (-want +got):\n%s", diff)
	}
	var co payments.Checkout
	rec.DecodeData(t, &co)
	if co.SessionID != "cs_1" || co.URL == "" {
		t.Errorf("checkout = %+v", co)
	}

	req = testutil.NewJSONRequest(t, http.MethodPost, "/", map[string][]string{"courses": {"nope"}})
	rec = testutil.NewRecorder()
	h.HandleCapture(rec, testutil.WithIdentity(req, id))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "valid course IDs")
}

func TestHandleVerify_PropagatesAdapterErrors(t *testing.T) {
	fa := &fakeAdapter{verifyErr: apperr.Denied("payment belongs to another user")}
	h := newHandler(fa)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]string{"sessionId": "cs_9"})
	rec := testutil.NewRecorder()
	h.HandleVerify(rec, testutil.WithIdentity(req, testutil.StudentIdentity()))
	rec.AssertStatus(t, http.StatusForbidden)
	if fa.verified != "cs_9" {
		t.Errorf("verified session = %q", fa.verified)
	}
}

func TestHandleSendReceipt(t *testing.T) {
	fa := &fakeAdapter{}
	h := newHandler(fa)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/",
		map[string]any{"orderId": "cs_1", "paymentId": "pi_1", "amount": 49900})
	rec := testutil.NewRecorder()
	h.HandleSendReceipt(rec, testutil.WithIdentity(req, testutil.StudentIdentity()))
	rec.AssertStatus(t, http.StatusOK)

	want := &payments.Receipt{OrderID: "cs_1", PaymentID: "pi_1", Amount: 49900}
	if diff := cmp.Diff(want, fa.receipt); diff != "" {
		t.Errorf("receipt (-want +got):\n%s", diff)
	}
}

func TestHandleSendReceipt_NoBody(t *testing.T) {
	h := newHandler(&fakeAdapter{})
	rec := testutil.NewRecorder()
	h.HandleSendReceipt(rec, testutil.WithIdentity(httptest.NewRequest(http.MethodPost, "/", nil), testutil.StudentIdentity()))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleWebhook_PassesSignature(t *testing.T) {
	fa := &fakeAdapter{}
	h := newHandler(fa)

	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", bytes.NewBufferString(`{"type":"ping"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rec := testutil.NewRecorder()
	h.HandleWebhook(rec, req)
	rec.AssertStatus(t, http.StatusOK)
	if fa.webhook != "t=1,v1=abc" {
		t.Errorf("signature = %q", fa.webhook)
	}
}
