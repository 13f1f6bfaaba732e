// internal/app/features/payment/handler.go
package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	uierrors "github.com/dalemusser/studyplanet/internal/app/features/errors"
	"github.com/dalemusser/studyplanet/internal/app/payments"
	"github.com/dalemusser/studyplanet/internal/app/system/apperr"
	"github.com/dalemusser/studyplanet/internal/app/system/auditlog"
	"github.com/dalemusser/studyplanet/internal/app/system/auth"
	"github.com/dalemusser/studyplanet/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxWebhookBody matches the size Stripe documents as the event upper bound.
const maxWebhookBody = 64 << 10

type Handler struct {
	Adapter payments.Adapter
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger
	Audit   *auditlog.Logger // optional
}

func NewHandler(adapter payments.Adapter, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if adapter == nil {
		adapter = payments.Disabled{}
	}
	return &Handler{Adapter: adapter, ErrLog: errLog, Log: logger}
}

type captureRequest struct {
	Courses []string `json:"courses"`
}

type verifyRequest struct {
	SessionID string `json:"sessionId"`
}

type receiptRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Amount    int64  `json:"amount"`
}

func decode(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return apperr.Invalid("Please provide all the details")
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		return apperr.Wrap(apperr.Validation, "Invalid request body", err)
	}
	return nil
}

func callerID(r *http.Request) (primitive.ObjectID, error) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		return primitive.NilObjectID, apperr.New(apperr.Unauthorized, "unauthenticated")
	}
	return id.ID, nil
}

// guard answers with the disabled error before touching the request body,
// so a disabled gateway behaves the same for every caller.
func (h *Handler) guard(w http.ResponseWriter, r *http.Request) bool {
	if h.Adapter.Enabled() {
		return true
	}
	h.ErrLog.Respond(w, r, "payment disabled", apperr.New(apperr.ServiceDisabled, payments.DisabledMessage))
	return false
}

// HandleCapture handles POST /payment/capturePayment.
func (h *Handler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	uid, err := callerID(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "capture payment", err)
		return
	}
	var req captureRequest
	if err := decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, "capture payment", err)
		return
	}
	ids := make([]primitive.ObjectID, 0, len(req.Courses))
	for _, raw := range req.Courses {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			h.ErrLog.Respond(w, r, "capture payment", apperr.Invalid("Please provide valid course IDs"))
			return
		}
		ids = append(ids, oid)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "capture payment")
	defer cancel()

	checkout, err := h.Adapter.Capture(ctx, uid, ids)
	if err != nil {
		h.ErrLog.Respond(w, r, "capture payment", err)
		return
	}
	h.Audit.CheckoutStarted(r.Context(), r, uid, checkout.SessionID, checkout.Amount)
	uierrors.OK(w, http.StatusOK, "", checkout)
}

// HandleVerify handles POST /payment/verifyPayment.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	uid, err := callerID(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "verify payment", err)
		return
	}
	var req verifyRequest
	if err := decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, "verify payment", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "verify payment")
	defer cancel()

	enr, err := h.Adapter.Verify(ctx, uid, req.SessionID)
	if err != nil {
		h.ErrLog.Respond(w, r, "verify payment", err)
		return
	}
	if enr != nil {
		h.Audit.StudentEnrolled(r.Context(), r, enr.UserID, enr.CourseIDs, "verify")
	}
	uierrors.OK(w, http.StatusOK, "Payment Verified", enr)
}

// HandleSendReceipt handles POST /payment/sendPaymentSuccessEmail.
func (h *Handler) HandleSendReceipt(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	uid, err := callerID(r)
	if err != nil {
		h.ErrLog.Respond(w, r, "send receipt", err)
		return
	}
	var req receiptRequest
	if err := decode(r, &req); err != nil {
		h.ErrLog.Respond(w, r, "send receipt", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "send receipt")
	defer cancel()

	err = h.Adapter.SendReceipt(ctx, uid, payments.Receipt{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
	})
	if err != nil {
		h.ErrLog.Respond(w, r, "send receipt", err)
		return
	}
	uierrors.OK(w, http.StatusOK, "Payment success email sent", nil)
}

// HandleWebhook handles POST /payment/webhook. It is unauthenticated; the
// provider signature is the credential.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			uierrors.Fail(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		h.ErrLog.LogBadRequest(w, r, "read webhook body", err, "Invalid request body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "payment webhook")
	defer cancel()

	enr, err := h.Adapter.HandleWebhook(ctx, payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.ErrLog.Respond(w, r, "payment webhook", err)
		return
	}
	if enr != nil {
		h.Log.Info("webhook enrollment",
			zap.String("user_id", enr.UserID.Hex()),
			zap.Int("courses", len(enr.CourseIDs)))
		h.Audit.StudentEnrolled(r.Context(), r, enr.UserID, enr.CourseIDs, "webhook")
	}
	uierrors.OK(w, http.StatusOK, "", nil)
}
