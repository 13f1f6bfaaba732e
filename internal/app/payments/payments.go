// Package payments selects, once at startup, between a disabled adapter and
// a Stripe checkout adapter.
package payments

import (
	"context"

	"github.com/dalemusser/studyplanet/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DisabledMessage is returned by every payment operation while no provider
// credentials are configured.
const DisabledMessage = "Payment service is currently disabled. Please configure payment provider credentials to enable payment features."

// Checkout is a started payment the client must complete with the provider.
type Checkout struct {
	SessionID string `json:"id"`
	URL       string `json:"url"`
	Amount    int64  `json:"amount"` // minor units
	Currency  string `json:"currency"`
	Key       string `json:"key,omitempty"` // publishable key for the client SDK
}

// Enrollment is the outcome of a confirmed payment.
type Enrollment struct {
	UserID    primitive.ObjectID   `json:"userId"`
	CourseIDs []primitive.ObjectID `json:"courses"`
}

// Receipt identifies a confirmed payment for the confirmation email.
type Receipt struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Amount    int64  `json:"amount"` // minor units
}

// Adapter is the payment provider as the HTTP layer sees it.
type Adapter interface {
	Enabled() bool
	Capture(ctx context.Context, userID primitive.ObjectID, courseIDs []primitive.ObjectID) (*Checkout, error)
	Verify(ctx context.Context, userID primitive.ObjectID, sessionID string) (*Enrollment, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*Enrollment, error)
	SendReceipt(ctx context.Context, userID primitive.ObjectID, r Receipt) error
}

// Disabled answers every call with a ServiceDisabled error and does no I/O.
type Disabled struct{}

func errDisabled() error { return apperr.New(apperr.ServiceDisabled, DisabledMessage) }

func (Disabled) Enabled() bool { return false }

func (Disabled) Capture(context.Context, primitive.ObjectID, []primitive.ObjectID) (*Checkout, error) {
	return nil, errDisabled()
}

func (Disabled) Verify(context.Context, primitive.ObjectID, string) (*Enrollment, error) {
	return nil, errDisabled()
}

func (Disabled) HandleWebhook(context.Context, []byte, string) (*Enrollment, error) {
	return nil, errDisabled()
}

func (Disabled) SendReceipt(context.Context, primitive.ObjectID, Receipt) error {
	return errDisabled()
}
