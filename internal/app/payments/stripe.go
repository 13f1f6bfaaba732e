package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dalemusser/studyplanet/internal/app/policy/coursepolicy"
	coursestore "github.com/dalemusser/studyplanet/internal/app/store/courses"
	userstore "github.com/dalemusser/studyplanet/internal/app/store/users"
	"github.com/dalemusser/studyplanet/internal/app/system/apperr"
	"github.com/dalemusser/studyplanet/internal/app/system/mailer"
	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const metaCourses = "courses"

// StripeConfig configures the Stripe adapter.
type StripeConfig struct {
	PublishableKey string
	SecretKey      string
	WebhookSecret  string
	SuccessURL     string
	CancelURL      string
	Currency       string // ISO code, lowercase; defaults to "inr"
	SiteName       string

	// Backends overrides the Stripe API endpoints (tests).
	Backends *stripe.Backends
}

// Stripe is the enabled payment adapter. Courses are sold through Stripe
// Checkout; enrollment happens when the checkout is confirmed, either by
// the student returning from Checkout (Verify) or by Stripe's webhook.
type Stripe struct {
	api      *stripecl.API
	cfg      StripeConfig
	courses  *coursestore.Store
	users    *userstore.Store
	enroller *Enroller
	mail     mailer.Sender
	log      *zap.Logger
}

// NewStripe builds the adapter. It fails when the secret key is empty.
func NewStripe(cfg StripeConfig, db *mongo.Database, mail mailer.Sender, log *zap.Logger) (*Stripe, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("stripe secret key is required")
	}
	if cfg.Currency == "" {
		cfg.Currency = "inr"
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "StudyPlanet"
	}
	api := &stripecl.API{}
	api.Init(cfg.SecretKey, cfg.Backends)
	return &Stripe{
		api:      api,
		cfg:      cfg,
		courses:  coursestore.New(db),
		users:    userstore.New(db),
		enroller: NewEnroller(db, log),
		mail:     mail,
		log:      log,
	}, nil
}

func (s *Stripe) Enabled() bool { return true }

// Capture opens a Checkout session for the given courses.
func (s *Stripe) Capture(ctx context.Context, userID primitive.ObjectID, courseIDs []primitive.ObjectID) (*Checkout, error) {
	if len(courseIDs) == 0 {
		return nil, apperr.Invalid("Please provide valid course IDs")
	}
	seen := make(map[primitive.ObjectID]struct{}, len(courseIDs))
	for _, cid := range courseIDs {
		if _, dup := seen[cid]; dup {
			return nil, apperr.Invalid("Course %s is listed more than once", cid.Hex())
		}
		seen[cid] = struct{}{}
	}

	courses, err := s.courses.GetByIDs(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	byID := make(map[primitive.ObjectID]int, len(courses))
	for i, c := range courses {
		byID[c.ID] = i
	}

	var total int64
	lines := make([]*stripe.CheckoutSessionLineItemParams, 0, len(courseIDs))
	ids := make([]string, 0, len(courseIDs))
	for _, cid := range courseIDs {
		i, ok := byID[cid]
		if !ok {
			return nil, apperr.Missing("course")
		}
		c := courses[i]
		if coursepolicy.IsEnrolled(&c, userID) {
			return nil, apperr.Invalid("Student is already enrolled in %s", c.Name)
		}

		amount := toMinorUnits(c.Price)
		total += amount
		ids = append(ids, c.ID.Hex())
		lines = append(lines, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.cfg.Currency),
				UnitAmount: stripe.Int64(amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(c.Name),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(userID.Hex()),
		LineItems:         lines,
	}
	params.Context = ctx
	params.AddMetadata(metaCourses, strings.Join(ids, ","))

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, apperr.Wrap(apperr.UpstreamFailure, "Could not initiate order", err)
	}
	s.log.Info("checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("user_id", userID.Hex()),
		zap.Int64("amount", total))

	return &Checkout{
		SessionID: sess.ID,
		URL:       sess.URL,
		Amount:    total,
		Currency:  s.cfg.Currency,
		Key:       s.cfg.PublishableKey,
	}, nil
}

// Verify confirms a Checkout session the caller paid and enrolls them.
func (s *Stripe) Verify(ctx context.Context, userID primitive.ObjectID, sessionID string) (*Enrollment, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperr.Invalid("Payment Failed")
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := s.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.HTTPStatusCode == 404 {
			return nil, apperr.Missing("payment session")
		}
		return nil, apperr.Wrap(apperr.UpstreamFailure, "Could not verify payment", err)
	}
	if sess.ClientReferenceID != userID.Hex() {
		return nil, apperr.Denied("payment belongs to another user")
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, apperr.Invalid("Payment Failed")
	}
	return s.enrollSession(ctx, sess)
}

// HandleWebhook processes a signed Stripe event. Events other than a
// completed payment checkout return a nil Enrollment.
func (s *Stripe) HandleWebhook(ctx context.Context, payload []byte, signature string) (*Enrollment, error) {
	if signature == "" {
		return nil, apperr.Invalid("received stripe event is not signed")
	}
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "cannot construct stripe event", err)
	}
	if event.Type != "checkout.session.completed" {
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, apperr.Wrap(apperr.Validation, "unable to decode stripe event", err)
	}
	if sess.Mode != stripe.CheckoutSessionModePayment {
		return nil, nil
	}
	return s.enrollSession(ctx, &sess)
}

func (s *Stripe) enrollSession(ctx context.Context, sess *stripe.CheckoutSession) (*Enrollment, error) {
	userID, err := primitive.ObjectIDFromHex(sess.ClientReferenceID)
	if err != nil {
		return nil, apperr.Invalid("payment session has no valid user reference")
	}
	courseIDs, err := parseCourseIDs(sess.Metadata[metaCourses])
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "payment session has invalid course list", err)
	}
	if err := s.enroller.Enroll(ctx, userID, courseIDs); err != nil {
		return nil, err
	}
	return &Enrollment{UserID: userID, CourseIDs: courseIDs}, nil
}

// SendReceipt emails the payment confirmation to the user.
func (s *Stripe) SendReceipt(ctx context.Context, userID primitive.ObjectID, r Receipt) error {
	if r.OrderID == "" || r.PaymentID == "" || r.Amount <= 0 {
		return apperr.Invalid("Please provide all the details")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.Missing("user")
		}
		return fmt.Errorf("load user: %w", err)
	}

	email := mailer.BuildReceiptEmail(u.Email, mailer.ReceiptEmailData{
		SiteName:  s.cfg.SiteName,
		Name:      u.FullName(),
		Amount:    formatAmount(r.Amount, s.cfg.Currency),
		OrderID:   r.OrderID,
		PaymentID: r.PaymentID,
	})
	if err := s.mail.Send(ctx, email); err != nil {
		return apperr.Wrap(apperr.UpstreamFailure, "Could not send email", err)
	}
	return nil
}

func parseCourseIDs(raw string) ([]primitive.ObjectID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("no courses")
	}
	parts := strings.Split(raw, ",")
	out := make([]primitive.ObjectID, 0, len(parts))
	for _, p := range parts {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("course id %q: %w", p, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", minor/100, minor%100, strings.ToUpper(currency))
}
