// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/studyplanet/internal/app/store/audit"
	"github.com/dalemusser/studyplanet/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category of events.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Config holds audit logging configuration, one mode per category.
type Config struct {
	Auth    string
	Admin   string
	Payment string
}

// Logger records audit events to MongoDB (via audit.Store) and to the
// structured log. A nil *Logger is valid and records nothing.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func (l *Logger) mode(category string) string {
	var m string
	switch category {
	case audit.CategoryAuth:
		m = l.config.Auth
	case audit.CategoryAdmin:
		m = l.config.Admin
	case audit.CategoryPayment:
		m = l.config.Payment
	}
	if m == "" {
		return ModeAll
	}
	return m
}

// Log records an event according to its category's mode. Store failures
// are logged and never returned: auditing must not fail the request.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	m := l.mode(event.Category)
	if m == ModeOff {
		return
	}
	if m == ModeAll || m == ModeLog {
		l.logToZap(event)
	}
	if m == ModeAll || m == ModeDB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func fromRequest(r *http.Request, e audit.Event) audit.Event {
	if r != nil {
		e.IP = ratelimit.ClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

// --- Authentication Events ---

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"email": email},
	}))
}

func (l *Logger) LoginFailedUserNotFound(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedUserNotFound,
		FailureReason: "user not found",
		Details:       map[string]string{"email": email},
	}))
}

func (l *Logger) LoginFailedWrongPassword(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedWrongPassword,
		UserID:        &userID,
		FailureReason: "wrong password",
		Details:       map[string]string{"email": email},
	}))
}

func (l *Logger) LoginFailedRateLimit(ctx context.Context, r *http.Request, email string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailedRateLimit,
		FailureReason: "rate limit exceeded",
		Details:       map[string]string{"email": email},
	}))
}

// Logout records a logout. userID is nil when the request carried no
// valid token.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID *primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLogout,
		UserID:    userID,
		Success:   true,
	}))
}

// --- Admin Events ---

func (l *Logger) CourseCreated(ctx context.Context, r *http.Request, actorID, courseID primitive.ObjectID, name string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventCourseCreated,
		ActorID:   &actorID,
		Success:   true,
		Details:   map[string]string{"course_id": courseID.Hex(), "name": name},
	}))
}

func (l *Logger) CourseUpdated(ctx context.Context, r *http.Request, actorID primitive.ObjectID, courseID string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventCourseUpdated,
		ActorID:   &actorID,
		Success:   true,
		Details:   map[string]string{"course_id": courseID},
	}))
}

func (l *Logger) CourseDeleted(ctx context.Context, r *http.Request, actorID primitive.ObjectID, courseID string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventCourseDeleted,
		ActorID:   &actorID,
		Success:   true,
		Details:   map[string]string{"course_id": courseID},
	}))
}

func (l *Logger) CategoryCreated(ctx context.Context, r *http.Request, actorID, categoryID primitive.ObjectID, name string) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventCategoryCreated,
		ActorID:   &actorID,
		Success:   true,
		Details:   map[string]string{"category_id": categoryID.Hex(), "name": name},
	}))
}

// --- Payment Events ---

func (l *Logger) CheckoutStarted(ctx context.Context, r *http.Request, userID primitive.ObjectID, sessionID string, amount int64) {
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryPayment,
		EventType: audit.EventCheckoutStarted,
		UserID:    &userID,
		Success:   true,
		Details:   map[string]string{"session_id": sessionID, "amount": strconv.FormatInt(amount, 10)},
	}))
}

// StudentEnrolled records enrollment after a confirmed payment. source is
// "verify" or "webhook".
func (l *Logger) StudentEnrolled(ctx context.Context, r *http.Request, userID primitive.ObjectID, courseIDs []primitive.ObjectID, source string) {
	details := map[string]string{"source": source, "courses": strconv.Itoa(len(courseIDs))}
	for i, id := range courseIDs {
		details["course_"+strconv.Itoa(i)] = id.Hex()
	}
	l.Log(ctx, fromRequest(r, audit.Event{
		Category:  audit.CategoryPayment,
		EventType: audit.EventStudentEnrolled,
		UserID:    &userID,
		Success:   true,
		Details:   details,
	}))
}
