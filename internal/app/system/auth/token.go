// internal/app/system/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Verification failures. Handlers map these to response codes; the wrapped
// jwt error is never shown to the caller.
var (
	ErrTokenMissing        = errors.New("token missing")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("token invalid")
	ErrServerMisconfigured = errors.New("token signing secret not configured")
)

// Identity is the verified caller attached to the request context.
// Role is a snapshot taken at login; authorization re-reads the stored user.
type Identity struct {
	ID    primitive.ObjectID
	Role  string
	Email string
}

// Claims is the JWT payload issued at login.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"accountType"`
	jwt.RegisteredClaims
}

// Issuer signs HS256 tokens for authenticated users.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer. An empty secret is rejected at Issue time so
// the process can still start and report the problem per request.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for id and returns it with its expiry.
func (i *Issuer) Issue(id Identity) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, ErrServerMisconfigured
	}
	now := i.now()
	exp := now.Add(i.ttl)
	claims := Claims{
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verifier checks token signatures and expiry and resolves an Identity.
type Verifier struct {
	secret  []byte
	cookies *CookieCodec
	now     func() time.Time
}

// NewVerifier returns a Verifier. cookies may be nil, in which case the
// cookie source is skipped.
func NewVerifier(secret string, cookies *CookieCodec) *Verifier {
	return &Verifier{secret: []byte(secret), cookies: cookies, now: time.Now}
}

// Verify validates tokenString and returns the caller identity.
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrTokenMissing
	}
	if len(v.secret) == 0 {
		return nil, ErrServerMisconfigured
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	oid, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}
	return &Identity{ID: oid, Role: claims.Role, Email: claims.Email}, nil
}
