package trust

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// AdminClaims is the JWT payload an administrator bearer token carries,
// authorizing Review/Approve/Deny transitions.
type AdminClaims struct {
	jwt.RegisteredClaims
	Subject string `json:"sub"`
}

var (
	ErrInvalidAdminToken = errors.New("trust: invalid admin token")
	ErrAdminTokenExpired = errors.New("trust: admin token expired")
)

// AdminAuthenticator signs and verifies the HMAC bearer token used to
// authorize administrator approval actions, grounded on the teacher's
// authn package (golang-jwt/jwt/v4, HMAC signing method check before
// trusting claims) generalized from cluster-access tokens to approval
// administration.
type AdminAuthenticator struct {
	secret []byte
	ttl    time.Duration
}

func NewAdminAuthenticator(secret []byte, ttl time.Duration) *AdminAuthenticator {
	return &AdminAuthenticator{secret: secret, ttl: ttl}
}

// IssueToken mints a bearer token for subject (an administrator identity).
func (a *AdminAuthenticator) IssueToken(subject string) (string, error) {
	now := time.Now().UTC()
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Subject: subject,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Verify parses and validates tokenStr, returning the administrator
// subject it was issued for.
func (a *AdminAuthenticator) Verify(tokenStr string) (string, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("trust: unexpected signing method: %v", tk.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrAdminTokenExpired
		}
		return "", ErrInvalidAdminToken
	}
	if !token.Valid {
		return "", ErrInvalidAdminToken
	}
	return claims.Subject, nil
}
