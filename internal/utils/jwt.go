package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SignedToken represents a signed JWT along with its expiry.  The Token
// field contains the serialized JWT string and Exp the UTC expiration
// time.  Access tokens travel in the Authorization header; refresh
// tokens travel only in an HttpOnly cookie.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// ErrInvalidToken is returned by Verify for any token that cannot be
// honored: bad signature, malformed payload or missing subject.  Expired
// tokens surface the library's jwt.ErrTokenExpired instead so callers
// can tell the two apart when they care to.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs a short-lived HS256 JWT for a user.
// It takes the access signing secret, the user ID and a TTL in minutes.
// The JWT carries the standard claims: subject (sub), expiration (exp)
// and issued at (iat).  The caller's role is deliberately not embedded;
// the auth gate resolves the user record on every request so that role
// changes and soft deletes take effect immediately.
func NewAccessToken(secret string, userID uint64, ttlMin int) (SignedToken, error) {
	return signToken(secret, userID, time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken builds and signs a long-lived HS256 JWT for a user
// using the refresh signing secret and a TTL in days.  Because the two
// token kinds are signed with different secrets, a refresh token can
// never pass verification on an endpoint expecting an access token and
// vice versa.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (SignedToken, error) {
	return signToken(secret, userID, time.Duration(ttlDays)*24*time.Hour)
}

func signToken(secret string, userID uint64, ttl time.Duration) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// Verify parses and validates a token against the given secret and
// returns the subject user ID and expiry.  Only HMAC-signed tokens are
// accepted.  A token whose exp equals the current instant is already
// expired.
func Verify(secret, raw string) (uint64, time.Time, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, time.Time{}, jwt.ErrTokenExpired
		}
		return 0, time.Time{}, ErrInvalidToken
	}
	if !tok.Valid {
		return 0, time.Time{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, time.Time{}, ErrInvalidToken
	}
	sub, exp, ok := subjectAndExpiry(claims)
	if !ok {
		return 0, time.Time{}, ErrInvalidToken
	}
	return sub, exp, nil
}

// DecodeUnverified extracts the subject and expiry from a token WITHOUT
// checking its signature.  It exists solely so that logout can compute
// the remaining TTL for the blacklist entry; it MUST NOT be used to
// authorize anything.
func DecodeUnverified(raw string) (uint64, time.Time, bool) {
	tok, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return 0, time.Time{}, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, time.Time{}, false
	}
	sub, exp, ok := subjectAndExpiry(claims)
	if !ok {
		return 0, time.Time{}, false
	}
	return sub, exp, true
}

// subjectAndExpiry pulls the sub and exp claims out of a claim map.
// JSON numbers decode as float64; both are required.
func subjectAndExpiry(claims jwt.MapClaims) (uint64, time.Time, bool) {
	subVal, ok := claims["sub"].(float64)
	if !ok || subVal <= 0 {
		return 0, time.Time{}, false
	}
	expVal, ok := claims["exp"].(float64)
	if !ok {
		return 0, time.Time{}, false
	}
	return uint64(subVal), time.Unix(int64(expVal), 0).UTC(), true
}
