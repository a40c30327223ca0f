// Package auth verifies and mints the signed access tokens presented on every
// authenticated surface (REST, event stream, chat transport).
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/studyhall/studyhall/internal/errors"
	"github.com/studyhall/studyhall/internal/user"
)

// TokenCookieName is the cookie carrying the access token on browser surfaces.
const TokenCookieName = "access_token"

// Config defines how access tokens are signed and verified.
type Config struct {
	Issuer string
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

// Claims captures the validated identity carried by an access token.
type Claims struct {
	UserID   int64
	Username string
	Role     user.Role
	Expires  time.Time
}

// accessClaims is the internal claims type used for JWT parsing.
type accessClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Mint signs an access token for the given user.
func Mint(cfg Config, u user.User) (string, error) {
	if len(cfg.Secret) == 0 {
		return "", errors.New("token signer is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	now := cfg.Now().UTC()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
		Username: u.Username,
		Role:     user.RoleLabel(u.Role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates an access token.
func Verify(token string, cfg Config) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, apperrors.New(apperrors.CodeUnauthenticated, "access token is required")
	}
	if len(cfg.Secret) == 0 {
		return Claims{}, errors.New("token verifier is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	var parsed accessClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(cfg.Now),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if cfg.Issuer != "" && parsed.Issuer != cfg.Issuer {
		return Claims{}, apperrors.New(apperrors.CodeTokenInvalid, "access token issuer mismatch")
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(parsed.Subject), 10, 64)
	if err != nil || userID <= 0 {
		return Claims{}, apperrors.New(apperrors.CodeTokenInvalid, "access token subject is not a user id")
	}
	role := user.RoleFromLabel(parsed.Role)
	if role == user.RoleUnspecified {
		return Claims{}, apperrors.New(apperrors.CodeTokenInvalid, "access token carries an unknown role")
	}

	var expires time.Time
	if parsed.ExpiresAt != nil {
		expires = parsed.ExpiresAt.Time
	}
	return Claims{
		UserID:   userID,
		Username: strings.TrimSpace(parsed.Username),
		Role:     role,
		Expires:  expires,
	}, nil
}

// TokenFromRequest extracts the access token from a request.
//
// The cookie, the Authorization header, and the token query parameter are all
// accepted; browser SSE clients cannot set headers, so the query form is part
// of the contract.
func TokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie != nil {
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value
		}
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
			if value := strings.TrimSpace(rest); value != "" {
				return value
			}
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.Wrap(apperrors.CodeTokenExpired, "access token is expired", err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return apperrors.Wrap(apperrors.CodeTokenInvalid, "access token is not valid yet", err)
	default:
		return apperrors.Wrap(apperrors.CodeTokenInvalid, "access token is invalid", err)
	}
}
