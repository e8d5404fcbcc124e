package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"stakeyard/pkg/domain"
)

// JWTVerifier issues and verifies HMAC-signed account tokens. The account the
// token was issued to travels in the subject claim.
type JWTVerifier struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewJWTVerifier(signingKey string, ttl time.Duration) *JWTVerifier {
	return &JWTVerifier{
		signingKey: []byte(signingKey),
		issuer:     "stakeyard",
		ttl:        ttl,
	}
}

// IssueToken mints a token for the given account. Used by operator tooling
// and tests; the service itself never mints tokens.
func (v *JWTVerifier) IssueToken(acct domain.AccountName) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    v.issuer,
		Subject:   acct.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.signingKey)
}

// VerifyToken validates signature, expiry, and issuer, then parses the
// subject as an account name.
func (v *JWTVerifier) VerifyToken(tokenString string) (domain.AccountName, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.signingKey, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	acct, err := domain.ParseAccountName(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("token subject: %w", err)
	}
	return acct, nil
}
