package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer identifies the service that issues admin tokens.
const TokenIssuer = "SetMyStay"

const (
	RoleAdmin = "admin"

	// PurposeAdminStep tokens carry progress through the login wizard;
	// only PurposeAdminAccess tokens open the admin API.
	PurposeAdminStep   = "admin_step"
	PurposeAdminAccess = "admin_access"
)

// Claims is the claim set of every token this package issues.
type Claims struct {
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	Step    string `json:"step,omitempty"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for subject.
func IssueToken(signingKey []byte, subject, role, purpose, step string, ttl time.Duration) (string, error) {
	if len(signingKey) == 0 {
		return "", errors.New("empty signing key")
	}
	now := time.Now()
	claims := Claims{
		Role:    role,
		Purpose: purpose,
		Step:    step,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

// ValidateToken checks signature, issuer, expiry and purpose.
// Expired tokens return an error wrapping jwt.ErrTokenExpired.
func ValidateToken(tokenString string, signingKey []byte, purpose string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return signingKey, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Purpose != purpose {
		return nil, errors.New("token used for the wrong purpose")
	}
	return claims, nil
}
