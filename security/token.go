package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const resetTokenTTL = 24 * time.Hour

var errInvalidToken = errors.New("invalid token")

// Claims is the access-token payload.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ResetClaims is the password-reset token payload. TokenType guards against
// an access token being replayed as a reset token.
type ResetClaims struct {
	Email     string `json:"email"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens with a shared secret.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// TTL returns the access-token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Generate issues an access token for the user.
func (tm *TokenManager) Generate(userID uint, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// Parse verifies signature and expiry. Any malformed, expired or mis-signed
// token comes back as an error; callers treat all of them as invalid.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, tm.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errInvalidToken
	}
	return claims, nil
}

// GenerateResetToken issues a purpose-scoped password-reset token carrying
// only the email, valid for 24 hours.
func (tm *TokenManager) GenerateResetToken(email string) (string, error) {
	now := time.Now()
	claims := &ResetClaims{
		Email:     email,
		TokenType: "password_reset",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(resetTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

// ParseResetToken verifies a reset token and returns the embedded email.
// Tokens of any other type are rejected.
func (tm *TokenManager) ParseResetToken(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &ResetClaims{}, tm.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*ResetClaims)
	if !ok || !token.Valid || claims.TokenType != "password_reset" {
		return "", errInvalidToken
	}
	return claims.Email, nil
}

func (tm *TokenManager) keyFunc(t *jwt.Token) (interface{}, error) {
	return tm.secret, nil
}
