package auth

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const issuerName = "reservations-api"

// JWTIssuer mints HS256 tokens. The session store still decides validity, so a
// revoked JWT is rejected even while its signature and exp are fine.
type JWTIssuer struct {
	Secret []byte
}

func NewJWTIssuer(secret string) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt: empty secret")
	}
	return &JWTIssuer{Secret: []byte(secret)}, nil
}

// Issue builds a token with a ULID jti so two logins in the same second differ.
func (j *JWTIssuer) Issue(userName string, issuedAt time.Time, expiresAt *time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        ulid.MustNew(ulid.Timestamp(issuedAt), rand.Reader).String(),
		Issuer:    issuerName,
		Subject:   userName,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
	}
	if expiresAt != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*expiresAt)
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.Secret)
}

// Parse verifies signature and time claims and returns the subject.
func (j *JWTIssuer) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return j.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuerName))
	if err != nil {
		return "", err
	}
	if !tok.Valid || claims.Subject == "" {
		return "", errors.New("jwt: invalid token")
	}
	return claims.Subject, nil
}
