package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserClaims is what a session token says about its holder.
type UserClaims struct {
	UID       string
	Email     string
	Name      string
	ExpiresAt time.Time
}

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// JwtIssuer signs HS256 session tokens whose subject is the user uid.
type JwtIssuer struct {
	secret secretProvider
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type JwtConfig struct {
	Secret secretProvider
	Issuer string
	TTL    time.Duration
}

func NewJWTIssuer(cfg JwtConfig) *JwtIssuer {
	return &JwtIssuer{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

// Issue returns a signed token for claims and the moment it expires.
func (ti *JwtIssuer) Issue(claims UserClaims) (string, time.Time, error) {
	if claims.UID == "" {
		return "", time.Time{}, errors.New("token subject is empty")
	}

	now := ti.now()
	exp := now.Add(ti.ttl)
	tk, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   claims.UID,
			Issuer:    ti.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: claims.Email,
		Name:  claims.Name,
	}).SignedString(ti.secret.Get())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tk, exp, nil
}

// Validate parses a token issued by ti and returns its claims.
func (ti *JwtIssuer) Validate(raw string) (UserClaims, error) {
	var claims jwtClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return ti.secret.Get(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ti.issuer),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return UserClaims{}, fmt.Errorf("parse token: %w", err)
	}

	uc := UserClaims{
		UID:   claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
	}
	if claims.ExpiresAt != nil {
		uc.ExpiresAt = claims.ExpiresAt.Time
	}
	return uc, nil
}
