package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the authenticated principal bound to a connection or request.
// Immutable for the lifetime of a connection.
type Identity struct {
	UserID   string
	UserName string
	Role     string
}

// Verifier validates a bearer credential and yields the identity it was
// minted for, or rejects it.
type Verifier interface {
	Verify(token string) (*Identity, error)
}

// Claims defines the structure of the data stored inside the JWT.
type Claims struct {
	UserName string `json:"userName"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies the JWTs used for both REST and socket
// authentication.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewTokenService(secret []byte, ttl time.Duration, issuer string) *TokenService {
	return &TokenService{secret: secret, ttl: ttl, issuer: issuer}
}

// Mint creates a signed JWT for the given identity.
func (s *TokenService) Mint(identity Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserName: identity.UserName,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates the signature and expiration of a JWT string.
func (s *TokenService) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID:   claims.Subject,
		UserName: claims.UserName,
		Role:     claims.Role,
	}, nil
}
