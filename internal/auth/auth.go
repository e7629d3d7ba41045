package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/frahmantamala/hr-backoffice/internal"
	"github.com/golang-jwt/jwt/v5"
)

// Credentials is what login needs from the users table.
type Credentials struct {
	UserID       int64
	Username     string
	PasswordHash string
	Role         string
	DepartmentID *int64
	Status       string
}

func (c *Credentials) Actor() *apperrors.Actor {
	return &apperrors.Actor{
		UserID:       c.UserID,
		Username:     c.Username,
		Role:         c.Role,
		DepartmentID: c.DepartmentID,
	}
}

type AuthTokens struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID       int64  `json:"user_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	DepartmentID *int64 `json:"department_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Actor() *apperrors.Actor {
	return &apperrors.Actor{
		UserID:       c.UserID,
		Username:     c.Username,
		Role:         c.Role,
		DepartmentID: c.DepartmentID,
	}
}

type TokenGenerator interface {
	GenerateAccessToken(actor *apperrors.Actor) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &JWTTokenGenerator{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the issuing clock.
func (j *JWTTokenGenerator) WithClock(now func() time.Time) *JWTTokenGenerator {
	j.now = now
	return j
}

func (j *JWTTokenGenerator) GenerateAccessToken(actor *apperrors.Actor) (string, time.Time, error) {
	issuedAt := j.now()
	expiresAt := issuedAt.Add(j.ttl)

	claims := &Claims{
		UserID:       actor.UserID,
		Username:     actor.Username,
		Role:         actor.Role,
		DepartmentID: actor.DepartmentID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Subject:   strconv.FormatInt(actor.UserID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken.WithCause(err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID > 0 {
		return claims, nil
	}
	return nil, apperrors.ErrInvalidToken
}
