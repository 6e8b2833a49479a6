package auth

import (
	"errors"
	"fmt"
	"time"

	autherrors "github.com/Keerthudarshu/petandco/internal/auth/errors"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Subject string
	Role    Role
}

//go:generate mockgen -source=auth_token.go -destination=../mock/auth/auth_token_mock.go -package=mock
type TokenVerifier interface {
	Verify(token string) (Claims, error)
}

// JWTVerifier checks HMAC-signed tokens issued by the commerce backend.
type JWTVerifier struct {
	secret []byte
	leeway time.Duration
}

func NewJWTVerifier(secret string, leeway time.Duration) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), leeway: leeway}
}

func (v *JWTVerifier) Verify(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithLeeway(v.leeway))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, autherrors.ErrTokenExpired.Wrap(err)
		}
		return Claims{}, autherrors.ErrInvalidToken.Wrap(err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, autherrors.ErrInvalidToken
	}

	var c Claims
	if sub, err := mc.GetSubject(); err == nil && sub != "" {
		c.Subject = sub
	} else if uid, ok := mc["user_id"].(string); ok {
		c.Subject = uid
	}
	raw, _ := mc["role"].(string)
	role, ok := ParseRole(raw)
	if !ok {
		return Claims{}, autherrors.ErrInvalidToken.Wrap(fmt.Errorf("unknown role claim %q", raw))
	}
	c.Role = role
	return c, nil
}
