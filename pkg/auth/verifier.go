package auth

import (
	"context"
	"errors"
	"fmt"

	"resume-review-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// Audience carried by Supabase tokens issued to signed-in users.
const Audience = "authenticated"

// Verifier checks Supabase access tokens: HS256 with the project secret,
// RS256 against the project's JWKS.
type Verifier struct {
	secret []byte
	keys   *KeySet
}

var _ domain.TokenVerifier = (*Verifier)(nil)

func NewVerifier(hsSecret string, keys *KeySet) *Verifier {
	v := &Verifier{keys: keys}
	if hsSecret != "" {
		v.secret = []byte(hsSecret)
	}
	return v
}

func (v *Verifier) Verify(ctx context.Context, rawToken string) (*domain.TokenClaims, error) {
	token, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		switch token.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if v.secret == nil {
				return nil, fmt.Errorf("HS256 token received but SUPABASE_JWT_SECRET is not configured")
			}
			return v.secret, nil
		case *jwt.SigningMethodRSA:
			if v.keys == nil {
				return nil, fmt.Errorf("RS256 token received but no JWKS endpoint is configured")
			}
			return v.keys.KeyFunc(ctx)(token)
		default:
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(Audience),
	)
	if err != nil {
		if errors.Is(err, ErrProviderUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if exp, err := claims.GetExpirationTime(); err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing exp claim", ErrInvalidToken)
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}

	return &domain.TokenClaims{Subject: sub, Email: email}, nil
}
