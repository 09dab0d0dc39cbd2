package domain

import "context"

type SessionKind string

const (
	SessionUnauthenticated SessionKind = "unauthenticated"
	SessionAuthenticated   SessionKind = "authenticated"
	SessionAdmin           SessionKind = "admin"
)

// Session is the resolved identity of the caller for one request.
type Session struct {
	Kind   SessionKind `json:"kind"`
	UserID string      `json:"user_id,omitempty"`
	Email  string      `json:"email,omitempty"`
}

func (s Session) IsAuthenticated() bool {
	return s.Kind == SessionAuthenticated || s.Kind == SessionAdmin
}

func (s Session) IsAdmin() bool {
	return s.Kind == SessionAdmin
}

// LandingPath is where a freshly signed-in caller should be sent.
func (s Session) LandingPath() string {
	switch s.Kind {
	case SessionAdmin:
		return "/admin"
	case SessionAuthenticated:
		return "/dashboard"
	default:
		return "/"
	}
}

// TokenClaims are the provider claims the core relies on.
type TokenClaims struct {
	Subject string
	Email   string
}

// TokenVerifier validates an opaque session credential issued by the identity provider.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*TokenClaims, error)
}

// MagicLinkSender asks the identity provider to email a passwordless sign-in link.
type MagicLinkSender interface {
	SendMagicLink(ctx context.Context, email, redirectTo string) error
}

type SessionUsecase interface {
	Resolve(ctx context.Context, rawToken string) (Session, error)
	EnsureUser(ctx context.Context, id, email string) (*User, error)
	RequestMagicLink(ctx context.Context, email string) error
}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, KeySession, s)
}

// SessionFrom returns the unauthenticated session when none was attached.
func SessionFrom(ctx context.Context) Session {
	if s, ok := ctx.Value(KeySession).(Session); ok {
		return s
	}
	// Gin contexts expose c.Set values under plain string keys
	if s, ok := ctx.Value(string(KeySession)).(Session); ok {
		return s
	}
	return Session{Kind: SessionUnauthenticated}
}
