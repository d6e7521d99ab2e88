package identity

import (
	"errors"

	"github.com/medimind/reminder-dispatch/internal/config"
)

var ErrUnknownToken = errors.New("unknown caller token")

// Resolver maps a caller credential to a user identifier. The
// credential may be empty; single-tenant deployments resolve every
// request to the same configured user.
type Resolver interface {
	Resolve(token string) (string, error)
}

// StaticResolver answers with one fixed user id regardless of
// credential.
type StaticResolver struct {
	userID string
}

func NewStaticResolver(userID string) *StaticResolver {
	return &StaticResolver{userID: userID}
}

func (r *StaticResolver) Resolve(string) (string, error) {
	return r.userID, nil
}

// TokenMapResolver resolves bearer tokens through a configured
// token-to-user table, with an optional fallback identity for
// unauthenticated requests.
type TokenMapResolver struct {
	tokenUsers map[string]string
	fallback   string
}

func NewTokenMapResolver(tokenUsers map[string]string, fallback string) *TokenMapResolver {
	return &TokenMapResolver{
		tokenUsers: tokenUsers,
		fallback:   fallback,
	}
}

func (r *TokenMapResolver) Resolve(token string) (string, error) {
	if token == "" {
		if r.fallback != "" {
			return r.fallback, nil
		}
		return "", ErrUnknownToken
	}

	userID, ok := r.tokenUsers[token]
	if !ok {
		return "", ErrUnknownToken
	}
	return userID, nil
}

func FromConfig(cfg *config.IdentityConfig) Resolver {
	if len(cfg.TokenUsers) > 0 {
		return NewTokenMapResolver(cfg.TokenUsers, cfg.DefaultUserID)
	}
	return NewStaticResolver(cfg.DefaultUserID)
}
