package config

import (
	"os"
	"strings"
)

const (
	apiTokensEnv     = "API_TOKENS"
	defaultUserIDEnv = "DEFAULT_USER_ID"
)

type IdentityConfig struct {
	// TokenUsers maps caller bearer tokens to user identifiers,
	// parsed from API_TOKENS ("token:user" pairs, comma separated).
	TokenUsers map[string]string
	// DefaultUserID is the single-tenant fallback identity used when
	// no token map is configured.
	DefaultUserID string
}

func LoadIdentityConfig() *IdentityConfig {
	tokenUsers := make(map[string]string)
	for _, pair := range strings.Split(os.Getenv(apiTokensEnv), ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, userID, ok := strings.Cut(pair, ":")
		if !ok || token == "" || userID == "" {
			continue
		}
		tokenUsers[token] = userID
	}

	return &IdentityConfig{
		TokenUsers:    tokenUsers,
		DefaultUserID: os.Getenv(defaultUserIDEnv),
	}
}

func (c *IdentityConfig) Validate() error {
	if c == nil || (len(c.TokenUsers) == 0 && c.DefaultUserID == "") {
		return ErrIdentityUnconfigured
	}
	return nil
}
