// Package auth resolves opaque bearer tokens to the account that owns them.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/offerhub/offerhub/internal/account"
	"github.com/offerhub/offerhub/internal/apperr"
)

const bearerPrefix = "Bearer "

// Identity is the authenticated caller handed to write operations.
type Identity struct {
	ID      string          `json:"_id"`
	Email   string          `json:"email"`
	Account account.Profile `json:"account"`
}

// Cache stores resolved identities by token. Implementations must treat
// every failure as a miss.
type Cache interface {
	Get(ctx context.Context, token string) (Identity, bool)
	Set(ctx context.Context, token string, id Identity)
}

// Gate validates bearer tokens against the account store.
type Gate struct {
	accounts account.Repository
	cache    Cache
	logger   *slog.Logger
}

// NewGate builds a Gate. cache may be nil.
func NewGate(accounts account.Repository, cache Cache, logger *slog.Logger) *Gate {
	return &Gate{accounts: accounts, cache: cache, logger: logger}
}

// Resolve turns an Authorization header value into an Identity. The
// "Bearer " prefix is optional.
func (g *Gate) Resolve(ctx context.Context, header string) (Identity, error) {
	token := strings.TrimPrefix(header, bearerPrefix)
	if token == "" {
		return Identity{}, apperr.ErrUnauthorized
	}

	if g.cache != nil {
		if id, ok := g.cache.Get(ctx, token); ok {
			return id, nil
		}
	}

	acc, err := g.accounts.FindByToken(ctx, token)
	if errors.Is(err, account.ErrNotFound) {
		return Identity{}, apperr.ErrUnauthorized
	}
	if err != nil {
		if g.logger != nil {
			g.logger.Error("auth.lookup_failed", slog.Any("error", err))
		}
		return Identity{}, apperr.Dependency("lookup token", err)
	}

	id := Identity{ID: acc.ID, Email: acc.Email, Account: acc.Profile}
	if g.cache != nil {
		g.cache.Set(ctx, token, id)
	}
	return id, nil
}
