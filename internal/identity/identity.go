package identity

import (
	"context"
	"errors"

	"github.com/Madhu0614/Ai-task-hub-madhu/internal/store"
	"github.com/Madhu0614/Ai-task-hub-madhu/pkg/types"
)

var ErrUnknownToken = errors.New("unknown token")

// Resolver maps an opaque bearer token to a user. The sync core treats
// identity as an external collaborator; this is the narrow surface it
// consumes.
type Resolver interface {
	CurrentUser(ctx context.Context, token string) (*types.User, error)
}

// StoreResolver resolves tokens against the user table.
type StoreResolver struct {
	Store *store.Store
}

func (r StoreResolver) CurrentUser(ctx context.Context, token string) (*types.User, error) {
	if token == "" {
		return nil, ErrUnknownToken
	}
	u, err := r.Store.UserByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnknownToken
	}
	if err != nil {
		return nil, err
	}
	return &types.User{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}, nil
}

// StaticResolver maps tokens to users from a fixed table. Used in tests and
// single-user dev setups without a database.
type StaticResolver map[string]types.User

func (r StaticResolver) CurrentUser(_ context.Context, token string) (*types.User, error) {
	u, ok := r[token]
	if !ok {
		return nil, ErrUnknownToken
	}
	return &u, nil
}
