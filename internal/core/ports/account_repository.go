package ports

import (
	"context"

	"github.com/vidstream/account-service/internal/core/domain"
)

// AccountRepository defines the persistence contract for accounts. Lookups
// return (nil, nil) when no account matches. Refresh token mutations are
// single-field updates the store applies atomically.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindPublicByID(ctx context.Context, id string) (*domain.PublicAccount, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*domain.Account, error)
	UpdateRefreshToken(ctx context.Context, id, token string) error
	ClearRefreshToken(ctx context.Context, id string) error
}
