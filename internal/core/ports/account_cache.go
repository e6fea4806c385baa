package ports

import (
	"context"

	"github.com/vidstream/account-service/internal/core/domain"
)

// AccountCache is a TTL-bound cache of public projections keyed by account
// id. Get returns (nil, nil) on a miss; cache failures are advisory and must
// not fail the request path.
type AccountCache interface {
	Get(ctx context.Context, id string) (*domain.PublicAccount, error)
	Set(ctx context.Context, account *domain.PublicAccount) error
}
