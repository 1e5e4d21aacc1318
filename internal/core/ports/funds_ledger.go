package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/account"
	"fulfillment/internal/core/domain/model/kernel"
)

// FundsLedger is the privileged write path for balances. Implementations must
// apply a posting as one atomic conditional update plus one journal row; a
// posting that would overdraw a sub-balance is refused, never clamped.
type FundsLedger interface {
	FindAccount(ctx context.Context, ownerID kernel.UUID, currency kernel.Currency) (*account.Account, error)
	Get(ctx context.Context, accountID kernel.UUID) (*account.Account, error)
	Post(ctx context.Context, movement account.Movement) (*account.Account, error)
}
