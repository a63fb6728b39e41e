package persistence

import (
	"context"

	"github.com/acdtunes/spacetraders-fleet/internal/domain/market"
)

// MarketRepositoryAdapter adapts MarketRepositoryGORM's (uint playerID, playerID-first)
// argument order to the domain market.MarketRepository port, which callers outside the
// persistence package depend on instead of the concrete GORM type.
type MarketRepositoryAdapter struct {
	marketRepo *MarketRepositoryGORM
}

// NewMarketRepositoryAdapter creates a new adapter satisfying market.MarketRepository.
func NewMarketRepositoryAdapter(marketRepo *MarketRepositoryGORM) *MarketRepositoryAdapter {
	return &MarketRepositoryAdapter{marketRepo: marketRepo}
}

func (a *MarketRepositoryAdapter) GetMarketData(ctx context.Context, waypointSymbol string, playerID int) (*market.Market, error) {
	return a.marketRepo.GetMarketData(ctx, uint(playerID), waypointSymbol)
}

func (a *MarketRepositoryAdapter) FindCheapestMarketSelling(ctx context.Context, goodSymbol, systemSymbol string, playerID int) (*market.CheapestMarketResult, error) {
	return a.marketRepo.FindCheapestMarketSelling(ctx, goodSymbol, systemSymbol, playerID)
}

func (a *MarketRepositoryAdapter) FindBestMarketBuying(ctx context.Context, goodSymbol, systemSymbol string, playerID int) (*market.BestMarketBuyingResult, error) {
	return a.marketRepo.FindBestMarketBuying(ctx, goodSymbol, systemSymbol, playerID)
}
