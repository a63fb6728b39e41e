package commands

import (
	"fmt"

	"github.com/acdtunes/spacetraders-fleet/internal/application/registry"
	"github.com/acdtunes/spacetraders-fleet/internal/domain/shared"
)

func init() {
	registry.Register("scout_tour", func(config map[string]interface{}, playerID int) (interface{}, error) {
		shipSymbol, ok := config["ship_symbol"].(string)
		if !ok {
			return nil, fmt.Errorf("missing or invalid ship_symbol")
		}

		marketsRaw, ok := config["markets"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("missing or invalid markets")
		}
		markets := make([]string, len(marketsRaw))
		for i, m := range marketsRaw {
			markets[i], ok = m.(string)
			if !ok {
				return nil, fmt.Errorf("invalid market entry at index %d", i)
			}
		}

		iterations, ok := config["iterations"].(float64)
		if !ok {
			return nil, fmt.Errorf("missing or invalid iterations")
		}

		return &ScoutTourCommand{
			PlayerID:   shared.MustNewPlayerID(playerID),
			ShipSymbol: shipSymbol,
			Markets:    markets,
			Iterations: int(iterations),
		}, nil
	})
}
