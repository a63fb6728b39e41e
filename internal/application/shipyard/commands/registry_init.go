package commands

import (
	"fmt"

	"github.com/acdtunes/spacetraders-fleet/internal/application/registry"
	"github.com/acdtunes/spacetraders-fleet/internal/domain/shared"
)

func init() {
	registry.Register("purchase_ship", func(config map[string]interface{}, playerID int) (interface{}, error) {
		shipSymbol, ok := config["ship_symbol"].(string)
		if !ok {
			return nil, fmt.Errorf("missing or invalid ship_symbol")
		}
		shipType, ok := config["ship_type"].(string)
		if !ok {
			return nil, fmt.Errorf("missing or invalid ship_type")
		}
		shipyardWaypoint, _ := config["shipyard"].(string)

		return &PurchaseShipCommand{
			PurchasingShipSymbol: shipSymbol,
			ShipType:             shipType,
			PlayerID:             shared.MustNewPlayerID(playerID),
			ShipyardWaypoint:     shipyardWaypoint,
		}, nil
	})

	registry.Register("batch_purchase_ships", func(config map[string]interface{}, playerID int) (interface{}, error) {
		shipSymbol, ok := config["ship_symbol"].(string)
		if !ok {
			return nil, fmt.Errorf("missing or invalid ship_symbol")
		}
		shipType, ok := config["ship_type"].(string)
		if !ok {
			return nil, fmt.Errorf("missing or invalid ship_type")
		}
		quantity, ok := config["quantity"].(float64)
		if !ok {
			return nil, fmt.Errorf("missing or invalid quantity")
		}
		maxBudget, ok := config["max_budget"].(float64)
		if !ok {
			return nil, fmt.Errorf("missing or invalid max_budget")
		}
		shipyardWaypoint, _ := config["shipyard"].(string)

		return &BatchPurchaseShipsCommand{
			PurchasingShipSymbol: shipSymbol,
			ShipType:             shipType,
			Quantity:             int(quantity),
			MaxBudget:            int(maxBudget),
			PlayerID:             shared.MustNewPlayerID(playerID),
			ShipyardWaypoint:     shipyardWaypoint,
		}, nil
	})
}
