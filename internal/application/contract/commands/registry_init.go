package commands

import (
	"fmt"

	"github.com/acdtunes/spacetraders-fleet/internal/application/registry"
	"github.com/acdtunes/spacetraders-fleet/internal/domain/shared"
)

func init() {
	registry.Register("contract_workflow", func(config map[string]interface{}, playerID int) (interface{}, error) {
		shipSymbol, ok := config["ship_symbol"].(string)
		if !ok {
			return nil, fmt.Errorf("missing or invalid ship_symbol")
		}
		coordinatorID, _ := config["coordinator_id"].(string)

		return &RunWorkflowCommand{
			ShipSymbol:         shipSymbol,
			PlayerID:           shared.MustNewPlayerID(playerID),
			CoordinatorID:      coordinatorID,
			CompletionCallback: nil,
		}, nil
	})

	registry.Register("contract_fleet_coordinator", func(config map[string]interface{}, playerID int) (interface{}, error) {
		containerID, ok := config["container_id"].(string)
		if !ok {
			return nil, fmt.Errorf("missing or invalid container_id")
		}

		return &RunFleetCoordinatorCommand{
			PlayerID:    shared.MustNewPlayerID(playerID),
			ShipSymbols: []string{},
			ContainerID: containerID,
		}, nil
	})
}
