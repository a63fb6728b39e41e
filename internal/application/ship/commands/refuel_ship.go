package commands

import (
	"context"
	"fmt"

	"github.com/acdtunes/spacetraders-fleet/internal/adapters/metrics"
	"github.com/acdtunes/spacetraders-fleet/internal/application/common"
	"github.com/acdtunes/spacetraders-fleet/internal/application/logging"
	"github.com/acdtunes/spacetraders-fleet/internal/application/ship/types"
	"github.com/acdtunes/spacetraders-fleet/internal/domain/navigation"
	"github.com/acdtunes/spacetraders-fleet/internal/domain/player"
	domainPorts "github.com/acdtunes/spacetraders-fleet/internal/domain/ports"
	"github.com/acdtunes/spacetraders-fleet/internal/domain/shared"
)

// RefuelShipHandler - Handles refuel ship commands
type RefuelShipHandler struct {
	shipRepo   navigation.ShipRepository
	playerRepo player.PlayerRepository
	apiClient  domainPorts.APIClient
}

// NewRefuelShipHandler creates a new refuel ship handler
func NewRefuelShipHandler(
	shipRepo navigation.ShipRepository,
	playerRepo player.PlayerRepository,
	apiClient domainPorts.APIClient,
) *RefuelShipHandler {
	return &RefuelShipHandler{
		shipRepo:   shipRepo,
		playerRepo: playerRepo,
		apiClient:  apiClient,
	}
}

// Handle executes the refuel ship command
func (h *RefuelShipHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*types.RefuelShipCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	ship, err := h.loadShip(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if err := h.validateAtFuelStation(ship); err != nil {
		return nil, err
	}

	if err := h.ensureShipDockedForRefuel(ctx, ship, cmd.PlayerID); err != nil {
		return nil, err
	}

	// Fetch current credits (balance before)
	balanceBefore, err := h.fetchCurrentCredits(ctx)
	if err != nil {
		// Log warning but don't fail the operation
		logger := logging.LoggerFromContext(ctx)
		logger.Log("WARN", "Failed to fetch credits before refuel, purchase will not be logged", map[string]interface{}{
			"error": err.Error(),
			"ship":  cmd.ShipSymbol,
		})
	}

	fuelBefore := ship.Fuel().Current

	if err := h.refuelShipViaAPI(ctx, ship, cmd); err != nil {
		return nil, err
	}

	response := h.buildRefuelResponse(ship, fuelBefore)

	// Record fuel purchase metrics
	metrics.RecordFuelPurchase(
		cmd.PlayerID.Value(),
		ship.CurrentLocation().Symbol,
		response.FuelAdded,
	)

	if balanceBefore > 0 { // Only log if we successfully fetched balance
		h.logRefuelPurchase(ctx, cmd, response, balanceBefore)
	}

	return response, nil
}

func (h *RefuelShipHandler) loadShip(ctx context.Context, cmd *types.RefuelShipCommand) (*navigation.Ship, error) {
	ship, err := h.shipRepo.FindBySymbol(ctx, cmd.ShipSymbol, cmd.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("ship not found: %w", err)
	}
	return ship, nil
}

func (h *RefuelShipHandler) validateAtFuelStation(ship *navigation.Ship) error {
	if !ship.CurrentLocation().HasFuel {
		return fmt.Errorf("waypoint does not have fuel station")
	}
	return nil
}

func (h *RefuelShipHandler) ensureShipDockedForRefuel(ctx context.Context, ship *navigation.Ship, playerID shared.PlayerID) error {
	stateChanged, err := ship.EnsureDocked()
	if err != nil {
		return err
	}

	if stateChanged {
		if err := h.shipRepo.Dock(ctx, ship, playerID); err != nil {
			return fmt.Errorf("failed to dock ship: %w", err)
		}
	}
	return nil
}

func (h *RefuelShipHandler) refuelShipViaAPI(ctx context.Context, ship *navigation.Ship, cmd *types.RefuelShipCommand) error {
	if err := h.shipRepo.Refuel(ctx, ship, cmd.PlayerID, cmd.Units); err != nil {
		return fmt.Errorf("failed to refuel ship: %w", err)
	}
	return nil
}

func (h *RefuelShipHandler) buildRefuelResponse(ship *navigation.Ship, fuelBefore int) *types.RefuelShipResponse {
	fuelAdded := ship.Fuel().Current - fuelBefore
	creditsCost := fuelAdded * 100

	return &types.RefuelShipResponse{
		FuelAdded:    fuelAdded,
		CurrentFuel:  ship.Fuel().Current,
		CreditsCost:  creditsCost,
		Status:       "refueled",
		FuelCapacity: ship.Fuel().Capacity,
	}
}

// fetchCurrentCredits fetches the player's current credits from the API
func (h *RefuelShipHandler) fetchCurrentCredits(ctx context.Context) (int, error) {
	token, err := common.PlayerTokenFromContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("player token not found in context: %w", err)
	}

	agent, err := h.apiClient.GetAgent(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch agent credits: %w", err)
	}

	return agent.Credits, nil
}

// logRefuelPurchase emits a structured log entry for the fuel purchase so
// it shows up in the container's log stream alongside the rest of the trip.
func (h *RefuelShipHandler) logRefuelPurchase(
	ctx context.Context,
	cmd *types.RefuelShipCommand,
	response *types.RefuelShipResponse,
	balanceBefore int,
) {
	logger := logging.LoggerFromContext(ctx)

	balanceAfter := balanceBefore - response.CreditsCost

	playerData, err := h.playerRepo.FindByID(ctx, cmd.PlayerID)
	agentSymbol := "UNKNOWN"
	if err == nil && playerData != nil {
		agentSymbol = playerData.AgentSymbol
	}

	logger.Log("INFO", fmt.Sprintf("Refueled ship %s", cmd.ShipSymbol), map[string]interface{}{
		"agent":          agentSymbol,
		"ship_symbol":    cmd.ShipSymbol,
		"fuel_added":     response.FuelAdded,
		"cost":           response.CreditsCost,
		"balance_before": balanceBefore,
		"balance_after":  balanceAfter,
	})
}
