package commands

import (
	"context"
	"fmt"

	"github.com/acdtunes/spacetraders-fleet/internal/application/common"
	contractTypes "github.com/acdtunes/spacetraders-fleet/internal/application/contract/types"
	"github.com/acdtunes/spacetraders-fleet/internal/application/logging"
	"github.com/acdtunes/spacetraders-fleet/internal/domain/contract"
	"github.com/acdtunes/spacetraders-fleet/internal/domain/player"
	domainPorts "github.com/acdtunes/spacetraders-fleet/internal/domain/ports"
)

// Type aliases for convenience
type AcceptContractCommand = contractTypes.AcceptContractCommand
type AcceptContractResponse = contractTypes.AcceptContractResponse

// AcceptContractHandler - Handles accept contract commands
type AcceptContractHandler struct {
	contractRepo contract.ContractRepository
	playerRepo   player.PlayerRepository
	apiClient    domainPorts.APIClient
}

// NewAcceptContractHandler creates a new accept contract handler
func NewAcceptContractHandler(
	contractRepo contract.ContractRepository,
	playerRepo player.PlayerRepository,
	apiClient domainPorts.APIClient,
) *AcceptContractHandler {
	return &AcceptContractHandler{
		contractRepo: contractRepo,
		playerRepo:   playerRepo,
		apiClient:    apiClient,
	}
}

// Handle executes the accept contract command
func (h *AcceptContractHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AcceptContractCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	token, err := common.PlayerTokenFromContext(ctx)
	if err != nil {
		return nil, err
	}

	contract, err := h.loadContract(ctx, cmd.ContractID, cmd.PlayerID.Value())
	if err != nil {
		return nil, err
	}

	if err := h.acceptContractInDomain(contract); err != nil {
		return nil, err
	}

	// Fetch balance before accepting
	balanceBefore, err := h.fetchCurrentCredits(ctx, token)
	if err != nil {
		// Log warning but don't fail the operation
		logger := logging.LoggerFromContext(ctx)
		logger.Log("WARN", "Failed to fetch credits before accepting contract, acceptance payment will not be logged", map[string]interface{}{
			"error":       err.Error(),
			"contract_id": cmd.ContractID,
		})
	}

	if err := h.callAcceptContractAPI(ctx, cmd.ContractID, token); err != nil {
		return nil, err
	}

	if err := h.saveContract(ctx, contract); err != nil {
		return nil, err
	}

	if balanceBefore > 0 {
		h.logContractAcceptance(ctx, contract, balanceBefore)
	}

	return &AcceptContractResponse{
		Contract: contract,
	}, nil
}

func (h *AcceptContractHandler) loadContract(ctx context.Context, contractID string, playerID int) (*contract.Contract, error) {
	contract, err := h.contractRepo.FindByID(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("contract not found: %w", err)
	}
	return contract, nil
}

func (h *AcceptContractHandler) acceptContractInDomain(contract *contract.Contract) error {
	if err := contract.Accept(); err != nil {
		return err
	}
	return nil
}

func (h *AcceptContractHandler) callAcceptContractAPI(ctx context.Context, contractID string, token string) error {
	_, err := h.apiClient.AcceptContract(ctx, contractID, token)
	if err != nil {
		return fmt.Errorf("API error: %w", err)
	}
	return nil
}

func (h *AcceptContractHandler) saveContract(ctx context.Context, contract *contract.Contract) error {
	if err := h.contractRepo.Add(ctx, contract); err != nil {
		return fmt.Errorf("failed to save contract: %w", err)
	}
	return nil
}

// fetchCurrentCredits fetches the player's current credits from the API
func (h *AcceptContractHandler) fetchCurrentCredits(ctx context.Context, token string) (int, error) {
	agent, err := h.apiClient.GetAgent(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch agent credits: %w", err)
	}
	return agent.Credits, nil
}

// logContractAcceptance emits a structured log entry for the acceptance
// payment so it shows up in the container's log stream alongside the rest
// of the workflow.
func (h *AcceptContractHandler) logContractAcceptance(
	ctx context.Context,
	contract *contract.Contract,
	balanceBefore int,
) {
	logger := logging.LoggerFromContext(ctx)

	payment := contract.Terms().Payment.OnAccepted
	balanceAfter := balanceBefore + payment

	playerData, err := h.playerRepo.FindByID(ctx, contract.PlayerID())
	agentSymbol := "UNKNOWN"
	if err == nil && playerData != nil {
		agentSymbol = playerData.AgentSymbol
	}

	logger.Log("INFO", fmt.Sprintf("Accepted %s contract from %s", contract.Type(), contract.FactionSymbol()), map[string]interface{}{
		"agent":          agentSymbol,
		"contract_id":    contract.ContractID(),
		"faction":        contract.FactionSymbol(),
		"contract_type":  contract.Type(),
		"payment":        payment,
		"balance_before": balanceBefore,
		"balance_after":  balanceAfter,
	})
}
