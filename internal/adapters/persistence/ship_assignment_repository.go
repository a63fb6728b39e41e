package persistence

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acdtunes/spacetraders-fleet/internal/domain/container"
)

// assignmentLocks serialises Assign calls per (player, ship) in-process,
// on top of the transactional row lock below. SQLite has no row-level
// locking, so this is the belt to the transaction's suspenders on that
// backend; on Postgres it just avoids a wasted round trip to discover a
// lock wait.
var assignmentLocks sync.Map // map[string]*sync.Mutex

func lockAssignmentKey(playerID int, shipSymbol string) func() {
	key := fmt.Sprintf("%d:%s", playerID, shipSymbol)
	value, _ := assignmentLocks.LoadOrStore(key, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ShipAssignmentRepositoryGORM implements container.ShipAssignmentRepository
// using GORM, enforcing the at-most-one-active-assignment-per-ship
// invariant via an upsert on (ship_symbol, player_id).
type ShipAssignmentRepositoryGORM struct {
	db *gorm.DB
}

// NewShipAssignmentRepository creates a new GORM-based ship assignment repository.
func NewShipAssignmentRepository(db *gorm.DB) *ShipAssignmentRepositoryGORM {
	return &ShipAssignmentRepositoryGORM{db: db}
}

func toModel(assignment *container.ShipAssignment) *ShipAssignmentModel {
	var reason string
	if r := assignment.ReleaseReason(); r != nil {
		reason = *r
	}

	return &ShipAssignmentModel{
		ShipSymbol:    assignment.ShipSymbol(),
		PlayerID:      assignment.PlayerID(),
		ContainerID:   assignment.ContainerID(),
		Status:        string(assignment.Status()),
		AssignedAt:    assignment.AssignedAt(),
		ReleasedAt:    assignment.ReleasedAt(),
		ReleaseReason: reason,
	}
}

func toDomain(model *ShipAssignmentModel) *container.ShipAssignment {
	var reason *string
	if model.ReleaseReason != "" {
		reason = &model.ReleaseReason
	}

	return container.ReconstructShipAssignment(
		model.ShipSymbol,
		model.PlayerID,
		model.ContainerID,
		container.AssignmentStatus(model.Status),
		model.AssignedAt,
		model.ReleasedAt,
		reason,
	)
}

// Assign creates or updates a ship assignment. Fails if the ship already
// carries an active assignment for a different container.
//
// The whole check-then-write sequence runs inside one transaction with a
// locking read, plus a process-local mutex keyed on (player, ship) so
// SQLite (which has no row-level locking) gets the same serialisation
// Postgres gets from the `FOR UPDATE` read. A post-write read inside the
// same transaction confirms this call's container actually ended up
// holding the row before committing, so a losing concurrent Assign
// reliably observes a conflict instead of silently clobbering the winner.
func (r *ShipAssignmentRepositoryGORM) Assign(ctx context.Context, assignment *container.ShipAssignment) error {
	unlock := lockAssignmentKey(assignment.PlayerID(), assignment.ShipSymbol())
	defer unlock()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ShipAssignmentModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("ship_symbol = ? AND player_id = ?", assignment.ShipSymbol(), assignment.PlayerID()).
			First(&existing).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to check existing assignment: %w", err)
		}
		found := err != gorm.ErrRecordNotFound

		if found && existing.Status == string(container.AssignmentStatusActive) && existing.ContainerID != assignment.ContainerID() {
			return fmt.Errorf("ship %s is already assigned to container %s",
				assignment.ShipSymbol(), existing.ContainerID)
		}

		model := toModel(assignment)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ship_symbol"}, {Name: "player_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"container_id", "status", "assigned_at", "released_at", "release_reason"}),
		}).Create(model).Error; err != nil {
			return fmt.Errorf("failed to assign ship: %w", err)
		}

		var verify ShipAssignmentModel
		if err := tx.Where("ship_symbol = ? AND player_id = ?", assignment.ShipSymbol(), assignment.PlayerID()).
			First(&verify).Error; err != nil {
			return fmt.Errorf("failed to verify ship assignment: %w", err)
		}
		if verify.ContainerID != assignment.ContainerID() || verify.Status != string(container.AssignmentStatusActive) {
			return fmt.Errorf("ship %s is already assigned to container %s",
				assignment.ShipSymbol(), verify.ContainerID)
		}

		return nil
	})
}

// FindByShip retrieves the active assignment for a ship, or nil if none.
func (r *ShipAssignmentRepositoryGORM) FindByShip(ctx context.Context, shipSymbol string, playerID int) (*container.ShipAssignment, error) {
	var model ShipAssignmentModel

	err := r.db.WithContext(ctx).
		Where("ship_symbol = ? AND player_id = ? AND status = ?", shipSymbol, playerID, container.AssignmentStatusActive).
		First(&model).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ship assignment: %w", err)
	}

	return toDomain(&model), nil
}

// FindByShipSymbol retrieves the most recent assignment for a ship
// regardless of status, unlike FindByShip which only returns active rows.
func (r *ShipAssignmentRepositoryGORM) FindByShipSymbol(ctx context.Context, shipSymbol string, playerID int) (*container.ShipAssignment, error) {
	var model ShipAssignmentModel

	err := r.db.WithContext(ctx).
		Where("ship_symbol = ? AND player_id = ?", shipSymbol, playerID).
		Order("assigned_at DESC").
		First(&model).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ship assignment: %w", err)
	}

	return toDomain(&model), nil
}

// FindByContainer retrieves all ship assignments for a container.
func (r *ShipAssignmentRepositoryGORM) FindByContainer(ctx context.Context, containerID string, playerID int) ([]*container.ShipAssignment, error) {
	var models []ShipAssignmentModel

	if err := r.db.WithContext(ctx).
		Where("container_id = ? AND player_id = ?", containerID, playerID).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find container assignments: %w", err)
	}

	assignments := make([]*container.ShipAssignment, 0, len(models))
	for i := range models {
		assignments = append(assignments, toDomain(&models[i]))
	}
	return assignments, nil
}

// Release marks a ship's active assignment as released.
func (r *ShipAssignmentRepositoryGORM) Release(ctx context.Context, shipSymbol string, playerID int, reason string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&ShipAssignmentModel{}).
		Where("ship_symbol = ? AND player_id = ? AND status = ?", shipSymbol, playerID, container.AssignmentStatusActive).
		Updates(map[string]interface{}{
			"status":         string(container.AssignmentStatusReleased),
			"released_at":    now,
			"release_reason": reason,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to release ship assignment: %w", result.Error)
	}
	return nil
}

// Transfer moves a ship's active assignment from one container to another,
// used by fleet coordinators handing a ship off to a worker container.
func (r *ShipAssignmentRepositoryGORM) Transfer(ctx context.Context, shipSymbol string, fromContainerID string, toContainerID string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&ShipAssignmentModel{}).
		Where("ship_symbol = ? AND container_id = ? AND status = ?", shipSymbol, fromContainerID, container.AssignmentStatusActive).
		Updates(map[string]interface{}{
			"container_id": toContainerID,
			"assigned_at":  now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to transfer ship assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no active assignment found for ship %s with container %s", shipSymbol, fromContainerID)
	}
	return nil
}

// ReleaseByContainer releases all active ship assignments held by a container.
func (r *ShipAssignmentRepositoryGORM) ReleaseByContainer(ctx context.Context, containerID string, playerID int, reason string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&ShipAssignmentModel{}).
		Where("container_id = ? AND player_id = ? AND status = ?", containerID, playerID, container.AssignmentStatusActive).
		Updates(map[string]interface{}{
			"status":         string(container.AssignmentStatusReleased),
			"released_at":    now,
			"release_reason": reason,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to release container assignments: %w", result.Error)
	}
	return nil
}

// ReleaseAllActive releases every active assignment across all players.
// Run once at daemon startup to clear zombie assignments left by a crash.
func (r *ShipAssignmentRepositoryGORM) ReleaseAllActive(ctx context.Context, reason string) (int, error) {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&ShipAssignmentModel{}).
		Where("status = ?", container.AssignmentStatusActive).
		Updates(map[string]interface{}{
			"status":         string(container.AssignmentStatusReleased),
			"released_at":    now,
			"release_reason": reason,
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to release all active assignments: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

// CountByContainerPrefix counts active assignments whose container ID
// starts with prefix, used by coordinators to cap worker-container fan-out.
func (r *ShipAssignmentRepositoryGORM) CountByContainerPrefix(ctx context.Context, prefix string, playerID int) (int, error) {
	var count int64

	escaped := strings.ReplaceAll(strings.ReplaceAll(prefix, "%", "\\%"), "_", "\\_")

	if err := r.db.WithContext(ctx).
		Model(&ShipAssignmentModel{}).
		Where("player_id = ? AND status = ? AND container_id LIKE ?", playerID, container.AssignmentStatusActive, escaped+"%").
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count assignments by container prefix: %w", err)
	}

	return int(count), nil
}
