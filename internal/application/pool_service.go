package application

import (
	"context"
	"fmt"

	"github.com/HenryGill4/OpCentrix-sub007/internal/domain"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/errors"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/logging"
)

// PoolApplicationService handles resource pool administration
type PoolApplicationService struct {
	pools  domain.ResourcePoolRepository
	logger *logging.Logger
}

// NewPoolApplicationService creates a new PoolApplicationService
func NewPoolApplicationService(pools domain.ResourcePoolRepository, logger *logging.Logger) *PoolApplicationService {
	return &PoolApplicationService{
		pools:  pools,
		logger: logger,
	}
}

// CreatePool defines a capacity pool for a stage or machine. One active pool
// per target; a second definition for the same target is rejected.
func (s *PoolApplicationService) CreatePool(ctx context.Context, cmd CreatePoolCommand) (*PoolDTO, error) {
	existing, err := s.pools.FindActiveByTarget(ctx, cmd.Scope, cmd.TargetID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to check pool target", "targetId", cmd.TargetID)
		return nil, fmt.Errorf("failed to check pool target: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("an active pool already covers %s %q", cmd.Scope, cmd.TargetID))
	}

	pool, err := domain.NewResourcePool(cmd.Name, cmd.Scope, cmd.TargetID, cmd.Capacity, cmd.CreatedBy)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.pools.Save(ctx, pool); err != nil {
		s.logger.WithError(err).Error("Failed to save pool", "poolId", pool.PoolID)
		return nil, fmt.Errorf("failed to save pool: %w", err)
	}

	s.logger.Info("Created pool", "poolId", pool.PoolID, "scope", pool.Scope,
		"targetId", pool.TargetID, "capacity", pool.Capacity)
	return ToPoolDTO(pool), nil
}

// GetPool retrieves a pool by ID
func (s *PoolApplicationService) GetPool(ctx context.Context, poolID string) (*PoolDTO, error) {
	pool, err := s.pools.FindByID(ctx, poolID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get pool", "poolId", poolID)
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}
	if pool == nil {
		return nil, errors.ErrNotFoundWithID("pool", poolID)
	}

	return ToPoolDTO(pool), nil
}

// ListPools retrieves all active pools
func (s *PoolApplicationService) ListPools(ctx context.Context) ([]PoolDTO, error) {
	pools, err := s.pools.FindAllActive(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list pools")
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}

	return ToPoolDTOs(pools), nil
}

// DeactivatePool soft-deletes a pool. In-flight executions holding slots are
// unaffected; punch-ins after deactivation see no pool and run unbounded.
func (s *PoolApplicationService) DeactivatePool(ctx context.Context, poolID, deactivatedBy string) (*PoolDTO, error) {
	pool, err := s.pools.FindByID(ctx, poolID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get pool", "poolId", poolID)
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}
	if pool == nil {
		return nil, errors.ErrNotFoundWithID("pool", poolID)
	}
	if !pool.IsActive {
		return nil, errors.ErrConflict("pool is already inactive")
	}

	pool.IsActive = false
	pool.LastModifiedBy = deactivatedBy

	if err := s.pools.Update(ctx, pool); err != nil {
		s.logger.WithError(err).Error("Failed to deactivate pool", "poolId", poolID)
		return nil, fmt.Errorf("failed to deactivate pool: %w", err)
	}

	s.logger.Info("Deactivated pool", "poolId", pool.PoolID)
	return ToPoolDTO(pool), nil
}
