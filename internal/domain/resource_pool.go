package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resource pool errors
var (
	ErrCapacityExceeded  = errors.New("resource pool has no remaining capacity")
	ErrInvalidCapacity   = errors.New("capacity must be positive")
	ErrInvalidPoolScope  = errors.New("invalid resource pool scope")
	ErrPoolTargetMissing = errors.New("resource pool target is required")
)

// PoolScope determines what a pool's capacity bounds. The source system was
// ambiguous about machine-level versus stage-level capacity, so both scopes
// are supported and chosen per pool.
type PoolScope string

const (
	PoolScopeStage   PoolScope = "stage"
	PoolScopeMachine PoolScope = "machine"
)

// IsValid checks if the scope is valid
func (s PoolScope) IsValid() bool {
	switch s {
	case PoolScopeStage, PoolScopeMachine:
		return true
	default:
		return false
	}
}

// ResourcePool bounds how many concurrent stage executions its target (a
// stage type or a machine) can host.
type ResourcePool struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	PoolID         string             `bson:"poolId" json:"poolId"`
	Name           string             `bson:"name" json:"name"`
	Scope          PoolScope          `bson:"scope" json:"scope"`
	TargetID       string             `bson:"targetId" json:"targetId"`
	Capacity       int                `bson:"capacity" json:"capacity"`
	InUse          int                `bson:"inUse" json:"inUse"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	CreatedBy      string             `bson:"createdBy" json:"createdBy"`
	LastModifiedBy string             `bson:"lastModifiedBy" json:"lastModifiedBy"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewResourcePool creates a new capacity pool for a stage or machine target
func NewResourcePool(name string, scope PoolScope, targetID string, capacity int, createdBy string) (*ResourcePool, error) {
	if !scope.IsValid() {
		return nil, ErrInvalidPoolScope
	}
	if targetID == "" {
		return nil, ErrPoolTargetMissing
	}
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	now := time.Now()
	return &ResourcePool{
		PoolID:         "POOL-" + uuid.New().String()[:8],
		Name:           name,
		Scope:          scope,
		TargetID:       targetID,
		Capacity:       capacity,
		InUse:          0,
		IsActive:       true,
		CreatedBy:      createdBy,
		LastModifiedBy: createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Reserve takes one slot. Fails with ErrCapacityExceeded when none remain;
// the caller's transaction must abort so no execution is left in progress
// without a slot.
func (p *ResourcePool) Reserve() error {
	if p.InUse >= p.Capacity {
		return ErrCapacityExceeded
	}
	p.InUse++
	p.UpdatedAt = time.Now()
	return nil
}

// Release returns one slot
func (p *ResourcePool) Release() {
	if p.InUse > 0 {
		p.InUse--
	}
	p.UpdatedAt = time.Now()
}

// Available returns the remaining capacity
func (p *ResourcePool) Available() int {
	return p.Capacity - p.InUse
}
