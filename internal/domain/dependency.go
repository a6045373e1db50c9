package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dependency errors
var (
	ErrSelfDependency     = errors.New("a stage cannot depend on itself")
	ErrCircularDependency = errors.New("adding this edge would create a dependency cycle")
	ErrDuplicateEdge      = errors.New("an identical active dependency edge already exists")
	ErrEdgeNotFound       = errors.New("dependency edge not found")
	ErrEdgeAlreadyRemoved = errors.New("dependency edge is already removed")
)

// StageDependencyEdge is a directed "must-complete-before" relation: the
// prerequisite stage must be Completed or Skipped before the dependent stage
// may start. Removal is a tombstone, never a physical delete.
type StageDependencyEdge struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	EdgeID              string             `bson:"edgeId" json:"edgeId"`
	DependentStageID    string             `bson:"dependentStageId" json:"dependentStageId"`
	PrerequisiteStageID string             `bson:"prerequisiteStageId" json:"prerequisiteStageId"`
	IsActive            bool               `bson:"isActive" json:"isActive"`
	CreatedBy           string             `bson:"createdBy" json:"createdBy"`
	LastModifiedBy      string             `bson:"lastModifiedBy" json:"lastModifiedBy"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewStageDependencyEdge creates a new active dependency edge. Cycle and
// duplicate validation happens against the full edge set in DependencyGraph;
// callers must run ValidateNewEdge under the same transaction that inserts.
func NewStageDependencyEdge(dependentStageID, prerequisiteStageID, createdBy string) (*StageDependencyEdge, error) {
	if dependentStageID == prerequisiteStageID {
		return nil, ErrSelfDependency
	}

	now := time.Now()
	return &StageDependencyEdge{
		EdgeID:              "DEP-" + uuid.New().String()[:8],
		DependentStageID:    dependentStageID,
		PrerequisiteStageID: prerequisiteStageID,
		IsActive:            true,
		CreatedBy:           createdBy,
		LastModifiedBy:      createdBy,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// Remove tombstones the edge. Removal can never introduce a cycle, so no
// re-validation happens here.
func (e *StageDependencyEdge) Remove(removedBy string) error {
	if !e.IsActive {
		return ErrEdgeAlreadyRemoved
	}
	e.IsActive = false
	e.LastModifiedBy = removedBy
	e.UpdatedAt = time.Now()
	return nil
}

// DependencyGraph is an in-memory view over the active dependency edges,
// indexed both ways so prerequisite and dependent lookups cost only the edges
// touching the queried stage.
type DependencyGraph struct {
	prerequisites map[string][]string // dependent stage -> its prerequisites
	dependents    map[string][]string // prerequisite stage -> its dependents
}

// NewDependencyGraph builds a graph from the given edges, considering active
// edges only.
func NewDependencyGraph(edges []*StageDependencyEdge) *DependencyGraph {
	g := &DependencyGraph{
		prerequisites: make(map[string][]string),
		dependents:    make(map[string][]string),
	}
	for _, edge := range edges {
		if !edge.IsActive {
			continue
		}
		g.prerequisites[edge.DependentStageID] = append(g.prerequisites[edge.DependentStageID], edge.PrerequisiteStageID)
		g.dependents[edge.PrerequisiteStageID] = append(g.dependents[edge.PrerequisiteStageID], edge.DependentStageID)
	}
	return g
}

// PrerequisitesOf returns the stages that must complete before the given stage
func (g *DependencyGraph) PrerequisitesOf(stageID string) []string {
	return g.prerequisites[stageID]
}

// DependentsOf returns the stages blocked on the given stage
func (g *DependencyGraph) DependentsOf(stageID string) []string {
	return g.dependents[stageID]
}

// HasActiveEdge reports whether an identical active edge exists
func (g *DependencyGraph) HasActiveEdge(dependentStageID, prerequisiteStageID string) bool {
	for _, prereq := range g.prerequisites[dependentStageID] {
		if prereq == prerequisiteStageID {
			return true
		}
	}
	return false
}

// WouldCreateCycle reports whether adding (dependent, prerequisite) would
// close a cycle: breadth-first from the proposed prerequisite along existing
// prerequisite chains; reaching the proposed dependent means the prerequisite
// already depends on it.
func (g *DependencyGraph) WouldCreateCycle(dependentStageID, prerequisiteStageID string) bool {
	if dependentStageID == prerequisiteStageID {
		return true
	}

	visited := map[string]bool{prerequisiteStageID: true}
	queue := []string{prerequisiteStageID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, prereq := range g.prerequisites[current] {
			if prereq == dependentStageID {
				return true
			}
			if !visited[prereq] {
				visited[prereq] = true
				queue = append(queue, prereq)
			}
		}
	}

	return false
}

// ValidateNewEdge checks every insertion invariant for a proposed edge. It is
// all-or-nothing: callers reject the insert on any error, so the active edge
// set stays acyclic at all times.
func (g *DependencyGraph) ValidateNewEdge(dependentStageID, prerequisiteStageID string) error {
	if dependentStageID == prerequisiteStageID {
		return ErrSelfDependency
	}
	if g.HasActiveEdge(dependentStageID, prerequisiteStageID) {
		return ErrDuplicateEdge
	}
	if g.WouldCreateCycle(dependentStageID, prerequisiteStageID) {
		return ErrCircularDependency
	}
	return nil
}
