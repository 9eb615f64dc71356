package graph

import "github.com/TheCowboyAI/cim-keys-sub002/pkg/liftednode"

// Relation is an established edge between two lifted entities.
type Relation struct {
	ID       string
	From     string
	To       string
	Category string
	Label    string
}

// Event is the sealed taxonomy of events the graph projection applies.
// Modified, Restructured, and Merged are defined by the domain but their
// apply semantics are out of scope here (spec.md §4.5 "defined but omitted").
type Event interface {
	isGraphEvent()
}

// EntityAdded inserts an entity into the entity table and its type index.
type EntityAdded struct {
	ID   string
	Node liftednode.LiftedNode
}

func (EntityAdded) isGraphEvent() {}

// EntityRemoved removes an entity and cascades removal of every relation
// where it is an endpoint.
type EntityRemoved struct {
	ID string
}

func (EntityRemoved) isGraphEvent() {}

// RelationEstablished inserts a relation and updates the outgoing,
// incoming, and category indexes.
type RelationEstablished struct {
	Relation Relation
}

func (RelationEstablished) isGraphEvent() {}

// RelationDissolved removes a relation from the table and all three relation indexes.
type RelationDissolved struct {
	RelationID string
}

func (RelationDissolved) isGraphEvent() {}

// RelationModified updates relation metadata without changing endpoints.
type RelationModified struct {
	RelationID string
	NewLabel   string
}

func (RelationModified) isGraphEvent() {}

// GraphRestructured is a coarse-grained structural change; defined for the
// taxonomy but not applied by this projection.
type GraphRestructured struct {
	Description string
}

func (GraphRestructured) isGraphEvent() {}

// SubgraphMerged is a coarse-grained structural change; defined for the
// taxonomy but not applied by this projection.
type SubgraphMerged struct {
	Description string
}

func (SubgraphMerged) isGraphEvent() {}
