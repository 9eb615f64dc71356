package graph

import (
	"sync"
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/liftednode"
)

// Projection is the materialized view of the organizational graph,
// rebuilt by applying a stream of Events. Apply takes exclusive access;
// reads take shared access, matching spec.md §5's "single shared structure
// with concurrent readers" and the teacher's mutex-guarded in-memory store
// pattern (pkg/alert's dedup store).
type Projection struct {
	mu sync.RWMutex

	entities  map[string]liftednode.LiftedNode
	relations map[string]Relation

	outgoingByEntity    map[string]map[string]bool // entity id -> set of outgoing relation ids
	incomingByEntity    map[string]map[string]bool // entity id -> set of incoming relation ids
	entitiesByType      map[liftednode.InjectionTag]map[string]bool
	relationsByCategory map[string]map[string]bool

	version     uint64
	lastUpdated time.Time
}

// New returns an empty graph projection.
func New() *Projection {
	return &Projection{
		entities:            make(map[string]liftednode.LiftedNode),
		relations:           make(map[string]Relation),
		outgoingByEntity:    make(map[string]map[string]bool),
		incomingByEntity:    make(map[string]map[string]bool),
		entitiesByType:      make(map[liftednode.InjectionTag]map[string]bool),
		relationsByCategory: make(map[string]map[string]bool),
	}
}

// Apply applies a single event, bumping version and last-updated on
// success. Events are expected to be applied in arrival order by a single
// writer; Apply itself serializes against concurrent readers.
func (p *Projection) Apply(ev Event, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e := ev.(type) {
	case EntityAdded:
		p.applyEntityAdded(e)
	case EntityRemoved:
		p.applyEntityRemoved(e)
	case RelationEstablished:
		p.applyRelationEstablished(e)
	case RelationDissolved:
		p.applyRelationDissolved(e)
	case RelationModified:
		p.applyRelationModified(e)
	case GraphRestructured, SubgraphMerged:
		// Apply semantics intentionally undefined per spec.md §4.5; the
		// version still advances so replay position stays accurate.
	}

	p.version++
	p.lastUpdated = at
}

func (p *Projection) applyEntityAdded(e EntityAdded) {
	p.entities[e.ID] = e.Node
	if p.entitiesByType[e.Node.Tag] == nil {
		p.entitiesByType[e.Node.Tag] = make(map[string]bool)
	}
	p.entitiesByType[e.Node.Tag][e.ID] = true
}

func (p *Projection) applyEntityRemoved(e EntityRemoved) {
	node, ok := p.entities[e.ID]
	if !ok {
		return
	}
	delete(p.entities, e.ID)
	delete(p.entitiesByType[node.Tag], e.ID)

	for relID := range p.outgoingByEntity[e.ID] {
		p.removeRelation(relID)
	}
	for relID := range p.incomingByEntity[e.ID] {
		p.removeRelation(relID)
	}
}

func (p *Projection) applyRelationEstablished(e RelationEstablished) {
	r := e.Relation
	p.relations[r.ID] = r

	if p.outgoingByEntity[r.From] == nil {
		p.outgoingByEntity[r.From] = make(map[string]bool)
	}
	p.outgoingByEntity[r.From][r.ID] = true

	if p.incomingByEntity[r.To] == nil {
		p.incomingByEntity[r.To] = make(map[string]bool)
	}
	p.incomingByEntity[r.To][r.ID] = true

	if p.relationsByCategory[r.Category] == nil {
		p.relationsByCategory[r.Category] = make(map[string]bool)
	}
	p.relationsByCategory[r.Category][r.ID] = true
}

func (p *Projection) applyRelationDissolved(e RelationDissolved) {
	p.removeRelation(e.RelationID)
}

func (p *Projection) applyRelationModified(e RelationModified) {
	r, ok := p.relations[e.RelationID]
	if !ok {
		return
	}
	r.Label = e.NewLabel
	p.relations[e.RelationID] = r
}

// removeRelation deletes a relation from the table and all three relation
// indexes it participates in. Caller holds the write lock.
func (p *Projection) removeRelation(id string) {
	r, ok := p.relations[id]
	if !ok {
		return
	}
	delete(p.relations, id)
	delete(p.outgoingByEntity[r.From], id)
	delete(p.incomingByEntity[r.To], id)
	delete(p.relationsByCategory[r.Category], id)
}

// EntityByID returns the entity with id, if present.
func (p *Projection) EntityByID(id string) (liftednode.LiftedNode, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n, ok := p.entities[id]
	return n, ok
}

// RelationByID returns the relation with id, if present.
func (p *Projection) RelationByID(id string) (Relation, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	r, ok := p.relations[id]
	return r, ok
}

// OutgoingFrom returns the relations whose From endpoint is id.
func (p *Projection) OutgoingFrom(id string) []Relation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Relation, 0, len(p.outgoingByEntity[id]))
	for relID := range p.outgoingByEntity[id] {
		out = append(out, p.relations[relID])
	}
	return out
}

// IncomingTo returns the relations whose To endpoint is id.
func (p *Projection) IncomingTo(id string) []Relation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Relation, 0, len(p.incomingByEntity[id]))
	for relID := range p.incomingByEntity[id] {
		out = append(out, p.relations[relID])
	}
	return out
}

// EntitiesOfType returns every entity tagged with tag.
func (p *Projection) EntitiesOfType(tag liftednode.InjectionTag) []liftednode.LiftedNode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]liftednode.LiftedNode, 0, len(p.entitiesByType[tag]))
	for id := range p.entitiesByType[tag] {
		out = append(out, p.entities[id])
	}
	return out
}

// RelationsInCategory returns every relation tagged with category.
func (p *Projection) RelationsInCategory(category string) []Relation {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Relation, 0, len(p.relationsByCategory[category]))
	for id := range p.relationsByCategory[category] {
		out = append(out, p.relations[id])
	}
	return out
}

// EntityCount returns the number of entities currently in the projection.
func (p *Projection) EntityCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entities)
}

// RelationCount returns the number of relations currently in the projection.
func (p *Projection) RelationCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.relations)
}

// Version returns the number of events applied so far.
func (p *Projection) Version() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}

// LastUpdated returns the timestamp passed to the most recent Apply call.
func (p *Projection) LastUpdated() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastUpdated
}
