package graph

import (
	"testing"
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/liftednode"
)

func personNode(id, name string) liftednode.LiftedNode {
	return liftednode.New(liftednode.TagPerson, name, "", nil)
}

// TestS6_RemovalCascade exercises scenario S6: removing P must remove the
// relation P->Q and clear both outgoing[P] and incoming[Q].
func TestS6_RemovalCascade(t *testing.T) {
	now := time.Now().UTC()
	g := New()

	g.Apply(EntityAdded{ID: "P", Node: personNode("P", "Alice")}, now)
	g.Apply(EntityAdded{ID: "Q", Node: personNode("Q", "Bob")}, now)
	g.Apply(RelationEstablished{Relation: Relation{ID: "r1", From: "P", To: "Q", Category: "reports_to"}}, now)
	g.Apply(EntityRemoved{ID: "P"}, now)

	if _, ok := g.EntityByID("P"); ok {
		t.Error("P should have been removed")
	}
	if _, ok := g.RelationByID("r1"); ok {
		t.Error("r1 should have been cascade-removed")
	}
	if out := g.OutgoingFrom("P"); len(out) != 0 {
		t.Errorf("outgoing[P] should be empty, got %d", len(out))
	}
	if in := g.IncomingTo("Q"); len(in) != 0 {
		t.Errorf("incoming[Q] should be empty, got %d", len(in))
	}
	if g.RelationCount() != 0 {
		t.Errorf("relation_count = %d, want 0", g.RelationCount())
	}
}

// TestProperty5_Consistency checks invariant #5: after any sequence of
// events, every outgoing-index id resolves to an existing entity, every
// relation's endpoints exist, entity_count matches the table, and version
// equals the number of events applied.
func TestProperty5_Consistency(t *testing.T) {
	now := time.Now().UTC()
	g := New()

	events := []Event{
		EntityAdded{ID: "org", Node: liftednode.New(liftednode.TagOrganization, "thecowboyai", "", nil)},
		EntityAdded{ID: "unit-eng", Node: liftednode.New(liftednode.TagOrganizationUnit, "Engineering", "", nil)},
		EntityAdded{ID: "alice", Node: personNode("alice", "Alice")},
		RelationEstablished{Relation: Relation{ID: "r-org-unit", From: "org", To: "unit-eng", Category: "owns"}},
		RelationEstablished{Relation: Relation{ID: "r-unit-alice", From: "unit-eng", To: "alice", Category: "member"}},
	}
	for _, e := range events {
		g.Apply(e, now)
	}

	if g.Version() != uint64(len(events)) {
		t.Fatalf("version = %d, want %d", g.Version(), len(events))
	}
	if g.EntityCount() != 3 {
		t.Fatalf("entity_count = %d, want 3", g.EntityCount())
	}

	for _, rel := range []string{"r-org-unit", "r-unit-alice"} {
		r, ok := g.RelationByID(rel)
		if !ok {
			t.Fatalf("relation %s missing", rel)
		}
		if _, ok := g.EntityByID(r.From); !ok {
			t.Errorf("relation %s: From endpoint %s does not exist", rel, r.From)
		}
		if _, ok := g.EntityByID(r.To); !ok {
			t.Errorf("relation %s: To endpoint %s does not exist", rel, r.To)
		}
	}

	for _, out := range g.OutgoingFrom("org") {
		if _, ok := g.EntityByID(out.To); !ok {
			t.Errorf("outgoing relation %s points to nonexistent entity %s", out.ID, out.To)
		}
	}
}

func TestEntitiesOfType_FiltersByTag(t *testing.T) {
	now := time.Now().UTC()
	g := New()
	g.Apply(EntityAdded{ID: "alice", Node: personNode("alice", "Alice")}, now)
	g.Apply(EntityAdded{ID: "bob", Node: personNode("bob", "Bob")}, now)
	g.Apply(EntityAdded{ID: "org", Node: liftednode.New(liftednode.TagOrganization, "thecowboyai", "", nil)}, now)

	people := g.EntitiesOfType(liftednode.TagPerson)
	if len(people) != 2 {
		t.Fatalf("expected 2 people, got %d", len(people))
	}
}

func TestRelationsInCategory(t *testing.T) {
	now := time.Now().UTC()
	g := New()
	g.Apply(EntityAdded{ID: "a", Node: personNode("a", "A")}, now)
	g.Apply(EntityAdded{ID: "b", Node: personNode("b", "B")}, now)
	g.Apply(RelationEstablished{Relation: Relation{ID: "r1", From: "a", To: "b", Category: "reports_to"}}, now)

	got := g.RelationsInCategory("reports_to")
	if len(got) != 1 || got[0].ID != "r1" {
		t.Fatalf("expected [r1], got %+v", got)
	}
	if len(g.RelationsInCategory("owns")) != 0 {
		t.Error("expected no relations in unused category")
	}
}

func TestRelationDissolved_RemovesFromAllIndexes(t *testing.T) {
	now := time.Now().UTC()
	g := New()
	g.Apply(EntityAdded{ID: "a", Node: personNode("a", "A")}, now)
	g.Apply(EntityAdded{ID: "b", Node: personNode("b", "B")}, now)
	g.Apply(RelationEstablished{Relation: Relation{ID: "r1", From: "a", To: "b", Category: "reports_to"}}, now)
	g.Apply(RelationDissolved{RelationID: "r1"}, now)

	if _, ok := g.RelationByID("r1"); ok {
		t.Error("r1 should be dissolved")
	}
	if len(g.OutgoingFrom("a")) != 0 {
		t.Error("outgoing[a] should be empty after dissolve")
	}
	if len(g.IncomingTo("b")) != 0 {
		t.Error("incoming[b] should be empty after dissolve")
	}
	if len(g.RelationsInCategory("reports_to")) != 0 {
		t.Error("category index should be empty after dissolve")
	}
	// Both entities remain — only the relation is gone.
	if g.EntityCount() != 2 {
		t.Errorf("entity_count = %d, want 2", g.EntityCount())
	}
}

func TestVersion_IncrementsMonotonically(t *testing.T) {
	now := time.Now().UTC()
	g := New()
	for i := 0; i < 5; i++ {
		g.Apply(EntityAdded{ID: string(rune('a' + i)), Node: personNode(string(rune('a'+i)), "x")}, now)
	}
	if g.Version() != 5 {
		t.Fatalf("version = %d, want 5", g.Version())
	}
}
