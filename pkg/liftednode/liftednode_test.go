package liftednode

import "testing"

type fakePerson struct {
	Name string
}

func TestDowncast_RecoversOriginalType(t *testing.T) {
	n := New(TagPerson, "Alice Engineer", "alice@example.com", fakePerson{Name: "Alice Engineer"})
	p, ok := Downcast[fakePerson](n)
	if !ok {
		t.Fatal("expected downcast to succeed")
	}
	if p.Name != "Alice Engineer" {
		t.Fatalf("Name = %q, want Alice Engineer", p.Name)
	}
}

func TestDowncast_WrongTypeFails(t *testing.T) {
	n := New(TagPerson, "Alice Engineer", "", fakePerson{Name: "Alice"})
	if _, ok := Downcast[int](n); ok {
		t.Fatal("expected downcast to int to fail")
	}
}

func TestLayoutTier_RootsIntermediatesLeaves(t *testing.T) {
	if TagOrganization.LayoutTier() != 0 {
		t.Error("Organization should be tier 0")
	}
	if TagOrganizationUnit.LayoutTier() != 1 {
		t.Error("OrganizationUnit should be tier 1")
	}
	if TagPerson.LayoutTier() != 2 {
		t.Error("Person should be tier 2")
	}
}

func TestPredicates(t *testing.T) {
	if !TagNatsAccount.IsNATS() {
		t.Error("NatsAccount should be IsNATS")
	}
	if !TagLeafCertificate.IsCertificate() {
		t.Error("LeafCertificate should be IsCertificate")
	}
	if !TagPivSlot.IsYubiKeyOrSlot() {
		t.Error("PivSlot should be IsYubiKeyOrSlot")
	}
	if !TagPolicyClaim.IsPolicyVariant() {
		t.Error("PolicyClaim should be IsPolicyVariant")
	}
	if !TagPerson.IsCreatable() {
		t.Error("Person should be creatable")
	}
	if TagPolicyClaim.IsCreatable() {
		t.Error("PolicyClaim should not be creatable")
	}
}

func TestRegistry_ApplyDispatchesByTag(t *testing.T) {
	r := NewRegistry()
	r.Register(TagPerson, func(payload any) (any, bool) {
		p, ok := payload.(fakePerson)
		if !ok {
			return nil, false
		}
		return "label:" + p.Name, true
	})

	n := New(TagPerson, "Alice Engineer", "", fakePerson{Name: "Alice Engineer"})
	got, ok := r.Apply(n)
	if !ok || got != "label:Alice Engineer" {
		t.Fatalf("Apply = %v, %v; want label:Alice Engineer, true", got, ok)
	}
}

func TestRegistry_UnknownTagYieldsFalse(t *testing.T) {
	r := NewRegistry()
	n := New(TagManifest, "m1", "", nil)
	if _, ok := r.Apply(n); ok {
		t.Fatal("expected Apply on unregistered tag to yield false")
	}
}
