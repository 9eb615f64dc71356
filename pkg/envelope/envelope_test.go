package envelope

import "testing"

type fakeEvent struct {
	id   string
	kind string
}

func (e fakeEvent) AggregateID() string { return e.id }
func (e fakeEvent) EventType() string   { return e.kind }

func TestChainBuilder_CausationTreeHasSingleRoot(t *testing.T) {
	b := NewChain()

	var envs []Envelope
	for i := 0; i < 5; i++ {
		envs = append(envs, b.Envelope("key", fakeEvent{id: "k1", kind: "Tick"}))
	}

	roots := 0
	seen := make(map[string]bool, len(envs))
	for _, e := range envs {
		seen[e.EventID.String()] = true
	}

	for _, e := range envs {
		if e.CausationID == nil {
			roots++
			continue
		}
		if !seen[e.CausationID.String()] {
			t.Errorf("causation id %s does not match any preceding event id", e.CausationID)
		}
	}

	if roots != 1 {
		t.Fatalf("expected exactly one root envelope (nil causation id), got %d", roots)
	}

	for _, e := range envs {
		if e.CorrelationID != envs[0].CorrelationID {
			t.Errorf("envelope %s has a different correlation id than the chain root", e.EventID)
		}
	}
}

func TestChainBuilder_ContinueChainSharesCorrelation(t *testing.T) {
	first := NewChain()
	e1 := first.Envelope("organization", fakeEvent{id: "o1", kind: "Created"})

	second := ContinueChain(first.CorrelationID())
	e2 := second.Envelope("organization", fakeEvent{id: "o1", kind: "Activated"})

	if e1.CorrelationID != e2.CorrelationID {
		t.Fatalf("continued chain should share the correlation id")
	}
	if e2.CausationID != nil {
		t.Fatalf("a builder that did not emit e1 itself has no causation link to it; want nil causation id, got %v", e2.CausationID)
	}
}

func TestBuilder_ScopedToOrganizationComposesSubject(t *testing.T) {
	b := NewChain().ScopedToOrganization("thecowboyai")
	e := b.Envelope("key", fakeEvent{id: "k1", kind: "Activated"})

	want := "thecowboyai.key.Activated"
	if e.Subject != want {
		t.Fatalf("Subject = %q, want %q", e.Subject, want)
	}
}
