package yubikey

import (
	"testing"
	"time"
)

func TestProvision_RequiresSlotsAndChangedPinPuk(t *testing.T) {
	now := time.Now().UTC()
	detected := DetectedState{Serial: "sn-1", Firmware: "5.4.3", DetectedAt: now}

	if _, err := Provision(detected, now, "admin", nil, true, true); err == nil {
		t.Fatal("Provision with no slots should fail")
	}
	slots := []SlotAssignment{{Slot: PivSlotAuthentication, KeyID: "key-1"}}
	if _, err := Provision(detected, now, "admin", slots, false, true); err == nil {
		t.Fatal("Provision with PIN unchanged should fail")
	}
	if _, err := Provision(detected, now, "admin", slots, true, false); err == nil {
		t.Fatal("Provision with PUK unchanged should fail")
	}
	got, err := Provision(detected, now, "admin", slots, true, true)
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if got.Kind() != KindProvisioned {
		t.Fatalf("Kind() = %s, want provisioned", got.Kind())
	}
}

func TestActivate_FromProvisionedOrUnlockableLocked(t *testing.T) {
	now := time.Now().UTC()
	provisioned := ProvisionedState{ProvisionedAt: now, PinChanged: true, PukChanged: true}
	got, err := Activate(provisioned, "person-1", now)
	if err != nil {
		t.Fatalf("Activate(Provisioned): %v", err)
	}
	if got.Kind() != KindActive {
		t.Fatalf("Kind() = %s, want active", got.Kind())
	}

	unlockable := LockedState{LockedAt: now, PinRetries: 3, CanUnlock: true}
	if _, err := Activate(unlockable, "person-1", now); err != nil {
		t.Fatalf("Activate(Locked, can_unlock): %v", err)
	}

	exhausted := LockedState{LockedAt: now, PinRetries: 3, CanUnlock: false}
	if _, err := Activate(exhausted, "person-1", now); err == nil {
		t.Fatal("Activate(Locked, PUK exhausted) should fail")
	}
}

func TestLock_OnlyFromActive(t *testing.T) {
	now := time.Now().UTC()
	active := ActiveState{AssignedTo: "person-1", ActivatedAt: now}
	got, err := Lock(active, now, 3, true)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if got.Kind() != KindLocked {
		t.Fatalf("Kind() = %s, want locked", got.Kind())
	}
	if _, err := Lock(DetectedState{}, now, 3, true); err == nil {
		t.Fatal("Lock(Detected) should fail")
	}
}

func TestReportLost_OnlyFromActive(t *testing.T) {
	now := time.Now().UTC()
	active := ActiveState{AssignedTo: "person-1", ActivatedAt: now}
	got, err := ReportLost(active, now, "admin", "loc-1")
	if err != nil {
		t.Fatalf("ReportLost: %v", err)
	}
	if got.Kind() != KindLost {
		t.Fatalf("Kind() = %s, want lost", got.Kind())
	}
	if _, err := ReportLost(ProvisionedState{}, now, "admin", ""); err == nil {
		t.Fatal("ReportLost(Provisioned) should fail")
	}
}

func TestRetire_FromActiveLockedOrLost(t *testing.T) {
	now := time.Now().UTC()
	states := []State{
		ActiveState{ActivatedAt: now},
		LockedState{LockedAt: now},
		LostState{ReportedAt: now},
	}
	for _, s := range states {
		if _, err := Retire(s, RetirementEndOfLife, now, "admin", ""); err != nil {
			t.Errorf("Retire(%s): %v", s.Kind(), err)
		}
	}
	if _, err := Retire(DetectedState{}, RetirementEndOfLife, now, "admin", ""); err == nil {
		t.Fatal("Retire(Detected) should fail")
	}
	retired := RetiredState{RetiredAt: now}
	if _, err := Retire(retired, RetirementEndOfLife, now, "admin", ""); err == nil {
		t.Fatal("Retire(Retired) should fail - already terminal")
	}
}

func TestRecordUsage_IncrementsCountAndLastUsed(t *testing.T) {
	now := time.Now().UTC()
	active := ActiveState{AssignedTo: "person-1", ActivatedAt: now}
	got, err := RecordUsage(active, now)
	if err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	updated := got.(ActiveState)
	if updated.UsageCount != 1 || updated.LastUsed == nil {
		t.Fatalf("expected usage count 1 and last used set, got %+v", updated)
	}
	again, err := RecordUsage(updated, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("RecordUsage again: %v", err)
	}
	if again.(ActiveState).UsageCount != 2 {
		t.Fatal("expected usage count to increment across calls")
	}

	if _, err := RecordUsage(LockedState{LockedAt: now}, now); err == nil {
		t.Fatal("RecordUsage(Locked) should fail")
	}
}

func TestRetired_IsTerminal(t *testing.T) {
	retired := RetiredState{RetiredAt: time.Now()}
	if !retired.IsTerminal() {
		t.Fatal("Retired must be terminal")
	}
	if CanTransitionTo(KindRetired, KindActive) {
		t.Fatal("Retired must have no legal successors")
	}
}

func TestCanTransitionTo_FullTable(t *testing.T) {
	cases := []struct {
		from, to Kind
		want     bool
	}{
		{KindDetected, KindProvisioned, true},
		{KindProvisioned, KindActive, true},
		{KindActive, KindLocked, true},
		{KindLocked, KindActive, true},
		{KindActive, KindLost, true},
		{KindActive, KindRetired, true},
		{KindLocked, KindRetired, true},
		{KindLost, KindRetired, true},
		{KindDetected, KindActive, false},
		{KindLost, KindActive, false},
	}
	for _, c := range cases {
		if got := CanTransitionTo(c.from, c.to); got != c.want {
			t.Errorf("CanTransitionTo(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
