package projection

import "github.com/TheCowboyAI/cim-keys-sub002/pkg/yubikey"

// PinPolicy mirrors a YubiKey PIV slot's PIN-prompt policy.
type PinPolicy string

const (
	PinPolicyNever     PinPolicy = "never"
	PinPolicyOnce      PinPolicy = "once"
	PinPolicyAlways    PinPolicy = "always"
	PinPolicyMatchOnce PinPolicy = "match_once"
)

// TouchPolicy mirrors a YubiKey PIV slot's touch-prompt policy.
type TouchPolicy string

const (
	TouchPolicyNever  TouchPolicy = "never"
	TouchPolicyAlways TouchPolicy = "always"
	TouchPolicyCached TouchPolicy = "cached"
)

// PivAlgorithm names the key algorithm required for a slot.
type PivAlgorithm string

const (
	PivAlgorithmECCP256 PivAlgorithm = "ecc_p256"
	PivAlgorithmECCP384 PivAlgorithm = "ecc_p384"
	PivAlgorithmRSA2048 PivAlgorithm = "rsa_2048"
)

// PIVPlan is a single slot's provisioning plan: which slot, under what
// PIN/touch policy, and with what algorithm.
type PIVPlan struct {
	Slot      yubikey.PivSlot
	PinPolicy PinPolicy
	Touch     TouchPolicy
	Algorithm PivAlgorithm
}

// Role names a person's key-ownership role, determining which PIV slots
// they require (spec.md scenario S5).
type Role string

const (
	RoleRootAuthority Role = "root_authority"
	RoleSecurityAdmin Role = "security_admin"
	RoleDeveloper     Role = "developer"
	RoleServiceAccount Role = "service_account"
	RoleBackupHolder  Role = "backup_holder"
	RoleAuditor       Role = "auditor"
)

// requiredSlotsByRole implements scenario S5 verbatim.
var requiredSlotsByRole = map[Role][]yubikey.PivSlot{
	RoleRootAuthority:  {yubikey.PivSlotSignature},
	RoleSecurityAdmin:  {yubikey.PivSlotAuthentication, yubikey.PivSlotSignature, yubikey.PivSlotKeyManagement},
	RoleDeveloper:      {yubikey.PivSlotAuthentication},
	RoleServiceAccount: {yubikey.PivSlotCardAuth},
	RoleBackupHolder:   {yubikey.PivSlotAuthentication, yubikey.PivSlotKeyManagement},
	RoleAuditor:        {yubikey.PivSlotAuthentication},
}

// RequiredSlotsForRole returns the PIV slots a given role requires.
func RequiredSlotsForRole(role Role) []yubikey.PivSlot {
	slots := requiredSlotsByRole[role]
	out := make([]yubikey.PivSlot, len(slots))
	copy(out, slots)
	return out
}

// slotAlgorithm is the conventional algorithm per slot purpose.
var slotAlgorithm = map[yubikey.PivSlot]PivAlgorithm{
	yubikey.PivSlotAuthentication: PivAlgorithmECCP256,
	yubikey.PivSlotSignature:      PivAlgorithmECCP384,
	yubikey.PivSlotKeyManagement:  PivAlgorithmECCP256,
	yubikey.PivSlotCardAuth:       PivAlgorithmECCP256,
}

// YubiKeyProvisioningInput is the validated domain composition: Person ×
// Organization × KeyPurpose × target PIV slot.
type YubiKeyProvisioningInput struct {
	Role Role
	Slot yubikey.PivSlot
}

// ProjectPIVPlan maps a provisioning input into a slot plan. Pure.
func ProjectPIVPlan(in YubiKeyProvisioningInput) PIVPlan {
	touch := TouchPolicyCached
	pin := PinPolicyOnce
	if in.Slot == yubikey.PivSlotSignature {
		// Signature keys require fresh user presence per signature.
		touch = TouchPolicyAlways
		pin = PinPolicyAlways
	}
	return PIVPlan{
		Slot:      in.Slot,
		PinPolicy: pin,
		Touch:     touch,
		Algorithm: slotAlgorithm[in.Slot],
	}
}
