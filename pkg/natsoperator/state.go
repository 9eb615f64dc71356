package natsoperator

import (
	"time"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
)

// Kind discriminates concrete State implementations for transition-table
// lookups and serialization.
type Kind string

const (
	KindCreated       Kind = "created"
	KindKeysGenerated Kind = "keys_generated"
	KindActive        Kind = "active"
	KindSuspended     Kind = "suspended"
	KindRevoked       Kind = "revoked"
)

// State is the sealed lifecycle state of a NATS operator aggregate.
type State interface {
	Kind() Kind
	IsTerminal() bool
	Description() string
}

var transitions = map[Kind]map[Kind]bool{
	KindCreated:       {KindKeysGenerated: true},
	KindKeysGenerated: {KindActive: true},
	KindActive:        {KindSuspended: true, KindRevoked: true},
	KindSuspended:     {KindActive: true, KindRevoked: true},
	KindRevoked:       {},
}

// CanTransitionTo reports whether target is a legal successor of from.
func CanTransitionTo(from, target Kind) bool {
	return transitions[from][target]
}

// CreatedState: established but signing keys not yet generated.
type CreatedState struct {
	CreatedAt    time.Time
	CreatedBy    string
	OperatorName string
}

func (CreatedState) Kind() Kind          { return KindCreated }
func (CreatedState) IsTerminal() bool    { return false }
func (CreatedState) Description() string { return "Created (awaiting key generation)" }

// KeysGeneratedState: signing keypair generated, awaiting JWT activation.
type KeysGeneratedState struct {
	SigningKeyID string
	PublicKey    string
	GeneratedAt  time.Time
}

func (KeysGeneratedState) Kind() Kind          { return KindKeysGenerated }
func (KeysGeneratedState) IsTerminal() bool    { return false }
func (KeysGeneratedState) Description() string { return "KeysGenerated (awaiting activation)" }

// ActiveState: operator JWT signed, can create accounts and sign account JWTs.
type ActiveState struct {
	ActivatedAt time.Time
	JWTIssuedAt time.Time
	Accounts    []string
}

func (ActiveState) Kind() Kind          { return KindActive }
func (ActiveState) IsTerminal() bool    { return false }
func (ActiveState) Description() string { return "Active (can create accounts)" }

// SuspendedState: temporarily suspended, restorable to Active.
type SuspendedState struct {
	Reason      string
	SuspendedAt time.Time
	SuspendedBy string
	Accounts    []string
}

func (SuspendedState) Kind() Kind          { return KindSuspended }
func (SuspendedState) IsTerminal() bool    { return false }
func (SuspendedState) Description() string { return "Suspended" }

// RevokedState: permanently revoked. Terminal.
type RevokedState struct {
	RevokedAt           time.Time
	RevokedBy           string
	Reason              string
	SuccessorOperatorID *string
}

func (RevokedState) Kind() Kind          { return KindRevoked }
func (RevokedState) IsTerminal() bool    { return true }
func (RevokedState) Description() string { return "Revoked (TERMINAL)" }

func IsActive(s State) bool         { return s.Kind() == KindActive }
func CanCreateAccounts(s State) bool { return s.Kind() == KindActive }
func CanSignJWTs(s State) bool      { return s.Kind() == KindActive }
func CanBeModified(s State) bool    { return !s.IsTerminal() }
func IsSuspended(s State) bool      { return s.Kind() == KindSuspended }
func IsRevoked(s State) bool        { return s.Kind() == KindRevoked }

// GenerateKeys transitions a Created operator into KeysGenerated.
func GenerateKeys(s State, signingKeyID, publicKey string, at time.Time) (State, error) {
	if s.Kind() != KindCreated {
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_operator", Current: s.Description(), Event: "generate_keys",
			Reason: "can only generate keys from Created state",
		}
	}
	if publicKey == "" {
		return nil, cimerrors.ValidationFailed{EntityType: "nats_operator", Reason: "public key cannot be empty"}
	}
	return KeysGeneratedState{SigningKeyID: signingKeyID, PublicKey: publicKey, GeneratedAt: at}, nil
}

// ActivateWithJWT transitions a KeysGenerated operator into Active once its
// operator JWT has been signed.
func ActivateWithJWT(s State, at, jwtIssuedAt time.Time) (State, error) {
	if s.Kind() != KindKeysGenerated {
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_operator", Current: s.Description(), Event: "activate_with_jwt",
			Reason: "must have signing keys generated before activation",
		}
	}
	return ActiveState{ActivatedAt: at, JWTIssuedAt: jwtIssuedAt}, nil
}

// AddAccount attaches a newly created account to an Active operator.
func AddAccount(s State, accountID string) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_operator", Current: s.Description(), Event: "add_account",
			Reason: "can only add accounts to an Active operator",
		}
	}
	active.Accounts = append(append([]string{}, active.Accounts...), accountID)
	return active, nil
}

// Suspend transitions an Active operator into Suspended.
func Suspend(s State, reason string, at time.Time, suspendedBy string) (State, error) {
	active, ok := s.(ActiveState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_operator", Current: s.Description(), Event: "suspend",
			Reason: "can only suspend an Active operator",
		}
	}
	return SuspendedState{Reason: reason, SuspendedAt: at, SuspendedBy: suspendedBy, Accounts: active.Accounts}, nil
}

// Reactivate transitions a Suspended operator back into Active.
func Reactivate(s State, at time.Time) (State, error) {
	suspended, ok := s.(SuspendedState)
	if !ok {
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_operator", Current: s.Description(), Event: "reactivate",
			Reason: "can only reactivate a Suspended operator",
		}
	}
	return ActiveState{ActivatedAt: at, JWTIssuedAt: at, Accounts: suspended.Accounts}, nil
}

// Revoke transitions an Active or Suspended operator into Revoked.
func Revoke(s State, reason string, at time.Time, revokedBy string, successorOperatorID *string) (State, error) {
	if s.Kind() != KindActive && s.Kind() != KindSuspended {
		return nil, cimerrors.InvalidTransition{
			EntityType: "nats_operator", Current: s.Description(), Event: "revoke",
			Reason: "can only revoke an Active or Suspended operator",
		}
	}
	return RevokedState{RevokedAt: at, RevokedBy: revokedBy, Reason: reason, SuccessorOperatorID: successorOperatorID}, nil
}
