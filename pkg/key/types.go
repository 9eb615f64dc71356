package key

// Algorithm identifies the cryptographic primitive a key uses. The actual
// key material and signing operations live behind the KeyGenerator driver;
// the aggregate only ever carries the algorithm tag.
type Algorithm string

const (
	AlgorithmEd25519 Algorithm = "ed25519"
	AlgorithmECDSAP256 Algorithm = "ecdsa-p256"
	AlgorithmRSA4096 Algorithm = "rsa-4096"
)

// ImportSource records where an imported key's material came from.
type ImportSource string

const (
	ImportSourceYubikey   ImportSource = "yubikey"
	ImportSourceHSM       ImportSource = "hsm"
	ImportSourceFile      ImportSource = "file"
	ImportSourceMigration ImportSource = "migration"
)

// RevocationReason records why a key was revoked.
type RevocationReason string

const (
	RevocationReasonCompromised      RevocationReason = "compromised"
	RevocationReasonSuperseded       RevocationReason = "superseded"
	RevocationReasonPolicyViolation  RevocationReason = "policy-violation"
	RevocationReasonHolderDeactivated RevocationReason = "holder-deactivated"
	RevocationReasonAdminRevoked     RevocationReason = "admin-revoked"
)

// ExpiryReason records why a key expired.
type ExpiryReason string

const (
	ExpiryReasonValidityPeriodElapsed ExpiryReason = "validity-period-elapsed"
	ExpiryReasonPolicyExpiry          ExpiryReason = "policy-expiry"
)

// ArchivedFromState records which terminal-adjacent state preceded
// archival, for audit purposes.
type ArchivedFromState string

const (
	ArchivedFromRotated ArchivedFromState = "rotated"
	ArchivedFromRevoked  ArchivedFromState = "revoked"
	ArchivedFromExpired  ArchivedFromState = "expired"
)
