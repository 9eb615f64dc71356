package certificate

// RevocationReason records why a certificate was revoked, per RFC 5280
// CRL reason codes relevant to this domain.
type RevocationReason string

const (
	RevocationReasonKeyCompromise   RevocationReason = "key-compromise"
	RevocationReasonCACompromise    RevocationReason = "ca-compromise"
	RevocationReasonSuperseded      RevocationReason = "superseded"
	RevocationReasonCessationOfOp   RevocationReason = "cessation-of-operation"
	RevocationReasonAdminRevoked    RevocationReason = "admin-revoked"
)

// ArchivedFromState records which terminal-adjacent state preceded archival.
type ArchivedFromState string

const (
	ArchivedFromRenewed ArchivedFromState = "renewed"
	ArchivedFromRevoked ArchivedFromState = "revoked"
	ArchivedFromExpired ArchivedFromState = "expired"
)
