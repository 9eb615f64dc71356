package projection

import "time"

// VerificationMethod describes one key a DID document asserts control over.
type VerificationMethod struct {
	ID                 string
	Type               string
	Controller         string
	PublicKeyMultibase string
}

// DIDDocument is the SSI projection of an organization's root certificate:
// Organization root certificate → DID document & verification method.
type DIDDocument struct {
	ID                 string
	VerificationMethod []VerificationMethod
	Authentication     []string
}

// RootCertToDID is the validated input for ProjectDIDDocument.
type RootCertToDID struct {
	DID              string
	PublicKeyMultibase string
}

// ProjectDIDDocument maps a root certificate's key material into a DID
// document. Pure.
func ProjectDIDDocument(in RootCertToDID) DIDDocument {
	vmID := in.DID + "#key-1"
	return DIDDocument{
		ID: in.DID,
		VerificationMethod: []VerificationMethod{{
			ID:                 vmID,
			Type:               "Ed25519VerificationKey2020",
			Controller:         in.DID,
			PublicKeyMultibase: in.PublicKeyMultibase,
		}},
		Authentication: []string{vmID},
	}
}

// CredentialSubject is the subject claims of a verifiable credential.
type CredentialSubject struct {
	ID     string
	Claims map[string]string
}

// VerifiableCredential is the SSI projection of a person certificate:
// Person certificate → verifiable credential.
type VerifiableCredential struct {
	Context           []string
	Type              []string
	Issuer            string
	IssuanceDate      time.Time
	CredentialSubject CredentialSubject
	ProofType         string
}

// PersonCertToCredential is the validated input for ProjectVerifiableCredential.
type PersonCertToCredential struct {
	IssuerDID  string
	SubjectDID string
	Claims     map[string]string
	IssuedAt   time.Time
}

// ProjectVerifiableCredential maps a person certificate into a verifiable
// credential. Pure.
func ProjectVerifiableCredential(in PersonCertToCredential) VerifiableCredential {
	claims := make(map[string]string, len(in.Claims))
	for k, v := range in.Claims {
		claims[k] = v
	}
	return VerifiableCredential{
		Context:      []string{"https://www.w3.org/2018/credentials/v1"},
		Type:         []string{"VerifiableCredential"},
		Issuer:       in.IssuerDID,
		IssuanceDate: in.IssuedAt,
		CredentialSubject: CredentialSubject{
			ID:     in.SubjectDID,
			Claims: claims,
		},
		ProofType: "Ed25519Signature2020",
	}
}
