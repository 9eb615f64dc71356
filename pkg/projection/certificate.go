// Package projection implements the pure functors that map validated
// domain compositions (Organization × Unit × Person × KeyPurpose) into the
// parameter structs consumed by external crypto/NATS/SSI libraries. Every
// function here is side-effect-free, deterministic, and does no I/O —
// matching spec.md §4.4 and Testable Property #6.
package projection

import "time"

// KeyUsage is a bitmask mirroring the X.509 KeyUsage extension bits.
type KeyUsage uint16

const (
	KeyUsageDigitalSignature KeyUsage = 1 << iota
	KeyUsageKeyEncipherment
	KeyUsageKeyAgreement
	KeyUsageKeyCertSign
	KeyUsageCRLSign
)

// ExtKeyUsageOID is an extended-key-usage OID string (dotted decimal).
type ExtKeyUsageOID string

const (
	ExtKeyUsageServerAuth ExtKeyUsageOID = "1.3.6.1.5.5.7.3.1"
	ExtKeyUsageClientAuth ExtKeyUsageOID = "1.3.6.1.5.5.7.3.2"
	ExtKeyUsageCodeSign   ExtKeyUsageOID = "1.3.6.1.5.5.7.3.3"
)

// DistinguishedName is the subject DN for a CSR.
type DistinguishedName struct {
	CommonName         string
	Organization       string
	OrganizationalUnit string
	Country            string
}

// CSRParams is the output of the certificate-request projection: the
// library-ready shape consumed by a CertificateSigner driver.
type CSRParams struct {
	Subject         DistinguishedName
	SANs            []string
	KeyUsage        KeyUsage
	ExtKeyUsage     []ExtKeyUsageOID
	NotBefore       time.Time
	NotAfter        time.Time
}

// CertificateRequestInput is the already-validated domain composition that
// feeds ProjectCSR: Organization × Unit × Person × KeyPurpose.
type CertificateRequestInput struct {
	OrganizationName string
	UnitName         string
	PersonCommonName string
	Country          string
	SANs             []string
	Purpose          KeyPurpose
	ValidFrom        time.Time
	ValidDays        int
}

// KeyPurpose names the role a key/certificate is issued for, determining
// its key-usage and extended-key-usage bits.
type KeyPurpose string

const (
	PurposeTLSServer     KeyPurpose = "tls_server"
	PurposeTLSClient     KeyPurpose = "tls_client"
	PurposeCodeSigning   KeyPurpose = "code_signing"
	PurposeDocumentSign  KeyPurpose = "document_signing"
	PurposeCertAuthority KeyPurpose = "certificate_authority"
)

// purposeUsage maps a purpose to its key-usage and extended-key-usage bits.
var purposeUsage = map[KeyPurpose]struct {
	usage    KeyUsage
	extUsage []ExtKeyUsageOID
}{
	PurposeTLSServer:     {KeyUsageDigitalSignature | KeyUsageKeyEncipherment, []ExtKeyUsageOID{ExtKeyUsageServerAuth}},
	PurposeTLSClient:     {KeyUsageDigitalSignature | KeyUsageKeyAgreement, []ExtKeyUsageOID{ExtKeyUsageClientAuth}},
	PurposeCodeSigning:   {KeyUsageDigitalSignature, []ExtKeyUsageOID{ExtKeyUsageCodeSign}},
	PurposeDocumentSign:  {KeyUsageDigitalSignature, nil},
	PurposeCertAuthority: {KeyUsageKeyCertSign | KeyUsageCRLSign, nil},
}

// ProjectCSR maps a certificate request input into CSR parameters. Pure:
// deterministic in its inputs, no I/O, no randomness.
func ProjectCSR(in CertificateRequestInput) CSRParams {
	bits := purposeUsage[in.Purpose]
	return CSRParams{
		Subject: DistinguishedName{
			CommonName:         in.PersonCommonName,
			Organization:       in.OrganizationName,
			OrganizationalUnit: in.UnitName,
			Country:            in.Country,
		},
		SANs:        append([]string{}, in.SANs...),
		KeyUsage:    bits.usage,
		ExtKeyUsage: append([]ExtKeyUsageOID{}, bits.extUsage...),
		NotBefore:   in.ValidFrom,
		NotAfter:    in.ValidFrom.AddDate(0, 0, in.ValidDays),
	}
}
