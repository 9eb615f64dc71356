// Package pkicrypto implements drivers.KeyGenerator and
// drivers.CertificateSigner on top of the standard library's crypto/x509
// and crypto/ed25519, keeping generated private keys in an in-process
// map keyed by an opaque handle (never returned to callers).
package pkicrypto

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"log/slog"
	"math/big"
	"sync"

	"github.com/google/uuid"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/projection"
)

type keyRecord struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey
	revoked bool
}

type certRecord struct {
	der     []byte
	revoked bool
}

// Driver is an in-process KeyGenerator and CertificateSigner. It is
// intended for development and test use; production deployments should
// back it with an HSM or KMS instead.
type Driver struct {
	logger *slog.Logger

	mu    sync.Mutex
	keys  map[string]*keyRecord
	certs map[string]*certRecord
}

// New constructs a Driver that logs each issuance through logger.
func New(logger *slog.Logger) *Driver {
	return &Driver{
		logger: logger,
		keys:   make(map[string]*keyRecord),
		certs:  make(map[string]*certRecord),
	}
}

// GenerateKey creates an Ed25519 key pair for purpose and stores the
// private key under a fresh handle.
func (d *Driver) GenerateKey(ctx context.Context, purpose projection.KeyPurpose) (string, []byte, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", nil, cimerrors.DriverError{Driver: "pkicrypto", Message: "generating ed25519 key pair", Err: err}
	}
	handle := uuid.NewString()
	d.mu.Lock()
	d.keys[handle] = &keyRecord{private: private, public: public}
	d.mu.Unlock()

	d.logger.Info("generated key", "handle", handle, "purpose", purpose)
	return handle, public, nil
}

// RevokeKey marks handle's key as revoked; future Sign calls using it
// fail.
func (d *Driver) RevokeKey(ctx context.Context, handle string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.keys[handle]
	if !ok {
		return cimerrors.NotFound{Kind: "key", ID: handle}
	}
	rec.revoked = true
	d.logger.Info("revoked key", "handle", handle)
	return nil
}

// Sign issues a self-signed or CA-signed certificate from params. When
// issuerHandle is empty the certificate is self-signed (used for root
// CAs); otherwise it is signed by the key at issuerHandle.
func (d *Driver) Sign(ctx context.Context, issuerHandle string, params projection.CSRParams, publicKey []byte) (string, []byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	signerHandle := issuerHandle
	if signerHandle == "" {
		signerHandle = handleForPublicKey(d.keys, ed25519.PublicKey(publicKey))
	}
	signer, ok := d.keys[signerHandle]
	if !ok {
		return "", nil, cimerrors.NotFound{Kind: "key", ID: signerHandle}
	}
	if signer.revoked {
		return "", nil, cimerrors.GuardFailed{EntityType: "key", Reason: "signing key has been revoked"}
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return "", nil, cimerrors.DriverError{Driver: "pkicrypto", Message: "generating serial number", Err: err}
	}

	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:         params.Subject.CommonName,
			Organization:       nonEmpty(params.Subject.Organization),
			OrganizationalUnit: nonEmpty(params.Subject.OrganizationalUnit),
			Country:            nonEmpty(params.Subject.Country),
		},
		DNSNames:              params.SANs,
		NotBefore:             params.NotBefore,
		NotAfter:              params.NotAfter,
		KeyUsage:              keyUsageToX509(params.KeyUsage),
		ExtKeyUsage:           extKeyUsageToX509(params.ExtKeyUsage),
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, ed25519.PublicKey(publicKey), signer.private)
	if err != nil {
		return "", nil, cimerrors.DriverError{Driver: "pkicrypto", Message: "creating certificate", Err: err}
	}

	handle := uuid.NewString()
	d.certs[handle] = &certRecord{der: der}
	d.logger.Info("issued certificate", "handle", handle, "common_name", params.Subject.CommonName, "not_after", params.NotAfter)
	return handle, der, nil
}

// Revoke marks certHandle as revoked.
func (d *Driver) Revoke(ctx context.Context, certHandle string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec, ok := d.certs[certHandle]
	if !ok {
		return cimerrors.NotFound{Kind: "certificate", ID: certHandle}
	}
	rec.revoked = true
	d.logger.Info("revoked certificate", "handle", certHandle)
	return nil
}

func handleForPublicKey(keys map[string]*keyRecord, pub ed25519.PublicKey) string {
	for h, rec := range keys {
		if rec.public.Equal(pub) {
			return h
		}
	}
	return ""
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func keyUsageToX509(ku projection.KeyUsage) x509.KeyUsage {
	var out x509.KeyUsage
	if ku&projection.KeyUsageDigitalSignature != 0 {
		out |= x509.KeyUsageDigitalSignature
	}
	if ku&projection.KeyUsageKeyEncipherment != 0 {
		out |= x509.KeyUsageKeyEncipherment
	}
	if ku&projection.KeyUsageKeyAgreement != 0 {
		out |= x509.KeyUsageKeyAgreement
	}
	if ku&projection.KeyUsageKeyCertSign != 0 {
		out |= x509.KeyUsageCertSign
	}
	if ku&projection.KeyUsageCRLSign != 0 {
		out |= x509.KeyUsageCRLSign
	}
	return out
}

func extKeyUsageToX509(oids []projection.ExtKeyUsageOID) []x509.ExtKeyUsage {
	out := make([]x509.ExtKeyUsage, 0, len(oids))
	for _, oid := range oids {
		switch oid {
		case projection.ExtKeyUsageServerAuth:
			out = append(out, x509.ExtKeyUsageServerAuth)
		case projection.ExtKeyUsageClientAuth:
			out = append(out, x509.ExtKeyUsageClientAuth)
		case projection.ExtKeyUsageCodeSign:
			out = append(out, x509.ExtKeyUsageCodeSigning)
		}
	}
	return out
}
