// Package natsjwt implements drivers.JWTIssuer on top of
// github.com/golang-jwt/jwt/v5, turning NATS operator/account/user claim
// projections into signed JWTs for the NSC filesystem layout.
package natsjwt

import (
	"context"
	"log/slog"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/cimerrors"
	"github.com/TheCowboyAI/cim-keys-sub002/pkg/projection"
)

// Driver issues JWTs signed by in-memory HMAC secrets looked up by
// signing-key handle, standing in for NATS NKey signing until a real
// NKey-aware signer is wired in.
type Driver struct {
	logger *slog.Logger

	mu      sync.Mutex
	secrets map[string][]byte
}

// New constructs a Driver.
func New(logger *slog.Logger) *Driver {
	return &Driver{logger: logger, secrets: make(map[string][]byte)}
}

// RegisterSigningKey associates a signing-key handle with the secret used
// to sign JWTs issued under it.
func (d *Driver) RegisterSigningKey(handle string, secret []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.secrets[handle] = secret
	return nil
}

func (d *Driver) secretFor(handle string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	secret, ok := d.secrets[handle]
	if !ok {
		return nil, cimerrors.NotFound{Kind: "signing_key", ID: handle}
	}
	return secret, nil
}

func (d *Driver) sign(claims jwt.MapClaims, signingKeyHandle string) (string, error) {
	secret, err := d.secretFor(signingKeyHandle)
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", cimerrors.DriverError{Driver: "natsjwt", Message: "signing jwt", Err: err}
	}
	return signed, nil
}

// IssueOperatorJWT signs an operator claims JWT.
func (d *Driver) IssueOperatorJWT(ctx context.Context, params projection.NATSOperatorParams, signingKeyHandle string) (string, error) {
	claims := jwt.MapClaims{
		"name":                     params.Name,
		"sub":                      params.PublicKey,
		"system_account":           params.SystemAccountPublicKey,
		"iat":                      params.IssuedAt.Unix(),
		"nats_type":                "operator",
	}
	signed, err := d.sign(claims, signingKeyHandle)
	if err != nil {
		return "", err
	}
	d.logger.Info("issued operator jwt", "name", params.Name)
	return signed, nil
}

// IssueAccountJWT signs an account claims JWT.
func (d *Driver) IssueAccountJWT(ctx context.Context, claims projection.NATSAccountClaims, signingKeyHandle string) (string, error) {
	jwtClaims := jwt.MapClaims{
		"name":            claims.Name,
		"sub":             claims.PublicKey,
		"iss":             claims.OperatorPublicKey,
		"exports":         claims.Exports,
		"imports":         claims.Imports,
		"max_connections": claims.MaxConnections,
		"max_data":        claims.MaxData,
		"iat":             claims.IssuedAt.Unix(),
		"nats_type":       "account",
	}
	signed, err := d.sign(jwtClaims, signingKeyHandle)
	if err != nil {
		return "", err
	}
	d.logger.Info("issued account jwt", "name", claims.Name)
	return signed, nil
}

// IssueUserJWT signs a user claims JWT.
func (d *Driver) IssueUserJWT(ctx context.Context, claims projection.NATSUserClaims, signingKeyHandle string) (string, error) {
	jwtClaims := jwt.MapClaims{
		"sub":             claims.Subject,
		"iss":             claims.Issuer,
		"pub_allow":       claims.PublishAllow,
		"pub_deny":        claims.PublishDeny,
		"sub_allow":       claims.SubscribeAllow,
		"sub_deny":        claims.SubscribeDeny,
		"nbf":             claims.NotBefore.Unix(),
		"exp":             claims.Expires.Unix(),
		"nats_type":       "user",
	}
	signed, err := d.sign(jwtClaims, signingKeyHandle)
	if err != nil {
		return "", err
	}
	d.logger.Info("issued user jwt", "subject", claims.Subject)
	return signed, nil
}
