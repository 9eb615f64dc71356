// Package nscexport writes NATS operator/account/user JWTs and user
// credential files to disk in the conventional NSC filesystem layout
// (spec.md §6): nsc/stores/{operator}/{operator}.jwt,
// nsc/stores/{operator}/accounts/{account}/{account}.jwt,
// nsc/stores/{operator}/accounts/{account}/users/{user}.creds,
// nsc/stores/{operator}/keys/... for private seeds.
package nscexport

import (
	"fmt"
	"os"
	"path/filepath"
)

// keyFileMode restricts private seed files to owner read/write only.
const keyFileMode = 0o600

// Exporter writes NSC-layout files under a root directory.
type Exporter struct {
	root string
}

// New constructs an Exporter rooted at dir/nsc/stores.
func New(dir string) *Exporter {
	return &Exporter{root: filepath.Join(dir, "nsc", "stores")}
}

func (e *Exporter) operatorDir(operator string) string {
	return filepath.Join(e.root, operator)
}

func (e *Exporter) accountDir(operator, account string) string {
	return filepath.Join(e.operatorDir(operator), "accounts", account)
}

func (e *Exporter) usersDir(operator, account string) string {
	return filepath.Join(e.accountDir(operator, account), "users")
}

func (e *Exporter) keysDir(operator string) string {
	return filepath.Join(e.operatorDir(operator), "keys")
}

// WriteOperatorJWT writes the operator's JWT.
func (e *Exporter) WriteOperatorJWT(operator, jwt string) error {
	dir := e.operatorDir(operator)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating operator directory: %w", err)
	}
	path := filepath.Join(dir, operator+".jwt")
	return os.WriteFile(path, []byte(jwt), 0o644)
}

// WriteAccountJWT writes an account's JWT under its operator.
func (e *Exporter) WriteAccountJWT(operator, account, jwt string) error {
	dir := e.accountDir(operator, account)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating account directory: %w", err)
	}
	path := filepath.Join(dir, account+".jwt")
	return os.WriteFile(path, []byte(jwt), 0o644)
}

// WriteUserCreds writes a user's .creds file (JWT plus seed, the NATS
// credentials file format) under its account.
func (e *Exporter) WriteUserCreds(operator, account, user, creds string) error {
	dir := e.usersDir(operator, account)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating users directory: %w", err)
	}
	path := filepath.Join(dir, user+".creds")
	return os.WriteFile(path, []byte(creds), keyFileMode)
}

// WriteSeed writes a private seed under the operator's keys directory,
// restricted to owner read/write.
func (e *Exporter) WriteSeed(operator, name, seed string) error {
	dir := e.keysDir(operator)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating keys directory: %w", err)
	}
	path := filepath.Join(dir, name+".nk")
	return os.WriteFile(path, []byte(seed), keyFileMode)
}
