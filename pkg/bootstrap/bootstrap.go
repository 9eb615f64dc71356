// Package bootstrap parses the JSON configuration file that drives
// start_bootstrap_saga (spec.md §6): an organization, its units, and the
// people who staff them.
package bootstrap

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/TheCowboyAI/cim-keys-sub002/pkg/saga/bootstrap"
)

// OrganizationInput names the organization to create.
type OrganizationInput struct {
	Name string `json:"name"`
}

// UnitInput names one organizational unit. ParentName, when non-empty,
// must match another unit's Name in the same config — resolved Open
// Question (a): parent-unit relationships are modeled here as a tree.
type UnitInput struct {
	Name       string `json:"name"`
	ParentName string `json:"parent_name,omitempty"`
}

// PersonInput names one service person and the unit they belong to.
type PersonInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	UnitName     string `json:"unit_name"`
	NeedsYubiKey bool   `json:"needs_yubikey"`
}

// NSCExportConfig is parsed from the config file's nsc_export_config
// object. Nothing reads it after parsing, so it does not change where the
// NSC credential store is written.
type NSCExportConfig struct {
	Dir string `json:"dir,omitempty"`
}

// Config is the root shape of a bootstrap configuration file.
type Config struct {
	Organization        OrganizationInput `json:"organization"`
	OrganizationalUnits []UnitInput       `json:"organizational_units"`
	ServicePeople       []PersonInput     `json:"service_people"`
	NSCExportConfig     *NSCExportConfig  `json:"nsc_export_config,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// LoadConfig reads and parses the bootstrap configuration file at path.
// This is a one-shot local file read, not a domain concern — no library in
// the example pack parses arbitrary nested JSON request bodies better than
// stdlib encoding/json, so this stays stdlib-only (see DESIGN.md).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bootstrap config %q: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing bootstrap config %q: %w", path, err)
	}
	if cfg.Organization.Name == "" {
		return nil, fmt.Errorf("bootstrap config %q: organization.name is required", path)
	}
	return &cfg, nil
}

// ToSagaRequest translates a parsed Config into the saga/bootstrap.Request
// the orchestration engine starts. Only unit names are carried over: unit
// parent links stay on the Config (see ParentOf) and are not passed to the
// engine, which links every unit directly to the organization.
func (c *Config) ToSagaRequest() bootstrap.Request {
	units := make([]string, len(c.OrganizationalUnits))
	for i, u := range c.OrganizationalUnits {
		units[i] = u.Name
	}
	people := make([]bootstrap.PersonInput, len(c.ServicePeople))
	for i, p := range c.ServicePeople {
		people[i] = bootstrap.PersonInput{
			Name:         p.Name,
			Email:        p.Email,
			UnitName:     p.UnitName,
			NeedsYubiKey: p.NeedsYubiKey,
		}
	}
	return bootstrap.Request{
		OrganizationName: c.Organization.Name,
		Units:            units,
		People:           people,
	}
}

// ParentOf returns the parent unit name for unitName, and whether one is
// configured.
func (c *Config) ParentOf(unitName string) (string, bool) {
	for _, u := range c.OrganizationalUnits {
		if u.Name == unitName && u.ParentName != "" {
			return u.ParentName, true
		}
	}
	return "", false
}
