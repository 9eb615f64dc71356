package acl

import "testing"

func TestValidateCertificateSubjectForm_RejectsMissingCommonName(t *testing.T) {
	form := CertificateSubjectForm{
		Organization:       "thecowboyai",
		OrganizationalUnit: "Engineering",
		Country:            "US",
		ValidDays:          365,
	}
	if _, err := ValidateCertificateSubjectForm(form); err == nil {
		t.Fatal("expected validation error for missing common_name")
	}
}

func TestValidateCertificateSubjectForm_AcceptsValidForm(t *testing.T) {
	form := CertificateSubjectForm{
		CommonName:         "Alice Engineer",
		Organization:       "thecowboyai",
		OrganizationalUnit: "Engineering",
		Country:            "US",
		SANs:               []string{"alice.thecowboyai.com"},
		ValidDays:          365,
	}
	v, err := ValidateCertificateSubjectForm(form)
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	dn := TranslateCertificateSubject(v)
	if dn.CommonName != "Alice Engineer" || dn.Country != "US" {
		t.Fatalf("unexpected translation: %+v", dn)
	}
}

func TestValidateOrganizationForm_RejectsBadParentUUID(t *testing.T) {
	form := OrganizationForm{Name: "thecowboyai", DisplayName: "The Cowboy AI", ParentID: "not-a-uuid"}
	if _, err := ValidateOrganizationForm(form); err == nil {
		t.Fatal("expected validation error for malformed parent_id")
	}
}

func TestTranslateOrganization_CopiesMetadata(t *testing.T) {
	form := OrganizationForm{Name: "thecowboyai", DisplayName: "The Cowboy AI", Metadata: map[string]string{"tier": "root"}}
	v, err := ValidateOrganizationForm(form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	attrs := TranslateOrganization(v)
	form.Metadata["tier"] = "mutated"
	if attrs.Metadata["tier"] != "root" {
		t.Fatal("TranslateOrganization must copy metadata, not alias it")
	}
}

func TestValidatePersonForm_RejectsBadEmail(t *testing.T) {
	form := PersonForm{Name: "Alice Engineer", Email: "not-an-email", OrganizationID: "018f5b3e-0000-7000-8000-000000000001"}
	if _, err := ValidatePersonForm(form); err == nil {
		t.Fatal("expected validation error for malformed email")
	}
}

func TestValidatePersonForm_AcceptsMinimalValidForm(t *testing.T) {
	form := PersonForm{
		Name:           "Alice Engineer",
		Email:          "alice@thecowboyai.com",
		OrganizationID: "018f5b3e-0000-7000-8000-000000000001",
		Roles:          []string{"developer"},
	}
	v, err := ValidatePersonForm(form)
	if err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	attrs := TranslatePerson(v)
	if attrs.NeedsYubiKey {
		t.Fatal("needs_yubikey should default to false")
	}
	if len(attrs.Roles) != 1 || attrs.Roles[0] != "developer" {
		t.Fatalf("unexpected roles: %v", attrs.Roles)
	}
}
