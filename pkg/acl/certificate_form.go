package acl

import "github.com/TheCowboyAI/cim-keys-sub002/pkg/projection"

// CertificateSubjectForm is the externally supplied, unvalidated shape of a
// certificate request's subject.
type CertificateSubjectForm struct {
	CommonName         string   `json:"common_name" validate:"required,min=1"`
	Organization       string   `json:"organization" validate:"required"`
	OrganizationalUnit string   `json:"organizational_unit" validate:"required"`
	Country            string   `json:"country" validate:"required,len=2"`
	SANs               []string `json:"sans" validate:"omitempty,dive,required"`
	ValidDays          int      `json:"valid_days" validate:"required,gte=1,lte=3650"`
}

// ValidatedCertificateSubject is a CertificateSubjectForm whose every field
// has passed format, range, and cross-field checks.
type ValidatedCertificateSubject struct {
	form CertificateSubjectForm
}

// ValidateCertificateSubjectForm validates form and returns an immutable
// validated value, or a ValidationError.
func ValidateCertificateSubjectForm(form CertificateSubjectForm) (ValidatedCertificateSubject, error) {
	if err := Validate(form); err != nil {
		return ValidatedCertificateSubject{}, err
	}
	return ValidatedCertificateSubject{form: form}, nil
}

// TranslateCertificateSubject is a pure, infallible translation from a
// validated subject form into distinguished-name components. Translators
// never fail — all failure modes were already rejected by validation.
func TranslateCertificateSubject(v ValidatedCertificateSubject) projection.DistinguishedName {
	return projection.DistinguishedName{
		CommonName:         v.form.CommonName,
		Organization:       v.form.Organization,
		OrganizationalUnit: v.form.OrganizationalUnit,
		Country:            v.form.Country,
	}
}
