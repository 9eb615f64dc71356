package acl

// OrganizationForm is the externally supplied, unvalidated shape of an
// organization creation request.
type OrganizationForm struct {
	Name        string            `json:"name" validate:"required,min=1"`
	DisplayName string            `json:"display_name" validate:"required"`
	ParentID    string            `json:"parent_id" validate:"omitempty,uuid"`
	Metadata    map[string]string `json:"metadata" validate:"omitempty"`
}

// ValidatedOrganization is an OrganizationForm that has passed validation.
type ValidatedOrganization struct {
	form OrganizationForm
}

// ValidateOrganizationForm validates form and returns an immutable
// validated value, or a ValidationError.
func ValidateOrganizationForm(form OrganizationForm) (ValidatedOrganization, error) {
	if err := Validate(form); err != nil {
		return ValidatedOrganization{}, err
	}
	return ValidatedOrganization{form: form}, nil
}

// OrganizationAttributes is the immutable value object translated from a
// validated organization form.
type OrganizationAttributes struct {
	Name        string
	DisplayName string
	ParentID    string
	Metadata    map[string]string
}

// TranslateOrganization is a pure, infallible translation.
func TranslateOrganization(v ValidatedOrganization) OrganizationAttributes {
	metadata := make(map[string]string, len(v.form.Metadata))
	for k, val := range v.form.Metadata {
		metadata[k] = val
	}
	return OrganizationAttributes{
		Name:        v.form.Name,
		DisplayName: v.form.DisplayName,
		ParentID:    v.form.ParentID,
		Metadata:    metadata,
	}
}
