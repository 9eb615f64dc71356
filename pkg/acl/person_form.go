package acl

// PersonForm is the externally supplied, unvalidated shape of a person
// creation request.
type PersonForm struct {
	Name           string   `json:"name" validate:"required,min=1"`
	Email          string   `json:"email" validate:"required,email"`
	OrganizationID string   `json:"organization_id" validate:"required,uuid"`
	UnitIDs        []string `json:"unit_ids" validate:"omitempty,dive,uuid"`
	Roles          []string `json:"roles" validate:"omitempty,dive,required"`
	NeedsYubiKey   bool     `json:"needs_yubikey"`
	NATSAccountID  string   `json:"nats_account_id" validate:"omitempty,uuid"`
}

// ValidatedPerson is a PersonForm that has passed validation.
type ValidatedPerson struct {
	form PersonForm
}

// ValidatePersonForm validates form and returns an immutable validated
// value, or a ValidationError.
func ValidatePersonForm(form PersonForm) (ValidatedPerson, error) {
	if err := Validate(form); err != nil {
		return ValidatedPerson{}, err
	}
	return ValidatedPerson{form: form}, nil
}

// PersonAttributes is the immutable value object translated from a
// validated person form.
type PersonAttributes struct {
	Name           string
	Email          string
	OrganizationID string
	UnitIDs        []string
	Roles          []string
	NeedsYubiKey   bool
	NATSAccountID  string
}

// TranslatePerson is a pure, infallible translation.
func TranslatePerson(v ValidatedPerson) PersonAttributes {
	return PersonAttributes{
		Name:           v.form.Name,
		Email:          v.form.Email,
		OrganizationID: v.form.OrganizationID,
		UnitIDs:        append([]string{}, v.form.UnitIDs...),
		Roles:          append([]string{}, v.form.Roles...),
		NeedsYubiKey:   v.form.NeedsYubiKey,
		NATSAccountID:  v.form.NATSAccountID,
	}
}
