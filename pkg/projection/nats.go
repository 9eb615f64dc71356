package projection

import "time"

// NATSOperatorParams is consumed by internal/drivers/natsjwt to sign an
// operator JWT; it mirrors the conventional NATS operator-claims shape.
type NATSOperatorParams struct {
	Name       string
	PublicKey  string
	SystemAccountPublicKey string
	IssuedAt   time.Time
}

// NATSAccountClaims is consumed by internal/drivers/natsjwt to sign an
// account JWT under its operator.
type NATSAccountClaims struct {
	Name           string
	PublicKey      string
	OperatorPublicKey string
	Exports        []string
	Imports        []string
	MaxConnections int64
	MaxData        int64
	IssuedAt       time.Time
}

// NATSUserClaims is consumed by internal/drivers/natsjwt to sign a user JWT
// under its account.
type NATSUserClaims struct {
	Subject        string
	Issuer         string
	PublishAllow   []string
	PublishDeny    []string
	SubscribeAllow []string
	SubscribeDeny  []string
	NotBefore      time.Time
	Expires        time.Time
}

// OrganizationToOperator is the validated input: Organization → operator
// NKey parameters.
type OrganizationToOperator struct {
	OrganizationName string
	PublicKey        string
	SystemAccountPublicKey string
	At               time.Time
}

// ProjectNATSOperator maps an organization into operator claim parameters. Pure.
func ProjectNATSOperator(in OrganizationToOperator) NATSOperatorParams {
	return NATSOperatorParams{
		Name:                   in.OrganizationName,
		PublicKey:              in.PublicKey,
		SystemAccountPublicKey: in.SystemAccountPublicKey,
		IssuedAt:               in.At,
	}
}

// UnitToAccount is the validated input: OrganizationUnit → account claims.
type UnitToAccount struct {
	UnitName          string
	PublicKey         string
	OperatorPublicKey string
	Exports           []string
	Imports           []string
	MaxConnections    int64
	MaxData           int64
	At                time.Time
}

// ProjectNATSAccount maps a unit into account claim parameters. Pure.
func ProjectNATSAccount(in UnitToAccount) NATSAccountClaims {
	return NATSAccountClaims{
		Name:              in.UnitName,
		PublicKey:         in.PublicKey,
		OperatorPublicKey: in.OperatorPublicKey,
		Exports:           append([]string{}, in.Exports...),
		Imports:           append([]string{}, in.Imports...),
		MaxConnections:    in.MaxConnections,
		MaxData:           in.MaxData,
		IssuedAt:          in.At,
	}
}

// PersonToUser is the validated input: Person → user claims (subject,
// issuer hint, permissions, limits, not-before, expiry).
type PersonToUser struct {
	Subject        string
	AccountPublicKey string
	PublishAllow   []string
	PublishDeny    []string
	SubscribeAllow []string
	SubscribeDeny  []string
	NotBefore      time.Time
	ValidDays      int
}

// ProjectNATSUser maps a person into user claim parameters. Pure.
func ProjectNATSUser(in PersonToUser) NATSUserClaims {
	return NATSUserClaims{
		Subject:        in.Subject,
		Issuer:         in.AccountPublicKey,
		PublishAllow:   append([]string{}, in.PublishAllow...),
		PublishDeny:    append([]string{}, in.PublishDeny...),
		SubscribeAllow: append([]string{}, in.SubscribeAllow...),
		SubscribeDeny:  append([]string{}, in.SubscribeDeny...),
		NotBefore:      in.NotBefore,
		Expires:        in.NotBefore.AddDate(0, 0, in.ValidDays),
	}
}
