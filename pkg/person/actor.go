package person

// Actor identifies who performed an action against a person aggregate, as
// a typed alternative to the bare subject strings earlier event records
// carry (e.g. "admin-1"). Kind distinguishes an operator from an
// automated system actor; it is empty for values recovered from a
// legacy string.
type Actor struct {
	Subject string
	Kind    string
}

// actorFromLegacy recovers an Actor from a legacy *By string field.
func actorFromLegacy(subject string) Actor {
	return Actor{Subject: subject}
}
