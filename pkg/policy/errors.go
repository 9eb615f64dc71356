package policy

import "errors"

var (
	errEmptyClaim     = errors.New("policy: claim must have a non-empty action and resource")
	errEmptyCondition = errors.New("policy: condition must have a non-empty kind")
)
