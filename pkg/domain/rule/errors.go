package rule

import "errors"

var (
	ErrInvalidRule       = errors.New("invalid rule")
	ErrRuleNotFound      = errors.New("rule not found")
	ErrRuleAlreadyExists = errors.New("rule already exists")
)
