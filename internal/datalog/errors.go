package datalog

import (
	"errors"
	"fmt"
)

// RuleError reports a rule-head validation failure from Rule.
//
// Both failure modes are precondition violations detected at compilation
// time, never deferred into a later execution error.
type RuleError struct {
	// Code identifies the failure category.
	Code RuleErrorCode

	// Message is a human-readable description.
	Message string

	// Relation names the head relation.
	Relation string

	// Position is the offending argument index (non-variable head).
	Position int

	// Var names the offending variable (unbound head variable).
	Var string
}

// RuleErrorCode categorizes rule compilation errors.
type RuleErrorCode string

const (
	// ErrCodeNonVariableHead indicates a rule head contains a constant argument.
	ErrCodeNonVariableHead RuleErrorCode = "NON_VARIABLE_HEAD"

	// ErrCodeUnboundHeadVariable indicates a head variable the body does not bind.
	ErrCodeUnboundHeadVariable RuleErrorCode = "UNBOUND_HEAD_VARIABLE"
)

// Error implements the error interface.
func (e *RuleError) Error() string {
	if e.Var != "" {
		return fmt.Sprintf("%s: %s (relation=%s, var=%s)", e.Code, e.Message, e.Relation, e.Var)
	}
	return fmt.Sprintf("%s: %s (relation=%s, position=%d)", e.Code, e.Message, e.Relation, e.Position)
}

// IsRuleError returns true if the error is a rule validation error.
// Uses errors.As to handle wrapped errors.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

// NewNonVariableHeadError creates a RuleError for a constant in a rule head.
func NewNonVariableHeadError(relation string, position int) *RuleError {
	return &RuleError{
		Code:     ErrCodeNonVariableHead,
		Message:  "rule head must bind only variables",
		Relation: relation,
		Position: position,
	}
}

// NewUnboundHeadVariableError creates a RuleError for a head variable the
// body's output set does not contain.
func NewUnboundHeadVariableError(relation, variable string) *RuleError {
	return &RuleError{
		Code:     ErrCodeUnboundHeadVariable,
		Message:  "head variable not bound by rule body",
		Relation: relation,
		Var:      variable,
	}
}
