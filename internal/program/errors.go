package program

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"
)

// Load error codes (E001-E099).
const (
	ErrCodeGeneric     = "E001" // Unclassified error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeDecode      = "E007" // Declaration decode error
)

// Validation error codes (E101-E199).
const (
	ErrCodeRelationName = "E101" // Invalid or reserved relation name
	ErrCodeColumnName   = "E102" // Invalid column name
	ErrCodeNoColumns    = "E103" // Relation has no columns
	ErrCodeDuplicate    = "E104" // Duplicate relation or column name
	ErrCodeUnknownRel   = "E105" // Reference to an undeclared relation
	ErrCodeArity        = "E106" // Argument count does not match relation
	ErrCodeColumnType   = "E107" // Invalid column type
	ErrCodeRuleHead     = "E108" // Rule head not derivable from its body
	ErrCodeFactValue    = "E109" // Fact value is not a supported scalar
	ErrCodeRuleSyntax   = "E110" // Rule text failed to parse
)

// LoadError is an error produced while locating, loading, or decoding
// program files. Pos is set when the error can be attributed to a
// location in a CUE file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// decodeErr builds a LoadError positioned at the given CUE value.
func decodeErr(v cue.Value, format string, args ...any) *LoadError {
	return &LoadError{
		Code:    ErrCodeDecode,
		Message: fmt.Sprintf(format, args...),
		Pos:     v.Pos(),
	}
}

// ValidationError represents a program validation error. Field names the
// offending declaration path, such as "relation.edge.columns.src" or
// "rule.closure".
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}
