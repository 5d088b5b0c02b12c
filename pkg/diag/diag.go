// Package diag implements the diagnostic model of §7: a closed set of error
// codes, an accumulating logger, and the maybeThrow phase-boundary check the
// driver calls after every binder phase.
package diag

import (
	"fmt"

	"go.uber.org/multierr"
)

// Code is one of the §7 "non-exhaustive" error kinds.
type Code string

// Diagnostic codes.
const (
	SymbolNotFound        Code = "SYMBOL_NOT_FOUND"
	ClassFileNotFound     Code = "CLASS_FILE_NOT_FOUND"
	DuplicateDeclaration  Code = "DUPLICATE_DECLARATION"
	CyclicHierarchy       Code = "CYCLIC_HIERARCHY"
	CannotResolve         Code = "CANNOT_RESOLVE"
	TypeParameterQualifier Code = "TYPE_PARAMETER_QUALIFIER"
	ExpressionError       Code = "EXPRESSION_ERROR"
	InvalidAnnotationArgument Code = "INVALID_ANNOTATION_ARGUMENT"
	NotAnAnnotation       Code = "NOT_AN_ANNOTATION"
	NonrepeatableAnnotation Code = "NONREPEATABLE_ANNOTATION"
	UnexpectedTypeParameter Code = "UNEXPECTED_TYPE_PARAMETER"
	InvalidLiteral        Code = "INVALID_LITERAL"
	UnexpectedToken       Code = "UNEXPECTED_TOKEN"
	BadModuleInfo         Code = "BAD_MODULE_INFO"
)

// Severity distinguishes a hard error (aborts the phase boundary) from a
// warning (logged but non-fatal), e.g. the "permitted but flagged"
// non-canonical import case in §4.D.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// Diagnostic is one recorded error or warning.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Source   string // binary name or file path the diagnostic concerns
	Message  string
}

func (d Diagnostic) String() string {
	kind := "error"
	if d.Severity == SeverityWarning {
		kind = "warning"
	}

	if d.Source != "" {
		return fmt.Sprintf("%s: %s: [%s] %s", d.Source, kind, d.Code, d.Message)
	}

	return fmt.Sprintf("%s: [%s] %s", kind, d.Code, d.Message)
}

// PhaseError is raised by maybeThrow; it carries every diagnostic logged
// during the phase that just completed (§7 "the driver throws once per
// phase boundary if any errors were logged").
type PhaseError struct {
	Phase       string
	Diagnostics []Diagnostic
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("turbine: %d error(s) in phase %s", len(e.Diagnostics), e.Phase)
}

// Log accumulates diagnostics in insertion order (§5 "diagnostic ordering
// matches iteration order; tests depend on it"), using go.uber.org/multierr
// to additionally expose them through the standard errors.Is/As/Unwrap
// machinery.
type Log struct {
	entries []Diagnostic
	err     error
}

// NewLog constructs an empty diagnostic log.
func NewLog() *Log {
	return &Log{}
}

// Error records a Diagnostic with SeverityError.
func (l *Log) Error(code Code, source, format string, args ...any) {
	d := Diagnostic{Code: code, Severity: SeverityError, Source: source, Message: fmt.Sprintf(format, args...)}
	l.entries = append(l.entries, d)
	l.err = multierr.Append(l.err, fmt.Errorf("%s", d.String()))
}

// Warn records a Diagnostic with SeverityWarning; it does not contribute to
// HasErrors or the multierr chain returned by Err.
func (l *Log) Warn(code Code, source, format string, args ...any) {
	l.entries = append(l.entries, Diagnostic{Code: code, Severity: SeverityWarning, Source: source, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any SeverityError diagnostic has been logged.
func (l *Log) HasErrors() bool {
	for _, d := range l.entries {
		if d.Severity == SeverityError {
			return true
		}
	}

	return false
}

// Diagnostics returns every diagnostic logged so far, in insertion order.
func (l *Log) Diagnostics() []Diagnostic {
	return l.entries
}

// Err returns the accumulated multierr chain of every SeverityError
// diagnostic (nil if none).
func (l *Log) Err() error {
	return l.err
}

// MaybeThrow implements the §7 "driver throws once per phase boundary if
// any errors were logged" policy: it returns a *PhaseError wrapping every
// diagnostic recorded so far if HasErrors, else nil.
func (l *Log) MaybeThrow(phase string) error {
	if !l.HasErrors() {
		return nil
	}

	return &PhaseError{Phase: phase, Diagnostics: append([]Diagnostic(nil), l.entries...)}
}
