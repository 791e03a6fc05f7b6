package apierror

import "errors"

// Kind classifies a domain failure. Every error the register engine returns
// carries one so callers can decide between retrying (sequence conflicts),
// rejecting (double open), or surfacing a message to the cashier.
type Kind string

const (
	KindValidation             Kind = "validation"
	KindNotFound               Kind = "not_found"
	KindNotAuthorized          Kind = "not_authorized"
	KindBusinessInactive       Kind = "business_inactive"
	KindOutsideOperatingWindow Kind = "outside_operating_window"
	KindShiftAlreadyOpen       Kind = "shift_already_open"
	KindShiftNotFound          Kind = "shift_not_found"
	KindShiftAlreadyClosed     Kind = "shift_already_closed"
	KindShiftNotOpen           Kind = "shift_not_open"
	KindOperatorMismatch       Kind = "operator_mismatch"
	KindInsufficientStock      Kind = "insufficient_stock"
	KindInvalidLineItem        Kind = "invalid_line_item"
	KindMissingEmissionCodes   Kind = "missing_emission_codes"
	KindFilingFailed           Kind = "filing_failed"
	KindConflict               Kind = "conflict"
	KindInternal               Kind = "internal"
)

// Error is a domain error with a machine-readable kind and a human message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// E builds a domain error.
func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// KindOf extracts the kind from err, unwrapping as needed.
// Errors that never went through E are reported as internal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
