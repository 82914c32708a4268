package model

import (
	"errors"
	"fmt"
)

// Kind classifies command failures. Each kind maps to one user-facing message
// at the shell boundary.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindDataUnavailable
	KindItemNotFound
	KindFormat
	KindValueConversion
	KindZeroTargetValue
)

var kindNames = map[Kind]string{
	KindUnknown:         "unknown",
	KindDataUnavailable: "data_unavailable",
	KindItemNotFound:    "item_not_found",
	KindFormat:          "format_error",
	KindValueConversion: "value_conversion",
	KindZeroTargetValue: "zero_target_value",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified command failure.
type Error struct {
	Kind  Kind
	Item  string // offending item name, if any
	Score int    // best similarity for KindItemNotFound
	Err   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindItemNotFound:
		return fmt.Sprintf("%s: %q (similarity %d%%)", e.Kind, e.Item, e.Score)
	case KindValueConversion, KindZeroTargetValue:
		if e.Item != "" {
			return fmt.Sprintf("%s: %q", e.Kind, e.Item)
		}
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DataUnavailable reports that the dataset could not be fetched or parsed.
func DataUnavailable(err error) *Error {
	return &Error{Kind: KindDataUnavailable, Err: err}
}

// ItemNotFound reports a name whose best match fell below the threshold.
func ItemNotFound(name string, score int) *Error {
	return &Error{Kind: KindItemNotFound, Item: name, Score: score}
}

// FormatError reports malformed command input.
func FormatError(msg string) *Error {
	return &Error{Kind: KindFormat, Err: errors.New(msg)}
}

// ValueConversion reports a matched item whose Value is not numeric.
func ValueConversion(name, raw string) *Error {
	return &Error{Kind: KindValueConversion, Item: name, Err: fmt.Errorf("value %q is not numeric", raw)}
}

// ZeroTargetValue reports a trade target worth nothing, which has no ratio.
func ZeroTargetValue(name string) *Error {
	return &Error{Kind: KindZeroTargetValue, Item: name}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// AsError extracts the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
