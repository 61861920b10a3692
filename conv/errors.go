package conv

import "github.com/pkg/errors"

// ErrNumericOverflow is wrapped into a ConversionError when a numeric
// scalar does not fit the destination type's range.
var ErrNumericOverflow = errors.New("conv: numeric value overflows destination type")

// ConversionError reports a scalar value that could not be converted to a
// signature argument's declared type.
type ConversionError struct {
	Value any
	To    string
	Err   error
}

func (e *ConversionError) Error() string {
	return errors.Wrapf(e.Err, "conv: cannot convert %v (%T) to %s", e.Value, e.Value, e.To).Error()
}

func (e *ConversionError) Unwrap() error { return e.Err }
