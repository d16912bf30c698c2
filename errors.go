package fixdsp

import "errors"

// Common errors returned at configuration time. Construction of any core
// fails fast with one of these wrapped in context; there are no runtime
// error paths once a core is streaming.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidFormat indicates an unusable fixed-point format.
	ErrInvalidFormat = errors.New("invalid fixed-point format")

	// ErrQuantization indicates a coefficient that cannot be represented
	// within the documented conversion-error bound.
	ErrQuantization = errors.New("coefficient quantization error out of bounds")
)
