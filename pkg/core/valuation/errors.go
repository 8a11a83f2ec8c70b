package valuation

import "errors"

// ErrDivergentTerminalValue is returned when the discount rate does not
// exceed the terminal growth rate, so the Gordon growth value is undefined.
var ErrDivergentTerminalValue = errors.New("divergent terminal value")
