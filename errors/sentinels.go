package errors

// Sentinel errors for errors.Is comparisons against a bare category, e.g.
//
//	if errors.Is(err, errors.ErrNotFound) { ... }
var (
	ErrCorruption       = New(ERR_CORRUPTION, "corruption")
	ErrMalformedVarint  = New(ERR_MALFORMED_VARINT, "malformed varint")
	ErrMalformedTx      = New(ERR_MALFORMED_TX, "malformed tx")
	ErrNotFound         = New(ERR_NOT_FOUND, "not found")
	ErrIO               = New(ERR_IO, "io error")
	ErrCancelled        = New(ERR_CANCELLED, "cancelled")
)

// NewCorruption builds an ERR_CORRUPTION error.
func NewCorruption(message string, params ...interface{}) *Error {
	return New(ERR_CORRUPTION, message, params...)
}

// NewMalformedVarint builds an ERR_MALFORMED_VARINT error.
func NewMalformedVarint(message string, params ...interface{}) *Error {
	return New(ERR_MALFORMED_VARINT, message, params...)
}

// NewMalformedTx builds an ERR_MALFORMED_TX error.
func NewMalformedTx(message string, params ...interface{}) *Error {
	return New(ERR_MALFORMED_TX, message, params...)
}

// NewNotFound builds an ERR_NOT_FOUND error.
func NewNotFound(message string, params ...interface{}) *Error {
	return New(ERR_NOT_FOUND, message, params...)
}

// NewIO builds an ERR_IO error.
func NewIO(message string, params ...interface{}) *Error {
	return New(ERR_IO, message, params...)
}

// NewCancelled builds an ERR_CANCELLED error.
func NewCancelled(message string, params ...interface{}) *Error {
	return New(ERR_CANCELLED, message, params...)
}
