package qr

// ErrEmptyPayload is returned by Encode for empty or whitespace-only input.
var ErrEmptyPayload = &ValidationError{Reason: "data cannot be empty"}

// ValidationError reports input that was rejected before rendering started.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// EncodingError wraps a failure that happened while building or rasterising
// the QR matrix.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return "failed to generate QR code: " + e.Err.Error()
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}
