package gate

import "errors"

// Sentinel errors returned by HybridGate.Authorize.
// ErrUnauthorized means no usable subject; ErrForbidden means the subject
// was resolved but lacks the permission or fails the resource policy.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
