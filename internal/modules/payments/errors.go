package payments

import "errors"

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrBadSignature     = errors.New("signature mismatch")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)
