package segment

import "errors"

var (
	// ErrInvariantViolation reports a broken labelling invariant: a label
	// missing from the union-find forest or more components than the label
	// range allows. The extraction result would be corrupt, so the call fails.
	ErrInvariantViolation = errors.New("segment: invariant violation")

	// ErrInvalidBuffer reports a pixel buffer whose dimensions, stride or
	// length are inconsistent.
	ErrInvalidBuffer = errors.New("segment: invalid pixel buffer")

	// ErrInvalidOptions reports options that cannot drive an extraction.
	ErrInvalidOptions = errors.New("segment: invalid options")
)
