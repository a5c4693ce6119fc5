package domain

import "errors"

var (
	// ErrNoMatchingRule means no catalog rule covers the queried
	// (product, thickness, dimension). Never defaulted to a zero price;
	// the caller surfaces it as a validation error.
	ErrNoMatchingRule = errors.New("no matching pricing rule")

	// ErrMalformedCatalog means the catalog file failed load-time
	// validation. The previous rule set stays active.
	ErrMalformedCatalog = errors.New("malformed pricing catalog")
)
