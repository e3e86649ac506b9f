package domain

import "errors"

var (
	// ErrNetwork is returned when the catalog could not be reached
	ErrNetwork = errors.New("catalog network failure")

	// ErrUpstream is returned when the catalog answered with a non-2xx status or a malformed body
	ErrUpstream = errors.New("catalog upstream error")

	// ErrProductNotFound is returned when a product id is not among the accumulated pages
	ErrProductNotFound = errors.New("product not found in accumulated pages")

	// ErrRowNotFound is returned when a row id is unknown to the row list
	ErrRowNotFound = errors.New("row not found")

	// ErrInvalidOrder is returned when a reorder is not a permutation of the current rows
	ErrInvalidOrder = errors.New("invalid row order")

	// ErrSessionNotOpen is returned when a dialog intent targets a row without an open session
	ErrSessionNotOpen = errors.New("no open search session for row")

	// ErrInvalidDiscount is returned when a discount annotation fails validation
	ErrInvalidDiscount = errors.New("invalid discount")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
