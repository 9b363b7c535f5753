package store

import "errors"

var (
	// ErrComparisonInFlight is returned when a comparison is started while another one
	// is still running in the same store.
	ErrComparisonInFlight = errors.New("a comparison is already running")
	// ErrAuditInFlight is returned when a product is audited while its previous audit
	// is still running.
	ErrAuditInFlight = errors.New("a safety audit for this product is already running")
	// ErrSelectionIncomplete is returned when a comparison is requested without two
	// selected products.
	ErrSelectionIncomplete = errors.New("select two products to compare")
)
