package domain

import "errors"

var (
	// ErrCommitAborted means the commit transaction rolled back. The draft
	// stays intact and re-editable; no partial ledger change is visible. An
	// already-allocated number is skipped, never reused.
	ErrCommitAborted = errors.New("invoice commit aborted")

	// ErrEmptyDraft rejects a commit with no line items.
	ErrEmptyDraft = errors.New("draft has no line items")

	// ErrUnpricedItem rejects a commit containing an item that never went
	// through the pricer.
	ErrUnpricedItem = errors.New("draft contains an unpriced line item")

	// ErrInvalidClient rejects a commit or payment without a client name.
	ErrInvalidClient = errors.New("client name is required")

	// ErrInvalidPayment rejects a non-positive payment amount.
	ErrInvalidPayment = errors.New("payment amount must be positive")

	// ErrInvoiceNotFound is returned by lookups and reversals.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrBalanceDrift means a client's stored running balance no longer
	// equals invoice totals minus payments, which indicates the ledger was
	// modified outside the commit protocol.
	ErrBalanceDrift = errors.New("running balance does not match ledger history")
)
