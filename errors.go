package ledgerstatus

import (
	"errors"
	"fmt"
)

// RejectionReason says why a query was rejected before any lookup.
type RejectionReason uint8

const (
	// ReasonExactlyOneRequired: the caller supplied zero or two
	// identifiers.
	ReasonExactlyOneRequired RejectionReason = 1
)

func (r RejectionReason) String() string {
	switch r {
	case ReasonExactlyOneRequired:
		return "ExactlyOneRequired"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
}

// RejectionError signals that a query violated the input contract.
// It is always recoverable by correcting the query.
type RejectionError struct {
	Reason RejectionReason
}

func (e *RejectionError) Error() string {
	switch e.Reason {
	case ReasonExactlyOneRequired:
		return "Provide exactly one query parameter. Choices are: block_id, tx_id"
	default:
		return fmt.Sprintf("query rejected: %s", e.Reason)
	}
}

// NewRejectionError creates a new RejectionError.
func NewRejectionError(reason RejectionReason) *RejectionError {
	return &RejectionError{Reason: reason}
}

// IsRejection checks whether an error is a RejectionError and returns it.
func IsRejection(err error) (*RejectionError, bool) {
	var r *RejectionError
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
