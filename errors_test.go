package ledgerstatus

import (
	"fmt"
	"testing"
)

func TestRejectionError(t *testing.T) {
	err := NewRejectionError(ReasonExactlyOneRequired)
	if err.Reason != ReasonExactlyOneRequired {
		t.Errorf("expected ExactlyOneRequired, got %s", err.Reason)
	}

	expected := "Provide exactly one query parameter. Choices are: block_id, tx_id"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}

	other := NewRejectionError(RejectionReason(9))
	if other.Error() != "query rejected: unknown(9)" {
		t.Errorf("unexpected message: %q", other.Error())
	}
}

func TestIsRejection(t *testing.T) {
	rejErr := NewRejectionError(ReasonExactlyOneRequired)

	// Direct.
	r, ok := IsRejection(rejErr)
	if !ok {
		t.Fatal("expected IsRejection to return true")
	}
	if r.Reason != ReasonExactlyOneRequired {
		t.Errorf("expected ExactlyOneRequired, got %s", r.Reason)
	}

	// Wrapped.
	wrapped := fmt.Errorf("wrapped: %w", rejErr)
	r2, ok2 := IsRejection(wrapped)
	if !ok2 {
		t.Fatal("expected IsRejection to unwrap wrapped error")
	}
	if r2 != rejErr {
		t.Error("expected the same RejectionError back")
	}

	// Non-rejection error.
	_, ok3 := IsRejection(fmt.Errorf("just a regular error"))
	if ok3 {
		t.Fatal("expected IsRejection to return false for non-rejection error")
	}

	// Nil.
	_, ok4 := IsRejection(nil)
	if ok4 {
		t.Fatal("expected IsRejection to return false for nil")
	}
}
