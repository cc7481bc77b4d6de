package server

import (
	"testing"

	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/types"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		txID    string
		blockID string
		want    types.Identifier
		reject  bool
	}{
		{name: "neither", reject: true},
		{name: "both", txID: "abc", blockID: "def", reject: true},
		{name: "tx only", txID: "abc123", want: types.TransactionID("abc123")},
		{name: "block only", blockID: "def", want: types.BlockID("def")},
		// Empty strings count as absent.
		{name: "empty tx with block", txID: "", blockID: "def", want: types.BlockID("def")},
		{name: "tx with empty block", txID: "abc", blockID: "", want: types.TransactionID("abc")},
		{name: "both empty", txID: "", blockID: "", reject: true},
		// Whitespace is a non-empty string.
		{name: "space tx", txID: " ", want: types.TransactionID(" ")},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Validate(c.txID, c.blockID)
			if c.reject {
				r, ok := ledgerstatus.IsRejection(err)
				if !ok {
					t.Fatalf("expected rejection, got id=%v err=%v", got, err)
				}
				if r.Reason != ledgerstatus.ReasonExactlyOneRequired {
					t.Fatalf("unexpected reason %s", r.Reason)
				}
				if got != (types.Identifier{}) {
					t.Fatalf("expected zero identifier on rejection, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}
}
